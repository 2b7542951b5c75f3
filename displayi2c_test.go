package displayi2c

import (
	"bytes"
	"errors"
	"iter"
	"slices"
	"testing"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

// faultyBus records writes and fails the failAt-th one.
type faultyBus struct {
	i2ctest.Record
	failAt int
	calls  int
}

var errNACK = errors.New("nack")

func (f *faultyBus) Tx(addr uint16, w, r []byte) error {
	f.calls++
	if f.calls == f.failAt {
		return errNACK
	}
	return f.Record.Tx(addr, w, r)
}

func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*7 + 1)
	}
	return b
}

// checkFrames verifies every recorded op is a data frame and returns the
// concatenated payloads.
func checkFrames(t *testing.T, ops []i2ctest.IO, prefix byte) []byte {
	t.Helper()
	var got []byte
	for i, op := range ops {
		if op.Addr != 0x3C {
			t.Errorf("op %d: addr = %#x, want 0x3c", i, op.Addr)
		}
		if len(op.W) < 2 || len(op.W) > 1+MaxDataChunk {
			t.Fatalf("op %d: write length %d out of range", i, len(op.W))
		}
		if op.W[0] != prefix {
			t.Errorf("op %d: prefix = %#02x, want %#02x", i, op.W[0], prefix)
		}
		if i < len(ops)-1 && len(op.W) != 1+MaxDataChunk {
			t.Errorf("op %d: non-final frame has %d payload bytes", i, len(op.W)-1)
		}
		if op.R != nil {
			t.Errorf("op %d: unexpected read", i)
		}
		got = append(got, op.W[1:]...)
	}
	return got
}

func TestNew(t *testing.T) {
	bus := &i2ctest.Record{}
	di := New(bus, 0x3D, 0x40)

	if di.Addr() != 0x3D {
		t.Errorf("Addr() = %#x, want 0x3d", di.Addr())
	}
	if di.DataByte() != 0x40 {
		t.Errorf("DataByte() = %#x, want 0x40", di.DataByte())
	}
	if want := "displayi2c.Interface{record, 0x3d}"; di.String() != want {
		t.Errorf("String() = %q, want %q", di.String(), want)
	}
	if len(bus.Ops) != 0 {
		t.Errorf("New performed %d transactions", len(bus.Ops))
	}
}

func TestRelease(t *testing.T) {
	bus := &i2ctest.Record{}
	di := New[i2c.Bus](bus, DefaultAddr, DataByte)

	if got := di.Release(); got != i2c.Bus(bus) {
		t.Errorf("Release() = %v, want %v", got, bus)
	}
	if got := di.Release(); got != nil {
		t.Errorf("second Release() = %v, want nil", got)
	}
	if len(bus.Ops) != 0 {
		t.Errorf("Release performed %d transactions", len(bus.Ops))
	}
}

func TestSendCommands(t *testing.T) {
	for n := 0; n <= MaxCommandChunk; n++ {
		cmds := pattern(n)
		bus := &i2ctest.Playback{
			Ops: []i2ctest.IO{{Addr: 0x3C, W: append([]byte{0x00}, cmds...)}},
		}
		di := New(bus, 0x3C, 0x40)
		if err := di.SendCommands(U8(cmds)); err != nil {
			t.Fatalf("SendCommands(%d bytes) = %v", n, err)
		}
		if err := bus.Close(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSendCommandsTooLong(t *testing.T) {
	bus := &i2ctest.Record{}
	di := New(bus, 0x3C, 0x40)

	defer func() {
		r := recover()
		if r == nil {
			t.Error("SendCommands with 8 bytes should panic")
		} else if want := "displayi2c: command payload exceeds 7 bytes"; r != want {
			t.Errorf("panic = %v, want %q", r, want)
		}
		if len(bus.Ops) != 0 {
			t.Errorf("performed %d transactions", len(bus.Ops))
		}
	}()
	_ = di.SendCommands(U8(pattern(MaxCommandChunk + 1)))
}

func TestSendCommandsBusError(t *testing.T) {
	bus := &faultyBus{failAt: 1}
	di := New(bus, 0x3C, 0x40)

	err := di.SendCommands(U8{0xAE})
	if !errors.Is(err, ErrBusWrite) {
		t.Fatalf("SendCommands() = %v, want ErrBusWrite", err)
	}
	if !errors.Is(err, errNACK) {
		t.Errorf("SendCommands() = %v, should wrap the bus error", err)
	}
	if bus.calls != 1 {
		t.Errorf("calls = %d, want 1", bus.calls)
	}
}

func unsupportedFormats() []struct {
	name string
	buf  DataFormat
} {
	return []struct {
		name string
		buf  DataFormat
	}{
		{"nil", nil},
		{"U16", U16{0x1234}},
		{"U16BE", U16BE{0x1234}},
		{"U16LE", U16LE{0x1234}},
		{"U16BEIter", U16BEIter(slices.Values([]uint16{0x1234}))},
		{"U16LEIter", U16LEIter(slices.Values([]uint16{0x1234}))},
	}
}

func TestSendCommandsUnsupportedFormat(t *testing.T) {
	tests := append(unsupportedFormats(), struct {
		name string
		buf  DataFormat
	}{"U8Iter", U8Iter(slices.Values([]byte{0xAE}))})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := &i2ctest.Record{}
			di := New(bus, 0x3C, 0x40)

			err := di.SendCommands(tt.buf)
			if !errors.Is(err, ErrDataFormatNotImplemented) {
				t.Errorf("SendCommands() = %v, want ErrDataFormatNotImplemented", err)
			}
			if !errors.Is(err, display.ErrNotImplemented) {
				t.Errorf("SendCommands() = %v, should wrap display.ErrNotImplemented", err)
			}
			if len(bus.Ops) != 0 {
				t.Errorf("performed %d transactions", len(bus.Ops))
			}
		})
	}
}

func TestSendDataUnsupportedFormat(t *testing.T) {
	for _, tt := range unsupportedFormats() {
		t.Run(tt.name, func(t *testing.T) {
			bus := &i2ctest.Record{}
			di := New(bus, 0x3C, 0x40)

			if err := di.SendData(tt.buf); !errors.Is(err, ErrDataFormatNotImplemented) {
				t.Errorf("SendData() = %v, want ErrDataFormatNotImplemented", err)
			}
			if len(bus.Ops) != 0 {
				t.Errorf("performed %d transactions", len(bus.Ops))
			}
		})
	}
}

func TestSendData(t *testing.T) {
	formats := []struct {
		name string
		wrap func([]byte) DataFormat
	}{
		{"U8", func(b []byte) DataFormat { return U8(b) }},
		{"U8Iter", func(b []byte) DataFormat { return U8Iter(slices.Values(b)) }},
	}

	for _, f := range formats {
		t.Run(f.name, func(t *testing.T) {
			for n := 0; n <= 4*MaxDataChunk+1; n++ {
				data := pattern(n)
				bus := &i2ctest.Record{}
				di := New(bus, 0x3C, 0x5A)

				if err := di.SendData(f.wrap(data)); err != nil {
					t.Fatalf("n=%d: SendData() = %v", n, err)
				}
				if want := (n + MaxDataChunk - 1) / MaxDataChunk; len(bus.Ops) != want {
					t.Errorf("n=%d: %d transactions, want %d", n, len(bus.Ops), want)
				}
				if got := checkFrames(t, bus.Ops, 0x5A); !bytes.Equal(got, data) {
					t.Errorf("n=%d: payload = % x, want % x", n, got, data)
				}
			}
		})
	}
}

func TestSendDataTwoChunks(t *testing.T) {
	data := pattern(32)
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x3C, W: append([]byte{0x40}, data[:16]...)},
			{Addr: 0x3C, W: append([]byte{0x40}, data[16:]...)},
		},
	}
	di := New(bus, 0x3C, 0x40)

	if err := di.SendData(U8(data)); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSendDataIterFullFrame(t *testing.T) {
	data := pattern(16)
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{{Addr: 0x3C, W: append([]byte{0x40}, data...)}},
	}
	di := New(bus, 0x3C, 0x40)

	if err := di.SendData(U8Iter(slices.Values(data))); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSendDataEmpty(t *testing.T) {
	tests := []struct {
		name string
		buf  DataFormat
	}{
		{"nil U8", U8(nil)},
		{"empty U8", U8{}},
		{"nil U8Iter", U8Iter(nil)},
		{"empty U8Iter", U8Iter(slices.Values([]byte{}))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := &i2ctest.Playback{}
			di := New(bus, 0x3C, 0x40)
			if err := di.SendData(tt.buf); err != nil {
				t.Fatal(err)
			}
			if err := bus.Close(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestSendDataShortFrameAfterFullFrame(t *testing.T) {
	bus := &i2ctest.Record{}
	di := New(bus, 0x3C, 0x40)

	if err := di.SendData(U8(pattern(20))); err != nil {
		t.Fatal(err)
	}
	if err := di.SendData(U8{0xAA, 0xBB}); err != nil {
		t.Fatal(err)
	}
	if err := di.SendCommands(U8{0xAF}); err != nil {
		t.Fatal(err)
	}

	want := [][]byte{
		append([]byte{0x40}, pattern(20)[:16]...),
		append([]byte{0x40}, pattern(20)[16:]...),
		{0x40, 0xAA, 0xBB},
		{0x00, 0xAF},
	}
	if len(bus.Ops) != len(want) {
		t.Fatalf("%d transactions, want %d", len(bus.Ops), len(want))
	}
	for i, w := range want {
		if !bytes.Equal(bus.Ops[i].W, w) {
			t.Errorf("op %d = % x, want % x", i, bus.Ops[i].W, w)
		}
	}
}

func TestSendDataBusError(t *testing.T) {
	data := pattern(4 * MaxDataChunk)
	formats := []struct {
		name string
		wrap func([]byte) DataFormat
	}{
		{"U8", func(b []byte) DataFormat { return U8(b) }},
		{"U8Iter", func(b []byte) DataFormat { return U8Iter(slices.Values(b)) }},
	}

	for _, f := range formats {
		for k := 1; k <= 4; k++ {
			bus := &faultyBus{failAt: k}
			di := New(bus, 0x3C, 0x40)

			err := di.SendData(f.wrap(data))
			if !errors.Is(err, ErrBusWrite) {
				t.Errorf("%s k=%d: SendData() = %v, want ErrBusWrite", f.name, k, err)
			}
			if bus.calls != k {
				t.Errorf("%s k=%d: %d transactions attempted, want %d", f.name, k, bus.calls, k)
			}
			if got := checkFrames(t, bus.Ops, 0x40); !bytes.Equal(got, data[:(k-1)*MaxDataChunk]) {
				t.Errorf("%s k=%d: sent % x before failure", f.name, k, got)
			}
		}
	}
}

func TestSendDataIterStopsOnError(t *testing.T) {
	produced := 0
	var seq iter.Seq[byte] = func(yield func(byte) bool) {
		for {
			produced++
			if !yield(byte(produced)) {
				return
			}
		}
	}
	bus := &faultyBus{failAt: 2}
	di := New(bus, 0x3C, 0x40)

	if err := di.SendData(U8Iter(seq)); !errors.Is(err, ErrBusWrite) {
		t.Fatalf("SendData() = %v, want ErrBusWrite", err)
	}
	if produced != 2*MaxDataChunk {
		t.Errorf("produced %d bytes, want %d", produced, 2*MaxDataChunk)
	}
}
