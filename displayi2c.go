// Package displayi2c sends display controller commands and data over I²C.
//
// Controllers such as the SSD1306, SSD1327 and SH1106 expect a control byte
// at the start of every I²C transaction telling them whether the following
// bytes are commands or display data. Interface inserts that byte and splits
// long payloads into transactions small enough for common I²C transports.
package displayi2c

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"tinygo.org/x/drivers"
)

const (
	// CommandByte is the control byte preceding command transactions.
	CommandByte byte = 0x00
	// DataByte is the control byte most SSD13xx and SH110x controllers
	// expect before display data.
	DataByte byte = 0x40
	// DefaultAddr is the usual 7-bit address of I²C OLED modules.
	DefaultAddr uint16 = 0x3C

	// MaxCommandChunk is the largest command payload accepted by SendCommands.
	MaxCommandChunk = 7
	// MaxDataChunk is the largest data payload sent in one transaction.
	MaxDataChunk = 16
)

// Interface is an I²C display interface.
//
// It owns the bus it was created with until Release is called. Writes are
// issued one at a time and an Interface must not be used concurrently.
type Interface[B drivers.I2C] struct {
	bus      B
	addr     uint16
	dataByte byte

	// frame is the control byte followed by up to MaxDataChunk payload bytes.
	frame [1 + MaxDataChunk]byte
}

// New returns an Interface writing to the device at addr on bus.
//
// dataByte is the control byte sent before display data; DataByte is the
// right value for most controllers. No I/O is performed.
func New[B drivers.I2C](bus B, addr uint16, dataByte byte) *Interface[B] {
	return &Interface[B]{
		bus:      bus,
		addr:     addr,
		dataByte: dataByte,
	}
}

// Release returns the underlying bus. The Interface must not be used after
// calling Release.
func (i *Interface[B]) Release() B {
	bus := i.bus
	var zero B
	i.bus = zero
	return bus
}

// Addr returns the device address.
func (i *Interface[B]) Addr() uint16 {
	return i.addr
}

// DataByte returns the control byte sent before display data.
func (i *Interface[B]) DataByte() byte {
	return i.dataByte
}

// SendCommands sends cmds in a single transaction prefixed by CommandByte.
//
// Only U8 is supported. Controllers take commands a few bytes at a time, so
// cmds longer than MaxCommandChunk is a programming error and panics.
func (i *Interface[B]) SendCommands(cmds DataFormat) error {
	c, ok := cmds.(U8)
	if !ok {
		return ErrDataFormatNotImplemented
	}
	if len(c) > MaxCommandChunk {
		panic(fmt.Sprintf("displayi2c: command payload exceeds %d bytes", MaxCommandChunk))
	}
	i.frame[0] = CommandByte
	return i.write(copy(i.frame[1:], c))
}

// SendData sends buf in transactions of at most MaxDataChunk bytes, each
// prefixed by the data byte.
//
// U8 and U8Iter are supported. An empty payload sends nothing. The first
// failed transaction stops the transfer; transactions already sent are not
// undone.
func (i *Interface[B]) SendData(buf DataFormat) error {
	switch b := buf.(type) {
	case U8:
		return i.sendBuffer(b)
	case U8Iter:
		return i.sendIter(b)
	default:
		return ErrDataFormatNotImplemented
	}
}

func (i *Interface[B]) sendBuffer(b []byte) error {
	i.frame[0] = i.dataByte
	for len(b) != 0 {
		n := copy(i.frame[1:], b)
		if err := i.write(n); err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func (i *Interface[B]) sendIter(seq U8Iter) error {
	if seq == nil {
		return nil
	}
	i.frame[0] = i.dataByte
	n := 0
	for c := range seq {
		n++
		i.frame[n] = c
		if n == MaxDataChunk {
			if err := i.write(n); err != nil {
				return err
			}
			n = 0
		}
	}
	if n == 0 {
		return nil
	}
	return i.write(n)
}

// write sends the control byte and the first n payload bytes of the frame.
func (i *Interface[B]) write(n int) error {
	if err := i.bus.Tx(i.addr, i.frame[:1+n], nil); err != nil {
		return busWriteError(err)
	}
	return nil
}

func (i *Interface[B]) String() string {
	s := "<nil>"
	if st, ok := any(i.bus).(fmt.Stringer); ok {
		s = st.String()
	}
	return fmt.Sprintf("displayi2c.Interface{%s, %#02x}", s, i.addr)
}

var _ WriteOnlyDataCommand = &Interface[drivers.I2C]{}
var _ drivers.I2C = i2c.Bus(nil)
