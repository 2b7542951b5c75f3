// Package ssd1327 controls a SSD1327 OLED display via I²C.
//
// The SSD1327 is a 4-bit grayscale OLED controller with a 128x128 pixel
// RAM. Common modules are 128x128 and 96x96.
//
// See the examples for how to use this package.
package ssd1327

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"time"

	"github.com/flavioheleno/displayi2c"
	"github.com/flavioheleno/displayi2c/gray4"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"tinygo.org/x/drivers"
)

const (
	packageName = "ssd1327"

	ramWidth  = 128
	ramHeight = 128
)

var errHalted = errors.New("ssd1327: halted")

func wrap(err error) error {
	if err == nil || strings.HasPrefix(err.Error(), packageName) {
		return err
	}
	return fmt.Errorf("%s: %w", packageName, err)
}

// Opts is the configuration for the SSD1327 display.
type Opts struct {
	// Display dimensions in pixels
	W int // Width (default: 128, must be even and ≤128)
	H int // Height (default: 128, must be ≤128)

	// I²C address (default: 0x3C)
	Addr uint16

	// 180° rotation
	Rotated bool

	// Optional hardware reset pin
	RST gpio.PinIO
}

// Dev is the device handle for the SSD1327 display.
type Dev struct {
	di  displayi2c.WriteOnlyDataCommand
	rst gpio.PinIO

	rect         image.Rectangle
	columnOffset int // Pixels skipped in the 128-column RAM, always even

	// buffer is what the display RAM holds.
	buffer *gray4.Image
	// next is allocated on first use by Draw or SetPixel.
	next *gray4.Image

	halted bool
}

// NewI2C creates a new SSD1327 device connected via I²C.
//
// bus can be a periph.io i2c.Bus or a TinyGo machine.I2C. opts can be nil to
// use defaults (128x128 display at address 0x3C).
func NewI2C(bus drivers.I2C, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{W: 128, H: 128}
	}
	addr := opts.Addr
	if addr == 0 {
		addr = displayi2c.DefaultAddr
	}
	return New(displayi2c.New(bus, addr, displayi2c.DataByte), opts)
}

// New creates a new SSD1327 device talking through di.
//
// The display is reset, initialized and cleared before New returns.
func New(di displayi2c.WriteOnlyDataCommand, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{W: 128, H: 128}
	}
	if opts.W <= 0 || opts.W%2 != 0 || opts.W > ramWidth {
		return nil, errors.New("ssd1327: width must be even and between 2 and 128")
	}
	if opts.H <= 0 || opts.H > ramHeight {
		return nil, errors.New("ssd1327: height must be between 1 and 128")
	}

	rect := image.Rect(0, 0, opts.W, opts.H)
	d := &Dev{
		di:           di,
		rst:          opts.RST,
		rect:         rect,
		columnOffset: (ramWidth - opts.W) / 4 * 2,
		buffer:       gray4.New(rect),
	}
	if err := d.init(opts); err != nil {
		return nil, err
	}
	return d, nil
}

// init resets the controller, sends the initialization sequence and clears
// the display RAM.
func (d *Dev) init(opts *Opts) error {
	eh := errorHandler{d: d}

	if d.rst != nil {
		eh.rstOut(gpio.Low)
		time.Sleep(10 * time.Millisecond)
		eh.rstOut(gpio.High)
		time.Sleep(10 * time.Millisecond)
	}

	remap := byte(0x51) // Column remap, COM remap, COM split
	if opts.Rotated {
		remap = 0x42 // Nibble remap, COM split
	}

	eh.commands(
		[]byte{0xFD, 0x12},             // Unlock command codes
		[]byte{0xAE},                   // Display OFF
		[]byte{0xA0, remap},            // Remap
		[]byte{0xA1, 0x00},             // Start line
		[]byte{0xA2, 0x00},             // Display offset
		[]byte{0xA4},                   // Normal display mode
		[]byte{0xA8, byte(opts.H - 1)}, // MUX ratio
		[]byte{0xAB, 0x01},             // Enable internal VDD regulator
		[]byte{0xB1, 0xF1},             // Phase length
		[]byte{0xB3, 0x00},             // Clock divider and oscillator frequency
		[]byte{0xB6, 0x0F},             // Second pre-charge period
		[]byte{0xB9},                   // Default linear grayscale table
		[]byte{0xBC, 0x08},             // Pre-charge voltage
		[]byte{0xBE, 0x0F},             // VCOMH voltage
		[]byte{0xD5, 0x62},             // Function selection B
		[]byte{0x81, 0x80},             // Contrast
	)
	eh.window(d.rect)
	eh.data(displayi2c.U8(d.buffer.Pix))
	eh.commands([]byte{0xAF}) // Display ON
	return wrap(eh.err)
}

// window sets the RAM address window to r. r must be byte aligned.
func (d *Dev) window(r image.Rectangle) error {
	eh := errorHandler{d: d}
	eh.window(r)
	return eh.err
}

// writeRect writes pixel data to a byte aligned region of the display.
func (d *Dev) writeRect(r image.Rectangle, pixels displayi2c.DataFormat) error {
	if err := d.window(r); err != nil {
		return wrap(err)
	}
	return wrap(d.di.SendData(pixels))
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return gray4.Model
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Write writes raw pixel data to the display in gray4 layout.
// The data must be exactly d.Bounds().Dx() * d.Bounds().Dy() / 2 bytes.
func (d *Dev) Write(pixels []byte) (int, error) {
	if d.halted {
		return 0, errHalted
	}
	if len(pixels) != len(d.buffer.Pix) {
		return 0, errors.New("ssd1327: invalid buffer size")
	}
	if err := d.writeRect(d.rect, displayi2c.U8(pixels)); err != nil {
		return 0, err
	}
	copy(d.buffer.Pix, pixels)
	if d.next != nil {
		copy(d.next.Pix, pixels)
	}
	return len(pixels), nil
}

// Draw draws an image onto the display.
//
// Only the smallest rectangle containing changed pixels is sent. The
// changed bytes are streamed straight from the back buffer.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return errHalted
	}
	dst = dst.Intersect(d.rect)
	if dst.Empty() {
		return nil
	}
	d.backBuffer()

	if img, ok := src.(*gray4.Image); ok && dst == d.rect && sp == img.Rect.Min && img.Rect.Size() == d.rect.Size() {
		copy(d.next.Pix, img.Pix)
	} else {
		draw.Draw(d.next, dst, src, sp, draw.Src)
	}
	return d.flush()
}

// backBuffer allocates next from the displayed frame if needed.
func (d *Dev) backBuffer() {
	if d.next != nil {
		return
	}
	d.next = gray4.New(d.rect)
	copy(d.next.Pix, d.buffer.Pix)
}

// flush sends the difference between next and buffer to the display.
func (d *Dev) flush() error {
	r := gray4.Changed(d.buffer, d.next)
	if r.Empty() {
		return nil
	}
	if err := d.writeRect(r, displayi2c.U8Iter(d.next.Region(r))); err != nil {
		return err
	}
	copy(d.buffer.Pix, d.next.Pix)
	return nil
}

// Size implements drivers.Displayer.
func (d *Dev) Size() (x, y int16) {
	return int16(d.rect.Dx()), int16(d.rect.Dy())
}

// SetPixel implements drivers.Displayer. The pixel is shown on the next call
// to Display.
func (d *Dev) SetPixel(x, y int16, c color.RGBA) {
	d.backBuffer()
	d.next.Set(int(x), int(y), c)
}

// Display implements drivers.Displayer. It sends pixels changed by SetPixel
// since the last update.
func (d *Dev) Display() error {
	if d.halted {
		return errHalted
	}
	if d.next == nil {
		return nil
	}
	return d.flush()
}

// SetContrast sets the display contrast (0-255).
func (d *Dev) SetContrast(contrast byte) error {
	if d.halted {
		return errHalted
	}
	return d.command(0x81, contrast)
}

// Invert inverts the display colors (black becomes white and vice versa).
func (d *Dev) Invert(invert bool) error {
	if d.halted {
		return errHalted
	}
	mode := byte(0xA4) // Normal display
	if invert {
		mode = 0xA7 // Inverse display
	}
	return d.command(mode)
}

// Halt turns the display off.
// After calling Halt, the display will not respond to further commands
// until the device is re-initialized.
func (d *Dev) Halt() error {
	d.halted = true
	return d.command(0xAE) // Display OFF
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("ssd1327.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}

// ScrollSpeed defines the interval between horizontal scroll steps.
type ScrollSpeed byte

const (
	// Scroll step intervals (in display refresh cycles)
	Speed6Frames   ScrollSpeed = 0x00
	Speed10Frames  ScrollSpeed = 0x01
	Speed100Frames ScrollSpeed = 0x02
	Speed200Frames ScrollSpeed = 0x03
	Speed300Frames ScrollSpeed = 0x04
	Speed500Frames ScrollSpeed = 0x05
)

// ScrollHorizontal starts horizontal scrolling on the display.
// startRow and endRow specify the scroll region (must be < height).
// If right is true, scrolls right; otherwise scrolls left.
func (d *Dev) ScrollHorizontal(startRow, endRow byte, speed ScrollSpeed, right bool) error {
	if d.halted {
		return errHalted
	}
	if int(startRow) >= d.rect.Dy() || int(endRow) >= d.rect.Dy() || startRow > endRow {
		return errors.New("ssd1327: scroll row out of range")
	}

	scrollCmd := byte(0x27) // Left
	if right {
		scrollCmd = 0x26 // Right
	}
	colStart := byte(d.columnOffset / 2)
	colEnd := byte((d.columnOffset + d.rect.Dx() - 1) / 2)

	eh := errorHandler{d: d}
	eh.command(
		scrollCmd,
		0x00,        // Dummy byte
		startRow,    // Start row
		byte(speed), // Step interval
		endRow,      // End row
		colStart,    // Start column
		colEnd,      // End column
		0x00,        // Dummy byte
	)
	eh.command(0x2F) // Activate scroll
	return wrap(eh.err)
}

// StopScroll stops scrolling. The RAM content must be rewritten afterwards.
func (d *Dev) StopScroll() error {
	if d.halted {
		return errHalted
	}
	return d.command(0x2E) // Deactivate scroll
}

// command sends a command and its arguments.
func (d *Dev) command(c ...byte) error {
	eh := errorHandler{d: d}
	eh.command(c...)
	return wrap(eh.err)
}

var _ conn.Resource = &Dev{}
var _ display.Drawer = &Dev{}
var _ drivers.Displayer = &Dev{}
