package ssd1327

import (
	"image"

	"github.com/flavioheleno/displayi2c"
	"periph.io/x/conn/v3/gpio"
)

// errorHandler is a wrapper for error management.
type errorHandler struct {
	d   *Dev
	err error
}

func (eh *errorHandler) rstOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.rst.Out(l)
}

// command sends a command and its arguments, split into as many
// transactions as the display interface requires.
func (eh *errorHandler) command(c ...byte) {
	for len(c) != 0 && eh.err == nil {
		n := min(len(c), displayi2c.MaxCommandChunk)
		eh.err = eh.d.di.SendCommands(displayi2c.U8(c[:n]))
		c = c[n:]
	}
}

func (eh *errorHandler) commands(cmds ...[]byte) {
	for _, c := range cmds {
		eh.command(c...)
	}
}

// window sets the column and row address window to r. Columns are
// addressed in pairs of pixels.
func (eh *errorHandler) window(r image.Rectangle) {
	off := eh.d.columnOffset
	eh.command(0x15, byte((r.Min.X+off)/2), byte((r.Max.X-1+off)/2)) // Column address
	eh.command(0x75, byte(r.Min.Y), byte(r.Max.Y-1))                // Row address
}

func (eh *errorHandler) data(f displayi2c.DataFormat) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.di.SendData(f)
}
