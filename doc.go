// Package displayi2c sends display controller commands and data over I²C.
//
// Small OLED and LCD controllers connected over I²C do not have a D/C pin.
// Instead, every I²C transaction starts with a control byte: 0x00 means the
// rest of the transaction is commands, and a controller specific value
// (usually 0x40) means it is display RAM data. This package implements that
// framing so display drivers only deal with commands and pixels.
//
// # Transactions
//
// SendCommands sends up to 7 command bytes in one transaction:
//
//	[0x00 c0 c1 ... c6]
//
// SendData splits data into transactions of at most 16 bytes:
//
//	[0x40 d0 ... d15] [0x40 d16 ... d31] [0x40 d32 ...]
//
// The 16 byte ceiling fits the smallest buffers found in common I²C host
// controllers and TinyGo targets.
//
// # Payload formats
//
// Payloads are passed as a DataFormat. U8 is a plain byte slice. U8Iter is an
// iter.Seq[byte] which is consumed lazily; this lets a driver stream a
// region of its frame buffer without first copying it:
//
//	di.SendData(displayi2c.U8Iter(img.Region(r)))
//
// The 16-bit formats are rejected with ErrDataFormatNotImplemented.
//
// # Buses
//
// Interface accepts any drivers.I2C from tinygo.org/x/drivers. On a Linux
// host, a periph.io i2c.Bus satisfies it:
//
//	package main
//
//	import (
//		"github.com/flavioheleno/displayi2c"
//		"periph.io/x/conn/v3/i2c/i2creg"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		host.Init()
//		b, _ := i2creg.Open("")
//		defer b.Close()
//
//		di := displayi2c.New(b, displayi2c.DefaultAddr, displayi2c.DataByte)
//		di.SendCommands(displayi2c.U8{0xAF}) // display on
//	}
//
// Under TinyGo, machine.I2C0 can be passed directly.
//
// # Errors
//
// A failed transaction is reported as ErrBusWrite, wrapping the bus error,
// and is not retried. Transactions sent before the failure are not undone,
// so the display may be left partially updated.
package displayi2c
