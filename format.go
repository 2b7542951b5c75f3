package displayi2c

import "iter"

// DataFormat describes how a payload handed to SendCommands or SendData is
// laid out.
//
// Only U8 and U8Iter are transmitted by Interface. The 16-bit variants exist
// so that drivers written against WriteOnlyDataCommand can describe wide
// pixel data; Interface rejects them with ErrDataFormatNotImplemented.
type DataFormat interface {
	dataFormat()
}

// U8 is a contiguous buffer of bytes.
type U8 []byte

// U8Iter is a lazily produced sequence of bytes of unknown length.
type U8Iter iter.Seq[byte]

// U16 is a buffer of 16-bit words in native order.
type U16 []uint16

// U16BE is a buffer of 16-bit words to be sent big-endian.
type U16BE []uint16

// U16LE is a buffer of 16-bit words to be sent little-endian.
type U16LE []uint16

// U16BEIter is a lazy sequence of 16-bit words to be sent big-endian.
type U16BEIter iter.Seq[uint16]

// U16LEIter is a lazy sequence of 16-bit words to be sent little-endian.
type U16LEIter iter.Seq[uint16]

func (U8) dataFormat()        {}
func (U8Iter) dataFormat()    {}
func (U16) dataFormat()       {}
func (U16BE) dataFormat()     {}
func (U16LE) dataFormat()     {}
func (U16BEIter) dataFormat() {}
func (U16LEIter) dataFormat() {}

// WriteOnlyDataCommand is implemented by display interfaces that can send
// command and data bytes to a controller but never read back.
type WriteOnlyDataCommand interface {
	// SendCommands sends a short sequence of command bytes.
	SendCommands(cmds DataFormat) error
	// SendData sends display data such as pixels.
	SendData(buf DataFormat) error
}
