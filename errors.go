package displayi2c

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/display"
)

const packageName = "displayi2c"

var (
	// ErrBusWrite is returned when the bus reports a failure on any
	// transaction. The underlying bus error is wrapped alongside it.
	ErrBusWrite = errors.New("displayi2c: bus write error")

	// ErrDataFormatNotImplemented is returned when the payload representation
	// is not supported by the operation. No I/O is performed in that case.
	ErrDataFormatNotImplemented = fmt.Errorf("%s: data format %w", packageName, display.ErrNotImplemented)
)

// busWriteError maps any transport failure to ErrBusWrite.
func busWriteError(err error) error {
	return fmt.Errorf("%w: %w", ErrBusWrite, err)
}
