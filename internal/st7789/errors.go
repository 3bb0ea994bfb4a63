package st7789

import "fmt"

// ConfigError reports a caller mistake: invalid geometry, an addressing
// window outside the panel, or options the controller cannot honor. The
// driver refuses to touch the bus when it returns one, since the controller
// would silently wrap its addressing instead of failing.
type ConfigError string

func (e ConfigError) Error() string {
	return "st7789: " + string(e)
}

// TransportError wraps an SPI or GPIO failure underneath a panel operation.
// The driver never retries: the panel has no feedback channel, so after a
// failed write its state is unknown until the next full frame.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("st7789: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
