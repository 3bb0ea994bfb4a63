package st7789

import (
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

// maxChunk bounds a single SPI transfer. The Linux spidev default buffer is
// 4096 bytes; a full 240x240 frame is streamed as several transfers with the
// DC line held high, which the controller sees as one data phase.
const maxChunk = 4096

// wire multiplexes command and data bytes over a shared SPI connection using
// the DC line: low for a command byte, high for its data phase.
type wire struct {
	c  spi.Conn
	dc gpio.PinOut
}

// command sends a single command byte with DC low.
func (w *wire) command(cmd byte) error {
	if err := w.dc.Out(gpio.Low); err != nil {
		return &TransportError{Op: "set dc low", Err: err}
	}
	if err := w.c.Tx([]byte{cmd}, nil); err != nil {
		return &TransportError{Op: "write command", Err: err}
	}
	return nil
}

// data sends a data phase with DC high, split into transfers of at most
// maxChunk bytes. No command byte is issued between chunks.
func (w *wire) data(p []byte) error {
	if err := w.dc.Out(gpio.High); err != nil {
		return &TransportError{Op: "set dc high", Err: err}
	}
	for len(p) > 0 {
		n := len(p)
		if n > maxChunk {
			n = maxChunk
		}
		if err := w.c.Tx(p[:n], nil); err != nil {
			return &TransportError{Op: "write data", Err: err}
		}
		p = p[n:]
	}
	return nil
}
