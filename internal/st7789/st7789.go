// Package st7789 drives an SPI-attached ST7789 color LCD such as the
// Waveshare 1.3" 240x240 HAT.
//
// The protocol is open loop: there is no read-back from the panel, so the
// driver owns the only copy of the controller state and re-issues the full
// bring-up sequence on every init. Frames are pushed synchronously, the
// whole raster at once.
package st7789

import (
	"fmt"
	"image"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// ST7789 command opcodes.
const (
	cmdSLPIN  = 0x10 // sleep in
	cmdSLPOUT = 0x11 // sleep out
	cmdINVON  = 0x21 // display inversion on
	cmdDISPON = 0x29 // display on
	cmdCASET  = 0x2A // column address set
	cmdRASET  = 0x2B // row address set
	cmdRAMWR  = 0x2C // memory write
	cmdMADCTL = 0x36 // memory access control
	cmdCOLMOD = 0x3A // interface pixel format
)

const (
	// resetSettle is the pause after each reset line transition.
	resetSettle = 10 * time.Millisecond
	// wakeSettle is the datasheet-mandated pause after sleep out. Commands
	// issued before it elapses hit the controller while its oscillator is
	// still stabilizing and leave it in an undefined state.
	wakeSettle = 120 * time.Millisecond
)

// Opts is the configuration for the panel.
type Opts struct {
	// Display dimensions in pixels.
	W int
	H int

	// Rotation applied in software before encoding. 90 and 270 degree
	// rotations require a square panel.
	Rotation Rotation

	// Inverted enables display inversion during init. The Waveshare panels
	// ship with inverted polarity and need it to show correct colors.
	Inverted bool

	// Speed is the SPI clock rate. Defaults to 40MHz, the panel's rated
	// maximum.
	Speed physic.Frequency

	// RST is the hardware reset line. Required: with no status read-back, a
	// reset pulse is the only way to reach a known controller state.
	RST gpio.PinIO

	// BL is the backlight line (optional). It is driven high before the
	// reset pulse and is not touched again unless EnableBacklight is called.
	BL gpio.PinIO
}

// DefaultOpts matches the Waveshare 1.3" HAT.
var DefaultOpts = Opts{
	W:        240,
	H:        240,
	Rotation: Rotate90,
	Inverted: true,
	Speed:    40 * physic.MegaHertz,
}

// Dev is a handle to an initialized panel.
type Dev struct {
	w        *wire
	rst      gpio.PinIO
	bl       gpio.PinIO
	rect     image.Rectangle
	rotation Rotation
	inverted bool
	asleep   bool
}

// NewSPI connects to the panel, pulses the reset line and runs the bring-up
// sequence. The SPI port is configured for Mode0 at opts.Speed.
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		o := DefaultOpts
		opts = &o
	}
	if opts.W <= 0 || opts.H <= 0 {
		return nil, ConfigError("width and height must be positive")
	}
	if (opts.Rotation == Rotate90 || opts.Rotation == Rotate270) && opts.W != opts.H {
		return nil, ConfigError("quarter-turn rotation requires a square panel")
	}
	if opts.RST == nil {
		return nil, ConfigError("reset pin is required")
	}
	speed := opts.Speed
	if speed == 0 {
		speed = DefaultOpts.Speed
	}

	c, err := p.Connect(speed, spi.Mode0, 8)
	if err != nil {
		return nil, &TransportError{Op: "connect", Err: err}
	}

	d := &Dev{
		w:        &wire{c: c, dc: dc},
		rst:      opts.RST,
		bl:       opts.BL,
		rect:     image.Rect(0, 0, opts.W, opts.H),
		rotation: opts.Rotation,
		inverted: opts.Inverted,
	}

	if d.bl != nil {
		if err := d.bl.Out(gpio.High); err != nil {
			return nil, &TransportError{Op: "backlight on", Err: err}
		}
	}
	if err := d.hardReset(); err != nil {
		return nil, err
	}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

// hardReset pulses the reset line high, low, high with a settle delay after
// each transition.
func (d *Dev) hardReset() error {
	for _, level := range []gpio.Level{gpio.High, gpio.Low, gpio.High} {
		if err := d.rst.Out(level); err != nil {
			return &TransportError{Op: "reset", Err: err}
		}
		time.Sleep(resetSettle)
	}
	return nil
}

// init runs the bring-up command sequence. The order matters: sleep out
// first, then the settle delay before anything else reaches the controller.
func (d *Dev) init() error {
	if err := d.w.command(cmdSLPOUT); err != nil {
		return err
	}
	time.Sleep(wakeSettle)

	// MADCTL stays at the reset orientation, rotation happens in software.
	if err := d.w.command(cmdMADCTL); err != nil {
		return err
	}
	if err := d.w.data([]byte{0x00}); err != nil {
		return err
	}
	// 16 bits per pixel.
	if err := d.w.command(cmdCOLMOD); err != nil {
		return err
	}
	if err := d.w.data([]byte{0x05}); err != nil {
		return err
	}
	if d.inverted {
		if err := d.w.command(cmdINVON); err != nil {
			return err
		}
	}
	return d.w.command(cmdDISPON)
}

// SetAddressWindow declares the rectangle of panel memory that subsequent
// pixel data will fill, inclusive on both ends. Out-of-range coordinates are
// a caller bug: the controller would wrap its addressing silently, so the
// window is validated here and nothing is written on violation.
func (d *Dev) SetAddressWindow(x0, y0, x1, y1 int) error {
	if x0 < 0 || x0 > x1 || x1 >= d.rect.Dx() {
		return ConfigError("column window out of range")
	}
	if y0 < 0 || y0 > y1 || y1 >= d.rect.Dy() {
		return ConfigError("row window out of range")
	}
	if err := d.w.command(cmdCASET); err != nil {
		return err
	}
	if err := d.w.data(windowBytes(x0, x1)); err != nil {
		return err
	}
	if err := d.w.command(cmdRASET); err != nil {
		return err
	}
	return d.w.data(windowBytes(y0, y1))
}

// windowBytes encodes a start/end coordinate pair as two big-endian 16-bit
// values.
func windowBytes(start, end int) []byte {
	return []byte{byte(start >> 8), byte(start), byte(end >> 8), byte(end)}
}

// beginRAMWrite arms the controller to interpret following data bytes as
// consecutive pixels within the current address window.
func (d *Dev) beginRAMWrite() error {
	return d.w.command(cmdRAMWR)
}

// Flush streams a full frame to the panel: address window over the whole
// raster, memory write, then the encoded pixel data in one chunked data
// phase. It blocks until the last byte is on the wire. A transport failure
// aborts mid-frame and leaves the panel partially written until the next
// successful Flush.
func (d *Dev) Flush(img *image.RGBA) error {
	if img.Bounds().Dx() != d.rect.Dx() || img.Bounds().Dy() != d.rect.Dy() {
		return ConfigError("canvas size does not match panel")
	}
	if err := d.SetAddressWindow(0, 0, d.rect.Dx()-1, d.rect.Dy()-1); err != nil {
		return err
	}
	if err := d.beginRAMWrite(); err != nil {
		return err
	}
	return d.w.data(EncodeRGB565(img, d.rotation))
}

// EnableBacklight drives the backlight line, when one is wired.
func (d *Dev) EnableBacklight(enable bool) error {
	if d.bl == nil {
		return nil
	}
	if err := d.bl.Out(gpio.Level(enable)); err != nil {
		return &TransportError{Op: "backlight", Err: err}
	}
	return nil
}

// Sleep moves the panel in and out of its low-power state. Waking pays the
// same settle delay as init; panel memory is preserved across sleep.
func (d *Dev) Sleep(enable bool) error {
	if enable == d.asleep {
		return nil
	}
	if enable {
		if err := d.w.command(cmdSLPIN); err != nil {
			return err
		}
	} else {
		if err := d.w.command(cmdSLPOUT); err != nil {
			return err
		}
		time.Sleep(wakeSettle)
	}
	d.asleep = enable
	return nil
}

// Bounds returns the panel rectangle.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Halt turns the backlight off and puts the panel to sleep.
func (d *Dev) Halt() error {
	if err := d.EnableBacklight(false); err != nil {
		return err
	}
	return d.Sleep(true)
}

func (d *Dev) String() string {
	return fmt.Sprintf("st7789.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}
