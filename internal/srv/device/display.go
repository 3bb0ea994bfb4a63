package device

import (
	"image"
	"image/color"
	"image/draw"
	"log"

	"github.com/flysto/syncpanel/internal/srv/config"
	"github.com/flysto/syncpanel/internal/st7789"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Panel dimensions of the Waveshare 1.3" HAT.
const (
	PanelWidth  = 240
	PanelHeight = 240
)

func NewDisplay(serverConfig *config.ServerConfig) *Display {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	device := Display{
		serverConfig: serverConfig,
		canvas:       image.NewRGBA(image.Rect(0, 0, PanelWidth, PanelHeight)),
	}

	return &device
}

func (d *Display) Start() {
	logrus.Infof("Start display device")

	d.on = true

	if d.serverConfig.SimulationMode {
		d.startSimulation()
	} else {
		d.openPanel()
	}
}

func (d *Display) openPanel() {
	param := d.serverConfig.ServerParam.DisplayParam

	var err error
	d.port, err = spireg.Open(param.SpiPort)
	if err != nil {
		logrus.Fatalf("Unable to open spi port %s: %v\n", param.SpiPort, err)
	}

	dcPin := gpioreg.ByName(param.DcPin)
	if dcPin == nil {
		logrus.Fatalf("Failed to find dc pin %s", param.DcPin)
	}
	rstPin := gpioreg.ByName(param.ResetPin)
	if rstPin == nil {
		logrus.Fatalf("Failed to find reset pin %s", param.ResetPin)
	}
	blPin := gpioreg.ByName(param.BacklightPin)
	if blPin == nil {
		logrus.Fatalf("Failed to find backlight pin %s", param.BacklightPin)
	}

	opts := st7789.Opts{
		W:        PanelWidth,
		H:        PanelHeight,
		Rotation: rotationFromDegrees(param.Rotation),
		Inverted: param.Inverted,
		Speed:    physic.Frequency(param.SpeedHz) * physic.Hertz,
		RST:      rstPin,
		BL:       blPin,
	}
	d.panel, err = st7789.NewSPI(d.port, dcPin, &opts)
	if err != nil {
		logrus.Fatalf("Unable to initialize lcd panel: %v\n", err)
	}
}

func rotationFromDegrees(degrees int) st7789.Rotation {
	switch degrees {
	case 90:
		return st7789.Rotate90
	case 180:
		return st7789.Rotate180
	case 270:
		return st7789.Rotate270
	case 0:
		return st7789.NoRotation
	default:
		logrus.Warnf("Unknown rotation %d, panel stays unrotated", degrees)
		return st7789.NoRotation
	}
}

func (d *Display) Stop() {
	logrus.Infof("Stop display device")

	if d.serverConfig.SimulationMode {
		d.closeSimulationWindow()
	} else {
		d.lock.Lock()
		defer d.lock.Unlock()
		if err := d.panel.Halt(); err != nil {
			logrus.Warnf("Unable to halt lcd panel: %v", err)
		}
		d.port.Close()
	}
}

// Canvas exposes the raster the application draws into. Nothing reaches the
// panel until Present. Draw calls and Present must come from the same
// goroutine, the event loop owns both.
func (d *Display) Canvas() *image.RGBA {
	return d.canvas
}

// Clear fills the canvas with a single color. The panel keeps showing the
// previous frame until the next Present.
func (d *Display) Clear(c color.RGBA) {
	draw.Draw(d.canvas, d.canvas.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
}

// Present pushes the whole canvas to the panel and blocks until the last
// byte is on the wire.
func (d *Display) Present() error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.serverConfig.SimulationMode {
		d.lastImg = image.NewRGBA(d.canvas.Bounds())
		copy(d.lastImg.Pix, d.canvas.Pix)
		d.invalidateSimulationWindow()
		return nil
	}
	return d.panel.Flush(d.canvas)
}

func (d *Display) SetOff() {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.setOff()
}

func (d *Display) setOff() {
	d.on = false
	if !d.serverConfig.SimulationMode {
		if err := d.panel.EnableBacklight(false); err != nil {
			logrus.Warnf("Unable to switch backlight off: %v", err)
		}
		if err := d.panel.Sleep(true); err != nil {
			logrus.Warnf("Unable to put panel to sleep: %v", err)
		}
	}
}

func (d *Display) SetOn() {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.setOn()
}

func (d *Display) setOn() {
	d.on = true
	if d.serverConfig.SimulationMode {
		d.invalidateSimulationWindow()
	} else {
		if err := d.panel.Sleep(false); err != nil {
			logrus.Warnf("Unable to wake panel: %v", err)
		}
		if err := d.panel.EnableBacklight(true); err != nil {
			logrus.Warnf("Unable to switch backlight on: %v", err)
		}
	}
}

func (d *Display) Switch() bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.on {
		d.setOff()
	} else {
		d.setOn()
	}

	return d.on
}

func (d *Display) IsOn() bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.on
}
