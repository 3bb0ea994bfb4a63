package device

import (
	"image"
	"log"
	"sync"

	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"github.com/flysto/syncpanel/internal/srv/config"
	"github.com/flysto/syncpanel/internal/st7789"
	"periph.io/x/conn/v3/spi"
)

type Display struct {
	lock         sync.Mutex
	serverConfig *config.ServerConfig

	canvas  *image.RGBA
	lastImg *image.RGBA

	panel *st7789.Dev
	port  spi.PortCloser

	on bool

	simulationWindow *app.Window
}

func (d *Display) startSimulation() {
	d.simulationWindow = app.NewWindow(app.Size(unit.Px(PanelWidth), unit.Px(PanelHeight)), app.MinSize(unit.Px(PanelWidth/2), unit.Px(PanelHeight/2)))
	go func() {
		if err := d.gioloop(); err != nil {
			log.Fatal(err)
		}
	}()
	go app.Main()
}

func (d *Display) invalidateSimulationWindow() {
	if d.simulationWindow != nil {
		d.simulationWindow.Invalidate()
	}
}

func (d *Display) closeSimulationWindow() {
	if d.simulationWindow != nil {
		d.simulationWindow.Close()
	}
}

func (d *Display) gioloop() error {
	var ops op.Ops
	for {
		e := <-d.simulationWindow.Events()
		switch e := e.(type) {
		case system.DestroyEvent:
			return e.Err
		case system.FrameEvent:
			gtx := layout.NewContext(&ops, e)

			d.lock.Lock()
			lastImg := d.lastImg
			d.lock.Unlock()

			if lastImg != nil {
				img := widget.Image{Src: paint.NewImageOp(lastImg), Fit: widget.Contain}
				img.Layout(gtx)
			}
			e.Frame(gtx.Ops)
		}
	}
}
