package device

import (
	"image"
	"sync"

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
}

func (d *Display) startSimulation() {
}

func (d *Display) invalidateSimulationWindow() {
}

func (d *Display) closeSimulationWindow() {
}
