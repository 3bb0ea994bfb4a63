package srv

import (
	"os"
	"os/exec"
	"time"

	"github.com/flysto/syncpanel/internal/srv/config"
	"github.com/flysto/syncpanel/internal/srv/device"
	"github.com/flysto/syncpanel/internal/srv/event"
	"github.com/flysto/syncpanel/internal/version"
	"github.com/sirupsen/logrus"
)

type ServerApp struct {
	*config.ServerConfig
	displayDevice *device.Display
	buttonsDevice *device.Buttons
	tickerDevice  *device.Ticker
	apiDevice     *device.Api

	currentMode Mode
	fonts       *screenFonts

	internalEventChannel chan event.InternalEvent

	eventLoopAskDone chan bool
	eventLoopDone    chan bool
}

type Mode int64

const (
	UNDEFINED_MODE Mode = iota
	STATUS_MODE
	END_MODE
)

func NewServerApp(configDir string, debugMode bool, simulationMode bool) *ServerApp {

	logrus.Debugf("Creation of syncpanel server %s ...", version.AppVersion.String())

	app := &ServerApp{
		currentMode:          UNDEFINED_MODE,
		internalEventChannel: make(chan event.InternalEvent),
		eventLoopAskDone:     make(chan bool),
		eventLoopDone:        make(chan bool),
		ServerConfig:         config.NewServerConfig(configDir, debugMode, simulationMode),
	}

	app.fonts = loadScreenFonts()

	app.displayDevice = device.NewDisplay(app.ServerConfig)
	app.buttonsDevice = device.NewButtons(app.ServerConfig)
	app.tickerDevice = device.NewTicker()
	app.apiDevice = device.NewApi(app.ServerConfig)

	logrus.Debugln("Server created")

	return app
}

func (s *ServerApp) Start() {
	logrus.Printf("Starting syncpanel server ...")

	logrus.Printf("Starting devices ...")

	// Start display device
	s.displayDevice.Start()

	// Display startup screen
	s.refreshDisplay()
	time.Sleep(2 * time.Second)

	// Start event loop
	go s.eventLoop()

	// Start ticker device
	s.tickerDevice.Start()

	// Start buttons device
	s.buttonsDevice.Start()

	// Start api device
	s.apiDevice.Start()

	// Restore persisted display power state
	if !s.DisplayOn() {
		s.displayDevice.SetOff()
	}

	// Set status mode. The event loop owns the canvas from here on, so the
	// first status frame goes through it like any other redraw.
	s.currentMode = STATUS_MODE
	s.internalEventChannel <- event.InternalEvent{Data: event.InternalEventRedrawData{}}
}

func (s *ServerApp) Stop(halt bool) {
	logrus.Printf("Stopping syncpanel server ...")

	// Stop api
	s.apiDevice.StopSendingEvent()

	// Stop buttons device
	s.buttonsDevice.StopSendingEvent()

	// Stop ticker device
	s.tickerDevice.StopSendingEvent()

	// Stop event loop
	logrus.Infof("Stop event loop")
	s.eventLoopAskDone <- true
	<-s.eventLoopDone

	// Display end mode image
	s.currentMode = END_MODE
	s.refreshDisplay()

	// Stop display device
	s.displayDevice.Stop()

	// Flush config backup
	s.ServerConfig.ServerState.FlushSave()

	logrus.Printf("Server stopped")

	if halt {
		logrus.Printf("System halt")
		haltCmd := exec.Command("sudo", "halt")
		err := haltCmd.Run()
		if err != nil {
			logrus.Panicf("Unable to halt the system: %v", err)
		}
	}
	os.Exit(0)
}
