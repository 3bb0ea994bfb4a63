package device

import (
	"log"
	"sync"
	"time"

	"github.com/flysto/syncpanel/internal/srv/config"
	"github.com/flysto/syncpanel/internal/srv/event"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Buttons watches the HAT keys and the joystick center on falling edges and
// turns presses into events. Button failures are best effort: a key that
// cannot register edge detection is logged and skipped, the display keeps
// working without it.
type Buttons struct {
	lock         sync.Mutex
	eventChannel chan event.ButtonEvent
	serverConfig *config.ServerConfig

	debounce time.Duration
	bindings map[event.ButtonId]*edgeBinding
}

func NewButtons(serverConfig *config.ServerConfig) *Buttons {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	device := Buttons{
		eventChannel: make(chan event.ButtonEvent),
		serverConfig: serverConfig,
		bindings:     map[event.ButtonId]*edgeBinding{},
	}

	return &device
}

func (d *Buttons) Start() {
	logrus.Infof("Start buttons device")

	param := d.serverConfig.ServerParam.ButtonsParam

	d.lock.Lock()
	d.debounce = time.Duration(param.DebounceMs) * time.Millisecond
	d.lock.Unlock()

	if d.serverConfig.SimulationMode {
		return
	}

	// The keys are wired active-low with pull-ups, the joystick center is
	// active-high with a pull-down.
	layout := []struct {
		buttonId event.ButtonId
		name     string
		pull     gpio.Pull
	}{
		{event.KEY1_BUTTON, param.Key1Pin, gpio.PullUp},
		{event.KEY2_BUTTON, param.Key2Pin, gpio.PullUp},
		{event.KEY3_BUTTON, param.Key3Pin, gpio.PullUp},
		{event.JOYSTICK_BUTTON, param.JoystickPin, gpio.PullDown},
	}
	for _, b := range layout {
		pin := gpioreg.ByName(b.name)
		if pin == nil {
			logrus.Fatalf("Failed to find %s button", b.name)
		}
		buttonId := b.buttonId
		err := d.Rebind(buttonId, pin, b.pull, func() {
			d.eventChannel <- event.ButtonEvent{ButtonId: buttonId}
		})
		if err != nil {
			logrus.Warnf("Button %s disabled: %v", b.name, err)
		}
	}
}

// Rebind attaches callback to the falling edge of pin, replacing whatever
// binding the button had before. The previous watcher is fully stopped and
// its edge detection cleared before the new one registers, so rebinding the
// same pin twice never fails with a conflicting registration.
func (d *Buttons) Rebind(buttonId event.ButtonId, pin gpio.PinIO, pull gpio.Pull, callback func()) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if prev, ok := d.bindings[buttonId]; ok {
		prev.halt()
		delete(d.bindings, buttonId)
	}

	binding, err := newEdgeBinding(pin, pull, d.debounce, callback)
	if err != nil {
		return err
	}
	d.bindings[buttonId] = binding
	return nil
}

func (d *Buttons) StopSendingEvent() {
	logrus.Infof("Stop buttons device")

	d.lock.Lock()
	defer d.lock.Unlock()

	for buttonId, binding := range d.bindings {
		binding.halt()
		delete(d.bindings, buttonId)
	}
}

func (d *Buttons) EventChannel() chan event.ButtonEvent {
	return d.eventChannel
}
