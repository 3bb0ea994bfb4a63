package device

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
)

// ErrEdgeRegistration is returned when a pin refuses edge detection even
// after its previous registration was cleared.
var ErrEdgeRegistration = errors.New("edge detection registration failed")

// edgeWaitSlice bounds a single WaitForEdge call so the watcher notices a
// halt request without an edge arriving.
const edgeWaitSlice = 200 * time.Millisecond

// edgeBinding couples one pin to one callback. At most one binding may watch
// a physical pin at a time.
type edgeBinding struct {
	pin      gpio.PinIO
	pull     gpio.Pull
	callback func()
	debounce time.Duration

	stop chan struct{}
	done chan struct{}
}

func newEdgeBinding(pin gpio.PinIO, pull gpio.Pull, debounce time.Duration, callback func()) (*edgeBinding, error) {
	binding := &edgeBinding{
		pin:      pin,
		pull:     pull,
		callback: callback,
		debounce: debounce,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	if err := pin.In(pull, gpio.FallingEdge); err != nil {
		// A stale registration from a previous run can linger. Clear it and
		// try once more before giving up.
		if clearErr := pin.In(pull, gpio.NoEdge); clearErr != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrEdgeRegistration, pin.Name(), clearErr)
		}
		if err = pin.In(pull, gpio.FallingEdge); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrEdgeRegistration, pin.Name(), err)
		}
	}

	go binding.watch()
	return binding, nil
}

func (b *edgeBinding) watch() {
	defer close(b.done)

	var lastEdge time.Time
	for {
		select {
		case <-b.stop:
			return
		default:
		}
		if !b.pin.WaitForEdge(edgeWaitSlice) {
			continue
		}
		now := time.Now()
		if !lastEdge.IsZero() && now.Sub(lastEdge) < b.debounce {
			// Contact bounce retriggers within the debounce window.
			continue
		}
		lastEdge = now
		b.callback()
	}
}

// halt stops the watcher and clears the pin's edge detection. It returns
// only once the watcher goroutine has exited, so the pin is free for a new
// binding.
func (b *edgeBinding) halt() {
	close(b.stop)
	<-b.done
	if err := b.pin.In(b.pull, gpio.NoEdge); err != nil {
		logrus.Debugf("Unable to clear edge detection on %s: %v", b.pin.Name(), err)
	}
}
