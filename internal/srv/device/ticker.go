package device

import (
	"sync"
	"time"

	"github.com/flysto/syncpanel/internal/srv/event"
	"github.com/sirupsen/logrus"
)

// Ticker emits an event whenever the wall-clock minute changes, so the
// header clock on the status screen stays current without redrawing every
// second.
type Ticker struct {
	lock         sync.Mutex
	eventChannel chan event.TickerEvent

	checkTicker *time.Ticker
	now         func() time.Time

	askDone chan bool
	done    chan bool
}

func NewTicker() *Ticker {
	ticker := Ticker{
		eventChannel: make(chan event.TickerEvent),
		now:          time.Now,
		askDone:      make(chan bool),
		done:         make(chan bool),
	}
	return &ticker
}

func (d *Ticker) Start() {
	logrus.Infof("Start ticker device")

	d.lock.Lock()
	defer d.lock.Unlock()

	d.checkTicker = time.NewTicker(time.Second)

	go func() {
		oldDisplayedTime := d.now().Format("15:04")

		for loop := true; loop; {
			select {
			case <-d.checkTicker.C:
				displayedTime := d.now().Format("15:04")
				if displayedTime != oldDisplayedTime {
					oldDisplayedTime = displayedTime
					d.eventChannel <- event.TickerEvent{Data: event.TickerEventTickData{}}
				}
			case <-d.askDone:
				loop = false
			}
		}
		d.done <- true
	}()
}

func (d *Ticker) StopSendingEvent() {
	logrus.Infof("Stop ticker device")

	d.lock.Lock()
	defer d.lock.Unlock()

	d.checkTicker.Stop()
	d.askDone <- true
	<-d.done
}

func (d *Ticker) EventChannel() chan event.TickerEvent {
	return d.eventChannel
}
