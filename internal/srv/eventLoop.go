package srv

import (
	"syscall"

	"github.com/flysto/syncpanel/internal/srv/event"
	"github.com/sirupsen/logrus"
)

func (s *ServerApp) eventLoop() {
	for loop := true; loop; {
		select {
		case ev := <-s.internalEventChannel:
			switch ev.Data.(type) {
			case event.InternalEventRedrawData:
				s.refreshDisplay()
			}
		case ev := <-s.tickerDevice.EventChannel():
			switch ev.Data.(type) {
			case event.TickerEventTickData:
				logrus.Debugf("Receive Ticker tick event")
				if s.currentMode == STATUS_MODE && s.displayDevice.IsOn() {
					s.refreshDisplay()
				}
			}
		case ev := <-s.apiDevice.EventChannel():
			switch data := ev.Data.(type) {
			case event.ApiEventStatusUpdateData:
				logrus.Infof("Receive status update: %s", data.Status.Title)
				status := data.Status
				s.SetLastStatus(&status)
				ev.Result <- nil
				s.refreshDisplay()
			case event.ApiEventStatusClearData:
				logrus.Infof("Receive status clear")
				s.SetLastStatus(nil)
				ev.Result <- nil
				s.refreshDisplay()
			}
		case ev := <-s.buttonsDevice.EventChannel():
			logrus.Debugf("Receive button event: %d", ev.ButtonId)
			switch ev.ButtonId {
			case event.KEY1_BUTTON:
				logrus.Debugf("Switch display on/off")
				on := s.displayDevice.Switch()
				s.SetDisplayOn(on)
				if on {
					s.refreshDisplay()
				}
			case event.KEY2_BUTTON:
				logrus.Debugf("Clear current status")
				s.SetLastStatus(nil)
				s.refreshDisplay()
			case event.KEY3_BUTTON:
				logrus.Debugf("Poweroff requested")
				syscall.Kill(syscall.Getpid(), syscall.SIGUSR1)
			case event.JOYSTICK_BUTTON:
				logrus.Debugf("Force redraw")
				s.refreshDisplay()
			}
		case <-s.eventLoopAskDone:
			loop = false
		}
	}
	s.eventLoopDone <- true
}
