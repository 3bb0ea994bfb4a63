package srv

import (
	"image"
	"image/color"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	blackColor  = color.RGBA{0, 0, 0, 255}
	whiteColor  = color.RGBA{255, 255, 255, 255}
	cyanColor   = color.RGBA{0, 255, 255, 255}
	yellowColor = color.RGBA{255, 255, 0, 255}
	grayColor   = color.RGBA{128, 128, 128, 255}
)

func (s *ServerApp) refreshDisplay() {
	canvas := s.displayDevice.Canvas()

	switch s.currentMode {
	case UNDEFINED_MODE:
		s.drawIntroScreen(canvas)
	case STATUS_MODE:
		s.drawStatusScreen(canvas)
	case END_MODE:
		s.drawEndScreen(canvas)
	}

	if err := s.displayDevice.Present(); err != nil {
		logrus.Errorf("Unable to push frame to panel: %v", err)
	}
}

func (s *ServerApp) drawIntroScreen(canvas *image.RGBA) {
	s.displayDevice.Clear(blackColor)
	AddLabel(canvas, 10, 42, s.Header, s.fonts.header, cyanColor)
	AddLabel(canvas, 10, 130, "starting...", s.fonts.status, whiteColor)
}

func (s *ServerApp) drawStatusScreen(canvas *image.RGBA) {
	logrus.Debugf("Display status")

	s.displayDevice.Clear(blackColor)

	AddLabel(canvas, 10, 42, s.Header, s.fonts.header, cyanColor)
	AddLabel(canvas, 160, 20, time.Now().Format("15:04"), s.fonts.status, grayColor)

	status := s.LastStatus()
	if status == nil {
		AddLabel(canvas, 10, 130, "waiting for sync", s.fonts.status, grayColor)
		return
	}

	AddLabel(canvas, 10, 88, status.Title, s.fonts.title, yellowColor)
	AddLabel(canvas, 10, 132, TruncateLabel(status.Message, 15), s.fonts.status, whiteColor)

	if status.Progress != nil {
		DrawProgressBar(canvas, *status.Progress)
	}
}

func (s *ServerApp) drawEndScreen(canvas *image.RGBA) {
	s.displayDevice.Clear(blackColor)
	AddLabel(canvas, 10, 130, "See you!", s.fonts.title, whiteColor)
}
