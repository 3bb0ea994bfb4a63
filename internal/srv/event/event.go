package event

import "github.com/flysto/syncpanel/apimodel"

// Internal
type InternalEvent struct {
	Data interface{}
}

type InternalEventRedrawData struct{}

// Ticker
type TickerEvent struct {
	Data interface{}
}

type TickerEventTickData struct{}

// Buttons
type ButtonId int

const (
	KEY1_BUTTON ButtonId = iota
	KEY2_BUTTON
	KEY3_BUTTON
	JOYSTICK_BUTTON
)

type ButtonEvent struct {
	ButtonId ButtonId
}

// Api
type ApiEvent struct {
	Result chan error
	Data   interface{}
}

type ApiEventStatusUpdateData struct {
	Status apimodel.JobStatus
}

type ApiEventStatusClearData struct{}
