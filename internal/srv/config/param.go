package config

import (
	_ "embed"
)

//go:embed param_default.yaml
var ParamDefaultFile []byte

type ServerParam struct {
	Header       string       `yaml:"header"`
	DisplayParam DisplayParam `yaml:"display"`
	ButtonsParam ButtonsParam `yaml:"buttons"`
	ApiParam     ApiParam     `yaml:"api"`
}

// DisplayParam describes the panel wiring of the Waveshare 1.3" HAT.
type DisplayParam struct {
	SpiPort      string `yaml:"spi_port"`
	SpeedHz      int64  `yaml:"speed_hz"`
	Rotation     int    `yaml:"rotation"` // degrees clockwise: 0, 90, 180 or 270
	Inverted     bool   `yaml:"inverted"`
	ResetPin     string `yaml:"reset_pin"`
	DcPin        string `yaml:"dc_pin"`
	BacklightPin string `yaml:"backlight_pin"`
}

type ButtonsParam struct {
	DebounceMs  int64  `yaml:"debounce_ms"`
	Key1Pin     string `yaml:"key1_pin"`
	Key2Pin     string `yaml:"key2_pin"`
	Key3Pin     string `yaml:"key3_pin"`
	JoystickPin string `yaml:"joystick_pin"`
}

type ApiParam struct {
	Enabled bool   `yaml:"enabled"`
	SslPort int64  `yaml:"ssl_port"`
	ApiKey  string `yaml:"api_key"`
}
