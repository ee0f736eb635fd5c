package config

import "time"

type Config interface {
	Threshold() float64
	Interval() time.Duration
	LogPath() string
	UndervoltageLimit() int
	Debug() bool
	DriverBus() string
	I2CAddr() string

	SetThreshold(float64)
	SetInterval(time.Duration)
	SetLogPath(string)
	SetUndervoltageLimit(int)
	SetDebug(bool)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}
