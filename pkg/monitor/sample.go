// Package monitor contains the undervoltage protection logic: load
// correction, debouncing, reporting, and the sampling control loop.
package monitor

import "time"

// Sample is one cycle's worth of readings. Immutable after creation.
type Sample struct {
	Timestamp        time.Time `json:"timestamp"`
	RawVoltage       float64   `json:"rawVoltage"`
	CPUPercent       float64   `json:"cpuPercent"`
	GPUPercent       float64   `json:"gpuPercent"`
	CorrectedVoltage float64   `json:"correctedVoltage"`
}

// Status is a snapshot of the loop state, served by the daemon API.
type Status struct {
	Sample    Sample  `json:"sample"`
	Count     int     `json:"count"`
	Limit     int     `json:"limit"`
	Threshold float64 `json:"threshold"`
	Tripped   bool    `json:"tripped"`
}
