package monitor

import (
	"math"
	"testing"
)

func TestCorrect(t *testing.T) {
	tests := []struct {
		name       string
		rawVoltage float64
		cpuPercent float64
		gpuPercent float64
		want       float64
	}{
		{
			name:       "idle system only gets the base offset",
			rawVoltage: 14.0,
			cpuPercent: 0,
			gpuPercent: 0,
			want:       14.560,
		},
		{
			name:       "half cpu load",
			rawVoltage: 15.264,
			cpuPercent: 50,
			gpuPercent: 0,
			want:       16.0215,
		},
		{
			name:       "full cpu and gpu load",
			rawVoltage: 14.0,
			cpuPercent: 100,
			gpuPercent: 100,
			want:       14.0 + 0.395 + 1.478 + 0.560,
		},
		{
			name:       "gpu load only",
			rawVoltage: 13.5,
			cpuPercent: 0,
			gpuPercent: 25,
			want:       13.5 + 0.01478*25 + 0.560,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Correct(tt.rawVoltage, tt.cpuPercent, tt.gpuPercent)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Correct() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCorrectIsPure(t *testing.T) {
	first := Correct(14.2, 33.3, 66.6)
	for i := 0; i < 10; i++ {
		if got := Correct(14.2, 33.3, 66.6); got != first {
			t.Fatalf("Correct() not deterministic: %v != %v", got, first)
		}
	}
}
