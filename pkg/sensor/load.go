package sensor

import (
	"sync"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/sirupsen/logrus"
)

// LoadSource reports processor and graphics utilization percentages. It
// never fails: whichever metric cannot be obtained degrades to 0.
type LoadSource interface {
	ReadLoads() (cpuPercent, gpuPercent float64)
}

var _ LoadSource = &SystemLoadSource{}

// SystemLoadSource measures CPU utilization since the previous call and
// tries an ordered chain of GPU probes, taking the first one that answers.
type SystemLoadSource struct {
	gpuProbes []GPUProbe

	// cpuPercent is swappable in tests.
	cpuPercent func() ([]float64, error)

	mu           sync.Mutex
	lastGPUProbe string
}

// NewSystemLoadSource builds a load source with the default probe chain.
func NewSystemLoadSource() *SystemLoadSource {
	return &SystemLoadSource{
		gpuProbes: defaultGPUProbes(),
		cpuPercent: func() ([]float64, error) {
			// Utilization since the last call. The first call has no
			// baseline and reports 0.
			return cpu.Percent(0, false)
		},
	}
}

// NewSystemLoadSourceWithProbes builds a load source with an explicit GPU
// probe chain. Probes are tried in order; the first hit wins.
func NewSystemLoadSourceWithProbes(probes []GPUProbe) *SystemLoadSource {
	s := NewSystemLoadSource()
	s.gpuProbes = probes
	return s
}

// ReadLoads returns (cpu%, gpu%), each in 0..100. Failures are logged at
// debug level only and degrade to 0.
func (s *SystemLoadSource) ReadLoads() (float64, float64) {
	return s.readCPU(), s.readGPU()
}

// LastGPUProbe reports the name of the probe that served the most recent
// GPU reading, or "" when every probe came up empty. Diagnostic only.
func (s *SystemLoadSource) LastGPUProbe() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastGPUProbe
}

func (s *SystemLoadSource) readCPU() float64 {
	percents, err := s.cpuPercent()
	if err != nil || len(percents) == 0 {
		logrus.Debugf("cpu utilization unavailable: %v", err)
		return 0
	}
	return clampPercent(percents[0])
}

func (s *SystemLoadSource) readGPU() float64 {
	for _, probe := range s.gpuProbes {
		util, ok := probe.Utilization()
		if !ok {
			continue
		}
		s.setLastGPUProbe(probe.Name())
		return clampPercent(util)
	}

	logrus.Debug("gpu utilization unavailable from all probes, assuming 0%")
	s.setLastGPUProbe("")
	return 0
}

func (s *SystemLoadSource) setLastGPUProbe(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastGPUProbe = name
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
