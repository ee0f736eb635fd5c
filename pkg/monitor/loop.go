package monitor

import (
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/psdlabs/voltguard/pkg/sensor"
)

// LoopOptions are the protection parameters. Fixed for the lifetime of
// the loop.
type LoopOptions struct {
	Threshold         float64
	Interval          time.Duration
	UndervoltageLimit int
	Debug             bool
}

// ControlLoop runs the sampling cycle: read voltage and load, correct,
// debounce, report, and shut the system down when the undervoltage
// condition persists. Single-threaded; only the Status snapshot is shared
// with other goroutines.
type ControlLoop struct {
	voltage   sensor.VoltageSource
	loads     sensor.LoadSource
	reporter  Reporter
	actuator  ShutdownActuator
	debouncer *Debouncer
	opts      LoopOptions

	// now and after are swappable in tests.
	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu     sync.RWMutex
	status Status
}

func NewControlLoop(
	opts LoopOptions,
	voltage sensor.VoltageSource,
	loads sensor.LoadSource,
	reporter Reporter,
	actuator ShutdownActuator,
) *ControlLoop {
	return &ControlLoop{
		voltage:   voltage,
		loads:     loads,
		reporter:  reporter,
		actuator:  actuator,
		debouncer: NewDebouncer(opts.UndervoltageLimit),
		opts:      opts,
		now:       time.Now,
		after:     time.After,
	}
}

// Run samples until the stop channel closes, a shutdown is actuated, or
// the voltage sensor becomes unreadable. A returned error means the
// process must exit non-zero: either the sensor went away mid-run or the
// shutdown could not be actuated.
func (l *ControlLoop) Run(stop <-chan struct{}) error {
	logrus.WithFields(logrus.Fields{
		"threshold": l.opts.Threshold,
		"interval":  l.opts.Interval.String(),
		"limit":     l.opts.UndervoltageLimit,
		"debug":     l.opts.Debug,
	}).Info("control loop starting")

	for {
		tripped, err := l.cycle()
		if err != nil {
			return err
		}

		if tripped {
			if l.opts.Debug {
				logrus.Warn("undervoltage limit exceeded, shutdown suppressed in debug mode")
				l.debouncer.Reset()
			} else {
				logrus.Error("undervoltage limit exceeded, initiating shutdown")
				if err := l.actuator.Shutdown(); err != nil {
					return pkgerrors.Wrap(err, "failed to actuate shutdown")
				}
				// The OS will terminate the process shortly.
				return nil
			}
		}

		select {
		case <-stop:
			return nil
		case <-l.after(l.opts.Interval):
		}
	}
}

func (l *ControlLoop) cycle() (bool, error) {
	raw, err := l.voltage.ReadRailVoltage()
	if err != nil {
		// Guessing a "safe" voltage here would defeat the protection.
		return false, pkgerrors.Wrap(err, "cannot read rail voltage")
	}

	cpuPercent, gpuPercent := l.loads.ReadLoads()

	s := Sample{
		Timestamp:        l.now(),
		RawVoltage:       raw,
		CPUPercent:       cpuPercent,
		GPUPercent:       gpuPercent,
		CorrectedVoltage: Correct(raw, cpuPercent, gpuPercent),
	}

	tripped := l.debouncer.Observe(s.CorrectedVoltage, l.opts.Threshold)
	l.setStatus(s, l.debouncer.Count(), tripped)
	l.reporter.Record(s, l.debouncer.Count(), tripped)

	return tripped, nil
}

// Status returns a snapshot of the most recent cycle.
func (l *ControlLoop) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

func (l *ControlLoop) setStatus(s Sample, count int, tripped bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = Status{
		Sample:    s,
		Count:     count,
		Limit:     l.opts.UndervoltageLimit,
		Threshold: l.opts.Threshold,
		Tripped:   tripped,
	}
}
