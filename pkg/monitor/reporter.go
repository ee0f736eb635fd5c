package monitor

import (
	"fmt"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Reporter records one line per sampling cycle. Record must be
// best-effort: a reporting failure must never stop the control loop.
type Reporter interface {
	Record(s Sample, count int, tripped bool)
	Close() error
}

var _ Reporter = &FileReporter{}

// FileReporter appends structured log lines to the configured log file
// using a dedicated logrus logger. Write failures are swallowed by logrus
// (it complains on stderr), which is exactly the best-effort behavior the
// loop needs.
type FileReporter struct {
	logger *logrus.Logger
	file   *os.File
}

// NewFileReporter opens (or creates) the log file for appending.
func NewFileReporter(path string) (*FileReporter, error) {
	fp, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open log file %s", path)
	}

	logger := logrus.New()
	logger.SetOutput(fp)
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})

	return &FileReporter{logger: logger, file: fp}, nil
}

func (r *FileReporter) Record(s Sample, count int, tripped bool) {
	entry := r.logger.WithFields(logrus.Fields{
		"raw":       fmt.Sprintf("%.3f", s.RawVoltage),
		"corrected": fmt.Sprintf("%.3f", s.CorrectedVoltage),
		"cpu":       fmt.Sprintf("%.1f", s.CPUPercent),
		"gpu":       fmt.Sprintf("%.1f", s.GPUPercent),
		"count":     count,
		"tripped":   tripped,
	})

	switch {
	case tripped:
		entry.Error("undervoltage limit exceeded")
	case count > 0:
		entry.Warn("rail voltage below threshold")
	default:
		entry.Info("rail voltage ok")
	}
}

func (r *FileReporter) Close() error {
	return r.file.Close()
}

var _ Reporter = &ConsoleReporter{}

// ConsoleReporter prints human-readable lines to stdout. Used in debug
// mode.
type ConsoleReporter struct{}

func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

func (r *ConsoleReporter) Record(s Sample, count int, tripped bool) {
	fmt.Printf("Raw: %.3fV, Corrected: %.3fV, CPU: %.1f%%, GPU: %.1f%%, Count: %d, Tripped: %t\n",
		s.RawVoltage, s.CorrectedVoltage, s.CPUPercent, s.GPUPercent, count, tripped)
}

func (r *ConsoleReporter) Close() error {
	return nil
}
