// Package sensor reads rail voltage and system load from the platform.
package sensor

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrSensorUnavailable is returned when no voltage channel can be read.
var ErrSensorUnavailable = errors.New("no readable voltage channel")

// VoltageSource reports the effective rail voltage in volts.
type VoltageSource interface {
	ReadRailVoltage() (float64, error)
}

// railLabelSubstring selects the hwmon channels that belong to the
// monitored supply rails. INA3221 labels them VDD_IN, VDD_SYS, etc.
const railLabelSubstring = "VDD"

var _ VoltageSource = &HwmonVoltageSource{}

// HwmonVoltageSource sums per-channel voltages exposed by an I2C power
// monitor through the hwmon sysfs interface. Channel values are never
// cached; every read goes back to sysfs.
type HwmonVoltageSource struct {
	hwmonPaths []string
}

// NewHwmonVoltageSource discovers the hwmon directories of the given
// driver/device. It fails when no hwmon directory exists, since a source
// that can never produce a reading is useless.
func NewHwmonVoltageSource(driverBus, i2cAddr string) (*HwmonVoltageSource, error) {
	base := filepath.Join("/sys/bus/i2c/drivers", driverBus, i2cAddr, "hwmon")
	paths, err := filepath.Glob(filepath.Join(base, "hwmon*"))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to glob hwmon directories under %s", base)
	}
	if len(paths) == 0 {
		return nil, pkgerrors.Errorf("no hwmon directories found under %s", base)
	}

	logrus.WithFields(logrus.Fields{
		"driverBus": driverBus,
		"i2cAddr":   i2cAddr,
		"hwmon":     paths,
	}).Debug("discovered voltage sensor")

	return &HwmonVoltageSource{hwmonPaths: paths}, nil
}

func newHwmonVoltageSourceFromPaths(paths []string) *HwmonVoltageSource {
	return &HwmonVoltageSource{hwmonPaths: paths}
}

// ReadRailVoltage sums the readable rail channels and returns the total in
// volts. Channels that fail to read are skipped; if every channel fails,
// ErrSensorUnavailable is returned.
func (s *HwmonVoltageSource) ReadRailVoltage() (float64, error) {
	var total float64
	read := 0

	for _, hwmon := range s.hwmonPaths {
		labels, err := filepath.Glob(filepath.Join(hwmon, "in*_label"))
		if err != nil {
			continue
		}
		for _, labelPath := range labels {
			label, err := os.ReadFile(labelPath)
			if err != nil {
				continue
			}
			if !strings.Contains(string(label), railLabelSubstring) {
				continue
			}

			// in1_label -> in1_input
			channel := strings.SplitN(filepath.Base(labelPath), "_", 2)[0]
			raw, err := os.ReadFile(filepath.Join(hwmon, channel+"_input"))
			if err != nil {
				logrus.WithField("channel", channel).Debugf("skipping unreadable channel: %v", err)
				continue
			}
			millivolts, err := strconv.Atoi(strings.TrimSpace(string(raw)))
			if err != nil {
				logrus.WithField("channel", channel).Debugf("skipping malformed channel value: %v", err)
				continue
			}

			total += float64(millivolts) / 1000.0
			read++
		}
	}

	if read == 0 {
		return 0, ErrSensorUnavailable
	}

	return total, nil
}
