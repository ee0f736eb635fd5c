package sensor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeHwmonChannel(t *testing.T, hwmon, channel, label, millivolts string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(hwmon, channel+"_label"), []byte(label+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if millivolts != "" {
		if err := os.WriteFile(filepath.Join(hwmon, channel+"_input"), []byte(millivolts+"\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func newTestHwmonDir(t *testing.T) string {
	t.Helper()
	hwmon := filepath.Join(t.TempDir(), "hwmon0")
	if err := os.Mkdir(hwmon, 0755); err != nil {
		t.Fatal(err)
	}
	return hwmon
}

func TestHwmonVoltageSourceSumsChannels(t *testing.T) {
	hwmon := newTestHwmonDir(t)
	writeHwmonChannel(t, hwmon, "in1", "VDD_IN", "6000")
	writeHwmonChannel(t, hwmon, "in2", "VDD_SYS", "8500")

	s := newHwmonVoltageSourceFromPaths([]string{hwmon})
	got, err := s.ReadRailVoltage()
	if err != nil {
		t.Fatalf("ReadRailVoltage() error = %v", err)
	}
	if got != 14.5 {
		t.Errorf("ReadRailVoltage() = %v, want 14.5", got)
	}
}

func TestHwmonVoltageSourceSkipsNonRailChannels(t *testing.T) {
	hwmon := newTestHwmonDir(t)
	writeHwmonChannel(t, hwmon, "in1", "VDD_IN", "12000")
	writeHwmonChannel(t, hwmon, "in2", "CURR_SHUNT", "9999")

	s := newHwmonVoltageSourceFromPaths([]string{hwmon})
	got, err := s.ReadRailVoltage()
	if err != nil {
		t.Fatalf("ReadRailVoltage() error = %v", err)
	}
	if got != 12.0 {
		t.Errorf("ReadRailVoltage() = %v, want 12.0", got)
	}
}

func TestHwmonVoltageSourceSkipsUnreadableChannels(t *testing.T) {
	hwmon := newTestHwmonDir(t)
	writeHwmonChannel(t, hwmon, "in1", "VDD_IN", "6000")
	// Labeled channel without an input file must be skipped, not fatal.
	writeHwmonChannel(t, hwmon, "in2", "VDD_SYS", "")
	// Malformed values are skipped too.
	writeHwmonChannel(t, hwmon, "in3", "VDD_CPU", "not-a-number")

	s := newHwmonVoltageSourceFromPaths([]string{hwmon})
	got, err := s.ReadRailVoltage()
	if err != nil {
		t.Fatalf("ReadRailVoltage() error = %v", err)
	}
	if got != 6.0 {
		t.Errorf("ReadRailVoltage() = %v, want 6.0", got)
	}
}

func TestHwmonVoltageSourceAllChannelsUnreadable(t *testing.T) {
	hwmon := newTestHwmonDir(t)
	writeHwmonChannel(t, hwmon, "in1", "VDD_IN", "")

	s := newHwmonVoltageSourceFromPaths([]string{hwmon})
	_, err := s.ReadRailVoltage()
	if !errors.Is(err, ErrSensorUnavailable) {
		t.Errorf("ReadRailVoltage() error = %v, want ErrSensorUnavailable", err)
	}
}

func TestHwmonVoltageSourceDoesNotCache(t *testing.T) {
	hwmon := newTestHwmonDir(t)
	writeHwmonChannel(t, hwmon, "in1", "VDD_IN", "6000")

	s := newHwmonVoltageSourceFromPaths([]string{hwmon})
	if got, _ := s.ReadRailVoltage(); got != 6.0 {
		t.Fatalf("ReadRailVoltage() = %v, want 6.0", got)
	}

	writeHwmonChannel(t, hwmon, "in1", "VDD_IN", "5500")
	if got, _ := s.ReadRailVoltage(); got != 5.5 {
		t.Errorf("ReadRailVoltage() after update = %v, want 5.5", got)
	}
}

func TestNewHwmonVoltageSourceMissingDevice(t *testing.T) {
	_, err := NewHwmonVoltageSource("no-such-driver", "9-9999")
	if err == nil {
		t.Error("NewHwmonVoltageSource() error = nil, want error for missing device")
	}
}
