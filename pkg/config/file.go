package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/psdlabs/voltguard/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		Threshold:         ptr.To(14.5),
		IntervalSeconds:   ptr.To(1.0),
		LogPath:           ptr.To("/var/log/voltguard.log"),
		UndervoltageLimit: ptr.To(10),
		Debug:             ptr.To(false),
		// INA3221 on I2C bus 1 is where Jetson carrier boards expose the
		// supply rails. Other boards can point these elsewhere.
		DriverBus: ptr.To("ina3221"),
		I2CAddr:   ptr.To("1-0040"),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = defaultFileConfig
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	Threshold         *float64 `json:"threshold,omitempty"`
	IntervalSeconds   *float64 `json:"intervalSeconds,omitempty"`
	LogPath           *string  `json:"logPath,omitempty"`
	UndervoltageLimit *int     `json:"undervoltageLimit,omitempty"`
	Debug             *bool    `json:"debug,omitempty"`
	DriverBus         *string  `json:"driverBus,omitempty"`
	I2CAddr           *string  `json:"i2cAddr,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		Threshold:         ptr.To(c.Threshold()),
		IntervalSeconds:   ptr.To(c.Interval().Seconds()),
		LogPath:           ptr.To(c.LogPath()),
		UndervoltageLimit: ptr.To(c.UndervoltageLimit()),
		Debug:             ptr.To(c.Debug()),
		DriverBus:         ptr.To(c.DriverBus()),
		I2CAddr:           ptr.To(c.I2CAddr()),
	}

	return rawConfig, nil
}

func (f *File) Threshold() float64 {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.Threshold != nil {
		return *f.c.Threshold
	}
	return *defaultFileConfig.Threshold
}

func (f *File) Interval() time.Duration {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	seconds := *defaultFileConfig.IntervalSeconds
	if f.c.IntervalSeconds != nil {
		seconds = *f.c.IntervalSeconds
	}

	return time.Duration(seconds * float64(time.Second))
}

func (f *File) LogPath() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.LogPath != nil {
		return *f.c.LogPath
	}
	return *defaultFileConfig.LogPath
}

func (f *File) UndervoltageLimit() int {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.UndervoltageLimit != nil {
		return *f.c.UndervoltageLimit
	}
	return *defaultFileConfig.UndervoltageLimit
}

func (f *File) Debug() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.Debug != nil {
		return *f.c.Debug
	}
	return *defaultFileConfig.Debug
}

func (f *File) DriverBus() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.DriverBus != nil {
		return *f.c.DriverBus
	}
	return *defaultFileConfig.DriverBus
}

func (f *File) I2CAddr() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.I2CAddr != nil {
		return *f.c.I2CAddr
	}
	return *defaultFileConfig.I2CAddr
}

func (f *File) SetThreshold(v float64) {
	if f.c == nil {
		panic("config is nil")
	}

	if v <= 0 {
		panic("threshold must be positive")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.Threshold = &v
}

func (f *File) SetInterval(d time.Duration) {
	if f.c == nil {
		panic("config is nil")
	}

	if d <= 0 {
		panic("interval must be positive")
	}

	seconds := d.Seconds()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.IntervalSeconds = &seconds
}

func (f *File) SetLogPath(p string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.LogPath = &p
}

func (f *File) SetUndervoltageLimit(n int) {
	if f.c == nil {
		panic("config is nil")
	}

	if n <= 0 {
		panic("undervoltage limit must be positive")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.UndervoltageLimit = &n
}

func (f *File) SetDebug(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.Debug = &b
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		// If the file is empty, return the empty config.
		// Do not make f.c a nil.
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	if err := conf.validate(); err != nil {
		return pkgerrors.Wrapf(err, "invalid config in file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

// validate rejects values the protection loop cannot run with. A
// non-positive interval would turn the sampling loop into a hot spin and
// a non-positive threshold would disable protection entirely, so they
// fail at load time just like they do on the command line.
func (c *RawFileConfig) validate() error {
	if c.Threshold != nil && *c.Threshold <= 0 {
		return pkgerrors.Errorf("threshold must be positive, got %v", *c.Threshold)
	}
	if c.IntervalSeconds != nil && *c.IntervalSeconds <= 0 {
		return pkgerrors.Errorf("intervalSeconds must be positive, got %v", *c.IntervalSeconds)
	}
	if c.UndervoltageLimit != nil && *c.UndervoltageLimit <= 0 {
		return pkgerrors.Errorf("undervoltageLimit must be positive, got %d", *c.UndervoltageLimit)
	}
	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"threshold":         f.Threshold(),
		"interval":          f.Interval().String(),
		"logPath":           f.LogPath(),
		"undervoltageLimit": f.UndervoltageLimit(),
		"debug":             f.Debug(),
		"driverBus":         f.DriverBus(),
		"i2cAddr":           f.I2CAddr(),
	}
}
