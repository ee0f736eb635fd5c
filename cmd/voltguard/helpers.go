package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/psdlabs/voltguard/pkg/config"
)

// addProtectionFlags registers the monitoring parameters shared by the
// daemon and monitor commands. Defaults shown in help come from the
// built-in configuration; a flag only overrides the config file when it
// is set explicitly.
func addProtectionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64P("threshold", "t", 14.5, "voltage threshold in volts")
	f.Float64P("interval", "i", 1.0, "sampling interval in seconds")
	f.StringP("log", "l", "/var/log/voltguard.log", "path to the undervoltage log file")
	f.IntP("undervoltage_limit", "u", 10, "consecutive under-threshold readings before shutdown")
	f.Bool("debug", false, "print samples to the console and suppress the shutdown action")
}

// buildConfig loads the config file and applies any explicitly set flags
// on top of it.
func buildConfig(cmd *cobra.Command) (config.Config, error) {
	conf, err := config.NewFile(configPath)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()

	if f.Changed("threshold") {
		v, _ := f.GetFloat64("threshold")
		if v <= 0 {
			return nil, fmt.Errorf("threshold must be positive, got %v", v)
		}
		conf.SetThreshold(v)
	}

	if f.Changed("interval") {
		v, _ := f.GetFloat64("interval")
		if v <= 0 {
			return nil, fmt.Errorf("interval must be positive, got %v", v)
		}
		conf.SetInterval(time.Duration(v * float64(time.Second)))
	}

	if f.Changed("log") {
		v, _ := f.GetString("log")
		conf.SetLogPath(v)
	}

	if f.Changed("undervoltage_limit") {
		v, _ := f.GetInt("undervoltage_limit")
		if v <= 0 {
			return nil, fmt.Errorf("undervoltage_limit must be positive, got %d", v)
		}
		conf.SetUndervoltageLimit(v)
	}

	if f.Changed("debug") {
		v, _ := f.GetBool("debug")
		conf.SetDebug(v)
	}

	return conf, nil
}
