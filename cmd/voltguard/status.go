package main

import (
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/psdlabs/voltguard/pkg/client"
	"github.com/psdlabs/voltguard/pkg/config"
)

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of voltguard",
		Long:    `Get the latest voltage sample, the debounce state, and the daemon configuration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			apiClient := client.NewClient(unixSocketPath)

			st, err := apiClient.GetStatus()
			if err != nil {
				return err
			}

			rawConf, err := apiClient.GetConfig()
			if err != nil {
				return err
			}
			conf := config.NewFileFromConfig(rawConf, "")

			cmd.Println(bold("Rail status:"))
			cmd.Printf("  Raw voltage: %s\n", bold("%.3f V", st.Sample.RawVoltage))
			cmd.Printf("  Corrected voltage: %s\n", voltageText(st.Sample.CorrectedVoltage, st.Threshold))
			cmd.Printf("  CPU load: %s\n", bold("%.1f%%", st.Sample.CPUPercent))
			if st.GPUProbe != "" {
				cmd.Printf("  GPU load: %s (via %s)\n", bold("%.1f%%", st.Sample.GPUPercent), st.GPUProbe)
			} else {
				cmd.Printf("  GPU load: %s (no probe available, assumed 0)\n", bold("%.1f%%", st.Sample.GPUPercent))
			}
			if !st.Sample.Timestamp.IsZero() {
				cmd.Printf("  Sampled: %s ago\n", bold("%s", time.Since(st.Sample.Timestamp).Round(time.Millisecond)))
			}

			cmd.Println()

			cmd.Println(bold("Protection status:"))
			cmd.Printf("  Undervoltage count: %s\n", bold("%d/%d", st.Count, st.Limit))
			cmd.Printf("  Tripped: %s\n", bool2Text(st.Tripped))

			cmd.Println()

			cmd.Println(bold("Configuration:"))
			cmd.Printf("  Threshold: %s\n", bold("%.3f V", conf.Threshold()))
			cmd.Printf("  Interval: %s\n", bold("%s", conf.Interval()))
			cmd.Printf("  Undervoltage limit: %s\n", bold("%d", conf.UndervoltageLimit()))
			cmd.Printf("  Log file: %s\n", bold("%s", conf.LogPath()))
			cmd.Printf("  Debug mode (shutdown suppressed): %s\n", bool2Text(conf.Debug()))
			return nil
		},
	}
}

func voltageText(corrected, threshold float64) string {
	if corrected < threshold {
		return color.New(color.Bold, color.FgRed).Sprintf("%.3f V", corrected)
	}
	return color.New(color.Bold, color.FgGreen).Sprintf("%.3f V", corrected)
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgRed).Sprint("✔")
	}
	return color.New(color.Bold, color.FgGreen).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
