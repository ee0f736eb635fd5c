package main

import (
	"os"
	"os/signal"
	"syscall"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/psdlabs/voltguard/pkg/monitor"
	"github.com/psdlabs/voltguard/pkg/sensor"
)

// NewMonitorCommand runs the control loop in the foreground without the
// status API. Mainly useful with --debug when tuning thresholds on a new
// board.
func NewMonitorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "monitor",
		Short:   "Run the monitoring loop in the foreground (no status API)",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := buildConfig(cmd)
			if err != nil {
				return err
			}

			voltage, err := sensor.NewHwmonVoltageSource(conf.DriverBus(), conf.I2CAddr())
			if err != nil {
				return pkgerrors.Wrap(err, "voltage sensor unavailable")
			}

			var reporter monitor.Reporter
			if conf.Debug() {
				reporter = monitor.NewConsoleReporter()
			} else {
				reporter, err = monitor.NewFileReporter(conf.LogPath())
				if err != nil {
					return err
				}
			}
			defer func() {
				if err := reporter.Close(); err != nil {
					logrus.Errorf("failed to close reporter: %v", err)
				}
			}()

			loop := monitor.NewControlLoop(
				monitor.LoopOptions{
					Threshold:         conf.Threshold(),
					Interval:          conf.Interval(),
					UndervoltageLimit: conf.UndervoltageLimit(),
					Debug:             conf.Debug(),
				},
				voltage,
				sensor.NewSystemLoadSource(),
				reporter,
				monitor.NewSystemShutdown(),
			)

			stop := make(chan struct{})
			go func() {
				sigc := make(chan os.Signal, 1)
				signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
				sig := <-sigc
				logrus.Infof("caught signal \"%s\": stopping.", sig)
				close(stop)
			}()

			return loop.Run(stop)
		},
	}

	addProtectionFlags(cmd)

	return cmd
}
