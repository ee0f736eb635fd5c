package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/psdlabs/voltguard/pkg/daemon"
	"github.com/psdlabs/voltguard/pkg/version"
)

// NewDaemonCommand .
func NewDaemonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "daemon",
		Short:   "Run the voltguard daemon in the foreground",
		Long:    `Run the monitoring loop and serve the status API on the daemon socket.`,
		GroupID: gAdvanced,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logrus.WithFields(logrus.Fields{
				"version": version.Version,
				"commit":  version.GitCommit,
			}).Info("voltguard daemon starting")

			conf, err := buildConfig(cmd)
			if err != nil {
				return err
			}

			return daemon.Run(conf, unixSocketPath)
		},
	}

	addProtectionFlags(cmd)

	return cmd
}
