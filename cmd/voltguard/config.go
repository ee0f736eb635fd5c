package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/psdlabs/voltguard/pkg/config"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage the voltguard config file",
		GroupID: gAdvanced,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Write the default configuration to the config file",
			RunE: func(_ *cobra.Command, _ []string) error {
				if _, err := os.Stat(configPath); err == nil {
					return fmt.Errorf("config file %s already exists", configPath)
				}

				if err := config.NewFileFromConfig(nil, configPath).Save(); err != nil {
					return err
				}
				logrus.Infof("wrote default config to %s", configPath)
				return nil
			},
		},
	)

	return cmd
}
