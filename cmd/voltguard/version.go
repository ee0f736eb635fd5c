package main

import (
	"github.com/spf13/cobra"

	"github.com/psdlabs/voltguard/pkg/client"
	"github.com/psdlabs/voltguard/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		GroupID: gAdvanced,
		Short:   "Print the version of voltguard",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("client: %s (%s)\n", version.Version, version.GitCommit)

			daemonVersion, err := client.NewClient(unixSocketPath).GetVersion()
			if err != nil {
				cmd.Println("daemon: unavailable")
				return
			}
			cmd.Printf("daemon: %s\n", daemonVersion)
		},
	}
}
