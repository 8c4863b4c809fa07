package main

import (
	"github.com/spf13/cobra"
)

var (
	portsCommand = &cobra.Command{
		Use:   "ports",
		Short: "cftpipe ports shows which common dev server ports are listening and which one run would pick",
		Args:  cobra.NoArgs,
		RunE:  runPorts,
	}
)

func init() {
	rootCmd.AddCommand(portsCommand)
}

func runPorts(cmd *cobra.Command, args []string) error {
	app, err := newApplication(cmd)
	if err != nil {
		return err
	}
	return app.service.Ports(cmd.OutOrStdout())
}
