package main

import (
	"github.com/hightouchio/cftpipe/tunnel"
	"github.com/spf13/cobra"
)

var (
	listCommand = &cobra.Command{
		Use:   "list",
		Short: "Show recent sessions",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	statusCommand = &cobra.Command{
		Use:   "status",
		Short: "Show the saved tunnel configuration",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
)

var (
	listLimit       int
	statusOutput    string
	statusShowToken bool
)

func init() {
	rootCmd.AddCommand(listCommand, statusCommand)
	listCommand.Flags().IntVarP(&listLimit, "limit", "n", tunnel.DefaultListLimit, "Number of sessions to show")
	statusCommand.Flags().StringVarP(&statusOutput, "output", "o", tunnel.FormatJSON, "Output format: json or yaml")
	statusCommand.Flags().BoolVar(&statusShowToken, "show-token", false, "Show the tunnel token in yaml output")
}

func runList(cmd *cobra.Command, args []string) error {
	app, err := newApplication(cmd)
	if err != nil {
		return err
	}
	return app.service.List(cmd.OutOrStdout(), listLimit)
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := newApplication(cmd)
	if err != nil {
		return err
	}
	return app.service.Status(cmd.OutOrStdout(), statusOutput, statusShowToken)
}
