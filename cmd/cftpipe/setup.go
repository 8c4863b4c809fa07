package main

import (
	"github.com/hightouchio/cftpipe/tunnel"
	"github.com/spf13/cobra"
)

var (
	setupCommand = &cobra.Command{
		Use:   "setup",
		Short: "Create a tunnel on one of your zones and save it as the default",
		Args:  cobra.NoArgs,
		RunE:  runSetup,
	}
)

func init() {
	rootCmd.AddCommand(setupCommand)
}

func runSetup(cmd *cobra.Command, args []string) error {
	app, err := newApplication(cmd)
	if err != nil {
		return err
	}
	dir, err := workingDirectory()
	if err != nil {
		return err
	}

	_, err = app.service.Setup(app.context(cmd.Context()), tunnel.SetupRequest{
		AccountID: app.config.GetString(ConfigCloudflareAccountID),
		Directory: dir,
	})
	return err
}
