package main

import (
	"github.com/hightouchio/cftpipe/tunnel"
	"github.com/spf13/cobra"
)

var (
	destroyCommand = &cobra.Command{
		Use:   "destroy <slug>",
		Short: "Delete the DNS record for a subdomain, and optionally the tunnel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDestroy,
	}
)

func init() {
	rootCmd.AddCommand(destroyCommand)
}

func runDestroy(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return tunnel.ErrMissingSlug
	}

	app, err := newApplication(cmd)
	if err != nil {
		return err
	}

	_, err = app.service.Destroy(app.context(cmd.Context()), tunnel.DestroyRequest{Slug: args[0]})
	return err
}
