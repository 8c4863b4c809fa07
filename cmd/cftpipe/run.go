package main

import (
	"github.com/hightouchio/cftpipe/tunnel"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
	"strconv"
	"syscall"
)

var (
	runCommand = &cobra.Command{
		Use:   "run [port]",
		Short: "Publish a local port on a subdomain and run cloudflared until interrupted",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRun,
	}
)

var (
	runPort  int
	runName  string
	runReuse bool
)

func init() {
	rootCmd.AddCommand(runCommand)
	runCommand.Flags().IntVarP(&runPort, "port", "p", 0, "Local port to expose (default: first listening common dev port, else 3000)")
	runCommand.Flags().StringVarP(&runName, "name", "s", "", "Subdomain label to use")
	runCommand.Flags().BoolVarP(&runReuse, "reuse", "r", false, "Reuse the subdomain last used from this directory")
}

func runRun(cmd *cobra.Command, args []string) error {
	port, err := parsePort(cmd, args)
	if err != nil {
		return err
	}

	app, err := newApplication(cmd)
	if err != nil {
		return err
	}
	dir, err := workingDirectory()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(app.context(cmd.Context()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.service.Run(ctx, tunnel.RunRequest{
		Port:      port,
		Name:      runName,
		Reuse:     runReuse,
		Directory: dir,
	})
}

// parsePort takes the port from --port, else from a bare numeric argument. Zero means detect it.
func parsePort(cmd *cobra.Command, args []string) (int, error) {
	if cmd.Flags().Changed("port") {
		if runPort < 1 || runPort > 65535 {
			return 0, usageError(cmd, "invalid port %d", runPort)
		}
		return runPort, nil
	}
	if len(args) == 0 {
		return 0, nil
	}

	port, err := strconv.Atoi(args[0])
	if err != nil || port < 1 || port > 65535 {
		return 0, usageError(cmd, "invalid port %q", args[0])
	}
	return port, nil
}
