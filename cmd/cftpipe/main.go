package main

import (
	"fmt"
	"github.com/spf13/cobra"
	"os"
)

var version = "dev"
var name = "cftpipe"

var (
	rootCmd = &cobra.Command{
		Use:           name,
		Short:         "cftpipe exposes a local service on a public hostname through a Cloudflare Tunnel",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
)

func init() {
	rootCmd.PersistentFlags().String("config-dir", "", "Directory holding config.json and history.json (default ~/.config/cftpipe)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd, err)
		os.Exit(1)
	}
}

// usageError is a command line mistake, reported with a hint to --help.
func usageError(cmd *cobra.Command, format string, args ...interface{}) error {
	return fmt.Errorf("%s (see `%s --help`)", fmt.Sprintf(format, args...), cmd.CommandPath())
}
