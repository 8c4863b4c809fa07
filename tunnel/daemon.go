package tunnel

import (
	"context"
	"fmt"
	"github.com/pkg/errors"
	"io"
	"os"
	"os/exec"
	"strconv"
)

// DefaultDaemonBinary is looked up on PATH when no explicit path is configured.
const DefaultDaemonBinary = "cloudflared"

type DaemonSpec struct {
	Token string
	Port  int
}

// Daemon runs the tunnel connector in the foreground. Run returns when the process exits.
type Daemon interface {
	// Check fails with ErrMissingDaemon when the connector cannot be started.
	Check() error
	Run(ctx context.Context, spec DaemonSpec) error
}

// CloudflaredDaemon runs cloudflared with the tunnel token, sharing stdio with cftpipe.
type CloudflaredDaemon struct {
	Binary string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Path resolves the cloudflared executable.
func (d CloudflaredDaemon) Path() (string, error) {
	binary := d.Binary
	if binary == "" {
		binary = DefaultDaemonBinary
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", ErrMissingDaemon
	}
	return path, nil
}

func (d CloudflaredDaemon) Check() error {
	_, err := d.Path()
	return err
}

func (d CloudflaredDaemon) Run(ctx context.Context, spec DaemonSpec) error {
	path, err := d.Path()
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, path, DaemonArgs(spec)...)
	cmd.Stdin = d.Stdin
	cmd.Stdout = d.Stdout
	cmd.Stderr = d.Stderr
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		// interrupted by the user
		if ctx.Err() != nil {
			return nil
		}
		return errors.Wrapf(err, "%s exited", path)
	}
	return nil
}

// DaemonArgs is the cloudflared argument list for a session.
func DaemonArgs(spec DaemonSpec) []string {
	return []string{
		"tunnel", "--no-autoupdate", "run",
		"--url", fmt.Sprintf("http://localhost:%s", strconv.Itoa(spec.Port)),
		"--token", spec.Token,
	}
}
