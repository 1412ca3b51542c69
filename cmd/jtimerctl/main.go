// Package main implements jtimerctl, a command line remote for a running
// jtimer server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"jtimer/backend/internal/client"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	server  string
	timeout time.Duration
	json    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "jtimerctl",
		Short:        "Control a running jtimer server",
		SilenceUsage: true,
	}

	serverDefault := os.Getenv("JTIMER_SERVER")
	if serverDefault == "" {
		serverDefault = client.DefaultServerURL
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.server, "server", serverDefault, "base URL of the jtimer server")
	flags.DurationVar(&opts.timeout, "timeout", 20*time.Second, "request timeout")
	flags.BoolVar(&opts.json, "json", false, "print raw JSON instead of a summary")
	setFlagAliases(flags, map[string]string{"url": "server"})

	cmd.AddCommand(
		newStatusCmd(opts),
		newSessionActionCmd(opts, "start", "Start the countdown"),
		newSessionActionCmd(opts, "pause", "Pause the countdown"),
		newSessionActionCmd(opts, "toggle", "Start or pause the countdown"),
		newSessionActionCmd(opts, "reset", "Reset the countdown for the current mode"),
		newModeCmd(opts),
		newSettingsCmd(opts),
		newMuteCmd(opts),
		newAlarmCmd(opts),
		newResumeCmd(opts),
		newTaskCmd(opts),
		newPlaybackCmd(opts),
	)
	return cmd
}

func (o *rootOptions) client() *client.Client {
	return client.New(o.server, nil)
}

func (o *rootOptions) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), o.timeout)
}

// emit prints v as JSON when --json is set, otherwise the summary.
func (o *rootOptions) emit(w io.Writer, v interface{}, summary func(io.Writer)) error {
	if o.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	summary(w)
	return nil
}

func printf(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, format, args...)
}
