package main

import (
	"io"

	"github.com/spf13/cobra"

	"jtimer/backend/internal/model"
)

func newPlaybackCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "playback",
		Short:   "Control music playback",
		Aliases: []string{"music"},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the current track",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			playback, err := opts.client().Playback(ctx)
			if err != nil {
				return err
			}
			return emitPlayback(cmd, opts, playback)
		},
	}
	cmd.AddCommand(status)

	for _, c := range []struct {
		name, short string
	}{
		{"play", "Resume playback"},
		{"pause", "Pause playback"},
		{"toggle", "Play or pause"},
		{"next", "Skip to the next track"},
		{"previous", "Skip to the previous track"},
	} {
		command := c.name
		cmd.AddCommand(&cobra.Command{
			Use:   command,
			Short: c.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := opts.context(cmd)
				defer cancel()
				playback, err := opts.client().PlaybackCommand(ctx, command)
				if err != nil {
					return err
				}
				return emitPlayback(cmd, opts, playback)
			},
		})
	}

	devices := &cobra.Command{
		Use:   "devices",
		Short: "List available devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			list, err := opts.client().Devices(ctx)
			if err != nil {
				return err
			}
			return opts.emit(cmd.OutOrStdout(), list, func(w io.Writer) { printDevices(w, list) })
		},
	}

	transfer := &cobra.Command{
		Use:   "transfer <device-id>",
		Short: "Move playback to another device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			playback, err := opts.client().TransferTo(ctx, args[0])
			if err != nil {
				return err
			}
			return emitPlayback(cmd, opts, playback)
		},
	}

	cmd.AddCommand(devices, transfer)
	return cmd
}

func emitPlayback(cmd *cobra.Command, opts *rootOptions, playback model.Playback) error {
	return opts.emit(cmd.OutOrStdout(), playback, func(w io.Writer) { printPlayback(w, playback) })
}
