package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"jtimer/backend/internal/client"
	"jtimer/backend/internal/model"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			snap, err := opts.client().Session(ctx)
			if err != nil {
				return err
			}
			return emitSnapshot(cmd, opts, snap)
		},
	}
}

func newSessionActionCmd(opts *rootOptions, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			snap, err := opts.client().SessionAction(ctx, action)
			if err != nil {
				return err
			}
			return emitSnapshot(cmd, opts, snap)
		},
	}
}

func newModeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "mode <work|shortBreak|longBreak>",
		Short:     "Switch mode and reset the countdown",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(model.ModeWork), string(model.ModeShortBreak), string(model.ModeLongBreak)},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := model.Mode(args[0])
			if !mode.Valid() {
				return fmt.Errorf("unknown mode %q", args[0])
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()
			snap, err := opts.client().SwitchMode(ctx, mode)
			if err != nil {
				return err
			}
			return emitSnapshot(cmd, opts, snap)
		},
	}
}

func newSettingsCmd(opts *rootOptions) *cobra.Command {
	var work, short, long int
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change interval durations in minutes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			c := opts.client()
			var (
				snap model.Snapshot
				err  error
			)
			if hasChangedFlags(cmd, "work", "short", "long") {
				var update client.SettingsUpdate
				if cmd.Flags().Changed("work") {
					update.WorkMinutes = &work
				}
				if cmd.Flags().Changed("short") {
					update.ShortBreakMinutes = &short
				}
				if cmd.Flags().Changed("long") {
					update.LongBreakMinutes = &long
				}
				snap, err = c.UpdateSettings(ctx, update)
			} else {
				snap, err = c.Session(ctx)
			}
			if err != nil {
				return err
			}
			return opts.emit(cmd.OutOrStdout(), snap.Config, func(w io.Writer) { printConfig(w, snap.Config) })
		},
	}
	cmd.Flags().IntVar(&work, "work", model.DefaultWorkMinutes, "work interval length")
	cmd.Flags().IntVar(&short, "short", model.DefaultShortBreakMinutes, "short break length")
	cmd.Flags().IntVar(&long, "long", model.DefaultLongBreakMinutes, "long break length")
	setFlagAliases(cmd.Flags(), map[string]string{
		"short-break": "short",
		"long-break":  "long",
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the default durations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			snap, err := opts.client().ResetSettings(ctx)
			if err != nil {
				return err
			}
			return opts.emit(cmd.OutOrStdout(), snap.Config, func(w io.Writer) { printConfig(w, snap.Config) })
		},
	})
	return cmd
}

func newMuteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "mute [on|off]",
		Short:     "Set or toggle the alarm mute",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var muted *bool
			if len(args) == 1 {
				v, err := parseOnOff(args[0])
				if err != nil {
					return err
				}
				muted = &v
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()
			snap, err := opts.client().SetMuted(ctx, muted)
			if err != nil {
				return err
			}
			return emitSnapshot(cmd, opts, snap)
		},
	}
}

func newAlarmCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alarm",
		Short: "Manage the completion alarm",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Acknowledge the alarm and reset the countdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			snap, err := opts.client().StopAlarm(ctx)
			if err != nil {
				return err
			}
			return emitSnapshot(cmd, opts, snap)
		},
	})
	return cmd
}

func newResumeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume music paused by the last completion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			resumed, err := opts.client().ResumePlayback(ctx)
			if err != nil {
				return err
			}
			return opts.emit(cmd.OutOrStdout(), map[string]bool{"resumed": resumed}, func(w io.Writer) {
				if resumed {
					printf(w, "playback resumed\n")
				} else {
					printf(w, "nothing to resume\n")
				}
			})
		},
	}
}

func emitSnapshot(cmd *cobra.Command, opts *rootOptions, snap model.Snapshot) error {
	return opts.emit(cmd.OutOrStdout(), snap, func(w io.Writer) { printSnapshot(w, snap) })
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
	return v, nil
}
