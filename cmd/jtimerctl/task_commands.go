package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newTaskCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Short:   "Manage the task list",
		Aliases: []string{"tasks"},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			tasks, err := opts.client().Tasks(ctx)
			if err != nil {
				return err
			}
			return opts.emit(cmd.OutOrStdout(), tasks, func(w io.Writer) { printTasks(w, tasks) })
		},
	}

	add := &cobra.Command{
		Use:   "add <text...>",
		Short: "Append a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			task, err := opts.client().AddTask(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return opts.emit(cmd.OutOrStdout(), task, func(w io.Writer) {
				printf(w, "added %s  %s\n", task.ID, task.Text)
			})
		},
	}

	toggle := &cobra.Command{
		Use:     "toggle <id>",
		Short:   "Flip a task between done and open",
		Aliases: []string{"done"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			task, err := opts.client().ToggleTask(ctx, args[0])
			if err != nil {
				return err
			}
			return opts.emit(cmd.OutOrStdout(), task, func(w io.Writer) {
				state := "open"
				if task.Completed {
					state = "done"
				}
				printf(w, "%s is %s\n", task.ID, state)
			})
		},
	}

	remove := &cobra.Command{
		Use:     "rm <id>",
		Short:   "Delete a task",
		Aliases: []string{"delete"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			if err := opts.client().DeleteTask(ctx, args[0]); err != nil {
				return err
			}
			return opts.emit(cmd.OutOrStdout(), map[string]string{"deleted": args[0]}, func(w io.Writer) {
				printf(w, "deleted %s\n", args[0])
			})
		},
	}

	cmd.AddCommand(list, add, toggle, remove)
	return cmd
}
