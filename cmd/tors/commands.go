package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tors/internal/cache"
	"tors/internal/storage"
	"tors/internal/tracker"
)

var errNoTask = errors.New("no such task")

// withApp opens the store for the duration of one command.
func withApp(run func(ctx context.Context, a *app, w io.Writer, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := open()
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd.Context(), a, cmd.OutOrStdout(), args)
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List live tasks in creation order",
		Args:    cobra.NoArgs,
		RunE:    withApp(runList),
	}
}

func addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task with default preferences",
		Args:  cobra.MinimumNArgs(1),
		RunE:  withApp(runAdd),
	}
}

func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <n|id>",
		Aliases: []string{"remove"},
		Short:   "Delete a task by row number or id",
		Args:    cobra.ExactArgs(1),
		RunE:    withApp(runRemove),
	}
}

func doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <n|id>",
		Short: "Toggle a task's completion",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runDone),
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show level and experience",
		Args:  cobra.NoArgs,
		RunE:  withApp(runStats),
	}
}

func purgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete expired tasks that do not repeat",
		Args:  cobra.NoArgs,
		RunE:  withApp(runPurge),
	}
}

func load(ctx context.Context, a *app) error {
	if _, err := a.tracker.RenewDaily(ctx); err != nil {
		return err
	}
	return a.cache.Refresh(ctx)
}

func runList(ctx context.Context, a *app, w io.Writer, _ []string) error {
	if err := load(ctx, a); err != nil {
		return err
	}
	if a.cache.Len() == 0 {
		fmt.Fprintln(w, "No tasks.")
		return nil
	}
	for i, e := range a.cache.Items() {
		mark := " "
		if e.Task.Done {
			mark = "x"
		}
		repeat := ""
		if e.Task.Preferences.DailyRepeat {
			repeat = ", daily"
		}
		fmt.Fprintf(w, "%3d. [%s] %s (expires %s%s)\n", i+1, mark, e.Task.Title, humanize.Time(e.Task.Preferences.Expire), repeat)
	}
	return nil
}

func runAdd(ctx context.Context, a *app, w io.Writer, args []string) error {
	task := storage.NewTask(a.tracker.Now())
	task.Title = strings.Join(args, " ")
	id, err := a.tracker.Save(ctx, "", task)
	if errors.Is(err, tracker.ErrEmptyTitle) {
		return fmt.Errorf("title must not be empty")
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Added %s: %s\n", id, task.Title)
	return nil
}

func runRemove(ctx context.Context, a *app, w io.Writer, args []string) error {
	if err := load(ctx, a); err != nil {
		return err
	}
	e, err := resolve(a.cache, args[0])
	if err != nil {
		return err
	}
	if err := a.tracker.Delete(ctx, e.ID); err != nil {
		return err
	}
	fmt.Fprintf(w, "Deleted: %s\n", e.Task.Title)
	return nil
}

func runDone(ctx context.Context, a *app, w io.Writer, args []string) error {
	if err := load(ctx, a); err != nil {
		return err
	}
	e, err := resolve(a.cache, args[0])
	if err != nil {
		return err
	}
	task, reward, err := a.tracker.Toggle(ctx, e.ID)
	if err != nil {
		return err
	}
	switch {
	case reward > 0:
		fmt.Fprintf(w, "Done: %s (+%d exp)\n", task.Title, reward)
	case task.Done:
		fmt.Fprintf(w, "Done: %s\n", task.Title)
	default:
		fmt.Fprintf(w, "Reopened: %s\n", task.Title)
	}
	return nil
}

func runStats(ctx context.Context, a *app, w io.Writer, _ []string) error {
	stats, err := a.tracker.Ledger().Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Level: %d\nExp: %s\nExp to next level: %s\n",
		stats.Level, humanize.Comma(int64(stats.Experience)), humanize.Comma(int64(stats.ToNextLevel)))
	return nil
}

func runPurge(ctx context.Context, a *app, w io.Writer, _ []string) error {
	n, err := a.tracker.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Purged %d expired %s\n", n, plural(n, "task", "tasks"))
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// resolve finds a listed task by 1-based row, full id or unique id prefix.
func resolve(c *cache.Cache, arg string) (storage.Entry, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		e, ok := c.At(n - 1)
		if !ok {
			return storage.Entry{}, fmt.Errorf("row %d: %w", n, errNoTask)
		}
		return e, nil
	}

	var found []storage.Entry
	for _, e := range c.Items() {
		if e.ID == arg {
			return e, nil
		}
		if arg != "" && strings.HasPrefix(e.ID, arg) {
			found = append(found, e)
		}
	}
	switch len(found) {
	case 0:
		return storage.Entry{}, fmt.Errorf("%q: %w", arg, errNoTask)
	case 1:
		return found[0], nil
	}
	return storage.Entry{}, fmt.Errorf("%q matches %d tasks", arg, len(found))
}
