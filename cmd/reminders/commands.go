package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"reminders-lite/internal/model"
)

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut, v: viper.New()}
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "reminders",
		Short:         "Manage your reminders from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(cfgFile); err != nil {
				return err
			}
			return a.setup()
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.reminders.yaml)")
	cmd.PersistentFlags().String("server", "http://localhost:3000", "reminder server base URL")
	cmd.PersistentFlags().String("session-file", defaultSessionFile(), "where the login session is kept")
	cmd.PersistentFlags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	_ = a.v.BindPFlag("server", cmd.PersistentFlags().Lookup("server"))
	_ = a.v.BindPFlag("session_file", cmd.PersistentFlags().Lookup("session-file"))
	_ = a.v.BindPFlag("timeout", cmd.PersistentFlags().Lookup("timeout"))
	_ = a.v.BindPFlag("debug", cmd.PersistentFlags().Lookup("debug"))

	cmd.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newAddCmd(a),
		newUpdateCmd(a),
		newRemoveCmd(a),
		newWatchCmd(a),
	)
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.gateway.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.sessions.Set(sess); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "logged in as user %d\n", sess.UserID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.sessions.Clear()
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cache.Refresh(cmd.Context()); err != nil {
				return err
			}
			printReminders(a.out, a.cache.Snapshot())
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := a.cache.FetchOne(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "id:        %d\ntitle:     %s\ndeadline:  %s\ncreated:   %s\n", r.ID, r.Title, r.Deadline, r.CreatedAt)
			if r.Body != "" {
				fmt.Fprintf(a.out, "\n%s\n", r.Body)
			}
			return nil
		},
	}
}

type reminderFlags struct {
	title    string
	deadline string
	body     string
}

func (f *reminderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "short title")
	cmd.Flags().StringVar(&f.deadline, "deadline", "", "deadline, e.g. 2024-01-31 or 2024-01-31T09:00")
	cmd.Flags().StringVar(&f.body, "body", "", "optional details")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("deadline")
}

func newAddCmd(a *app) *cobra.Command {
	var f reminderFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a reminder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cache.Add(cmd.Context(), f.title, f.deadline, f.body)
			return a.writeResult()
		},
	}
	f.register(cmd)
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var f reminderFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			// Load the list first so the cached entry can be replaced in place.
			if err := a.cache.Refresh(cmd.Context()); err != nil {
				return err
			}
			a.cache.Update(cmd.Context(), id, f.title, f.deadline, f.body)
			return a.writeResult()
		},
	}
	f.register(cmd)
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a reminder",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a.cache.Remove(cmd.Context(), id)
			return a.writeResult()
		},
	}
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the reminder list every time it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watch(ctx, a)
		},
	}
}

func watch(ctx context.Context, a *app) error {
	sess, err := a.sessions.Current()
	if err != nil {
		return err
	}
	events, err := a.gateway.Watch(ctx, sess)
	if err != nil {
		return err
	}

	sub := a.cache.Subscribe()
	defer sub.Close()

	followErr := make(chan error, 1)
	go func() { followErr <- a.cache.Follow(ctx, events) }()

	if err := a.cache.Refresh(ctx); err != nil {
		return err
	}

	for {
		select {
		case err := <-followErr:
			if ctx.Err() != nil {
				return nil
			}
			return err
		case snap, ok := <-sub.C:
			if !ok {
				return fmt.Errorf("fell behind the change feed")
			}
			printReminders(a.out, snap)
			fmt.Fprintln(a.out)
		}
	}
}

func printReminders(w io.Writer, reminders []model.Reminder) {
	if len(reminders) == 0 {
		fmt.Fprintln(w, "no reminders")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDEADLINE")
	for _, r := range reminders {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ID, r.Title, model.FormatMillis(r.Deadline))
	}
	_ = tw.Flush()
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid reminder id %q", raw)
	}
	return id, nil
}
