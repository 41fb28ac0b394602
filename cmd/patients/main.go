package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/sm8ta/patient_records/internal/adapter/logger"
	"github.com/sm8ta/patient_records/internal/app"
	"github.com/sm8ta/patient_records/internal/config"
	"github.com/sm8ta/patient_records/internal/core/domain"
)

type cli struct {
	core *app.App
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := &cli{}
	root := c.rootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		printError(err)
		stop()
		os.Exit(1)
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "patients",
		Short:         "Manage patient records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}
			log := logger.NewLoggerAdapter(cfg.App.Env, levelOrDefault(cfg.App.LogLevel), os.Stderr)

			core, err := app.New(cmd.Context(), cfg, log, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			c.core = core
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if c.core == nil {
				return nil
			}
			return c.core.Close()
		},
	}

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.listCmd(),
		c.addCmd(),
		c.editCmd(),
		c.deleteCmd(),
	)
	return root
}

// levelOrDefault keeps info logs off the terminal unless asked for.
func levelOrDefault(level string) string {
	if level == "" {
		return "warn"
	}
	return level
}

func (c *cli) requireSession() error {
	if !c.core.Controller.CurrentSession().Authenticated() {
		return errors.New("not signed in, run `patients login` first")
	}
	return nil
}

// userError carries the message shown for a failed operation.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

func report(err error, fallback string) error {
	if err == nil {
		return nil
	}
	return &userError{msg: domain.UserMessage(err, fallback), err: err}
}

func printError(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err.Error())

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return
	}
	keys := make([]string, 0, len(verr.Fields))
	for k := range verr.Fields {
		if k != "form" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", k, verr.Fields[k])
	}
}
