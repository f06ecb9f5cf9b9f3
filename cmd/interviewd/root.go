package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ent0n29/interviewd/internal/config"
	"github.com/ent0n29/interviewd/internal/logging"
)

const rootLongDesc = `interviewd answers interview questions in a fixed persona and keeps two
tiers of memory per session: an expiring transcript and durable extracted facts.

  interviewd serve             Run the HTTP and websocket API (default)
  interviewd ask "question"    Ask one question from the terminal
  interviewd memory show       Print the session transcript
  interviewd memory facts      Print the session's long-term facts
  interviewd memory clear      Clear the session transcript
  interviewd memory forget     Delete the session's long-term facts`

// cli holds state shared by every subcommand after flags are resolved.
type cli struct {
	cfg     config.Config
	logger  *slog.Logger
	session string
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	cmd := &cobra.Command{
		Use:           "interviewd",
		Short:         "Interview persona service with short- and long-term memory",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(cmd.Context())
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolP("debug", "d", false, "Enable debug logging")
	flags.String("log-format", "", "Log format: text, json or pretty")
	flags.String("env-file", "", "Path to an env file (default .env)")
	flags.StringVarP(&c.session, "session", "s", "", "Session id (default APP_DEFAULT_SESSION_ID)")

	cmd.AddCommand(c.newServeCmd())
	cmd.AddCommand(c.newAskCmd())
	cmd.AddCommand(c.newMemoryCmd())

	return cmd
}

func (c *cli) load(cmd *cobra.Command) error {
	// The env file is located before viper is built, so the flag goes through the environment.
	if path, _ := cmd.Flags().GetString("env-file"); path != "" {
		if err := os.Setenv("APP_ENV_FILE", path); err != nil {
			return fmt.Errorf("set env file: %w", err)
		}
	}

	v, err := config.NewViper()
	if err != nil {
		return err
	}
	bindings := map[string]string{
		"APP_DEBUG":      "debug",
		"APP_LOG_FORMAT": "log-format",
		"APP_BIND_ADDR":  "addr",
	}
	for key, name := range bindings {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	c.cfg, err = config.FromViper(v)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.session == "" {
		c.session = c.cfg.DefaultSessionID
	}

	c.logger = logging.New(
		logging.WithDebug(c.cfg.Debug),
		logging.WithFormat(c.cfg.LogFormat),
	)
	slog.SetDefault(c.logger)
	return nil
}
