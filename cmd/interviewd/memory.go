package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ent0n29/interviewd/internal/app"
	"github.com/ent0n29/interviewd/internal/interview"
)

func (c *cli) newMemoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect or reset a session's memory",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the session transcript as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd.Context(), func(ctx context.Context, svc *interview.Service) error {
				return printJSON(cmd.OutOrStdout(), map[string]any{"history": svc.History(ctx, c.session)})
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "facts",
		Short: "Print the session's long-term facts as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd.Context(), func(ctx context.Context, svc *interview.Service) error {
				return printJSON(cmd.OutOrStdout(), map[string]any{"facts": svc.Facts(ctx, c.session)})
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear the session transcript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd.Context(), func(ctx context.Context, svc *interview.Service) error {
				if !svc.Clear(ctx, c.session) {
					return fmt.Errorf("failed to clear memory for session %q", c.session)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Memory cleared.")
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "forget",
		Short: "Delete the session's long-term facts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd.Context(), func(ctx context.Context, svc *interview.Service) error {
				if err := svc.Forget(ctx, c.session); err != nil {
					return fmt.Errorf("forget session %q: %w", c.session, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Long-term facts deleted.")
				return nil
			})
		},
	})
	return cmd
}

func (c *cli) newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask one question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			return c.withService(cmd.Context(), func(ctx context.Context, svc *interview.Service) error {
				res, err := svc.Ask(ctx, c.session, question)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Answer)
				return nil
			})
		},
	}
}

func (c *cli) withService(ctx context.Context, fn func(context.Context, *interview.Service) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	built, err := app.Build(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() { _ = built.Cleanup() }()
	return fn(ctx, built.Service)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
