package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"erecord/internal/notifications"
	"erecord/internal/simplifile"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var withNotify bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify connectivity to the recording service and local storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireCredentials(); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			store, err := ctx.openStore()
			if err != nil {
				return fmt.Errorf("submissions database: %w", err)
			}
			defer func() { _ = store.Close() }()
			if err := store.Health(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(out, "submissions database ok (%s)\n", store.Path())

			client := simplifile.NewClient(cfg, logger)
			if err := client.TestConnection(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(out, "recording service connection ok")

			if withNotify {
				notifier := notifications.NewService(cfg)
				if err := notifier.TestNotification(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(out, "test notification sent")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withNotify, "notify", false, "Also send a test notification")
	return cmd
}
