package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lorestream/internal/announce"
	"lorestream/internal/logging"
)

func newNotifyCommand(ctx *commandContext) *cobra.Command {
	notifyCmd := &cobra.Command{
		Use:   "notify",
		Short: "Webhook announcement utilities",
	}
	notifyCmd.AddCommand(newNotifyTestCommand(ctx))
	return notifyCmd
}

func newNotifyTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send a test announcement to the configured webhook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cfg.Announce.WebhookURL == "" || cfg.Announce.Mode == "none" {
				fmt.Fprintln(out, "No webhook configured; announcements are disabled")
				return nil
			}

			svc := announce.NewService(cfg, logging.NewNop())
			defer svc.Close()
			if err := svc.TestAnnouncement(cmd.Context()); err != nil {
				return fmt.Errorf("test announcement: %w", err)
			}
			fmt.Fprintln(out, "Test announcement delivered")
			return nil
		},
	}
}
