package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pimo/internal/feeds"
	"pimo/internal/logging"
	"pimo/internal/relay"
	"pimo/internal/store"
)

func newRelayCommand(ctx *commandContext) *cobra.Command {
	relayCmd := &cobra.Command{
		Use:   "relay",
		Short: "Feed-to-webhook relay",
	}
	relayCmd.AddCommand(newRelayRunCommand(ctx))
	return relayCmd
}

func newRelayRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll all feeds once and post new entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Relay.WebhookURL == "" && !dryRun {
				return errors.New("relay.webhook_url is not configured (set PIMO_WEBHOOK_URL or use --dry-run)")
			}
			logger, err := logging.NewFromConfig(cfg, "pimo")
			if err != nil {
				return err
			}

			st, err := store.Open(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			var poster relay.Poster
			if !dryRun {
				poster, err = relay.NewDiscordWebhook(cfg.Relay.WebhookURL,
					relay.WithWebhookUserAgent(cfg.Relay.UserAgent))
				if err != nil {
					return err
				}
			}
			fetcher := feeds.NewFetcher(
				feeds.WithUserAgent(cfg.Relay.UserAgent),
				feeds.WithTimeout(time.Duration(cfg.Relay.RequestTimeout)*time.Second))

			report, err := relay.New(cfg.Relay, st, fetcher, poster, logger).Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"Polled %d feeds: %d posted, %d seeded, %d unchanged, %d errors\n",
				report.Feeds, report.Posted, report.Seeded, report.Unchanged, report.Errors)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Poll and record without posting to the webhook")
	return cmd
}
