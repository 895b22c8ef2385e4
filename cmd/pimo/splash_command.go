package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"pimo/internal/config"
	"pimo/internal/services/lastfm"
	"pimo/internal/services/weather"
	"pimo/internal/splash"
)

func newSplashCommand(ctx *commandContext) *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "splash",
		Short: "Print the login greeting",
		// splash runs from shell profiles; a broken or missing config
		// must never block the login prompt
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil || cfg == nil {
				fallback := config.Default()
				cfg = &fallback
			}

			color := !noColor && isatty.IsTerminal(os.Stdout.Fd())
			opts := []splash.Option{
				splash.WithColor(color),
				splash.WithWeather(weather.New()),
			}
			if cfg.Splash.LastFMUser != "" && cfg.Splash.LastFMAPIKey != "" {
				opts = append(opts, splash.WithMusic(lastfm.New(cfg.Splash.LastFMAPIKey)))
			}

			return splash.New(cfg.Splash, cmd.OutOrStdout(), opts...).Render(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable ANSI colors")
	return cmd
}
