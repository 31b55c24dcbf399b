package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/yanqian/ai-astrology/internal/infra/config"
	"github.com/yanqian/ai-astrology/pkg/logger"
)

// cli carries state shared by subcommands.
type cli struct {
	verbose bool
	jsonOut bool
	logger  *slog.Logger
	// loadConfig is swapped in tests.
	loadConfig func() (*config.Config, error)
}

func newRootCmd() *cobra.Command {
	return (&cli{loadConfig: config.Load}).rootCmd()
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "astroctl",
		Short: "Astrology chart and report CLI",
		Long: `astroctl casts natal charts and runs the AI report pipeline without the HTTP service.

Example usage:
  astroctl chart --date 1990-01-01 --time 12:00 --lat 39.9042 --lng 116.4074
  astroctl report --date 1990-01-01 --time 12:00 --location 北京
  astroctl providers`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := "warn"
			if c.verbose {
				level = "debug"
			}
			c.logger = logger.NewWithWriter(cmd.ErrOrStderr(), level, "text")
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "verbose logging to stderr")
	root.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "output as JSON")

	root.AddCommand(newChartCmd(c), newReportCmd(c), newProvidersCmd(c))
	return root
}
