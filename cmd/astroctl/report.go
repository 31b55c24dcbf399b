package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanqian/ai-astrology/internal/bootstrap"
	"github.com/yanqian/ai-astrology/internal/domain/astroreport"
)

func newReportCmd(c *cli) *cobra.Command {
	var req astroreport.Request
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run the full report pipeline using the service configuration",
		Long: `Geocode the place, cast the chart and generate every narrative section with the
configured AI providers. Configuration is read exactly as the HTTP service reads it.

Example:
  astroctl report --date 1990-01-01 --time 12:00 --location 北京`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runReport(cmd, req)
		},
	}
	cmd.Flags().StringVar(&req.Date, "date", "", "birth date, YYYY-MM-DD")
	cmd.Flags().StringVar(&req.Time, "time", "", "birth time, HH:MM")
	cmd.Flags().StringVar(&req.Location, "location", "", "birth place")
	return cmd
}

func (c *cli) runReport(cmd *cobra.Command, req astroreport.Request) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	svc := astroreport.NewService(
		bootstrap.ReportConfig(cfg),
		bootstrap.Geocoder(cfg),
		bootstrap.Calculator(cfg, bootstrap.Ephemeris(cfg, c.logger), c.logger),
		bootstrap.Gateway(cfg, c.logger),
		c.logger,
	)

	report, err := svc.Generate(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if c.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"success": true, "data": report.Data, "location": report.Location})
	}

	d := report.Data
	fmt.Fprintf(out, "%s\n太阳 %s · 月亮 %s · 上升 %s · 水星 %s · 金星 %s · 火星 %s\n\n",
		report.Location, d.SunSign, d.MoonSign, d.RisingSign, d.MercurySign, d.VenusSign, d.MarsSign)
	fmt.Fprintf(out, "%s\n", d.Analysis)
	if ca := d.CategorizedAnalysis; ca != nil {
		for _, section := range []struct{ title, text string }{
			{"性格", ca.Personality}, {"沟通", ca.Communication}, {"爱情", ca.Love}, {"事业", ca.Career},
		} {
			fmt.Fprintf(out, "\n【%s】\n%s\n", section.title, section.text)
		}
	}
	if d.HouseAnalysis != "" {
		fmt.Fprintf(out, "\n【宫位】\n%s\n", d.HouseAnalysis)
	}
	return nil
}
