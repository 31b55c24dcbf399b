package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yanqian/ai-astrology/internal/domain/chart"
	"github.com/yanqian/ai-astrology/internal/infra/ephemeris/remote"
)

type chartOptions struct {
	date, clock  string
	lat, lng     float64
	name         string
	ephemerisURL string
	houseSystem  string
}

func newChartCmd(c *cli) *cobra.Command {
	var opts chartOptions
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Cast a chart for a birth moment and coordinates",
		Long: `Cast a natal chart offline from coordinates. Without --ephemeris-url the
calendar heuristics are used; with it, positions come from the remote service.

Examples:
  astroctl chart --date 1990-01-01 --time 12:00 --lat 39.9042 --lng 116.4074
  astroctl chart --date 1990-01-01 --time 12:00 --lat 39.9 --lng 116.4 --ephemeris-url http://localhost:8090 --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runChart(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.date, "date", "", "birth date, YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.clock, "time", "", "birth time, HH:MM")
	cmd.Flags().Float64Var(&opts.lat, "lat", 0, "latitude in degrees")
	cmd.Flags().Float64Var(&opts.lng, "lng", 0, "longitude in degrees")
	cmd.Flags().StringVar(&opts.name, "name", "", "place label")
	cmd.Flags().StringVar(&opts.ephemerisURL, "ephemeris-url", "", "remote ephemeris base URL")
	cmd.Flags().StringVar(&opts.houseSystem, "house-system", chart.DefaultHouseSystem, "house system letter for the remote ephemeris")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("time")
	return cmd
}

func (c *cli) runChart(cmd *cobra.Command, opts chartOptions) error {
	var eph chart.Ephemeris
	if opts.ephemerisURL != "" {
		client, err := remote.NewClient(opts.ephemerisURL, 0)
		if err != nil {
			return err
		}
		eph = client
	}
	calc := chart.NewCalculator(eph, opts.houseSystem, c.logger)

	geo := chart.GeoLocation{Latitude: opts.lat, Longitude: opts.lng, Name: opts.name}
	res, err := calc.Compute(cmd.Context(), chart.BirthInput{Date: opts.date, Time: opts.clock, Place: opts.name}, geo)
	if err != nil {
		return err
	}

	view := newChartView(res)
	if c.jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	return view.print(cmd.OutOrStdout())
}

type chartView struct {
	JulianDay float64     `json:"julianDay"`
	Mode      chart.Mode  `json:"mode"`
	Bodies    []bodyView  `json:"bodies"`
	Houses    []houseView `json:"houses"`
}

type bodyView struct {
	Body      chart.BodyID `json:"body"`
	Sign      string       `json:"sign"`
	English   string       `json:"signEnglish"`
	Degree    float64      `json:"degree"`
	Longitude float64      `json:"longitude"`
	House     int          `json:"house"`
}

type houseView struct {
	Number int     `json:"number"`
	Sign   string  `json:"sign"`
	Degree float64 `json:"degree"`
	Name   string  `json:"name"`
}

func newChartView(res chart.ChartResult) chartView {
	view := chartView{JulianDay: res.JulianDay, Mode: res.Mode}
	for _, body := range chart.Bodies {
		pos := res.Positions[body]
		view.Bodies = append(view.Bodies, bodyView{
			Body:      body,
			Sign:      pos.Sign.String(),
			English:   pos.Sign.English(),
			Degree:    pos.Degree,
			Longitude: pos.Longitude,
			House:     res.HouseOf(body),
		})
	}
	for _, h := range res.Houses {
		view.Houses = append(view.Houses, houseView{Number: h.Number, Sign: h.Sign.String(), Degree: h.Degree, Name: h.Name})
	}
	return view
}

func (v chartView) print(out io.Writer) error {
	fmt.Fprintf(out, "mode: %s  julian day: %.6f\n\n", v.Mode, v.JulianDay)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BODY\tSIGN\tDEGREE\tHOUSE")
	for _, b := range v.Bodies {
		fmt.Fprintf(tw, "%s\t%s (%s)\t%.2f\t%d\n", b.Body, b.Sign, b.English, b.Degree, b.House)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "HOUSE\tSIGN\tDEGREE\tNAME")
	for _, h := range v.Houses {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%s\n", h.Number, h.Sign, h.Degree, h.Name)
	}
	return tw.Flush()
}
