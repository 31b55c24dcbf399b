package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanqian/ai-astrology/internal/bootstrap"
)

func newProvidersCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "Print the active AI provider fallback chain",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			chain := bootstrap.Gateway(cfg, c.logger).Chain()

			out := cmd.OutOrStdout()
			if c.jsonOut {
				ids := make([]string, 0, len(chain))
				for _, id := range chain {
					ids = append(ids, string(id))
				}
				return json.NewEncoder(out).Encode(map[string]any{"providers": ids})
			}
			if len(chain) == 0 {
				fmt.Fprintln(out, "no providers configured")
				return nil
			}
			for i, id := range chain {
				fmt.Fprintf(out, "%d. %s\n", i+1, id)
			}
			return nil
		},
	}
}
