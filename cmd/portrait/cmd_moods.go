package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/timmy/portrait/internal/domain"
)

// moodsCmd lists the mood presets
var moodsCmd = &cobra.Command{
	Use:   "moods",
	Short: "List mood presets and their palettes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MOOD\tPRIMARY\tSECONDARY\tACCENT\tSHADOW\tHIGHLIGHT")
		for _, m := range domain.Moods {
			p := m.Palette()
			def := ""
			if m == domain.DefaultMood {
				def = " (default)"
			}
			fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\t%s\t%s\n", m, def,
				p.Primary.Hex(), p.Secondary.Hex(), p.Accent.Hex(), p.Shadow.Hex(), p.Highlight.Hex())
		}
		return w.Flush()
	},
}
