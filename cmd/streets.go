package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/paikkatieto/rakennus-cli/internal/registry"
)

var (
	streetsStreet   string
	streetsSrc      string
	streetsSnapshot string
)

var streetsCmd = &cobra.Command{
	Use:   "streets",
	Short: "Browse the address index",
	Long:  "Lists every indexed street, or with --street every house number on one street with its record count.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, _, err := buildRegistry(cmd.Context(), streetsSrc, streetsSnapshot)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

		if streetsStreet != "" {
			numbers, err := reg.Numbers(streetsStreet)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "NUMBER\tRECORDS")
			for _, number := range numbers {
				recs, err := reg.RecordsAt(streetsStreet, number)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%d\n", formatNumber(number), len(recs))
			}
		} else {
			fmt.Fprintln(w, "STREET\tNUMBERS")
			for _, street := range reg.Streets() {
				numbers, err := reg.Numbers(street)
				if err != nil {
					return err
				}
				name := street
				if name == registry.NoStreet {
					name = "(no street)"
				}
				fmt.Fprintf(w, "%s\t%d\n", name, len(numbers))
			}
		}

		if err := w.Flush(); err != nil {
			return eris.Wrap(err, "streets: flush output")
		}
		return nil
	},
}

func init() {
	streetsCmd.Flags().StringVar(&streetsStreet, "street", "", "list house numbers on this street")
	streetsCmd.Flags().StringVar(&streetsSrc, "src", "", "document source: file path or http/ftp URL (zipped or plain)")
	streetsCmd.Flags().StringVar(&streetsSnapshot, "snapshot", "", "build from this snapshot id")
	rootCmd.AddCommand(streetsCmd)
}
