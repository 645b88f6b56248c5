package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/paikkatieto/rakennus-cli/internal/registry"
)

var (
	lookupID       string
	lookupStreet   string
	lookupNumber   int
	lookupSrc      string
	lookupSnapshot string
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Look up building records by identifier or address",
	Long:  "Builds a registry from a local file, an URL, a snapshot, or a live fetch, then resolves --id to a full record or --street/--number to the records at that address.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if lookupID == "" && lookupStreet == "" {
			return eris.New("lookup: --id or --street is required")
		}

		reg, _, err := buildRegistry(cmd.Context(), lookupSrc, lookupSnapshot)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if lookupID != "" {
			rec, err := reg.GetRecord(lookupID)
			if err != nil {
				return err
			}
			formatRecord(out, rec)

			street, number, err := reg.GetAddress(lookupID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\naddress: %s\n", formatAddress(street, number))
			return nil
		}

		if !cmd.Flags().Changed("number") {
			return lookupByStreet(out, reg, lookupStreet)
		}

		recs, err := reg.RecordsAt(lookupStreet, lookupNumber)
		if err != nil {
			return err
		}
		for i, rec := range recs {
			if i > 0 {
				fmt.Fprintln(out)
			}
			formatRecord(out, rec)
		}
		fmt.Fprintf(out, "\n%d record(s) at %s %d\n", len(recs), lookupStreet, lookupNumber)
		return nil
	},
}

// lookupByStreet lists every house number on the street with its record ids.
func lookupByStreet(out io.Writer, reg *registry.Database, street string) error {
	numbers, err := reg.Numbers(street)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tRECORDS")
	total := 0
	for _, number := range numbers {
		recs, err := reg.RecordsAt(street, number)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(recs))
		for _, rec := range recs {
			ids = append(ids, rec.ID())
		}
		total += len(recs)
		fmt.Fprintf(w, "%s\t%s\n", formatNumber(number), formatIDs(ids))
	}
	if err := w.Flush(); err != nil {
		return eris.Wrap(err, "lookup: flush output")
	}
	fmt.Fprintf(out, "\n%d record(s) on %s\n", total, street)
	return nil
}

// formatRecord prints every field of a record, in document order.
func formatRecord(out io.Writer, rec *registry.Record) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, name := range rec.FieldNames() {
		v, _ := rec.Get(name)
		fmt.Fprintf(w, "%s\t%s\n", name, v.String())
	}
	w.Flush() //nolint:errcheck
}

func formatAddress(street string, number int) string {
	if street == registry.NoStreet && number == registry.NoNumber {
		return "(none)"
	}
	if street == registry.NoStreet {
		street = "(no street)"
	}
	if number == registry.NoNumber {
		return street
	}
	return fmt.Sprintf("%s %d", street, number)
}

func formatNumber(number int) string {
	if number == registry.NoNumber {
		return "(none)"
	}
	return fmt.Sprintf("%d", number)
}

func formatIDs(ids []string) string {
	const max = 8
	if len(ids) <= max {
		out := ""
		for i, id := range ids {
			if i > 0 {
				out += ", "
			}
			out += id
		}
		return out
	}
	return fmt.Sprintf("%s, ... (%d total)", formatIDs(ids[:max]), len(ids))
}

func init() {
	lookupCmd.Flags().StringVar(&lookupID, "id", "", "building identifier (vtj_prt)")
	lookupCmd.Flags().StringVar(&lookupStreet, "street", "", "street name")
	lookupCmd.Flags().IntVar(&lookupNumber, "number", 0, "house number on --street")
	lookupCmd.Flags().StringVar(&lookupSrc, "src", "", "document source: file path or http/ftp URL (zipped or plain)")
	lookupCmd.Flags().StringVar(&lookupSnapshot, "snapshot", "", "build from this snapshot id")
	rootCmd.AddCommand(lookupCmd)
}
