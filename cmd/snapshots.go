package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	snapshotsLayer string
	snapshotsLimit int
	snapshotsKeep  int
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Manage the snapshot archive",
	Long:  "Lists, deletes, and prunes archived feature documents.",
}

var snapshotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived snapshots, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openSnapshots(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		snaps, err := st.List(ctx, snapshotsLayer, snapshotsLimit)
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			fmt.Fprintln(os.Stderr, "No snapshots found.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tLAYER\tSTREET\tRECORDS\tBYTES\tFETCHED")
		for _, snap := range snaps {
			street := snap.Street
			if street == "" {
				street = "(full dump)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
				snap.ID, snap.Layer, street, snap.Records, snap.Bytes,
				snap.FetchedAt.Format(time.RFC3339))
		}
		if err := w.Flush(); err != nil {
			return eris.Wrap(err, "snapshots: flush output")
		}
		return nil
	},
}

var snapshotsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openSnapshots(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Delete(ctx, args[0]); err != nil {
			return err
		}
		cmd.Printf("deleted %s\n", args[0])
		return nil
	},
}

var snapshotsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop all but the newest snapshots of the configured layer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openSnapshots(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		keep := snapshotsKeep
		if !cmd.Flags().Changed("keep") {
			keep = cfg.Snapshot.Keep
		}

		layer := snapshotsLayer
		if layer == "" {
			layer = cfg.WFS.FeatureType
		}

		dropped, err := st.Prune(ctx, layer, keep)
		if err != nil {
			return err
		}
		cmd.Printf("pruned %d snapshot(s), kept the newest %d of %s\n", dropped, keep, layer)
		return nil
	},
}

func init() {
	snapshotsCmd.PersistentFlags().StringVar(&snapshotsLayer, "layer", "", "restrict to this feature type")
	snapshotsListCmd.Flags().IntVar(&snapshotsLimit, "limit", 20, "maximum entries to list")
	snapshotsPruneCmd.Flags().IntVar(&snapshotsKeep, "keep", 0, "snapshots to keep per layer (default from config)")

	snapshotsCmd.AddCommand(snapshotsListCmd, snapshotsDeleteCmd, snapshotsPruneCmd)
	rootCmd.AddCommand(snapshotsCmd)
}
