package main

import (
	"github.com/spf13/cobra"

	"github.com/paikkatieto/rakennus-cli/internal/db"
	"github.com/paikkatieto/rakennus-cli/internal/export"
)

var (
	exportSrc      string
	exportSnapshot string

	exportPGTable  string
	exportPGSRID   int
	exportPGUpsert bool

	exportShpOut string

	exportXLSXOut       string
	exportXLSXPerStreet bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a built registry",
	Long:  "Builds a registry from the chosen source and writes it to a PostgreSQL table, an ESRI shapefile, or an xlsx workbook.",
}

var exportPGCmd = &cobra.Command{
	Use:   "pg",
	Short: "Export records into a PostgreSQL table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("export-pg"); err != nil {
			return err
		}

		reg, root, err := buildRegistry(ctx, exportSrc, exportSnapshot)
		if err != nil {
			return err
		}

		pool, err := db.Connect(ctx, cfg.DB.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		table := exportPGTable
		if table == "" {
			table = cfg.Export.Table
		}
		srid := exportPGSRID
		if !cmd.Flags().Changed("srid") {
			srid = cfg.Export.SRID
		}

		n, err := export.ToPG(ctx, pool, reg, root, export.PGOptions{
			Table:  table,
			SRID:   srid,
			Upsert: exportPGUpsert,
		})
		if err != nil {
			return err
		}

		cmd.Printf("exported %d records to %s\n", n, table)
		return nil
	},
}

var exportShpCmd = &cobra.Command{
	Use:   "shp",
	Short: "Export records as a POINT shapefile",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, root, err := buildRegistry(cmd.Context(), exportSrc, exportSnapshot)
		if err != nil {
			return err
		}

		stats, err := export.ToShapefile(exportShpOut, reg, root)
		if err != nil {
			return err
		}

		cmd.Printf("wrote %s: %d points, %d records without geometry skipped\n",
			exportShpOut, stats.Written, stats.Skipped)
		return nil
	},
}

var exportXLSXCmd = &cobra.Command{
	Use:   "xlsx",
	Short: "Export records as an xlsx workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, _, err := buildRegistry(cmd.Context(), exportSrc, exportSnapshot)
		if err != nil {
			return err
		}

		if err := export.ToXLSX(exportXLSXOut, reg, export.XLSXOptions{
			SheetPerStreet: exportXLSXPerStreet,
		}); err != nil {
			return err
		}

		cmd.Printf("wrote %s (%d records)\n", exportXLSXOut, reg.Len())
		return nil
	},
}

func init() {
	exportCmd.PersistentFlags().StringVar(&exportSrc, "src", "", "document source: file path or http/ftp URL (zipped or plain)")
	exportCmd.PersistentFlags().StringVar(&exportSnapshot, "snapshot", "", "build from this snapshot id")

	exportPGCmd.Flags().StringVar(&exportPGTable, "table", "", "target table (default from config)")
	exportPGCmd.Flags().IntVar(&exportPGSRID, "srid", export.DefaultSRID, "geometry SRID; 0 skips the geometry column")
	exportPGCmd.Flags().BoolVar(&exportPGUpsert, "upsert", false, "upsert on the identifier instead of plain COPY")

	exportShpCmd.Flags().StringVar(&exportShpOut, "out", "rakennukset.shp", "output shapefile path")

	exportXLSXCmd.Flags().StringVar(&exportXLSXOut, "out", "rakennukset.xlsx", "output workbook path")
	exportXLSXCmd.Flags().BoolVar(&exportXLSXPerStreet, "sheet-per-street", false, "one sheet per street instead of a single sheet")

	exportCmd.AddCommand(exportPGCmd, exportShpCmd, exportXLSXCmd)
	rootCmd.AddCommand(exportCmd)
}
