package export

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/paikkatieto/rakennus-cli/internal/registry"
)

// Excel refuses sheet names longer than this.
const maxSheetNameRunes = 31

// streetlessSheet files records without a street when splitting by street.
const streetlessSheet = "kaduton"

// XLSXOptions configures a workbook export.
type XLSXOptions struct {
	Sheet          string // single-sheet name (default "rakennukset")
	SheetPerStreet bool   // one sheet per street instead of a single sheet
}

// ToXLSX writes the registry's primary records to an xlsx workbook, one row
// per record under a header row. With SheetPerStreet each street gets its own
// sheet (street-less records go to the kaduton sheet) and rows follow the
// address index order; otherwise a single sheet holds all records in
// insertion order.
func ToXLSX(path string, reg *registry.Database, opts XLSXOptions) error {
	if opts.Sheet == "" {
		opts.Sheet = "rakennukset"
	}

	cols := columns(reg)
	file := xlsx.NewFile()

	var sheets int
	if opts.SheetPerStreet {
		n, err := streetSheets(file, reg, cols)
		if err != nil {
			return err
		}
		sheets = n
	} else {
		sheet, err := file.AddSheet(sheetName(opts.Sheet))
		if err != nil {
			return eris.Wrapf(err, "export: add sheet %q", opts.Sheet)
		}
		writeHeader(sheet, cols)
		for _, rec := range reg.All() {
			writeRow(sheet, rec, cols)
		}
		sheets = 1
	}

	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "export: save workbook %s", path)
	}

	zap.L().Info("workbook written",
		zap.String("component", "export.xlsx"),
		zap.String("path", path),
		zap.Int("records", reg.Len()),
		zap.Int("sheets", sheets),
	)
	return nil
}

// streetSheets writes one sheet per indexed street, in street order.
func streetSheets(file *xlsx.File, reg *registry.Database, cols []string) (int, error) {
	used := make(map[string]bool)
	var sheets int

	for _, street := range reg.Streets() {
		name := streetlessSheet
		if street != registry.NoStreet {
			name = sheetName(street)
		}
		name = uniqueName(name, used)

		sheet, err := file.AddSheet(name)
		if err != nil {
			return sheets, eris.Wrapf(err, "export: add sheet for street %q", street)
		}
		writeHeader(sheet, cols)

		numbers, err := reg.Numbers(street)
		if err != nil {
			return sheets, err
		}
		for _, number := range numbers {
			records, err := reg.RecordsAt(street, number)
			if err != nil {
				return sheets, err
			}
			for _, rec := range records {
				writeRow(sheet, rec, cols)
			}
		}
		sheets++
	}

	return sheets, nil
}

// columns returns the export column order: the profile's designated fields
// first, then every other field name in first-seen document order.
func columns(reg *registry.Database) []string {
	profile := reg.Profile()
	cols := []string{
		profile.IdentifierField,
		profile.StreetField,
		profile.NumberField,
		profile.PostalCodeField,
	}
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		seen[c] = true
	}

	for _, rec := range reg.All() {
		for _, name := range rec.FieldNames() {
			if !seen[name] {
				seen[name] = true
				cols = append(cols, name)
			}
		}
	}
	return cols
}

func writeHeader(sheet *xlsx.Sheet, cols []string) {
	row := sheet.AddRow()
	for _, c := range cols {
		row.AddCell().SetString(c)
	}
}

func writeRow(sheet *xlsx.Sheet, rec *registry.Record, cols []string) {
	row := sheet.AddRow()
	for _, c := range cols {
		cell := row.AddCell()
		v, ok := rec.Get(c)
		if !ok || v.IsAbsent() {
			continue
		}
		switch v.Kind {
		case registry.KindInt:
			cell.SetInt64(v.I64)
		case registry.KindFloat:
			cell.SetFloat(v.F64)
		default:
			cell.SetString(v.S)
		}
	}
}

var sheetNameReplacer = strings.NewReplacer(
	"[", "(", "]", ")", ":", "-", "*", "-", "?", "-", "/", "-", "\\", "-",
)

// sheetName makes a street name acceptable to Excel: forbidden characters
// replaced, length capped.
func sheetName(street string) string {
	name := sheetNameReplacer.Replace(street)
	return truncateRunes(name, maxSheetNameRunes)
}

// uniqueName suffixes a sheet name until it is unused in the workbook.
func uniqueName(name string, used map[string]bool) string {
	base := name
	for i := 2; used[name]; i++ {
		suffix := fmt.Sprintf(" %d", i)
		name = truncateRunes(base, maxSheetNameRunes-utf8.RuneCountInString(suffix)) + suffix
	}
	used[name] = true
	return name
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
