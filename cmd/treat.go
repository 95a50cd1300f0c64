package main

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/namepairs/internal/fetcher"
	"github.com/sells-group/namepairs/internal/treatment"
)

var (
	treatInput      string
	treatColumn     string
	treatTreatments string
	treatSeed       int64
	treatOutput     string
	treatDelimiter  string
)

// fixtureRow is one treated name in the fixture output.
type fixtureRow struct {
	Original  string `csv:"original"`
	Treatment string `csv:"treatment"`
	Name      string `csv:"name"`
}

var treatCmd = &cobra.Command{
	Use:   "treat",
	Short: "Apply name treatments to build screening fixtures",
	Long: `Reads names from a CSV or XLSX column and writes one fuzzed variant per
name and treatment. A fixed --seed always produces the same output.

Treatments: ` + strings.Join(treatment.Names(), ", ") + `

Examples:
  namepairs treat --input names.csv --column name --treatments noop,replace_random_vowel --seed 7 --output fixtures.csv`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("treat"); err != nil {
			return err
		}

		names, err := readTreatNames(cmd.Context(), treatInput, treatColumn, treatDelimiter)
		if err != nil {
			return err
		}

		treatments := treatment.Names()
		if treatTreatments != "" {
			treatments = splitList(treatTreatments)
		}

		rows, err := treatNames(names, treatments, treatSeed)
		if err != nil {
			return err
		}
		if err := writeFixtures(treatOutput, rows); err != nil {
			return err
		}

		zap.L().Info("treat: fixtures written",
			zap.String("output", treatOutput),
			zap.Int("names", len(names)),
			zap.Int("rows", len(rows)),
		)
		return nil
	},
}

func init() {
	treatCmd.Flags().StringVar(&treatInput, "input", "", "input CSV or XLSX file")
	treatCmd.Flags().StringVar(&treatColumn, "column", "name", "column holding the names")
	treatCmd.Flags().StringVar(&treatTreatments, "treatments", "", "comma-separated treatments (default all)")
	treatCmd.Flags().Int64Var(&treatSeed, "seed", 1, "random seed")
	treatCmd.Flags().StringVar(&treatOutput, "output", "fixtures.csv", "output CSV path")
	treatCmd.Flags().StringVar(&treatDelimiter, "delimiter", ",", "input CSV delimiter")
	_ = treatCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(treatCmd)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// readTreatNames returns the non-empty values of column from a CSV or XLSX
// file, in file order.
func readTreatNames(ctx context.Context, path, column, delimiter string) ([]string, error) {
	var records []fetcher.Record
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		recs, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
		if err != nil {
			return nil, eris.Wrap(err, "treat: read xlsx")
		}
		records = recs
	} else {
		delim, err := fetcher.ParseDelimiter(delimiter)
		if err != nil {
			return nil, eris.Wrap(err, "treat: delimiter")
		}
		rc, err := fetcher.OpenInput(path, os.TempDir())
		if err != nil {
			return nil, eris.Wrap(err, "treat: open input")
		}
		defer rc.Close() //nolint:errcheck

		rowCh, errCh := fetcher.StreamCSV(ctx, rc, fetcher.CSVOptions{Delimiter: delim, LazyQuotes: true})
		for rec := range rowCh {
			records = append(records, rec)
		}
		if err := <-errCh; err != nil {
			return nil, eris.Wrap(err, "treat: read csv")
		}
	}

	if len(records) > 0 && !records[0].Has(column) {
		return nil, eris.Errorf("treat: column %q not found", column)
	}
	var names []string
	for _, rec := range records {
		if v := strings.TrimSpace(rec.Get(column)); v != "" {
			names = append(names, v)
		}
	}
	return names, nil
}

// treatNames applies every treatment to every name with one seeded source.
func treatNames(names, treatments []string, seed int64) ([]fixtureRow, error) {
	t := treatment.New(seed)
	rows := make([]fixtureRow, 0, len(names)*len(treatments))
	for _, name := range names {
		variants, err := t.Apply(name, treatments)
		if err != nil {
			return nil, err
		}
		for _, v := range variants {
			rows = append(rows, fixtureRow{Original: name, Treatment: v.Treatment, Name: v.Name})
		}
	}
	return rows, nil
}

func writeFixtures(path string, rows []fixtureRow) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "treat: create output")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	if err := enc.EncodeHeader(fixtureRow{}); err != nil {
		return eris.Wrap(err, "treat: write header")
	}
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return eris.Wrap(err, "treat: write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "treat: flush")
	}
	return eris.Wrap(f.Close(), "treat: close output")
}
