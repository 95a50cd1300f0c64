package pipeline

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/namepairs/internal/fetcher"
	"github.com/sells-group/namepairs/internal/model"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatTSV  = "tsv"
	FormatXLSX = "xlsx"
)

// export writes the scored pair table to the configured output file.
func (p *Pipeline) export(ctx context.Context) (*model.PhaseResult, error) {
	all, err := p.store.ListPairs(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "export: list pairs")
	}

	out := p.cfg.Output
	if err := ExportPairs(all, out.Path, out.Format, out.Delimiter); err != nil {
		return nil, err
	}
	p.counters.Exported = int64(len(all))

	zap.L().Info("export: pairs written",
		zap.String("path", out.Path),
		zap.String("format", out.Format),
		zap.Int("pairs", len(all)),
	)
	return &model.PhaseResult{
		Rows:     int64(len(all)),
		Metadata: map[string]any{"path": out.Path, "format": out.Format},
	}, nil
}

// ExportPairs writes pairs to path in the given format. The delimiter applies
// to csv only; tsv always uses a tab.
func ExportPairs(pairs []model.NamePair, path, format, delimiter string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "export: create output dir")
		}
	}

	switch format {
	case FormatXLSX:
		return writePairsXLSX(pairs, path)
	case FormatTSV:
		delimiter = "tab"
	case FormatCSV, "":
	default:
		return eris.Errorf("export: unknown format %q", format)
	}

	delim, err := fetcher.ParseDelimiter(delimiter)
	if err != nil {
		return eris.Wrap(err, "export: delimiter")
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create file")
	}
	defer f.Close() //nolint:errcheck

	if err := WritePairsCSV(f, pairs, delim); err != nil {
		return err
	}
	return eris.Wrap(f.Close(), "export: close file")
}

// WritePairsCSV encodes pairs as delimited text with a header row. Booleans
// are written as lowercase true/false.
func WritePairsCSV(w io.Writer, pairs []model.NamePair, delim rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delim

	enc := csvutil.NewEncoder(cw)
	enc.Register(func(f float64) ([]byte, error) {
		return strconv.AppendFloat(nil, f, 'f', -1, 64), nil
	})

	if err := enc.EncodeHeader(model.NamePair{}); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for i := range pairs {
		if err := enc.Encode(pairs[i]); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush")
}

func writePairsXLSX(pairs []model.NamePair, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("pairs")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range model.PairColumns {
		header.AddCell().SetString(col)
	}

	for _, p := range pairs {
		row := sheet.AddRow()
		for _, v := range []string{
			p.LeftName, p.LeftNorm, p.LeftFP, p.LeftLang, string(p.LeftCategory),
			p.RightName, p.RightNorm, p.RightFP, p.RightLang, string(p.RightCategory),
			strconv.FormatBool(p.Match),
		} {
			row.AddCell().SetString(v)
		}
		row.AddCell().SetInt(p.DistNorm)
		row.AddCell().SetInt(p.DistFP)
		row.AddCell().SetFloat(p.Score)
		row.AddCell().SetString(p.Source)
	}

	return eris.Wrap(f.Save(path), "export: save xlsx")
}
