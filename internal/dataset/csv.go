package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/Veraticus/codeadvisor/internal/common"
	"github.com/Veraticus/codeadvisor/internal/model"
)

// ReadFile reads a delimited code-metric table from path.
func ReadFile(path string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.NewUserError(fmt.Sprintf("data file not found: %s", path), err)
		}
		return nil, fmt.Errorf("failed to open data file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	table, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// ReadCSV parses a header-first CSV table. Schema features and the label must be
// numeric; other columns become numeric when every value parses and are kept as
// text columns otherwise.
func ReadCSV(r io.Reader) (*model.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrNotADataTable, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header row", common.ErrNotADataTable)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	body := records[1:]

	required := append(model.FeatureNames(), model.LabelColumn)
	table := &model.Table{Rows: make([][]float64, len(body))}
	for r := range table.Rows {
		table.Rows[r] = make([]float64, 0, len(header))
	}

	for c, name := range header {
		values := make([]float64, len(body))
		var bad *model.SchemaError
		for r, rec := range body {
			raw := strings.TrimSpace(rec[c])
			v, perr := strconv.ParseFloat(raw, 64)
			if perr != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				bad = &model.SchemaError{Column: name, Row: r + 1, Value: raw}
				break
			}
			values[r] = v
		}

		switch {
		case bad == nil:
			table.Columns = append(table.Columns, name)
		case slices.Contains(required, name):
			return nil, bad
		default:
			if table.Text == nil {
				table.Text = make(map[string][]string)
			}
			text := make([]string, len(body))
			for r, rec := range body {
				text[r] = strings.TrimSpace(rec[c])
			}
			table.Text[name] = text
			continue
		}

		for r := range body {
			table.Rows[r] = append(table.Rows[r], values[r])
		}
	}
	return table, nil
}

// WriteFile writes table to path as CSV, creating parent directories.
func WriteFile(path string, table *model.Table) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, table); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// WriteCSV writes the numeric columns followed by the text columns in name order.
func WriteCSV(w io.Writer, table *model.Table) error {
	if err := table.CheckRectangular(); err != nil {
		return err
	}

	textCols := make([]string, 0, len(table.Text))
	for name := range table.Text {
		textCols = append(textCols, name)
	}
	slices.Sort(textCols)

	writer := csv.NewWriter(w)
	header := append(append([]string(nil), table.Columns...), textCols...)
	if err := writer.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for r, row := range table.Rows {
		for c, v := range row {
			record[c] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		for i, name := range textCols {
			record[len(row)+i] = table.Text[name][r]
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
