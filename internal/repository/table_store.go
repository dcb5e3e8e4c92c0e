package repository

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"TelescopeStatus/internal/domain/models"
	"TelescopeStatus/internal/domain/repository"
	"TelescopeStatus/pkg/codec"
)

// FileTableStore implements TableStore on the local filesystem.
type FileTableStore struct{}

// NewFileTableStore creates a file-backed table store.
func NewFileTableStore() repository.TableStore {
	return &FileTableStore{}
}

// binaryTable is the serialized form of a table; rows are positional in
// column order.
type binaryTable struct {
	Columns []string `cbor:"columns"`
	Rows    [][]any  `cbor:"rows"`
}

func (s *FileTableStore) Load(path string, format repository.Format) (*models.Table, error) {
	if !repository.IsValidFormat(format) {
		return nil, fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, format)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table file: %w", err)
	}
	defer f.Close()

	switch format {
	case repository.FormatCSV:
		return readCSV(f)
	default:
		return readBinary(f)
	}
}

func (s *FileTableStore) Save(t *models.Table, path string, format repository.Format) error {
	if !repository.IsValidFormat(format) {
		return fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, format)
	}
	if t == nil {
		t = models.NewTable(nil)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create table dir: %w", err)
	}

	// Write to a sibling temp file so readers never see a partial table.
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	switch format {
	case repository.FormatCSV:
		err = writeCSV(tmp, t)
	default:
		err = writeBinary(tmp, t)
	}
	if err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename table file: %w", err)
	}
	return nil
}

// emptySingleCell is a one-column record holding an empty value. csv.Writer
// would emit it as a blank line, which csv.Reader skips.
const emptySingleCell = "\"\"\n"

func writeCSV(w io.Writer, t *models.Table) error {
	if len(t.Columns) == 0 && len(t.Rows) > 0 {
		return fmt.Errorf("write csv: %d rows without columns", len(t.Rows))
	}

	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)
	if err := writeCSVRecord(bw, cw, t.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			record[i] = formatCell(row[col])
		}
		if err := writeCSVRecord(bw, cw, record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func writeCSVRecord(bw *bufio.Writer, cw *csv.Writer, record []string) error {
	if len(record) != 1 || record[0] != "" {
		return cw.Write(record)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	_, err := bw.WriteString(emptySingleCell)
	return err
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// readCSV parses a header-first CSV file. A column whose non-empty cells all
// parse as numbers is read back as float64; empty cells become nil.
func readCSV(r io.Reader) (*models.Table, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return models.NewTable(nil), nil
	}

	header := records[0]
	body := records[1:]

	numeric := make([]bool, len(header))
	for i := range header {
		numeric[i] = true
		for _, rec := range body {
			if rec[i] == "" {
				continue
			}
			if _, err := strconv.ParseFloat(rec[i], 64); err != nil {
				numeric[i] = false
				break
			}
		}
	}

	t := models.NewTable(header)
	t.Rows = make([]models.Record, 0, len(body))
	for _, rec := range body {
		row := make(models.Record, len(header))
		for i, col := range header {
			cell := rec[i]
			switch {
			case cell == "":
				row[col] = nil
			case numeric[i]:
				f, _ := strconv.ParseFloat(cell, 64)
				row[col] = f
			default:
				row[col] = cell
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func writeBinary(w io.Writer, t *models.Table) error {
	payload := binaryTable{
		Columns: t.Columns,
		Rows:    make([][]any, len(t.Rows)),
	}
	if payload.Columns == nil {
		payload.Columns = []string{}
	}
	for i, row := range t.Rows {
		values := make([]any, len(t.Columns))
		for j, col := range t.Columns {
			values[j] = row[col]
		}
		payload.Rows[i] = values
	}

	if err := codec.WriteCompressed(w, payload); err != nil {
		return fmt.Errorf("write binary table: %w", err)
	}
	return nil
}

func readBinary(r io.Reader) (*models.Table, error) {
	var payload binaryTable
	if err := codec.ReadCompressed(r, &payload); err != nil {
		return nil, fmt.Errorf("read binary table: %w", err)
	}

	t := models.NewTable(payload.Columns)
	t.Rows = make([]models.Record, 0, len(payload.Rows))
	for i, values := range payload.Rows {
		if len(values) != len(payload.Columns) {
			return nil, fmt.Errorf("read binary table: row %d has %d values, want %d", i, len(values), len(payload.Columns))
		}
		row := make(models.Record, len(values))
		for j, col := range payload.Columns {
			row[col] = models.NormalizeValue(values[j])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
