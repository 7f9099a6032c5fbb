package table

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/de-tools/compliance-atlas/pkg/models/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader parses a tabular payload
type Reader func(ctx context.Context, r io.Reader) (*Table, error)

var readers = map[string]Reader{
	".csv":  ReadCSV,
	".xlsx": ReadXLSX,
	".xlsm": ReadXLSX,
}

// Supported reports whether a file name has a readable extension
func Supported(name string) bool {
	_, ok := readers[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Read picks a reader from the extension of name and parses r
func Read(ctx context.Context, name string, r io.Reader) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(name))
	read, ok := readers[ext]
	if !ok {
		return nil, &domain.ConfigurationError{
			Op:  fmt.Sprintf("read %s", name),
			Err: fmt.Errorf("%w %q: use CSV or Excel (.xlsx)", domain.ErrUnsupportedFormat, ext),
		}
	}

	t, err := read(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("file", name).
		Int("columns", len(t.Columns)).
		Int("rows", t.Len()).
		Msg("table loaded")
	return t, nil
}

// ReadCSV parses a CSV payload whose first record is the header
func ReadCSV(_ context.Context, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file: no header row")
	}
	if err != nil {
		return nil, err
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return New(header, rows), nil
}

// ReadXLSX parses the first worksheet of a workbook whose first row is the header
func ReadXLSX(_ context.Context, r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty: no header row", sheets[0])
	}

	return New(rows[0], rows[1:]), nil
}
