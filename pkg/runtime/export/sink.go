package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/compliance-atlas/pkg/models/domain"
)

// Sink consumes a finished report
type Sink interface {
	Handle(ctx context.Context, report *domain.ComplianceReport) error
}

// Format is a file format a report can be exported to
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormats parses format names, accepting comma separated values
func ParseFormats(raw []string) ([]Format, error) {
	var out []Format
	seen := make(map[Format]struct{})
	for _, r := range raw {
		for _, name := range strings.Split(r, ",") {
			f := Format(strings.ToLower(strings.TrimSpace(name)))
			if f == "" {
				continue
			}
			switch f {
			case FormatXLSX, FormatPDF, FormatJSON, FormatCSV:
			default:
				return nil, &domain.ConfigurationError{Op: "format", Err: fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, name)}
			}
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return []Format{FormatXLSX}, nil
	}
	return out, nil
}

// DefaultPath names the report after the input file and the run time:
// scan_results_compliance_report_20240501_120000.xlsx
func DefaultPath(source string, format Format, at time.Time) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s_compliance_report_%s.%s", base, at.Format("20060102_150405"), format)
}

// WithExt swaps the extension of path for the format's one
func WithExt(path string, format Format) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + string(format)
}

type writer interface {
	Write(ctx context.Context, report *domain.ComplianceReport, w io.Writer) error
}

// fileSink writes a report to a file through a temp file in the same directory
type fileSink struct {
	path   string
	format Format
	writer writer
}

// NewFileSink returns a sink writing the format to path
func NewFileSink(format Format, path string) (Sink, error) {
	var w writer
	switch format {
	case FormatXLSX:
		w = NewWorkbook()
	case FormatPDF:
		w = NewPDF()
	case FormatJSON:
		w = NewJSON()
	case FormatCSV:
		w = NewCSV()
	default:
		return nil, &domain.ConfigurationError{Op: "format", Err: fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)}
	}
	return &fileSink{path: path, format: format, writer: w}, nil
}

func (s *fileSink) Handle(ctx context.Context, report *domain.ComplianceReport) error {
	if err := writeAtomic(s.path, func(w io.Writer) error {
		return s.writer.Write(ctx, report, w)
	}); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Str("format", string(s.format)).Str("path", s.path).Msg("report written")
	return nil
}

func writeAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &domain.IOError{Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	defer func() {
		// no-op once renamed
		_ = os.Remove(tmpPath)
	}()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return &domain.IOError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &domain.IOError{Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &domain.IOError{Path: path, Err: err}
	}
	return nil
}
