// Package backup exports business tables as downloadable dumps. Two formats
// are supported: semicolon-separated CSV with every field quoted, matching
// the spreadsheet exports the office already works with, and JSON Lines for
// machine consumption. Rows are written as they are scanned, nothing is
// buffered beyond the current row.
package backup

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Format selects the output encoding of an export.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

var (
	// ErrUnknownTable is returned for a table name outside the whitelist.
	ErrUnknownTable = errors.New("unknown backup table")
	// ErrUnknownFormat is returned for a format other than csv or jsonl.
	ErrUnknownFormat = errors.New("unknown backup format")
)

// ParseFormat resolves a user-supplied format string. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatJSONL:
		return FormatJSONL, nil
	default:
		return "", errors.Wrap(ErrUnknownFormat, s)
	}
}

// tables maps the exportable table names to the base name of the generated
// file. The keys double as the whitelist passed to the Source.
var tables = map[string]string{
	"clients":  "clientes_ideal_collor",
	"sites":    "locais_obra_ideal_collor",
	"products": "produtos_ideal_collor",
	"services": "servicos_ideal_collor",
	"orders":   "ordens_servico_ideal_collor",
}

// ValidTable reports whether table is exportable.
func ValidTable(table string) bool {
	_, ok := tables[table]
	return ok
}

// Filename is the suggested download name for a table export.
func Filename(table string, format Format) string {
	base, ok := tables[table]
	if !ok {
		base = table
	}
	return base + "." + string(format)
}

// Sink receives one table dump. Begin is called once with the column names,
// Row once per record in column order, End once after the last row.
type Sink interface {
	Begin(columns []string) error
	Row(values []string) error
	End() error
}

// Source produces table dumps. Implementations must only accept table names
// they know and stream every row into the sink.
type Source interface {
	Dump(ctx context.Context, table string, sink Sink) error
}

// Service validates export requests and renders them into a writer.
type Service struct {
	source Source
}

// NewService returns a backup Service reading from source.
func NewService(source Source) *Service {
	return &Service{source: source}
}

// Export writes the named table to w in the given format.
func (s *Service) Export(ctx context.Context, table string, format Format, w io.Writer) error {
	if _, ok := tables[table]; !ok {
		return errors.Wrap(ErrUnknownTable, table)
	}
	var sink Sink
	switch format {
	case FormatCSV:
		sink = newCSVSink(w)
	case FormatJSONL:
		sink = newJSONLSink(w)
	default:
		return errors.Wrap(ErrUnknownFormat, string(format))
	}
	if err := s.source.Dump(ctx, table, sink); err != nil {
		return errors.Wrap(err, "dump "+table)
	}
	return nil
}

// csvSink writes semicolon-separated records with every field quoted.
// encoding/csv only quotes on demand and has no way to force quoting, so the
// escaping is done by hand here.
type csvSink struct {
	w *bufio.Writer
}

func newCSVSink(w io.Writer) *csvSink {
	return &csvSink{w: bufio.NewWriter(w)}
}

func (s *csvSink) Begin(columns []string) error {
	return s.Row(columns)
}

func (s *csvSink) Row(values []string) error {
	for i, v := range values {
		if i > 0 {
			if err := s.w.WriteByte(';'); err != nil {
				return err
			}
		}
		if err := s.w.WriteByte('"'); err != nil {
			return err
		}
		if _, err := s.w.WriteString(strings.ReplaceAll(v, `"`, `""`)); err != nil {
			return err
		}
		if err := s.w.WriteByte('"'); err != nil {
			return err
		}
	}
	return s.w.WriteByte('\n')
}

func (s *csvSink) End() error {
	return s.w.Flush()
}

// jsonlSink writes one JSON object per row, keyed by column name.
type jsonlSink struct {
	w       *bufio.Writer
	enc     jx.Encoder
	columns []string
}

func newJSONLSink(w io.Writer) *jsonlSink {
	return &jsonlSink{w: bufio.NewWriter(w)}
}

func (s *jsonlSink) Begin(columns []string) error {
	s.columns = columns
	return nil
}

func (s *jsonlSink) Row(values []string) error {
	s.enc.Reset()
	s.enc.Obj(func(e *jx.Encoder) {
		for i, col := range s.columns {
			e.FieldStart(col)
			if i < len(values) {
				e.Str(values[i])
			} else {
				e.Str("")
			}
		}
	})
	if _, err := s.w.Write(s.enc.Bytes()); err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

func (s *jsonlSink) End() error {
	return s.w.Flush()
}
