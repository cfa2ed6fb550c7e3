package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource replays a fixed dump into the sink.
type fakeSource struct {
	columns []string
	rows    [][]string
	err     error
}

func (f *fakeSource) Dump(_ context.Context, _ string, sink Sink) error {
	if f.err != nil {
		return f.err
	}
	if err := sink.Begin(f.columns); err != nil {
		return err
	}
	for _, row := range f.rows {
		if err := sink.Row(row); err != nil {
			return err
		}
	}
	return sink.End()
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"":      FormatCSV,
		"csv":   FormatCSV,
		"CSV":   FormatCSV,
		"jsonl": FormatJSONL,
		"JSONL": FormatJSONL,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("xlsx")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "clientes_ideal_collor.csv", Filename("clients", FormatCSV))
	assert.Equal(t, "ordens_servico_ideal_collor.jsonl", Filename("orders", FormatJSONL))
}

func TestExport_UnknownTable(t *testing.T) {
	svc := NewService(&fakeSource{})

	var buf bytes.Buffer
	err := svc.Export(context.Background(), "users", FormatCSV, &buf)
	require.ErrorIs(t, err, ErrUnknownTable)
}

func TestExport_CSV(t *testing.T) {
	svc := NewService(&fakeSource{
		columns: []string{"name", "city"},
		rows: [][]string{
			{"Maria Silva", "São Paulo"},
			{`Obra "Casa Azul"`, ""},
		},
	})

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), "clients", FormatCSV, &buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	// Every field is quoted and joined with semicolons, quotes doubled.
	assert.Equal(t, `"name";"city"`, lines[0])
	assert.Equal(t, `"Maria Silva";"São Paulo"`, lines[1])
	assert.Equal(t, `"Obra ""Casa Azul""";""`, lines[2])
}

func TestExport_JSONL(t *testing.T) {
	svc := NewService(&fakeSource{
		columns: []string{"name", "status"},
		rows: [][]string{
			{"OS-000001", "open"},
			{"OS-000002", "completed"},
		},
	})

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), "orders", FormatJSONL, &buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	var first map[string]string
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, map[string]string{"name": "OS-000001", "status": "open"}, first)

	var second map[string]string
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "completed", second["status"])
}

func TestCSVSink_RowWiderThanHeader(t *testing.T) {
	var buf bytes.Buffer
	sink := newCSVSink(&buf)
	require.NoError(t, sink.Begin([]string{"a"}))
	require.NoError(t, sink.Row([]string{"1", "2"}))
	require.NoError(t, sink.End())

	assert.Equal(t, "\"a\"\n\"1\";\"2\"\n", buf.String())
}
