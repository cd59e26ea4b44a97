package ledger

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// CSVHeader is the first row of every CSV ledger.
var CSVHeader = []string{"id", "timestamp", "identifier_1", "identifier_2", "identifier_3", "feedback"}

// MarshalCSV encodes records with [CSVHeader]. Timestamps are RFC 3339 in UTC.
func MarshalCSV(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return nil, err
	}
	row := make([]string, len(CSVHeader))
	for _, r := range records {
		if len(r.Identifiers) > MaxIdentifiers {
			return nil, fmt.Errorf("record %d: %d identifiers", r.ID, len(r.Identifiers))
		}
		row[0] = strconv.Itoa(r.ID)
		row[1] = r.Timestamp.UTC().Format(time.RFC3339)
		for i := range MaxIdentifiers {
			row[2+i] = ""
			if i < len(r.Identifiers) {
				row[2+i] = r.Identifiers[i]
			}
		}
		row[5] = r.Feedback
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// UnmarshalCSV decodes a ledger written by [MarshalCSV]. Empty input is an
// empty ledger. Columns are located by header name, so extra columns are
// ignored.
func UnmarshalCSV(data []byte) ([]Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("ledger csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.ToLower(h))] = i
	}
	for _, name := range []string{"id", "timestamp"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("ledger csv: missing %q column", name)
		}
	}
	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ledger csv line %d: %w", line, err)
		}
		id, err := strconv.Atoi(get(row, "id"))
		if err != nil {
			return nil, fmt.Errorf("ledger csv line %d: invalid id: %w", line, err)
		}
		ts, err := time.Parse(time.RFC3339, get(row, "timestamp"))
		if err != nil {
			return nil, fmt.Errorf("ledger csv line %d: invalid timestamp: %w", line, err)
		}
		rec := Record{ID: id, Timestamp: ts.UTC(), Feedback: get(row, "feedback")}
		for i := 1; i <= MaxIdentifiers; i++ {
			if v := get(row, "identifier_"+strconv.Itoa(i)); v != "" {
				rec.Identifiers = append(rec.Identifiers, v)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
