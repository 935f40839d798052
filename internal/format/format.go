// Package format renders listings as TSV, CSV or JSON for scripting.
package format

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Format selects an output encoding.
type Format string

const (
	FormatTSV  Format = "tsv"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates an output format from a flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatTSV, FormatCSV, FormatJSON:
		return Format(strings.ToLower(s)), nil
	}
	return "", fmt.Errorf("invalid output format %q (expected tsv, csv or json)", s)
}

// Write renders items in the given format, limited to the named fields.
// Field names follow the items' JSON tags. An empty fields list emits all
// fields. items must be a slice of JSON-encodable values.
func Write(w io.Writer, f Format, fields []string, items any) error {
	rows, err := toRows(items)
	if err != nil {
		return err
	}
	if err := validateFields(rows, fields); err != nil {
		return err
	}

	switch f {
	case FormatJSON:
		return writeJSON(w, fields, rows)
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := writeTable(cw.Write, fields, rows); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	case FormatTSV:
		return writeTable(func(record []string) error {
			_, err := fmt.Fprintln(w, strings.Join(record, "\t"))
			return err
		}, fields, rows)
	}
	return fmt.Errorf("invalid output format %q", f)
}

// toRows round-trips items through JSON so fields can be selected by tag
// name regardless of the concrete item type.
func toRows(items any) ([]map[string]any, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encoding items: %w", err)
	}
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("items must be a slice of records: %w", err)
	}
	return rows, nil
}

func validateFields(rows []map[string]any, fields []string) error {
	if len(fields) == 0 || len(rows) == 0 {
		return nil
	}
	for _, f := range fields {
		if _, ok := rows[0][f]; !ok {
			known := make([]string, 0, len(rows[0]))
			for k := range rows[0] {
				known = append(known, k)
			}
			sort.Strings(known)
			return fmt.Errorf("unknown field %q (available: %s)", f, strings.Join(known, ", "))
		}
	}
	return nil
}

func writeJSON(w io.Writer, fields []string, rows []map[string]any) error {
	out := rows
	if len(fields) > 0 {
		out = make([]map[string]any, len(rows))
		for i, row := range rows {
			filtered := make(map[string]any, len(fields))
			for _, f := range fields {
				filtered[f] = row[f]
			}
			out[i] = filtered
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

type writeRecord func(record []string) error

func writeTable(write writeRecord, fields []string, rows []map[string]any) error {
	for _, row := range rows {
		names := fields
		if len(names) == 0 {
			names = sortedKeys(row)
		}
		record := make([]string, len(names))
		for i, f := range names {
			record[i] = renderValue(row[f])
		}
		if err := write(record); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(row map[string]any) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// renderValue flattens a JSON value into a single cell. Tabs and newlines
// would break the row format, so they become spaces.
func renderValue(v any) string {
	var s string
	switch val := v.(type) {
	case nil:
		s = ""
	case string:
		s = val
	case bool:
		s = strconv.FormatBool(val)
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = renderValue(item)
		}
		s = strings.Join(parts, ",")
	default:
		s = fmt.Sprint(val)
	}
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
