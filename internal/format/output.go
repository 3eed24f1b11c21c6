package format

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Write renders v as json (default) or table. Table output understands the
// {"data": ...} envelope and Tabular values; anything else falls back to indented JSON.
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "table":
		return WriteTable(w, v)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// Known reports whether format is accepted by Write.
func Known(format string) bool {
	switch format {
	case "", "json", "table":
		return true
	}
	return false
}

// WriteJSON writes one JSON document per call. HTML escaping is off so SMS text
// ("Tickets & info <link>") prints as typed.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
