package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Tabular is implemented by values with a natural row layout.
type Tabular interface {
	TableHeaders() []string
	TableRows() [][]string
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// WriteTable renders v as a table. A {"data": ...} envelope is unwrapped first.
// Tabular values get their own columns, maps become key/value rows, and anything
// else falls back to indented JSON.
func WriteTable(w io.Writer, v any) error {
	if env, ok := v.(map[string]any); ok {
		if d, ok := env["data"]; ok {
			v = d
		}
	}

	var headers []string
	var rows [][]string
	switch x := v.(type) {
	case Tabular:
		headers, rows = x.TableHeaders(), x.TableRows()
	case map[string]any:
		headers = []string{"KEY", "VALUE"}
		for _, k := range sortedKeys(x) {
			rows = append(rows, []string{k, cell(x[k])})
		}
	default:
		return WriteJSON(w, v, true)
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "(none)")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case bool, int, int64, float64:
		return fmt.Sprint(x)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
