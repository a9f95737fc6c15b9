package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/societyhub/internal/client/api"
	"github.com/dmitrijs2005/societyhub/internal/client/models"
)

const maxCellWidth = 40

// columnOrder returns the columns to show: Order filtered to Visible, then
// any visible column missing from Order.
func columnOrder(c models.ColumnPrefs) []string {
	visible := make(map[string]bool, len(c.Visible))
	for _, v := range c.Visible {
		visible[v] = true
	}

	out := make([]string, 0, len(c.Visible))
	seen := map[string]bool{}
	for _, o := range c.Order {
		if visible[o] && !seen[o] {
			out = append(out, o)
			seen[o] = true
		}
	}
	for _, v := range c.Visible {
		if !seen[v] {
			out = append(out, v)
			seen[v] = true
		}
	}
	return out
}

// recordColumns is every key present in records, "id" first and the rest
// sorted.
func recordColumns(records []api.Record) []string {
	set := map[string]bool{}
	for _, r := range records {
		for k := range r {
			set[k] = true
		}
	}

	out := make([]string, 0, len(set))
	for k := range set {
		if k != "id" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	if set["id"] {
		out = append([]string{"id"}, out...)
	}
	return out
}

func renderRecords(w io.Writer, records []api.Record, prefs models.ColumnPrefs) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "(no records)")
		return err
	}

	cols := columnOrder(prefs)
	if len(cols) == 0 {
		cols = recordColumns(records)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(cols, "\t")))
	for _, r := range records {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = cell(r[c])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func cell(v any) string {
	var s string
	switch x := v.(type) {
	case nil:
		s = "-"
	case string:
		s = x
	case float64:
		s = fmt.Sprintf("%g", x)
	case map[string]any, []any:
		b, _ := json.Marshal(x)
		s = string(b)
	default:
		s = fmt.Sprint(x)
	}

	s = strings.NewReplacer("\t", " ", "\n", " ").Replace(s)
	if r := []rune(s); len(r) > maxCellWidth {
		s = string(r[:maxCellWidth-3]) + "..."
	}
	return s
}
