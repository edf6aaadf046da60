package aggregator

import (
	"strings"

	"github.com/chriserin/ftreport/internal/model"
)

// Substitute replaces every <column> token in template with the row's
// value for that column. Substitution is a single pass: text inserted
// from the row is never scanned for further tokens.
func Substitute(template string, row map[string]any) (string, error) {
	return substitute(template, row, true)
}

// SubstituteKnown is Substitute for free text such as doc strings and
// table cells: tokens naming no column in the row are left as written.
func SubstituteKnown(template string, row map[string]any) string {
	s, _ := substitute(template, row, false)
	return s
}

func substitute(template string, row map[string]any, strict bool) (string, error) {
	if !strings.Contains(template, "<") {
		return template, nil
	}
	var b strings.Builder
	rest := template
	for {
		open := strings.IndexByte(rest, '<')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest[open+1:], '>')
		if end < 0 {
			break
		}
		name := rest[open+1 : open+1+end]
		if name == "" || strings.ContainsRune(name, '<') {
			b.WriteString(rest[:open+1])
			rest = rest[open+1:]
			continue
		}
		v, ok := row[name]
		if !ok {
			if strict {
				return "", &TemplateError{Column: name, Template: template}
			}
			b.WriteString(rest[:open+1])
			rest = rest[open+1:]
			continue
		}
		b.WriteString(rest[:open])
		b.WriteString(model.FormatValue(v))
		rest = rest[open+1+end+1:]
	}
	b.WriteString(rest)
	return b.String(), nil
}

// substituteTable applies SubstituteKnown to every string cell and header.
func substituteTable(t *model.Table, row map[string]any) *model.Table {
	if t == nil {
		return nil
	}
	out := &model.Table{Columns: make([]string, len(t.Columns))}
	for i, col := range t.Columns {
		out.Columns[i] = SubstituteKnown(col, row)
	}
	for _, r := range t.Rows {
		cells := make([]any, len(r))
		for i, cell := range r {
			if s, ok := cell.(string); ok {
				cells[i] = SubstituteKnown(s, row)
			} else {
				cells[i] = cell
			}
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}
