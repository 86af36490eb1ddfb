// Package table projects record collections into renderable views.
package table

import (
	"fmt"
	"hash/fnv"
	"html/template"
	"io"
)

const DefaultPlaceholder = "No records"

// PlaceholderKey is the row key of the single row shown for an empty result.
const PlaceholderKey = "_empty"

type Column[T any] struct {
	Header string
	Value  func(T) string
}

// Table describes how one entity type is shown: columns, row key and empty text.
type Table[T any] struct {
	Name        string
	Columns     []Column[T]
	Key         func(T) string
	Placeholder string
}

type Row struct {
	Key         string   `json:"key"`
	Cells       []string `json:"cells"`
	Placeholder bool     `json:"placeholder,omitempty"`
}

// View is a rendered table at a given store version.
type View struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
	Version uint64   `json:"version"`
	Empty   bool     `json:"empty"`
}

func (t *Table[T]) Headers() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Header
	}
	return out
}

// Render builds the view for records. An empty input yields exactly one placeholder row.
func (t *Table[T]) Render(records []T, version uint64) View {
	v := View{
		Name:    t.Name,
		Headers: t.Headers(),
		Version: version,
	}

	if len(records) == 0 {
		text := t.Placeholder
		if text == "" {
			text = DefaultPlaceholder
		}
		v.Empty = true
		v.Rows = []Row{{Key: PlaceholderKey, Cells: []string{text}, Placeholder: true}}
		return v
	}

	v.Rows = make([]Row, 0, len(records))
	for _, rec := range records {
		cells := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cells[i] = c.Value(rec)
		}
		v.Rows = append(v.Rows, Row{Key: t.Key(rec), Cells: cells})
	}
	return v
}

// Records returns the data rows without the placeholder, for export.
func (v View) Records() [][]string {
	if v.Empty {
		return nil
	}
	out := make([][]string, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = r.Cells
	}
	return out
}

// ETag identifies the view content. Two views with equal rows share an ETag.
func (v View) ETag() string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d|", v.Name, len(v.Headers))
	for _, hd := range v.Headers {
		fmt.Fprintf(h, "%s\x1f", hd)
	}
	for _, r := range v.Rows {
		fmt.Fprintf(h, "\x1e%s", r.Key)
		for _, c := range r.Cells {
			fmt.Fprintf(h, "\x1f%s", c)
		}
	}
	return fmt.Sprintf(`W/"%s-%x"`, v.Name, h.Sum64())
}

var htmlTemplate = template.Must(template.New("table").Parse(
	`<table class="table" data-table="{{.Name}}" data-version="{{.Version}}">
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- $cols := len .Headers}}
{{- range .Rows}}
{{if .Placeholder}}<tr class="placeholder" data-key="{{.Key}}"><td colspan="{{$cols}}">{{index .Cells 0}}</td></tr>
{{- else}}<tr data-key="{{.Key}}">{{range .Cells}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
{{- end}}
</tbody>
</table>
`))

// WriteHTML writes the view as an HTML table fragment. Cell text is escaped.
func (v View) WriteHTML(w io.Writer) error {
	return htmlTemplate.Execute(w, v)
}
