package models

// Translatable holds one text per locale tag ("en", "nl").
type Translatable map[string]string

// Text returns the text for locale, falling back to English.
func (t Translatable) Text(locale string) string {
	if s, ok := t[locale]; ok {
		return s
	}
	return t["en"]
}

// Table is a grid of cells under named columns.
type Table struct {
	Columns []string `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}

func NewTable(columns ...string) Table {
	return Table{Columns: columns, Rows: [][]any{}}
}

// Append adds one row; the number of cells must match the number of columns.
func (t *Table) Append(cells ...any) {
	t.Rows = append(t.Rows, cells)
}

func (t Table) Len() int {
	return len(t.Rows)
}

// Records returns one column-name-to-cell map per row.
func (t Table) Records() []map[string]any {
	records := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]any, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records
}

// Group is the column a chart groups by.
type Group struct {
	Column     string `json:"column" yaml:"column"`
	Label      string `json:"label" yaml:"label"`
	DateFormat string `json:"dateFormat,omitempty" yaml:"date_format,omitempty"`
}

// Value is one aggregated series of a chart.
type Value struct {
	Column    string `json:"column" yaml:"column"`
	Label     string `json:"label" yaml:"label"`
	Aggregate string `json:"aggregate" yaml:"aggregate"`
	AddZeroes bool   `json:"addZeroes" yaml:"add_zeroes"`
}

// Visualization is a chart hint for the renderer.
type Visualization struct {
	Title  Translatable `json:"title" yaml:"title"`
	Type   string       `json:"type" yaml:"type"`
	Group  Group        `json:"group" yaml:"group"`
	Values []Value      `json:"values" yaml:"values"`
}

// ExtractionResult is one derived dataset offered for donation.
type ExtractionResult struct {
	ID             string          `json:"id" yaml:"id"`
	Title          Translatable    `json:"title" yaml:"title"`
	Table          Table           `json:"table" yaml:"table"`
	Description    Translatable    `json:"description,omitempty" yaml:"description,omitempty"`
	Visualizations []Visualization `json:"visualizations,omitempty" yaml:"visualizations,omitempty"`
}
