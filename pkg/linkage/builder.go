package linkage

import (
	"github.com/gilchrisn/linkage-graph-service/pkg/models"
)

// Table aligns normalized field sequences by row index. Columns follow the
// order of Fields; a column shorter than NumRows has no value at the tail.
type Table struct {
	Fields  []models.FieldSpec
	Columns [][]string
	NumRows int
}

// NewTable aligns the per-field sequences. Fields without an entry in values
// become empty columns; entries for unknown fields are ignored.
func NewTable(specs []models.FieldSpec, values map[string][]string) *Table {
	t := &Table{
		Fields:  specs,
		Columns: make([][]string, len(specs)),
	}
	for i, spec := range specs {
		col := values[spec.FieldID]
		t.Columns[i] = col
		if len(col) > t.NumRows {
			t.NumRows = len(col)
		}
	}
	return t
}

// Cell returns the value at (row, col) and whether one is present
func (t *Table) Cell(row, col int) (string, bool) {
	if col < 0 || col >= len(t.Columns) || row < 0 || row >= len(t.Columns[col]) {
		return "", false
	}
	v := t.Columns[col][row]
	return v, v != ""
}

// Row returns the distinct present values of a record, in field order
func (t *Table) Row(row int) []string {
	values := make([]string, 0, len(t.Columns))
	for col := range t.Columns {
		v, ok := t.Cell(row, col)
		if !ok || contains(values, v) {
			continue
		}
		values = append(values, v)
	}
	return values
}

// Build creates the co-occurrence graph from normalized field sequences
func Build(specs []models.FieldSpec, values map[string][]string) *Graph {
	return BuildFromTable(NewTable(specs, values))
}

// BuildFromTable creates one node per distinct value and one edge per pair of
// distinct values sharing a record. Node tags follow the first field a value
// is seen under, scanning fields in order and rows within a field.
func BuildFromTable(t *Table) *Graph {
	g := NewGraph()
	g.rows = t.NumRows

	for col, spec := range t.Fields {
		for row := range t.Columns[col] {
			if v, ok := t.Cell(row, col); ok {
				g.ensureNode(v, spec.FieldID)
			}
		}
	}

	// k values per row gives k(k-1)/2 pairs; k is bounded by the field count
	for row := 0; row < t.NumRows; row++ {
		values := t.Row(row)
		for i := 0; i < len(values); i++ {
			for j := i + 1; j < len(values); j++ {
				g.addEdge(values[i], values[j])
			}
		}
	}

	return g
}

func contains(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}
