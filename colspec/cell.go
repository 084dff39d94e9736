package colspec

import (
	"strconv"
	"time"
)

// CellKind tells which field of a Cell carries its value
type CellKind int

const (
	KindEmpty CellKind = iota
	KindText
	KindNumber
	KindBool
	KindTime
)

// Cell is one raw value of the grid. Delimited text sources only produce
// text cells; spreadsheet-like sources may also produce numbers, booleans
// and timestamps, along with the formatting details kept by cell-detail
// columns.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Bool   bool
	Time   time.Time

	Format    string
	Formula   string
	Hyperlink string
	Note      string
}

func TextCell(s string) Cell {
	return Cell{Kind: KindText, Text: s}
}

func NumberCell(f float64) Cell {
	return Cell{Kind: KindNumber, Number: f}
}

func BoolCell(b bool) Cell {
	return Cell{Kind: KindBool, Bool: b}
}

func TimeCell(t time.Time) Cell {
	return Cell{Kind: KindTime, Time: t}
}

func EmptyCell() Cell {
	return Cell{Kind: KindEmpty}
}

// String returns the raw text representation of the cell
func (c Cell) String() string {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case KindBool:
		if c.Bool {
			return "TRUE"
		}
		return "FALSE"
	case KindTime:
		return c.Time.Format(time.RFC3339)
	}

	return ""
}

// Grid is the raw two-dimensional input: rows of cells and an optional
// header. The grid belongs to the caller and is only ever read.
type Grid struct {
	Header []string
	Rows   [][]Cell
}

// NewTextGrid builds a grid of text cells. A nil header means the data has
// no header row.
func NewTextGrid(header []string, rows [][]string) *Grid {
	g := &Grid{Header: header, Rows: make([][]Cell, len(rows))}

	for i, row := range rows {
		cells := make([]Cell, len(row))
		for j, v := range row {
			cells[j] = TextCell(v)
		}
		g.Rows[i] = cells
	}

	return g
}

// HasHeader reports whether columns can be addressed by name
func (g *Grid) HasHeader() bool {
	return g.Header != nil
}

// NumCols returns the header length, or the longest row when there is no header
func (g *Grid) NumCols() int {
	if g.HasHeader() {
		return len(g.Header)
	}

	n := 0
	for _, row := range g.Rows {
		if len(row) > n {
			n = len(row)
		}
	}

	return n
}

func (g *Grid) NumRows() int {
	return len(g.Rows)
}

// Name returns the header name of the column at pos, or an empty string
func (g *Grid) Name(pos int) string {
	if pos < 0 || pos >= len(g.Header) {
		return ""
	}

	return g.Header[pos]
}

// positions returns every column position whose header equals name
func (g *Grid) positions(name string) []int {
	var found []int
	for i, h := range g.Header {
		if h == name {
			found = append(found, i)
		}
	}

	return found
}

// cell returns the cell at (row, col). Short rows read as empty cells.
func (g *Grid) cell(row, col int) Cell {
	r := g.Rows[row]
	if col < 0 || col >= len(r) {
		return EmptyCell()
	}

	return r[col]
}
