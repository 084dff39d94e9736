package colspec

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func read(t *testing.T, g *Grid, s Spec, opts *Options) *Result {
	t.Helper()

	res, err := Read(context.Background(), g, s, opts)
	require.NoError(t, err)
	return res
}

func TestRead_ExplicitSpecWithGuessedDefault(t *testing.T) {
	s := Spec{Cols: []ColDef{
		ByName("Age", Integer()),
		ByName("Has kids", Logical()),
	}}

	res := read(t, peopleGrid(), s, nil)

	require.Len(t, res.Columns, 3)
	assert.Empty(t, res.Diagnostics)
	assert.False(t, res.HasErrors())
	assert.Equal(t, 2, res.NumRows())

	name, ok := res.Column("Name")
	require.True(t, ok)
	assert.Equal(t, TagText, name.Collector.Tag())
	assert.Equal(t, "Ann", name.Values[0].Str)
	assert.Equal(t, "Bo", name.Values[1].Str)

	age, ok := res.Column("Age")
	require.True(t, ok)
	assert.Equal(t, int64(34), *age.Values[0].ValInt())
	assert.Equal(t, int64(7), *age.Values[1].ValInt())

	kids, ok := res.Column("Has kids")
	require.True(t, ok)
	assert.True(t, *kids.Values[0].ValBool())
	assert.False(t, *kids.Values[1].ValBool())
}

func TestRead_ShorthandSkipsColumn(t *testing.T) {
	res := read(t, peopleGrid(), Spec{Shorthand: "?i_"}, nil)

	require.Len(t, res.Columns, 2)
	assert.Equal(t, "Name", res.Columns[0].Name)
	assert.Equal(t, "Age", res.Columns[1].Name)

	_, ok := res.Column("Has kids")
	assert.False(t, ok)
}

func TestRead_SkipNeverInOutput(t *testing.T) {
	g := NewTextGrid([]string{"a", "b", "c", "d"}, [][]string{{"1", "2", "3", "4"}})

	for pos := 0; pos < 4; pos++ {
		t.Run(strconv.Itoa(pos), func(t *testing.T) {
			res := read(t, g, Spec{Cols: []ColDef{ByPos(pos, Skip())}}, nil)

			require.Len(t, res.Columns, 3)
			for _, c := range res.Columns {
				assert.NotEqual(t, pos, c.Pos)
				assert.NotEqual(t, TagSkip, c.Collector.Tag())
			}
		})
	}
}

func TestRead_CellFailureIsIsolated(t *testing.T) {
	g := NewTextGrid([]string{"n"}, [][]string{{"1"}, {"2"}, {"x"}, {"4"}})

	res := read(t, g, Spec{Shorthand: "i"}, nil)

	values := res.Columns[0].Values
	require.Len(t, values, 4)
	assert.Equal(t, int64(1), *values[0].ValInt())
	assert.Equal(t, int64(2), *values[1].ValInt())
	assert.True(t, values[2].Missing)
	assert.True(t, values[2].Failed)
	assert.Nil(t, values[2].ValInt())
	assert.Equal(t, int64(4), *values[3].ValInt())

	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, 2, d.Row)
	assert.Equal(t, 0, d.Col)
	assert.Equal(t, "n", d.Name)
	assert.Equal(t, "x", d.Raw)
	assert.Equal(t, TagInteger, d.Tag)
	assert.Equal(t, logrus.ErrorLevel, d.Level)
	assert.True(t, res.HasErrors())
}

func TestRead_MissingIsNotFailure(t *testing.T) {
	g := NewTextGrid([]string{"n"}, [][]string{{"1"}, {""}, {"NA"}})

	res := read(t, g, Spec{Shorthand: "i"}, nil)

	values := res.Columns[0].Values
	assert.True(t, values[1].Missing)
	assert.False(t, values[1].Failed)
	assert.True(t, values[2].Missing)
	assert.Empty(t, res.Diagnostics)
}

func TestRead_ListColumnGuessesEachCell(t *testing.T) {
	g := NewTextGrid([]string{"mixed"}, [][]string{{"1"}, {"a"}, {"TRUE"}, {""}})

	res := read(t, g, Spec{Cols: []ColDef{ByPos(0, List())}}, nil)

	values := res.Columns[0].Values
	require.Len(t, values, 4)

	for i, want := range []Tag{TagInteger, TagText, TagLogical} {
		require.Equal(t, TagList, values[i].Tag)
		require.Len(t, values[i].List, 1, "row %d", i)
		assert.Equal(t, want, values[i].List[0].Tag, "row %d", i)
	}

	assert.Equal(t, int64(1), values[0].List[0].Int)
	assert.Equal(t, "a", values[1].List[0].Str)
	assert.True(t, values[2].List[0].Bool)
	assert.True(t, values[3].Missing)
	assert.Empty(t, res.Diagnostics)
}

func TestRead_ListColumnWithDeclaredType(t *testing.T) {
	g := NewTextGrid([]string{"n"}, [][]string{{"1"}, {"x"}})

	res := read(t, g, Spec{Cols: []ColDef{ByPos(0, List().With("type", "integer"))}}, nil)

	values := res.Columns[0].Values
	assert.Equal(t, int64(1), *values[0].ValInt())
	assert.True(t, values[1].Failed)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, 1, res.Diagnostics[0].Row)
}

func TestRead_CellDetailPassesRawRecord(t *testing.T) {
	g := &Grid{
		Header: []string{"amount"},
		Rows: [][]Cell{
			{{Kind: KindNumber, Number: 3, Formula: "=1+2"}},
			{EmptyCell()},
		},
	}

	res := read(t, g, Spec{Shorthand: "C"}, nil)

	values := res.Columns[0].Values
	require.NotNil(t, values[0].Cell)
	assert.Equal(t, "=1+2", values[0].Cell.Formula)
	require.NotNil(t, values[1].Cell)
	assert.Equal(t, KindEmpty, values[1].Cell.Kind)
	assert.False(t, values[1].Missing)
}

func TestRead_RaggedRows(t *testing.T) {
	g := NewTextGrid([]string{"a", "b"}, [][]string{
		{"1", "2"},
		{"3"},
		{"4", "5", "6"},
	})

	res := read(t, g, Spec{Shorthand: "i_"}, nil)

	require.Len(t, res.Columns, 1)
	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, 1, res.Diagnostics[0].Row)
	assert.Equal(t, -1, res.Diagnostics[0].Col)
	assert.Equal(t, logrus.WarnLevel, res.Diagnostics[0].Level)
	assert.Equal(t, 2, res.Diagnostics[1].Row)
	assert.False(t, res.HasErrors())
}

func TestRead_StructuralErrorsAbortBeforeParsing(t *testing.T) {
	_, err := Read(context.Background(), peopleGrid(), Spec{Shorthand: "ii"}, nil)
	assert.True(t, IsShapeMismatch(err))
}

func TestRead_LenientWarningsInDiagnostics(t *testing.T) {
	res := read(t, peopleGrid(), Spec{Cols: []ColDef{ByName("Height", Double())}}, &Options{Lenient: true})

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, -1, res.Diagnostics[0].Row)
	assert.Equal(t, logrus.WarnLevel, res.Diagnostics[0].Level)
	assert.False(t, res.HasErrors())
}

func TestResolve_NeverProducesCellDiagnostics(t *testing.T) {
	g := NewTextGrid([]string{"n"}, [][]string{{"1"}, {"x"}})

	r, err := Resolve(g, Spec{Shorthand: "i"}, nil)
	require.NoError(t, err)
	assert.Empty(t, r.Warnings)
}

func TestParse_RejectsUnresolvedGuess(t *testing.T) {
	r := &Resolved{Cols: []ColumnSpec{{Pos: 0, Collector: Guess()}}}

	_, err := Parse(context.Background(), peopleGrid(), r, nil)
	assert.True(t, IsConfiguration(err))
}

func TestParse_ConcurrentMatchesSequential(t *testing.T) {
	header := make([]string, 12)
	for i := range header {
		header[i] = fmt.Sprintf("c%d", i)
	}

	rows := make([][]string, 500)
	for r := range rows {
		row := make([]string, len(header))
		for c := range row {
			if (r+c)%37 == 0 {
				row[c] = "oops"
			} else {
				row[c] = strconv.Itoa(r * c)
			}
		}
		rows[r] = row
	}
	g := NewTextGrid(header, rows)
	s := Spec{Default: &CollectorSpec{tag: TagInteger}}

	seq := read(t, g, s, &Options{Workers: 1})
	par := read(t, g, s, &Options{Workers: 8})

	assert.Equal(t, seq.Columns, par.Columns)
	assert.Equal(t, seq.Diagnostics, par.Diagnostics)
	assert.NotEmpty(t, seq.Diagnostics)

	for i := 1; i < len(par.Diagnostics); i++ {
		assert.False(t, par.Diagnostics[i].less(par.Diagnostics[i-1]), "diagnostics must be ordered by row then column")
	}
}

func TestParse_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Read(ctx, peopleGrid(), Spec{}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParse_CustomCollector(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add(upperCollector("upper", 'u')))

	res := read(t, peopleGrid(), Spec{Shorthand: "u__"}, &Options{Registry: reg})

	require.Len(t, res.Columns, 1)
	assert.Equal(t, Tag("upper"), res.Columns[0].Values[0].Tag)
	assert.Equal(t, "ANN", res.Columns[0].Values[0].Str)
}

func TestRead_NAChangedAfterDefaultOptions(t *testing.T) {
	g := NewTextGrid([]string{"n"}, [][]string{{"1"}, {"-"}})

	opts := DefaultOptions()
	opts.NA = []string{"", "-"}

	res := read(t, g, Spec{Shorthand: "i"}, opts)

	values := res.Columns[0].Values
	assert.True(t, values[1].Missing)
	assert.False(t, values[1].Failed)
	assert.Empty(t, res.Diagnostics)

	assert.Equal(t, TagInteger, GuessType(textCells("1", "-"), opts).Tag())
}

func TestParse_UsesResolvedRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add(upperCollector("upper", 'u')))

	r, err := Resolve(peopleGrid(), Spec{Shorthand: "u__"}, &Options{Registry: reg})
	require.NoError(t, err)

	for _, opts := range []*Options{nil, {Workers: 1}} {
		res, err := Parse(context.Background(), peopleGrid(), r, opts)
		require.NoError(t, err)
		assert.Equal(t, "BO", res.Columns[0].Values[1].Str)
	}

	_, err = Parse(context.Background(), peopleGrid(), r, &Options{Registry: NewRegistry()})
	assert.True(t, IsConfiguration(err), "an explicit registry wins over the resolved one")
}
