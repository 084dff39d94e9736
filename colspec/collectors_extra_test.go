package colspec

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrencyCollector(t *testing.T) {
	c := CurrencyCollector()
	opts := DefaultOptions()

	tests := []struct {
		raw     string
		args    Args
		want    string
		wantErr bool
	}{
		{"$1,234.56", nil, "1234.56", false},
		{"(12.50)", nil, "-12.5", false},
		{"($3)", nil, "-3", false},
		{"€ 0.10", nil, "0.1", false},
		{"1.234,50 €", Args{"grouping": ".", "decimal": ","}, "1234.5", false},
		{"CHF 12", Args{"symbols": []string{"CHF"}}, "12", false},
		{"twelve", nil, "", true},
		{"$", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, err := c.Parse(TextCell(tt.raw), tt.args, opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			d, ok := v.Any.(decimal.Decimal)
			require.True(t, ok)
			assert.True(t, d.Equal(decimal.RequireFromString(tt.want)), "got %s, want %s", d, tt.want)
			assert.Equal(t, tt.want, v.Str)
		})
	}
}

func TestPercentCollector(t *testing.T) {
	c := PercentCollector()
	opts := DefaultOptions()

	v, err := c.Parse(TextCell("12.5%"), nil, opts)
	require.NoError(t, err)
	assert.InDelta(t, 0.125, v.Float, 1e-12)

	v, err = c.Parse(TextCell("-3 %"), nil, opts)
	require.NoError(t, err)
	assert.InDelta(t, -0.03, v.Float, 1e-12)

	_, err = c.Parse(TextCell("12.5"), nil, opts)
	assert.Error(t, err)

	_, err = c.Parse(NumberCell(0.5), nil, opts)
	assert.Error(t, err)
}

func TestExtraCollectors_Shorthand(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add(CurrencyCollector(), PercentCollector()))

	g := NewTextGrid([]string{"price", "rate", "sku"}, [][]string{
		{"$10.00", "5%", "A1"},
		{"(2.50)", "oops", "B2"},
	})

	res, err := Read(context.Background(), g, Spec{Shorthand: "$%c"}, &Options{Registry: reg})
	require.NoError(t, err)

	price, _ := res.Column("price")
	assert.Equal(t, "10", price.Values[0].Str)
	assert.Equal(t, -2.5, price.Values[1].Float)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, 1, res.Diagnostics[0].Row)
	assert.Equal(t, 1, res.Diagnostics[0].Col)

	r, err := Resolve(g, Spec{Shorthand: "$%c"}, &Options{Registry: reg})
	require.NoError(t, err)
	assert.Equal(t, "$%c", r.Condense().Shorthand)
}
