// Package csvgrid reads delimited text files into grids and writes parse
// results back out as CSV.
package csvgrid

import (
	"bufio"
	gocsv "encoding/csv"
	"io"
	"os"

	"github.com/nicored/colspec/colspec"
	"github.com/pkg/errors"
)

// ReadOptions configures the reader
type ReadOptions struct {
	// NoHeader reads the first record as data instead of column names
	NoHeader bool `yaml:"noHeader"`
	// Comma is the field delimiter, ',' when empty
	Comma string `yaml:"comma"`
	// Comment starts lines to ignore, none when empty
	Comment string `yaml:"comment"`
}

// ReadFile reads a delimited text file into a grid
func ReadFile(filePath string, opts ReadOptions) (*colspec.Grid, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := Read(f, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "reading '%s'", filePath)
	}

	return g, nil
}

// Read reads delimited text into a grid of text cells. Rows may have
// different lengths, the parsing engine reports them.
func Read(rd io.Reader, opts ReadOptions) (*colspec.Grid, error) {
	// Checking and removing UTF-8 byte order marks
	r := bufio.NewReader(rd)
	if b, err := r.Peek(3); err == nil && b[0] == 0xef && b[1] == 0xbb && b[2] == 0xbf {
		r.Discard(3)
	}

	csvR := gocsv.NewReader(r)
	csvR.FieldsPerRecord = -1
	if opts.Comma != "" {
		csvR.Comma = []rune(opts.Comma)[0]
	}
	if opts.Comment != "" {
		csvR.Comment = []rune(opts.Comment)[0]
	}

	var header []string
	var rows [][]string

	rowIndex := -1
	for {
		rowIndex++

		rec, err := csvR.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", rowIndex)
		}

		if rowIndex == 0 && !opts.NoHeader {
			header = rec
			continue
		}

		rows = append(rows, rec)
	}

	if header == nil && !opts.NoHeader {
		header = []string{}
	}

	return colspec.NewTextGrid(header, rows), nil
}
