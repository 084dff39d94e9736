package csvgrid

import (
	gocsv "encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/nicored/colspec/colspec"
)

// NA is written in place of missing and failed values
const NA = "NA"

// flushEvery is the number of rows written between two flushes
const flushEvery = 100

// Write writes the typed columns of a result as CSV, header first. Columns
// without a name are named after their position.
func Write(w io.Writer, res *colspec.Result) error {
	cw := gocsv.NewWriter(w)

	// printing header
	header := make([]string, len(res.Columns))
	for i, col := range res.Columns {
		header[i] = col.Name
		if header[i] == "" {
			header[i] = fmt.Sprintf("X%d", col.Pos+1)
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for row := 0; row < res.NumRows(); row++ {
		output := make([]string, len(res.Columns))
		for i, col := range res.Columns {
			v := col.Values[row]
			if v.Missing {
				output[i] = NA
				continue
			}
			output[i] = v.String()
		}

		if err := cw.Write(output); err != nil {
			return err
		}

		if row > 0 && row%flushEvery == 0 {
			cw.Flush()
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes a result to a CSV file, truncating it
func WriteFile(fileName string, res *colspec.Result) error {
	wf, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer wf.Close()

	if err := Write(wf, res); err != nil {
		return err
	}

	return wf.Close()
}
