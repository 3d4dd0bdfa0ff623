package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"lorestream/internal/services"
)

// Record is one slide of the dataset, immutable after load.
type Record struct {
	Year      string
	Label     string
	Era       string
	ImageRef  string
	Fact      string
	IsSpecial bool
}

// requiredColumns are the dataset header names, matched case-insensitively.
var requiredColumns = []string{"Year", "Label", "Era", "Image", "Fact", "isSpecial"}

// truthyTokens is the fixed set of accepted true values for the isSpecial
// column. Anything else, including "false" and unrecognized tokens, is false.
var truthyTokens = map[string]struct{}{
	"true": {}, "1": {}, "yes": {}, "y": {}, "t": {},
}

// ParseSpecial reports whether the raw isSpecial cell value is truthy.
func ParseSpecial(value string) bool {
	_, ok := truthyTokens[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// Load reads the dataset file and returns its records in file order.
// Missing required columns fail the whole load; individual cells are
// sanitized to trimmed strings.
func Load(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrData, "dataset", "load", fmt.Sprintf("open %s", path), err)
	}
	defer file.Close()
	return parse(file, path)
}

func parse(r io.Reader, path string) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, services.Wrap(services.ErrData, "dataset", "load", fmt.Sprintf("read header of %s", path), err)
	}
	if len(header) > 0 {
		// Spreadsheet exports often carry a UTF-8 BOM on the first cell.
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	index := make(map[string]int, len(requiredColumns))
	for _, name := range requiredColumns {
		pos, ok := columns[strings.ToLower(name)]
		if !ok {
			return nil, services.Wrap(services.ErrData, "dataset", "load",
				fmt.Sprintf("%s: required column %q missing", path, name), nil)
		}
		index[name] = pos
	}

	var records []Record
	line := 1
	for {
		row, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrData, "dataset", "load",
				fmt.Sprintf("%s: row %d", path, line), err)
		}
		cell := func(name string) string {
			pos := index[name]
			if pos >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[pos])
		}
		records = append(records, Record{
			Year:      cell("Year"),
			Label:     cell("Label"),
			Era:       cell("Era"),
			ImageRef:  cell("Image"),
			Fact:      cell("Fact"),
			IsSpecial: ParseSpecial(cell("isSpecial")),
		})
	}
	if len(records) == 0 {
		return nil, services.Wrap(services.ErrData, "dataset", "load",
			fmt.Sprintf("%s: no data rows", path), nil)
	}
	return records, nil
}
