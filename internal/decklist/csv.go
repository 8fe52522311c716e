package decklist

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/arcanaland/proxymancer/internal/card"
)

// Column names used by Moxfield CSV exports, in order of preference
var (
	countColumns  = []string{"count", "quantity"}
	nameColumns   = []string{"name"}
	setColumns    = []string{"edition", "set"}
	numberColumns = []string{"collector number", "number"}
)

// ParseCSV reads a Moxfield CSV export. Rows without a name are skipped.
func ParseCSV(r io.Reader) ([]card.Request, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, seen := columns[h]; !seen {
			columns[h] = i
		}
	}
	if lookupColumn(columns, nameColumns) < 0 {
		return nil, errors.New("csv has no Name column")
	}

	var requests []card.Request
	row := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("error reading csv row %d: %w", row, err)
		}

		name := field(record, columns, nameColumns)
		if name == "" {
			continue
		}

		qty := 1
		if raw := field(record, columns, countColumns); raw != "" {
			qty, err = strconv.Atoi(raw)
			if err != nil {
				return nil, &ParseError{Line: row, Text: strings.Join(record, ","), Reason: "invalid quantity"}
			}
			if qty <= 0 {
				return nil, &ParseError{Line: row, Text: strings.Join(record, ","), Reason: "quantity must be positive"}
			}
			if qty > MaxQuantity {
				return nil, &ParseError{Line: row, Text: strings.Join(record, ","), Reason: fmt.Sprintf("quantity exceeds %d", MaxQuantity)}
			}
		}

		requests = append(requests, card.Request{
			Name:            name,
			Quantity:        qty,
			SetCode:         strings.ToLower(field(record, columns, setColumns)),
			CollectorNumber: field(record, columns, numberColumns),
			Line:            row,
		})
	}

	return requests, nil
}

// LoadCSV parses the Moxfield CSV export at path
func LoadCSV(path string) ([]card.Request, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening csv: %w", err)
	}
	defer file.Close()

	requests, err := ParseCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return requests, nil
}

func lookupColumn(columns map[string]int, names []string) int {
	for _, name := range names {
		if i, ok := columns[name]; ok {
			return i
		}
	}
	return -1
}

func field(record []string, columns map[string]int, names []string) string {
	i := lookupColumn(columns, names)
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
