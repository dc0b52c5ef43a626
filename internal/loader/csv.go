package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"carbonintensity/internal/domain"
)

// csvColumns are the header names of the published dataset
var csvColumns = []string{"from", "to", "intensity_forecast", "intensity_actual", "index"}

// LoadCSV loads records from a CSV file
func LoadCSV(path string) ([]domain.IntensityInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ParseCSV(f)
}

// ParseCSV reads records from CSV with a header row. Columns are located by
// name, so extra columns and any column order are accepted.
func ParseCSV(r io.Reader) ([]domain.IntensityInput, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, col := range csvColumns {
		if _, ok := pos[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var inputs []domain.IntensityInput
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		line, _ := cr.FieldPos(0)
		field := func(col string) string { return strings.TrimSpace(row[pos[col]]) }

		forecast, err := strconv.ParseInt(field("intensity_forecast"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid intensity_forecast: %w", line, err)
		}
		actual, err := strconv.ParseInt(field("intensity_actual"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid intensity_actual: %w", line, err)
		}

		in, err := toInput(field("from"), field("to"), forecast, actual, field("index"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}
