package loader

import (
	"fmt"
	"os"

	"carbonintensity/internal/domain"

	"gopkg.in/yaml.v3"
)

// FixtureYAML represents the YAML fixture file structure
type FixtureYAML struct {
	Version string       `yaml:"version,omitempty"`
	Records []RecordYAML `yaml:"records"`
}

// RecordYAML represents one record in YAML format
type RecordYAML struct {
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Forecast int64  `yaml:"forecast"`
	Actual   int64  `yaml:"actual"`
	Index    string `yaml:"index"`
}

// LoadYAML loads fixture records from a YAML file
func LoadYAML(path string) ([]domain.IntensityInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return ParseYAML(data)
}

// ParseYAML parses fixture records from YAML bytes
func ParseYAML(data []byte) ([]domain.IntensityInput, error) {
	var fixture FixtureYAML
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	inputs := make([]domain.IntensityInput, 0, len(fixture.Records))
	for i, r := range fixture.Records {
		in, err := toInput(r.From, r.To, r.Forecast, r.Actual, r.Index)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// ExportYAML renders records as a fixture file
func ExportYAML(records []domain.IntensityRecord) ([]byte, error) {
	fixture := FixtureYAML{
		Version: "1",
		Records: make([]RecordYAML, 0, len(records)),
	}
	for _, rec := range records {
		fixture.Records = append(fixture.Records, RecordYAML{
			From:     domain.FormatTimestamp(rec.From),
			To:       domain.FormatTimestamp(rec.To),
			Forecast: rec.Forecast,
			Actual:   rec.Actual,
			Index:    string(rec.Index),
		})
	}
	return yaml.Marshal(fixture)
}

// toInput converts loosely typed seed values. Seeds skip the API's
// positivity rule: zero readings are valid data.
func toInput(from, to string, forecast, actual int64, index string) (domain.IntensityInput, error) {
	f, ok := domain.ParseTimestamp(from)
	if !ok {
		return domain.IntensityInput{}, fmt.Errorf("invalid from %q", from)
	}
	t, ok := domain.ParseTimestamp(to)
	if !ok {
		return domain.IntensityInput{}, fmt.Errorf("invalid to %q", to)
	}
	if forecast < 0 || actual < 0 {
		return domain.IntensityInput{}, fmt.Errorf("negative measurement")
	}
	idx, ok := domain.ParseIndex(index)
	if !ok {
		return domain.IntensityInput{}, fmt.Errorf("invalid index %q", index)
	}
	return domain.IntensityInput{From: f, To: t, Forecast: forecast, Actual: actual, Index: idx}, nil
}
