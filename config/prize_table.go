package config

import (
	_ "embed"
	"fmt"
	"os"

	"prizedraw/draw"
	"prizedraw/models"

	"gopkg.in/yaml.v3"
)

//go:embed default_prize_table.yaml
var defaultPrizeTable []byte

type prizeTableFile struct {
	Prizes []models.PrizeEntry `yaml:"prizes"`
}

// LoadPrizeTable reads and validates the prize table at path.
// An empty path loads the embedded default table.
func LoadPrizeTable(path string) (*draw.Table, error) {
	data := defaultPrizeTable
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read prize table %s: %w", path, err)
		}
	}
	return ParsePrizeTable(data)
}

// ParsePrizeTable decodes a YAML prize table and validates it
func ParsePrizeTable(data []byte) (*draw.Table, error) {
	var file prizeTableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse prize table: %w", err)
	}

	table, err := draw.NewTable(file.Prizes)
	if err != nil {
		return nil, fmt.Errorf("failed to validate prize table: %w", err)
	}
	return table, nil
}
