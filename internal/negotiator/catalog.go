package negotiator

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// TableSchema describes one table to the completion model.
type TableSchema struct {
	Name         string   `yaml:"name" json:"-"`
	Fields       []string `yaml:"fields" json:"fields"`
	SampleValues []any    `yaml:"sample_values" json:"sample_values"`
	Description  string   `yaml:"description" json:"description"`
}

// Catalog is the static table list, in file order.
type Catalog []TableSchema

func loadCatalog(data []byte) (Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse table catalog: %w", err)
	}
	for i, t := range catalog {
		if t.Name == "" || len(t.Fields) == 0 {
			return nil, fmt.Errorf("table catalog entry %d is incomplete", i)
		}
	}
	return catalog, nil
}

func (c Catalog) Has(name string) bool {
	for _, t := range c {
		if t.Name == name {
			return true
		}
	}
	return false
}

func (c Catalog) byName() map[string]TableSchema {
	out := make(map[string]TableSchema, len(c))
	for _, t := range c {
		out[t.Name] = t
	}
	return out
}

var categoryNames = map[int]string{
	1: "静機器",
	2: "回転機",
	3: "電気",
	4: "計装",
}

// CategoryName returns the display name of an equipment category, or 未知.
func CategoryName(category int) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "未知"
}
