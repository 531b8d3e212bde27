package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes and activates a catalog from YAML. A catalog that fails
// validation is rejected whole.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidCatalog, err)
	}
	if err := c.activate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads and activates a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}
