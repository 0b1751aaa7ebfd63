package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"
)

// file is the on-disk layout of an items override file.
type file struct {
	Items   []Item            `yaml:"items"`
	Recipes map[string]string `yaml:"recipes"`
}

// Load reads a YAML item table. An empty recipes section keeps the
// built-in recipes.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse builds a catalog from YAML bytes.
func Parse(raw []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("items.yaml: %w", err)
	}
	if len(f.Items) == 0 {
		return nil, fmt.Errorf("items.yaml: no items")
	}
	if len(f.Recipes) == 0 {
		f.Recipes = defaultRecipes
	}
	c, err := New(f.Items, f.Recipes)
	if err != nil {
		return nil, fmt.Errorf("items.yaml: %w", err)
	}
	return c, nil
}

// Suggest returns the known ID closest to id by edit distance, or "" when
// nothing is reasonably close.
func (c *Catalog) Suggest(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return ""
	}

	best, bestDist := "", -1
	for _, known := range c.order {
		d := levenshtein.ComputeDistance(id, known)
		if bestDist < 0 || d < bestDist {
			best, bestDist = known, d
		}
	}

	// Reject suggestions that would rewrite more than half the input.
	if bestDist < 0 || bestDist > (len(id)+1)/2 {
		return ""
	}
	return best
}
