// Package exercise loads and serves the exercise catalog. Exercises are
// defined in YAML; a default set ships embedded in the binary.
package exercise

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/me/codelab/pkg/model"
)

//go:embed exercises.yaml
var defaultCatalog []byte

// catalogFile is the YAML document shape.
type catalogFile struct {
	Exercises []model.Exercise `yaml:"exercises"`
}

// Catalog is an immutable, ID-indexed set of exercises.
type Catalog struct {
	exercises []model.Exercise
	byID      map[string]int
}

// Load parses a catalog from YAML.
func Load(r io.Reader) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		exercises: file.Exercises,
		byID:      make(map[string]int, len(file.Exercises)),
	}
	for i, ex := range file.Exercises {
		if ex.ID == "" {
			return nil, fmt.Errorf("exercise %d has no id", i)
		}
		if _, dup := c.byID[ex.ID]; dup {
			return nil, fmt.Errorf("duplicate exercise id %q", ex.ID)
		}
		c.byID[ex.ID] = i
	}
	return c, nil
}

// LoadFile parses a catalog from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultCatalog))
}

// List returns all exercises, optionally filtered by difficulty and
// category (empty values match everything).
func (c *Catalog) List(difficulty model.Difficulty, category model.Category) []model.Exercise {
	out := make([]model.Exercise, 0, len(c.exercises))
	for _, ex := range c.exercises {
		if difficulty != "" && ex.Difficulty != difficulty {
			continue
		}
		if category != "" && ex.Category != category {
			continue
		}
		out = append(out, ex)
	}
	return out
}

// Get returns the exercise with the given ID.
func (c *Catalog) Get(id string) (*model.Exercise, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	ex := c.exercises[i]
	return &ex, true
}

// Len returns the number of exercises in the catalog.
func (c *Catalog) Len() int {
	return len(c.exercises)
}
