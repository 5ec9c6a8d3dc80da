package rubric

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// rubricFile is the on-disk YAML shape of one rubric.
type rubricFile struct {
	Style      string      `yaml:"style"`
	Assertions []Assertion `yaml:"assertions"`
}

// LoadFile reads a single rubric from a YAML file. Assertions without an
// explicit id get the conventional one for their position within their
// dimension.
func LoadFile(path string) (*Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rf rubricFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse rubric %s: %w", path, err)
	}

	if rf.Style == "" {
		rf.Style = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	r := &Rubric{Name: rf.Style}
	counts := map[string]int{}
	for _, a := range rf.Assertions {
		if _, ok := DimensionWeights[a.Dimension]; !ok {
			return nil, fmt.Errorf("rubric %s: unknown dimension %q", path, a.Dimension)
		}
		if strings.TrimSpace(a.Text) == "" {
			return nil, fmt.Errorf("rubric %s: assertion with empty text in dimension %q", path, a.Dimension)
		}
		counts[a.Dimension]++
		if a.ID == "" {
			a.ID = AssertionID(a.Dimension, counts[a.Dimension])
		}
		r.Assertions = append(r.Assertions, a)
	}

	if len(r.Assertions) == 0 {
		return nil, fmt.Errorf("rubric %s: no assertions", path)
	}

	return r, nil
}

// LoadDir reads every .yaml or .yml file in a directory into a store.
// A missing directory yields a store with only the generic fallback.
func LoadDir(dir string) (*Store, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return NewStore(), nil
	}
	if err != nil {
		return nil, err
	}

	var rubrics []*Rubric
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		r, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		rubrics = append(rubrics, r)
	}

	return NewStore(rubrics...), nil
}
