// Package goalfile loads goals from YAML documents.
package goalfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"vision-agent/internal/domain/entity"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// File is the on-disk shape. A single goal may be given at the top level,
// or several under "goals".
type File struct {
	entity.Goal `yaml:",inline"`

	URL   string        `yaml:"url"`
	Goals []entity.Goal `yaml:"goals"`
}

func Load(path string) (*File, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand goal path: %w", err)
	}
	raw, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("read goal file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse goal file: %w", err)
	}

	if f.Description != "" {
		f.Goals = append([]entity.Goal{f.Goal}, f.Goals...)
		f.Goal = entity.Goal{}
	}
	if len(f.Goals) == 0 {
		return nil, fmt.Errorf("%w: goal file defines no goals", entity.ErrInvalidGoal)
	}
	for i, g := range f.Goals {
		if g.Description == "" {
			return nil, fmt.Errorf("%w: goal %d has no description", entity.ErrInvalidGoal, i+1)
		}
	}
	return &f, nil
}
