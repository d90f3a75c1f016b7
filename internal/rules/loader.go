// Package rules loads the optional resolution/validation rules file
// and publishes the active ruleset to readers.
package rules

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hindsightlabs/hindsight/internal/domain"
)

// fileSchema mirrors the yaml rules file. Every section is optional;
// anything left out keeps its built-in default.
type fileSchema struct {
	Focus struct {
		Promotions []string `yaml:"promotions"`
		Products   []string `yaml:"products"`
		Delivery   []string `yaml:"delivery"`
	} `yaml:"focus"`
	Holidays map[string]struct {
		Month int `yaml:"month"`
		Day   int `yaml:"day"`
	} `yaml:"holidays"`
	Validation struct {
		MinLength    int    `yaml:"min_length"`
		RootMarker   string `yaml:"root_marker"`
		MarkerWindow int    `yaml:"marker_window"`
	} `yaml:"validation"`
}

// Loader reads the rules file and merges it over the defaults.
type Loader struct {
	filePath string
}

// NewLoader creates a loader for filePath. An empty path means no
// file: Load then returns the built-in defaults.
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load parses the rules file and returns the merged ruleset.
func (l *Loader) Load() (domain.Ruleset, error) {
	rs := domain.DefaultRuleset()
	if l.filePath == "" {
		return rs, nil
	}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return rs, fmt.Errorf("failed to read rules file: %w", err)
	}

	var file fileSchema
	if err := yaml.Unmarshal(data, &file); err != nil {
		return rs, fmt.Errorf("failed to parse rules yaml: %w", err)
	}

	if len(file.Focus.Promotions) > 0 {
		rs.Focus.Promotions = file.Focus.Promotions
	}
	if len(file.Focus.Products) > 0 {
		rs.Focus.Products = file.Focus.Products
	}
	if len(file.Focus.Delivery) > 0 {
		rs.Focus.Delivery = file.Focus.Delivery
	}

	if len(file.Holidays) > 0 {
		holidays := make(map[string]domain.Holiday, len(file.Holidays))
		for name, h := range file.Holidays {
			if h.Month < 1 || h.Month > 12 || h.Day < 1 || h.Day > 31 {
				return rs, fmt.Errorf("invalid holiday date for %q: month=%d day=%d", name, h.Month, h.Day)
			}
			holidays[name] = domain.Holiday{Month: time.Month(h.Month), Day: h.Day}
		}
		rs.Holidays = holidays
	}

	if file.Validation.MinLength > 0 {
		rs.Validation.MinLength = file.Validation.MinLength
	}
	if file.Validation.RootMarker != "" {
		rs.Validation.RootMarker = file.Validation.RootMarker
	}
	if file.Validation.MarkerWindow > 0 {
		rs.Validation.MarkerWindow = file.Validation.MarkerWindow
	}

	return rs, nil
}
