package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"boqengine/boq"
)

// RuleFile is the YAML document that customizes classification and
// productivity. Example:
//
//	extraRules:
//	  - workType: marine
//	    keywords: [quay wall, fender]
//	rates:
//	  byUnit:
//	    finishing: {m2: 30}
//	  default:
//	    marine: 5
type RuleFile struct {
	// Rules replaces the built-in rule table when present.
	Rules boq.RuleTable `yaml:"rules"`
	// ExtraRules are evaluated before the active rule table.
	ExtraRules boq.RuleTable `yaml:"extraRules"`
	// Rates are merged over the built-in productivity table.
	Rates *boq.RateTable `yaml:"rates"`
}

// LoadRuleFile reads and validates a rules file.
func LoadRuleFile(path string) (*RuleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	rf, err := ParseRuleFile(data)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return rf, nil
}

// ParseRuleFile decodes a rules document. Unknown keys are rejected so that
// typos do not silently fall back to defaults.
func ParseRuleFile(data []byte) (*RuleFile, error) {
	var rf RuleFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rf); err != nil {
		if errors.Is(err, io.EOF) {
			return &rf, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := rf.Validate(); err != nil {
		return nil, err
	}
	return &rf, nil
}

// Validate requires every rule to name a work type and at least one keyword,
// and every rate to be positive.
func (rf *RuleFile) Validate() error {
	tables := []struct {
		name  string
		rules boq.RuleTable
	}{
		{"rules", rf.Rules},
		{"extraRules", rf.ExtraRules},
	}
	for _, t := range tables {
		for i := range t.rules {
			r := &t.rules[i]
			err := validation.ValidateStruct(r,
				validation.Field(&r.WorkType, validation.Required),
				validation.Field(&r.Keywords, validation.Required),
			)
			if err != nil {
				return fmt.Errorf("%s[%d]: %w", t.name, i, err)
			}
		}
	}
	if rf.Rates != nil {
		if err := rf.Rates.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Apply copies the file's tables onto opts.
func (rf *RuleFile) Apply(opts *boq.Options) {
	if rf.Rules != nil {
		opts.Rules = rf.Rules
	}
	if rf.ExtraRules != nil {
		opts.ExtraRules = append(opts.ExtraRules, rf.ExtraRules...)
	}
	if rf.Rates != nil {
		if opts.Rates == nil {
			opts.Rates = rf.Rates
		} else {
			merged := opts.Rates.Merge(*rf.Rates)
			opts.Rates = &merged
		}
	}
}
