// Package macro loads macro files and runs them against the active window.
package macro

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Macro is the on-disk form of a macro file.
type Macro struct {
	Title     string      `yaml:"title"`
	TimeoutMS int         `yaml:"timeout_ms"`
	Probes    []ProbeSpec `yaml:"probes"`
	Captures  []string    `yaml:"captures"`
	Steps     []Step      `yaml:"steps"`
}

// ProbeSpec is a pixel table that infers one flag.
type ProbeSpec struct {
	Label string     `yaml:"label"`
	Rules []RuleSpec `yaml:"rules"`
}

// RuleSpec maps the color at At to Value. A rule without at and color is a
// fallback that always matches.
type RuleSpec struct {
	At    []int  `yaml:"at"`
	Color string `yaml:"color"`
	Value bool   `yaml:"value"`
}

// Step is one instruction. Exactly one action field is set; Times and
// TimeoutMS qualify it.
type Step struct {
	Key       string     `yaml:"key"`
	Modifiers string     `yaml:"modifiers"`
	Click     *ClickSpec `yaml:"click"`
	SleepMS   int        `yaml:"sleep_ms"`
	Moment    int        `yaml:"moment"`
	Ensure    int        `yaml:"ensure"`
	WaitUntil string     `yaml:"wait_until"`
	WaitWhile string     `yaml:"wait_while"`
	Require   string     `yaml:"require"`
	Command   string     `yaml:"command"`
	Log       string     `yaml:"log"`

	Times     int `yaml:"times"`
	TimeoutMS int `yaml:"timeout_ms"`
}

// ClickSpec is either the name of a captured position or an explicit
// client offset.
type ClickSpec struct {
	Capture   string `yaml:"capture"`
	At        []int  `yaml:"at"`
	Button    string `yaml:"button"`
	Modifiers string `yaml:"modifiers"`
}

var clickFields = []string{"capture", "at", "button", "modifiers"}

// UnmarshalYAML accepts "click: npc1" as shorthand for
// "click: {capture: npc1}". Unknown keys in the mapping form are errors, as
// everywhere else in the file.
func (c *ClickSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		c.Capture = node.Value
		return nil
	case yaml.MappingNode:
		for i := 0; i < len(node.Content); i += 2 {
			if k := node.Content[i]; !slices.Contains(clickFields, k.Value) {
				return fmt.Errorf("line %d: field %s not found in click", k.Line, k.Value)
			}
		}
	}
	type plain ClickSpec
	return node.Decode((*plain)(c))
}

// Parse decodes a macro file. Unknown keys are errors.
func Parse(data []byte) (*Macro, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var m Macro
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("macro file is empty")
		}
		return nil, fmt.Errorf("parse macro: %w", err)
	}
	return &m, nil
}

// Load reads, parses and validates the macro file at path.
func Load(path string) (*Macro, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
