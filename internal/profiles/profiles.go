// internal/profiles/profiles.go

// Package profiles reads patient profiles from YAML files. A file holds
// either one patient at the top level or a list under "patients".
package profiles

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mcp-tpn-planner/internal/patient"
	"mcp-tpn-planner/internal/planner"
)

type entry struct {
	Name       string   `yaml:"name"`
	Variant    string   `yaml:"variant"`
	Age        float64  `yaml:"age"`
	HeightCM   float64  `yaml:"height_cm"`
	WeightKG   float64  `yaml:"weight_kg"`
	Sex        string   `yaml:"sex"`
	TotalDays  int      `yaml:"total_days"`
	Conditions []toggle `yaml:"conditions"`
}

type document struct {
	entry    `yaml:",inline"`
	Patients []entry `yaml:"patients"`
}

// toggle accepts a bare condition id or an {id, active} mapping.
type toggle patient.ConditionToggle

func (t *toggle) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*t = toggle{ID: n.Value, Active: true}
		return nil
	}
	var raw struct {
		ID     string `yaml:"id"`
		Active *bool  `yaml:"active"`
	}
	if err := n.Decode(&raw); err != nil {
		return err
	}
	*t = toggle{ID: raw.ID, Active: raw.Active == nil || *raw.Active}
	return nil
}

// LoadFile reads path and returns one resolution request per patient.
func LoadFile(path string, defaultDays int) ([]planner.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile file: %w", err)
	}
	reqs, err := Parse(data, defaultDays)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reqs, nil
}

// Parse decodes YAML profile data. Patients without total_days get
// defaultDays.
func Parse(data []byte, defaultDays int) ([]planner.Request, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse profile yaml: %w", err)
	}

	entries := doc.Patients
	if len(entries) == 0 {
		if doc.entry.Variant == "" {
			return nil, errors.New("no patient found: expected a top-level profile or a patients list")
		}
		entries = []entry{doc.entry}
	}

	reqs := make([]planner.Request, 0, len(entries))
	for i, e := range entries {
		req, err := e.request(defaultDays)
		if err != nil {
			return nil, fmt.Errorf("patient %d (%s): %w", i+1, e.Name, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func (e entry) request(defaultDays int) (planner.Request, error) {
	variant, err := patient.ParseVariant(e.Variant)
	if err != nil {
		return planner.Request{}, err
	}
	var sex patient.Sex
	if e.Sex != "" {
		if sex, err = patient.ParseSex(e.Sex); err != nil {
			return planner.Request{}, err
		}
	}

	p := patient.NewProfile(e.Name, variant, e.Age, e.HeightCM, e.WeightKG, sex)
	for _, t := range e.Conditions {
		p.Conditions = append(p.Conditions, patient.ConditionToggle(t))
	}

	days := e.TotalDays
	if days == 0 {
		days = defaultDays
	}
	return planner.Request{Profile: p, TotalDays: days}, nil
}
