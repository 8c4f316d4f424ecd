// Package pddlsolve loads a static PDDL domain description and shells out to
// an external solver to produce a tile-to-tile plan. It backs the optional
// GoToPDDL plan (spec.md §4.4); the normal A* pathfinder never imports this
// package.
package pddlsolve

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Action is one PDDL action schema, e.g. "move" with a "right"/"left"/
// "above"/"below" connectivity precondition.
//
// Precondition: Name must be non-empty.
type Action struct {
	Name         string `yaml:"name"`
	Parameters   string `yaml:"parameters"`   // e.g. "?from ?to"
	Precondition string `yaml:"precondition"` // raw PDDL precondition s-expression body
	Effect       string `yaml:"effect"`       // raw PDDL effect s-expression body
}

// Domain is the static PDDL domain definition: a handful of tile-connectivity
// predicates and a single "move" action, loaded once at startup from YAML the
// same way the teacher's ai.LoadDomains loads HTN domains — a declarative file
// parsed into a Go struct, then rendered into the target grammar (PDDL here,
// nothing to render for the teacher's Lua-precondition HTN domains).
type Domain struct {
	Name       string   `yaml:"name"`
	Predicates []string `yaml:"predicates"` // e.g. "right", "left", "above", "below", "on_tile"
	Actions    []Action `yaml:"actions"`
}

type yamlDomainFile struct {
	Domain *Domain `yaml:"domain"`
}

// LoadDomain reads a single PDDL domain description from a YAML file.
//
// Precondition: path must name a readable file containing a top-level
// "domain" key.
func LoadDomain(path string) (*Domain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pddlsolve.LoadDomain: reading %s: %w", path, err)
	}
	var f yamlDomainFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("pddlsolve.LoadDomain: parsing %s: %w", path, err)
	}
	if f.Domain == nil {
		return nil, fmt.Errorf("pddlsolve.LoadDomain: %s missing top-level 'domain' key", path)
	}
	if f.Domain.Name == "" {
		return nil, fmt.Errorf("pddlsolve.LoadDomain: %s: domain name must not be empty", path)
	}
	if len(f.Domain.Actions) == 0 {
		return nil, fmt.Errorf("pddlsolve.LoadDomain: %s: domain must declare at least one action", path)
	}
	return f.Domain, nil
}

// Render emits the PDDL domain text for d.
func (d *Domain) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "(define (domain %s)\n", d.Name)
	b.WriteString("  (:requirements :strips)\n")
	b.WriteString("  (:predicates\n")
	for _, p := range d.Predicates {
		fmt.Fprintf(&b, "    (%s ?a ?b)\n", p)
	}
	b.WriteString("  )\n")
	for _, a := range d.Actions {
		fmt.Fprintf(&b, "  (:action %s\n", a.Name)
		fmt.Fprintf(&b, "    :parameters (%s)\n", a.Parameters)
		fmt.Fprintf(&b, "    :precondition (%s)\n", a.Precondition)
		fmt.Fprintf(&b, "    :effect (%s)\n", a.Effect)
		b.WriteString("  )\n")
	}
	b.WriteString(")\n")
	return b.String()
}
