package pddlsolve

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/deliveroo-agent/core/internal/grid"
)

// Config configures a solver invocation.
type Config struct {
	// SolverPath is the external solver binary to invoke. Defaults to
	// "pddl-solver" when empty.
	SolverPath string
	// WorkDir is where scratch domain/problem files are written. Defaults to
	// os.TempDir() when empty.
	WorkDir string
}

func (c Config) solverPath() string {
	if c.SolverPath != "" {
		return c.SolverPath
	}
	return "pddl-solver"
}

func (c Config) workDir() string {
	if c.WorkDir != "" {
		return c.WorkDir
	}
	return os.TempDir()
}

// tileName renders a coordinate as a PDDL object name, e.g. "tile3_4".
func tileName(c grid.Coord) string {
	return fmt.Sprintf("tile%d_%d", c.X, c.Y)
}

// RenderProblem emits a PDDL problem file combining the map belief set with
// "(on_tile <start>)" and the goal "(on_tile <goal>)" (spec.md §4.4).
func RenderProblem(problemName, domainName string, beliefs []string, start, goal grid.Coord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(define (problem %s)\n", problemName)
	fmt.Fprintf(&b, "  (:domain %s)\n", domainName)
	b.WriteString("  (:init\n")
	fmt.Fprintf(&b, "    (on_tile %s)\n", tileName(start))
	for _, belief := range beliefs {
		fmt.Fprintf(&b, "    (%s)\n", belief)
	}
	b.WriteString("  )\n")
	fmt.Fprintf(&b, "  (:goal (on_tile %s))\n", tileName(goal))
	b.WriteString(")\n")
	return b.String()
}

var stepTileRe = regexp.MustCompile(`tile(-?\d+)_(-?\d+)`)

// ParsePlan extracts the ordered sequence of tile coordinates named in the
// solver's stdout, in order of appearance, dropping any token equal to the
// tile kept just before it (the start tile counts as the first one, so a
// leading reference to it is dropped). Solver output is free-form step lines such as
// "1: (move tile0_0 tile1_0)"; only the "tileX_Y" tokens matter.
func ParsePlan(output string, start grid.Coord) ([]grid.Coord, error) {
	matches := stepTileRe.FindAllStringSubmatch(output, -1)
	if matches == nil {
		return nil, fmt.Errorf("pddlsolve.ParsePlan: no tile references found in solver output")
	}

	path := make([]grid.Coord, 0, len(matches))
	prev := start
	for _, m := range matches {
		x, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("pddlsolve.ParsePlan: malformed tile token %q: %w", m[0], err)
		}
		y, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, fmt.Errorf("pddlsolve.ParsePlan: malformed tile token %q: %w", m[0], err)
		}
		c := grid.Coord{X: x, Y: y}
		if c == prev {
			continue
		}
		path = append(path, c)
		prev = c
	}
	return path, nil
}

// Solve writes the domain and problem files to cfg's work directory, invokes
// the external solver, and parses its stdout into a path of tile coordinates
// from start to goal (exclusive of start).
//
// Precondition: domain must not be nil.
func Solve(ctx context.Context, cfg Config, domain *Domain, beliefs []string, start, goal grid.Coord) ([]grid.Coord, error) {
	if domain == nil {
		return nil, fmt.Errorf("pddlsolve.Solve: domain must not be nil")
	}

	dir := cfg.workDir()
	domainFile := filepath.Join(dir, "deliveroo-domain.pddl")
	problemFile := filepath.Join(dir, "deliveroo-problem.pddl")

	if err := os.WriteFile(domainFile, []byte(domain.Render()), 0o644); err != nil {
		return nil, fmt.Errorf("pddlsolve.Solve: writing domain file: %w", err)
	}
	problemText := RenderProblem("goto", domain.Name, beliefs, start, goal)
	if err := os.WriteFile(problemFile, []byte(problemText), 0o644); err != nil {
		return nil, fmt.Errorf("pddlsolve.Solve: writing problem file: %w", err)
	}

	cmd := exec.CommandContext(ctx, cfg.solverPath(), "-d", domainFile, "-p", problemFile)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pddlsolve.Solve: running solver: %w", err)
	}

	return ParsePlan(stdout.String(), start)
}
