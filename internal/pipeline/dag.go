// Package pipeline orchestrates a batch run: stages are ordered by their
// dependencies, run level by level, and recorded in the run ledger.
package pipeline

import (
	"sort"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
)

// ResolveExecutionOrder computes a topological ordering of stages using
// Kahn's algorithm. It returns levels of stage names where each level can
// run in parallel; names within a level are sorted. Unknown dependencies,
// self dependencies, duplicate names and cycles are validation errors.
func ResolveExecutionOrder(stages []domain.Stage) ([][]string, error) {
	if len(stages) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(stages))
	dependents := make(map[string][]string) // dep name → stages that depend on it

	for _, s := range stages {
		if _, dup := inDegree[s.Name]; dup {
			return nil, domain.ErrValidation("duplicate stage: %s", s.Name)
		}
		inDegree[s.Name] = 0
	}

	for _, s := range stages {
		for _, dep := range s.DependsOn {
			if _, ok := inDegree[dep]; !ok {
				return nil, domain.ErrValidation("unknown dependency: %s", dep)
			}
			if dep == s.Name {
				return nil, domain.ErrValidation("self dependency: %s", s.Name)
			}
			dependents[dep] = append(dependents[dep], s.Name)
			inDegree[s.Name]++
		}
	}

	var levels [][]string
	var queue []string
	for name, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, name)
		}
	}

	processed := 0
	for len(queue) > 0 {
		sort.Strings(queue)
		levels = append(levels, queue)
		processed += len(queue)

		var next []string
		for _, name := range queue {
			for _, d := range dependents[name] {
				inDegree[d]--
				if inDegree[d] == 0 {
					next = append(next, d)
				}
			}
		}
		queue = next
	}

	if processed != len(stages) {
		return nil, domain.ErrValidation("cycle detected in stage dependencies")
	}
	return levels, nil
}
