package api

import (
	"fmt"

	"routeopt/internal/model"
	"routeopt/internal/solver"
)

func validateSolveRequest(req *model.SolveRequest) error {
	if len(req.Jobs) == 0 {
		return fmt.Errorf("jobs must not be empty")
	}
	if len(req.Vehicles) == 0 {
		return fmt.Errorf("vehicles must not be empty")
	}
	for i, row := range req.Matrix {
		if len(row) != len(req.Matrix) {
			return fmt.Errorf("matrix line %d is not square", i)
		}
	}
	for _, j := range req.Jobs {
		for _, tw := range j.TimeWindows {
			if tw[1] < tw[0] {
				return fmt.Errorf("invalid time window for job %d", j.ID)
			}
		}
	}
	o := req.Options
	if o.ExplorationLevel != nil && (*o.ExplorationLevel < 0 || *o.ExplorationLevel > solver.MaxExplorationLevel) {
		return fmt.Errorf("exploration_level must be in [0,%d]", solver.MaxExplorationLevel)
	}
	if o.NbThreads < 0 {
		return fmt.Errorf("nb_threads must be >= 0")
	}
	if o.TimeBudgetMs < 0 {
		return fmt.Errorf("time_budget_ms must be >= 0")
	}
	return nil
}

func validateSolverConfig(cfg map[string]any) error {
	allowed := map[string]struct{}{"exploration_level": {}, "nb_threads": {}, "time_budget_ms": {}}
	for k, v := range cfg {
		if _, ok := allowed[k]; !ok {
			return fmt.Errorf("unknown config key: %s (allowed: exploration_level,nb_threads,time_budget_ms)", k)
		}
		f, ok := v.(float64)
		if !ok || f < 0 {
			return fmt.Errorf("config %s must be a non-negative number", k)
		}
	}
	return nil
}
