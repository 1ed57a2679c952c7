package api

import (
	"context"
	"time"

	"routeopt/internal/model"
	"routeopt/internal/routing"
	"routeopt/internal/solver"
)

// buildInput translates the wire request into a solver input. When the
// request carries no matrix, every job and depot must carry coordinates and
// the routing provider computes one; the matrix indices are then written
// back onto the request. The shared vehicle profile is returned alongside
// the input so geometry can be fetched with it after solving.
func buildInput(ctx context.Context, req *model.SolveRequest, prov routing.Provider) (*solver.Input, string, error) {
	profile := routing.DefaultProfile
	for i, v := range req.Vehicles {
		p := v.Profile
		if p == "" {
			p = routing.DefaultProfile
		}
		if i == 0 {
			profile = p
		} else if p != profile {
			return nil, "", &solver.Error{Kind: solver.InputError, Message: "mixed vehicle profiles in input"}
		}
	}

	var rows [][]int64
	if len(req.Matrix) > 0 {
		rows = req.Matrix
	} else {
		coords, assign, err := collectCoords(req)
		if err != nil {
			return nil, "", err
		}
		computed, err := prov.Matrix(ctx, profile, coords)
		if err != nil {
			return nil, "", &solver.Error{Kind: solver.RoutingError, Message: err.Error()}
		}
		rows = computed
		assign()
	}

	m, err := solver.NewMatrix(rows)
	if err != nil {
		return nil, "", err
	}

	jobs := make([]solver.Job, len(req.Jobs))
	for i, j := range req.Jobs {
		if j.LocationIndex == nil {
			return nil, "", &solver.Error{Kind: solver.InputError, Message: "missing location_index for job"}
		}
		jobs[i] = solver.Job{
			ID:       j.ID,
			Location: solver.Location{Index: *j.LocationIndex, Coords: coordsOf(j.Location)},
			Service:  j.Service,
			Amount:   solver.Amount(j.Amount),
			Skills:   solver.NewSkills(j.Skills),
			TWs:      toWindows(j.TimeWindows),
		}
	}

	vehicles := make([]solver.Vehicle, len(req.Vehicles))
	for i, v := range req.Vehicles {
		sv := solver.Vehicle{
			ID:       v.ID,
			Capacity: solver.Amount(v.Capacity),
			Skills:   solver.NewSkills(v.Skills),
		}
		if v.StartIndex != nil {
			sv.Start = &solver.Location{Index: *v.StartIndex, Coords: coordsOf(v.Start)}
		}
		if v.EndIndex != nil {
			sv.End = &solver.Location{Index: *v.EndIndex, Coords: coordsOf(v.End)}
		}
		if v.TimeWindow != nil {
			sv.TW = solver.TimeWindow{Start: v.TimeWindow[0], End: v.TimeWindow[1]}
		}
		vehicles[i] = sv
	}

	in, err := solver.NewInput(jobs, vehicles, m)
	if err != nil {
		return nil, "", err
	}
	return in, profile, nil
}

// collectCoords gathers coordinates in visit order (jobs, then vehicle
// depots) and returns a closure filling in the corresponding indices on the
// request once the matrix is known.
func collectCoords(req *model.SolveRequest) ([][2]float64, func(), error) {
	coords := [][2]float64{}
	jobIdx := make([]int, len(req.Jobs))
	startIdx := make([]int, len(req.Vehicles))
	endIdx := make([]int, len(req.Vehicles))
	for i := range startIdx {
		startIdx[i], endIdx[i] = -1, -1
	}

	for i, j := range req.Jobs {
		if j.Location == nil {
			return nil, nil, &solver.Error{Kind: solver.InputError, Message: "missing location for job"}
		}
		jobIdx[i] = len(coords)
		coords = append(coords, [2]float64(*j.Location))
	}
	for i, v := range req.Vehicles {
		if v.Start != nil {
			startIdx[i] = len(coords)
			coords = append(coords, [2]float64(*v.Start))
		}
		if v.End != nil {
			endIdx[i] = len(coords)
			coords = append(coords, [2]float64(*v.End))
		}
	}

	assign := func() {
		for i := range req.Jobs {
			idx := jobIdx[i]
			req.Jobs[i].LocationIndex = &idx
		}
		for i := range req.Vehicles {
			if startIdx[i] >= 0 {
				idx := startIdx[i]
				req.Vehicles[i].StartIndex = &idx
			}
			if endIdx[i] >= 0 {
				idx := endIdx[i]
				req.Vehicles[i].EndIndex = &idx
			}
		}
	}
	return coords, assign, nil
}

func coordsOf(c *model.CoordPair) *[2]float64 {
	if c == nil {
		return nil
	}
	out := [2]float64(*c)
	return &out
}

func toWindows(tws [][2]int64) []solver.TimeWindow {
	out := make([]solver.TimeWindow, len(tws))
	for i, tw := range tws {
		out[i] = solver.TimeWindow{Start: tw[0], End: tw[1]}
	}
	return out
}

// solverOptions merges request options over tenant defaults.
func solverOptions(req model.SolveOptions, defaults map[string]any) solver.Options {
	opts := solver.Options{ExplorationLevel: 2, NbThreads: 1}
	if v, ok := defaults["exploration_level"].(float64); ok {
		opts.ExplorationLevel = int(v)
	}
	if v, ok := defaults["nb_threads"].(float64); ok {
		opts.NbThreads = int(v)
	}
	if v, ok := defaults["time_budget_ms"].(float64); ok {
		opts.TimeBudget = time.Duration(v) * time.Millisecond
	}
	if req.ExplorationLevel != nil {
		opts.ExplorationLevel = *req.ExplorationLevel
	}
	if req.NbThreads > 0 {
		opts.NbThreads = req.NbThreads
	}
	if req.TimeBudgetMs > 0 {
		opts.TimeBudget = time.Duration(req.TimeBudgetMs) * time.Millisecond
	}
	opts.Seed = req.Seed
	opts.Geometry = req.Geometry
	return opts
}

// toWire converts the solver's solution into the response shape.
func toWire(sol *solver.Solution) model.SolutionOut {
	out := model.SolutionOut{
		Summary: model.SummaryOut{
			Cost:        sol.Summary.Cost,
			Routed:      sol.Summary.Routed,
			Unassigned:  sol.Summary.Unassigned,
			Service:     sol.Summary.Service,
			Duration:    sol.Summary.Duration,
			WaitingTime: sol.Summary.Waiting,
			Amount:      sol.Summary.Amount,
		},
		Routes:     []model.RouteOut{},
		Unassigned: []model.UnassignedOut{},
	}
	for _, r := range sol.Routes {
		route := model.RouteOut{
			Vehicle:     r.VehicleID,
			Cost:        r.Cost,
			Service:     r.Service,
			Duration:    r.Duration,
			WaitingTime: r.Waiting,
			Amount:      r.Amount,
			Geometry:    r.Geometry,
			Steps:       []model.StepOut{},
		}
		for _, s := range r.Steps {
			step := model.StepOut{
				Type:          s.Type.String(),
				Job:           s.JobID,
				LocationIndex: s.Location.Index,
				Arrival:       s.Arrival,
				Service:       s.Service,
				WaitingTime:   s.Waiting,
				Load:          s.Load,
			}
			if s.Location.Coords != nil {
				c := model.CoordPair(*s.Location.Coords)
				step.Location = &c
			}
			route.Steps = append(route.Steps, step)
		}
		out.Routes = append(out.Routes, route)
	}
	for _, u := range sol.Unassigned {
		out.Unassigned = append(out.Unassigned, model.UnassignedOut{ID: u.ID, Reason: u.Reason})
	}
	return out
}
