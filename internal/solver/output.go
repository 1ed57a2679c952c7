package solver

// StepType discriminates route steps.
type StepType uint8

const (
	StepStart StepType = iota
	StepJob
	StepEnd
)

func (t StepType) String() string {
	switch t {
	case StepStart:
		return "start"
	case StepJob:
		return "job"
	case StepEnd:
		return "end"
	}
	return "unknown"
}

// Step is one visit of a finished route.
type Step struct {
	Type     StepType
	JobID    uint64
	Location Location
	Arrival  int64
	Service  int64
	Waiting  int64
	Load     Amount
}

// Route is one vehicle's finished itinerary.
type Route struct {
	VehicleID uint64
	Steps     []Step
	Cost      int64
	Service   int64
	Duration  int64
	Waiting   int64
	Amount    Amount
	Geometry  string
}

// UnassignedJob pairs a dropped job with its blocking reason.
type UnassignedJob struct {
	ID     uint64
	Reason string
}

// Summary aggregates the whole solution.
type Summary struct {
	Cost       int64
	Routed     int
	Unassigned int
	Service    int64
	Duration   int64
	Waiting    int64
	Amount     Amount
}

// Solution is the engine's final answer.
type Solution struct {
	Summary    Summary
	Routes     []Route
	Unassigned []UnassignedJob
}

// buildSolution formats a trajectory result: schedules are recomputed
// forward so each step carries arrival, waiting and running load.
func buildSolution(in *Input, res trajectoryResult) *Solution {
	sol := &Solution{}
	sol.Summary.Amount = ZeroAmount(in.AmountSize())

	for v, jobs := range res.routes {
		if len(jobs) == 0 {
			continue
		}
		r := NewTWRoute(v)
		r.Jobs = append(r.Jobs, jobs...)
		r.updateSchedule(in)

		veh := &in.Vehicles[v]
		route := Route{
			VehicleID: veh.ID,
			Cost:      routeCost(in, r),
			Amount:    ZeroAmount(in.AmountSize()),
		}
		load := ZeroAmount(in.AmountSize())
		for _, j := range jobs {
			load.Add(in.Jobs[j].Amount)
		}
		route.Amount = load.Clone()

		// The vehicle leaves its start as late as the first service allows,
		// so waiting is only reported where a later window forces it.
		m := in.Matrix()
		prevDeparture := r.Earliest[0]
		prevLoc := -1
		if veh.HasStart() {
			departure := r.Earliest[0] - m.At(veh.Start.Index, in.JobIndex(jobs[0]))
			if departure < veh.TW.Start {
				departure = veh.TW.Start
			}
			route.Steps = append(route.Steps, Step{
				Type:     StepStart,
				Location: *veh.Start,
				Arrival:  departure,
				Load:     load.Clone(),
			})
			prevDeparture = departure
			prevLoc = veh.Start.Index
		}
		current := load.Clone()
		for k, j := range jobs {
			arrival := prevDeparture
			if prevLoc >= 0 {
				arrival += m.At(prevLoc, in.JobIndex(j))
			}
			start := r.Earliest[k]
			waiting := start - arrival
			if waiting < 0 {
				waiting = 0
			}
			route.Steps = append(route.Steps, Step{
				Type:     StepJob,
				JobID:    in.Jobs[j].ID,
				Location: in.Jobs[j].Location,
				Arrival:  arrival,
				Service:  in.Jobs[j].Service,
				Waiting:  waiting,
				Load:     current.Clone(),
			})
			current.Sub(in.Jobs[j].Amount)
			route.Service += in.Jobs[j].Service
			route.Waiting += waiting
			prevDeparture = start + in.Jobs[j].Service
			prevLoc = in.JobIndex(j)
		}

		if veh.HasEnd() {
			arrival := prevDeparture + m.At(prevLoc, veh.End.Index)
			route.Steps = append(route.Steps, Step{
				Type:     StepEnd,
				Location: *veh.End,
				Arrival:  arrival,
				Load:     ZeroAmount(in.AmountSize()),
			})
		}

		route.Duration = route.Cost
		sol.Summary.Cost += route.Cost
		sol.Summary.Service += route.Service
		sol.Summary.Duration += route.Duration
		sol.Summary.Waiting += route.Waiting
		sol.Summary.Amount.Add(route.Amount)
		sol.Summary.Routed += len(jobs)
		sol.Routes = append(sol.Routes, route)
	}

	for _, j := range jobOrder(in) {
		if res.reasons[j] != reasonNone {
			sol.Unassigned = append(sol.Unassigned, UnassignedJob{
				ID:     in.Jobs[j].ID,
				Reason: reasonString(res.reasons[j]),
			})
		}
	}
	sol.Summary.Unassigned = len(sol.Unassigned)
	return sol
}
