package solver

import (
	"math"
	"sort"
)

// maxTWEnd is the default upper bound for missing time windows, chosen so
// chained additions of travel and service never overflow int64.
const maxTWEnd = math.MaxInt64 / 4

// TimeWindow is a closed integer interval of seconds during which service may
// start.
type TimeWindow struct {
	Start int64
	End   int64
}

// DefaultTimeWindow covers the whole horizon.
func DefaultTimeWindow() TimeWindow { return TimeWindow{Start: 0, End: maxTWEnd} }

// Contains reports whether t lies inside the window.
func (tw TimeWindow) Contains(t int64) bool { return tw.Start <= t && t <= tw.End }

// Skills is a set of opaque capability tags.
type Skills map[uint32]struct{}

// NewSkills builds a set from a list of tags.
func NewSkills(tags []uint32) Skills {
	s := make(Skills, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

// SubsetOf reports whether every tag in s is held by other.
func (s Skills) SubsetOf(other Skills) bool {
	for t := range s {
		if _, ok := other[t]; !ok {
			return false
		}
	}
	return true
}

// Location points into the cost matrix. Coordinates are carried opaquely for
// the output geometry stage and ignored by the engine.
type Location struct {
	Index  int
	Coords *[2]float64
}

// Job is an immutable service request.
type Job struct {
	ID       uint64
	Location Location
	Service  int64
	Amount   Amount
	Skills   Skills
	TWs      []TimeWindow
}

// Vehicle is an immutable fleet member. Start and End are optional depots;
// their absence is part of the logic, never a sentinel index.
type Vehicle struct {
	ID       uint64
	Start    *Location
	End      *Location
	Capacity Amount
	Skills   Skills
	TW       TimeWindow
}

// HasStart reports whether the vehicle leaves from a depot.
func (v *Vehicle) HasStart() bool { return v.Start != nil }

// HasEnd reports whether the vehicle must return to a depot.
func (v *Vehicle) HasEnd() bool { return v.End != nil }

// Covers reports whether the vehicle holds all of the job's skills.
func (v *Vehicle) Covers(j *Job) bool { return j.Skills.SubsetOf(v.Skills) }

// Input is the read-only problem handed to the engine: jobs, vehicles and the
// cost matrix, plus precomputed vehicle/job compatibility.
type Input struct {
	Jobs     []Job
	Vehicles []Vehicle

	matrix     *Matrix
	amountSize int
	compat     [][]bool // [vehicle][job] skill coverage
}

// NewInput validates the problem and precomputes compatibility. Jobs and
// vehicles must be non-empty, amounts uniform in arity, locations inside the
// matrix, and job time windows ordered and non-overlapping; a job without
// windows gets the whole-horizon default window.
func NewInput(jobs []Job, vehicles []Vehicle, m *Matrix) (*Input, error) {
	if len(jobs) == 0 {
		return nil, errInput("empty jobs")
	}
	if len(vehicles) == 0 {
		return nil, errInput("empty vehicles")
	}
	if m == nil {
		return nil, errInput("missing matrix")
	}

	in := &Input{Jobs: jobs, Vehicles: vehicles, matrix: m}

	in.amountSize = len(jobs[0].Amount)
	for i := range jobs {
		j := &in.Jobs[i]
		if len(j.Amount) != in.amountSize {
			return nil, errInput("inconsistent amount length for job %d", j.ID)
		}
		for k, d := range j.Amount {
			if d < 0 {
				return nil, errInput("negative amount component %d for job %d", k, j.ID)
			}
		}
		if j.Location.Index < 0 || j.Location.Index >= m.Size() {
			return nil, errInput("location_index exceeding matrix size for job %d", j.ID)
		}
		if j.Service < 0 {
			return nil, errInput("invalid service value for job %d", j.ID)
		}
		if len(j.TWs) == 0 {
			j.TWs = []TimeWindow{DefaultTimeWindow()}
		}
		for _, tw := range j.TWs {
			if tw.End < tw.Start {
				return nil, errInput("invalid time window for job %d", j.ID)
			}
		}
		sort.Slice(j.TWs, func(a, b int) bool {
			if j.TWs[a].Start != j.TWs[b].Start {
				return j.TWs[a].Start < j.TWs[b].Start
			}
			return j.TWs[a].End < j.TWs[b].End
		})
		for k := 0; k+1 < len(j.TWs); k++ {
			if j.TWs[k].End >= j.TWs[k+1].Start {
				return nil, errInput("overlapping time windows for job %d", j.ID)
			}
		}
		if j.Skills == nil {
			j.Skills = Skills{}
		}
	}

	for i := range vehicles {
		v := &in.Vehicles[i]
		if v.Capacity == nil {
			v.Capacity = ZeroAmount(in.amountSize)
			for k := range v.Capacity {
				v.Capacity[k] = math.MaxInt64 / 4
			}
		}
		if len(v.Capacity) != in.amountSize {
			return nil, errInput("inconsistent capacity length for vehicle %d", v.ID)
		}
		if v.HasStart() && (v.Start.Index < 0 || v.Start.Index >= m.Size()) {
			return nil, errInput("start_index exceeding matrix size for vehicle %d", v.ID)
		}
		if v.HasEnd() && (v.End.Index < 0 || v.End.Index >= m.Size()) {
			return nil, errInput("end_index exceeding matrix size for vehicle %d", v.ID)
		}
		if v.TW == (TimeWindow{}) {
			v.TW = DefaultTimeWindow()
		}
		if v.TW.End < v.TW.Start {
			return nil, errInput("invalid time window for vehicle %d", v.ID)
		}
		if v.Skills == nil {
			v.Skills = Skills{}
		}
	}

	in.compat = make([][]bool, len(vehicles))
	for vi := range in.Vehicles {
		in.compat[vi] = make([]bool, len(jobs))
		for ji := range in.Jobs {
			in.compat[vi][ji] = in.Vehicles[vi].Covers(&in.Jobs[ji])
		}
	}

	return in, nil
}

// Matrix returns the cost matrix view.
func (in *Input) Matrix() *Matrix { return in.matrix }

// AmountSize returns the arity of capacity vectors.
func (in *Input) AmountSize() int { return in.amountSize }

// VehicleOKWithJob reports precomputed skill coverage.
func (in *Input) VehicleOKWithJob(v, j int) bool { return in.compat[v][j] }

// JobIndex returns the matrix index of the job at the given rank.
func (in *Input) JobIndex(j int) int { return in.Jobs[j].Location.Index }
