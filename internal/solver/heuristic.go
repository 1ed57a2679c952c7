package solver

import (
	"math"
	"sort"
)

// Unassigned reason categories, kept as the last-observed blocking reason
// while insertions are attempted.
const (
	reasonNone uint8 = iota
	reasonSkill
	reasonCapacity
	reasonTW
	reasonUnreachable
)

// reasonString maps a reason tag to its wire name.
func reasonString(r uint8) string {
	switch r {
	case reasonSkill:
		return "skill_mismatch"
	case reasonCapacity:
		return "capacity_exceeded"
	case reasonTW:
		return "time_window_infeasible"
	case reasonUnreachable:
		return "unreachable_location"
	}
	return "unassignable"
}

// vehicleOrder ranks vehicles for construction: earliest availability first,
// then larger capacity, then broader skills, ties broken by id.
func vehicleOrder(in *Input) []int {
	order := make([]int, len(in.Vehicles))
	for i := range order {
		order[i] = i
	}
	capSum := func(v int) int64 {
		var s int64
		for _, c := range in.Vehicles[v].Capacity {
			s += c
		}
		return s
	}
	sort.SliceStable(order, func(a, b int) bool {
		va, vb := order[a], order[b]
		if in.Vehicles[va].TW.Start != in.Vehicles[vb].TW.Start {
			return in.Vehicles[va].TW.Start < in.Vehicles[vb].TW.Start
		}
		if ca, cb := capSum(va), capSum(vb); ca != cb {
			return ca > cb
		}
		if sa, sb := len(in.Vehicles[va].Skills), len(in.Vehicles[vb].Skills); sa != sb {
			return sa > sb
		}
		return in.Vehicles[va].ID < in.Vehicles[vb].ID
	})
	return order
}

// jobOrder ranks jobs for candidate scanning: ascending id, ties by rank.
func jobOrder(in *Input) []int {
	order := make([]int, len(in.Jobs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if in.Jobs[order[a]].ID != in.Jobs[order[b]].ID {
			return in.Jobs[order[a]].ID < in.Jobs[order[b]].ID
		}
		return order[a] < order[b]
	})
	return order
}

// insertionDelta prices splicing job at rank into route r.
func insertionDelta(in *Input, r *TWRoute, rank, job int) int64 {
	m := in.Matrix()
	v := r.vehicle(in)
	prev := -1
	if rank > 0 {
		prev = in.JobIndex(r.Jobs[rank-1])
	} else if v.HasStart() {
		prev = v.Start.Index
	}
	next := -1
	if rank < r.Size() {
		next = in.JobIndex(r.Jobs[rank])
	} else if v.HasEnd() {
		next = v.End.Index
	}
	idx := in.JobIndex(job)
	var delta int64
	if prev >= 0 {
		delta += m.At(prev, idx)
	}
	if next >= 0 {
		delta += m.At(idx, next)
	}
	if prev >= 0 && next >= 0 {
		delta -= m.At(prev, next)
	}
	return delta
}

// greedyFill runs cheapest insertion of the unassigned set, vehicle by
// vehicle in construction order. Ties are broken by ascending job id then
// rank. Jobs that cannot land anywhere keep their last-observed blocking
// reason.
func (ls *localSearch) greedyFill() {
	scratch := make([]int, 1)
	for _, v := range ls.vehicleOrder {
		route := ls.routes[v]
		capacity := ls.in.Vehicles[v].Capacity
		for {
			bestJob, bestRank := -1, -1
			bestDelta := int64(math.MaxInt64)
			for _, j := range ls.jobOrder {
				if _, open := ls.state.Unassigned[j]; !open {
					continue
				}
				if !ls.in.VehicleOKWithJob(v, j) {
					ls.reasons[j] = reasonSkill
					continue
				}
				load := ls.state.RouteAmount(ls.in, v).Plus(ls.in.Jobs[j].Amount)
				if !load.LTE(capacity) {
					ls.reasons[j] = reasonCapacity
					continue
				}
				feasibleRank := false
				for rank := 0; rank <= route.Size(); rank++ {
					scratch[0] = j
					if !route.IsValidAdditionForTW(ls.in, scratch, rank, rank) {
						continue
					}
					feasibleRank = true
					if d := insertionDelta(ls.in, route, rank, j); d < bestDelta {
						bestDelta = d
						bestJob, bestRank = j, rank
					}
				}
				if !feasibleRank {
					ls.reasons[j] = reasonTW
				}
			}
			if bestJob < 0 {
				break
			}
			route.Add(ls.in, bestJob, bestRank)
			delete(ls.state.Unassigned, bestJob)
			ls.reasons[bestJob] = reasonNone
			ls.state.UpdateRoute(ls.in, ls.routes, v)
		}
	}
}
