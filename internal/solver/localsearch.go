package solver

import (
	"math/rand"
)

// localSearch owns one trajectory's mutable state: routes, derived caches,
// unassigned reasons and the trajectory RNG. Inputs stay shared and
// read-only.
type localSearch struct {
	in           *Input
	routes       []*TWRoute
	state        *SolutionState
	reasons      []uint8
	rng          *rand.Rand
	vehicleOrder []int
	jobOrder     []int
}

func newLocalSearch(in *Input, seed int64) *localSearch {
	ls := &localSearch{
		in:           in,
		routes:       make([]*TWRoute, len(in.Vehicles)),
		state:        NewSolutionState(len(in.Vehicles), len(in.Jobs)),
		reasons:      make([]uint8, len(in.Jobs)),
		rng:          rand.New(rand.NewSource(seed)),
		vehicleOrder: vehicleOrder(in),
		jobOrder:     jobOrder(in),
	}
	for v := range ls.routes {
		ls.routes[v] = NewTWRoute(v)
	}
	ls.state.Setup(in, ls.routes)
	return ls
}

// routeCost is the full chained cost of one route including depot edges.
func routeCost(in *Input, r *TWRoute) int64 {
	if r.Empty() {
		return 0
	}
	m := in.Matrix()
	v := r.vehicle(in)
	var total int64
	if v.HasStart() {
		total += m.At(v.Start.Index, in.JobIndex(r.Jobs[0]))
	}
	for k := 0; k+1 < r.Size(); k++ {
		total += m.At(in.JobIndex(r.Jobs[k]), in.JobIndex(r.Jobs[k+1]))
	}
	if v.HasEnd() {
		total += m.At(in.JobIndex(r.Jobs[r.Size()-1]), v.End.Index)
	}
	return total
}

func (ls *localSearch) totalCost() int64 {
	var total int64
	for _, r := range ls.routes {
		total += routeCost(ls.in, r)
	}
	return total
}

// bestMove scans every operator family over all parameter tuples and returns
// the single best valid strictly-improving move. Enumeration order pins the
// tie-break: earlier (family, sv, sr, tv, tr) wins on equal gain.
func (ls *localSearch) bestMove() Operator {
	var best Operator
	bestGain := int64(0)

	consider := func(op Operator) {
		if op.Gain() > bestGain && op.IsValid() {
			bestGain = op.Gain()
			best = op
		}
	}

	in, st, routes := ls.in, ls.state, ls.routes
	nb := len(routes)

	// Relocate
	for s := 0; s < nb; s++ {
		for t := 0; t < nb; t++ {
			if t == s {
				continue
			}
			for sr := 0; sr < routes[s].Size(); sr++ {
				for tr := 0; tr <= routes[t].Size(); tr++ {
					consider(NewRelocate(in, st, routes[s], s, sr, routes[t], t, tr))
				}
			}
		}
	}
	// Or-opt
	for s := 0; s < nb; s++ {
		for t := 0; t < nb; t++ {
			if t == s || routes[s].Size() < 2 {
				continue
			}
			for sr := 0; sr+1 < routes[s].Size(); sr++ {
				for tr := 0; tr <= routes[t].Size(); tr++ {
					consider(NewOrOpt(in, st, routes[s], s, sr, routes[t], t, tr))
				}
			}
		}
	}
	// Cross-exchange
	for s := 0; s < nb; s++ {
		for t := s + 1; t < nb; t++ {
			if routes[s].Size() < 2 || routes[t].Size() < 2 {
				continue
			}
			for sr := 0; sr+1 < routes[s].Size(); sr++ {
				for tr := 0; tr+1 < routes[t].Size(); tr++ {
					consider(NewCrossExchange(in, st, routes[s], s, sr, routes[t], t, tr))
				}
			}
		}
	}
	// Mixed exchange
	for s := 0; s < nb; s++ {
		for t := 0; t < nb; t++ {
			if t == s || routes[s].Empty() || routes[t].Size() < 2 {
				continue
			}
			for sr := 0; sr < routes[s].Size(); sr++ {
				for tr := 0; tr+1 < routes[t].Size(); tr++ {
					consider(NewMixedExchange(in, st, routes[s], s, sr, routes[t], t, tr))
				}
			}
		}
	}
	// 2-opt
	for s := 0; s < nb; s++ {
		for t := s + 1; t < nb; t++ {
			if routes[s].Empty() || routes[t].Empty() {
				continue
			}
			for sr := 0; sr < routes[s].Size(); sr++ {
				for tr := 0; tr < routes[t].Size(); tr++ {
					if sr == routes[s].Size()-1 && tr == routes[t].Size()-1 {
						continue
					}
					consider(NewTwoOpt(in, st, routes[s], s, sr, routes[t], t, tr))
				}
			}
		}
	}
	// Reverse-2-opt
	for s := 0; s < nb; s++ {
		for sr := 0; sr+1 < routes[s].Size(); sr++ {
			for tr := sr + 1; tr < routes[s].Size(); tr++ {
				consider(NewReverseTwoOpt(in, st, routes[s], s, sr, tr))
			}
		}
	}
	// Intra relocate
	for s := 0; s < nb; s++ {
		if routes[s].Size() < 2 {
			continue
		}
		for sr := 0; sr < routes[s].Size(); sr++ {
			for tr := 0; tr < routes[s].Size(); tr++ {
				if tr == sr {
					continue
				}
				consider(NewIntraRelocate(in, st, routes[s], s, sr, tr))
			}
		}
	}
	// Intra or-opt
	for s := 0; s < nb; s++ {
		if routes[s].Size() < 3 {
			continue
		}
		for sr := 0; sr+1 < routes[s].Size(); sr++ {
			for tr := 0; tr+1 < routes[s].Size(); tr++ {
				if tr == sr {
					continue
				}
				consider(NewIntraOrOpt(in, st, routes[s], s, sr, tr))
			}
		}
	}
	// Intra cross-exchange
	for s := 0; s < nb; s++ {
		if routes[s].Size() < 4 {
			continue
		}
		for sr := 0; sr+3 < routes[s].Size(); sr++ {
			for tr := sr + 2; tr+1 < routes[s].Size(); tr++ {
				consider(NewIntraCrossExchange(in, st, routes[s], s, sr, tr))
			}
		}
	}
	// Intra mixed exchange
	for s := 0; s < nb; s++ {
		if routes[s].Size() < 3 {
			continue
		}
		for sr := 0; sr < routes[s].Size(); sr++ {
			for tr := 0; tr+1 < routes[s].Size(); tr++ {
				if sr == tr || sr == tr+1 {
					continue
				}
				consider(NewIntraMixedExchange(in, st, routes[s], s, sr, tr))
			}
		}
	}

	return best
}

// run applies best-improvement moves until no strictly positive gain
// remains. Cost is non-increasing across every applied move.
func (ls *localSearch) run() {
	for {
		best := ls.bestMove()
		if best == nil {
			return
		}
		best.Apply()
		for _, v := range best.UpdateCandidates() {
			ls.state.UpdateRoute(ls.in, ls.routes, v)
		}
	}
}

// ruin removes a relatedness-guided subset of assigned jobs whose size
// scales with the exploration level. Seeds are drawn from the RNG; each
// seed's nearest neighbors in the other routes are pulled out with it.
func (ls *localSearch) ruin(level int) {
	assigned := 0
	for _, r := range ls.routes {
		assigned += r.Size()
	}
	if assigned == 0 {
		return
	}
	target := assigned * level / 10
	if target < 2 {
		target = 2
	}
	if target > assigned {
		target = assigned
	}

	removed := 0
	for removed < target {
		// pick a random assigned position
		pick := ls.rng.Intn(assigned - removed)
		seedV, seedRank := -1, -1
		for v, r := range ls.routes {
			if pick < r.Size() {
				seedV, seedRank = v, pick
				break
			}
			pick -= r.Size()
		}
		if seedV < 0 {
			break
		}

		// capture relatedness before mutating: nearest rank per other route
		type nearTarget struct{ v, job int }
		var near []nearTarget
		for w := range ls.routes {
			if w == seedV || ls.routes[w].Empty() {
				continue
			}
			nr := ls.state.NearestJobRankInRoutes[seedV][w][seedRank]
			if nr >= 0 {
				near = append(near, nearTarget{v: w, job: ls.routes[w].Jobs[nr]})
			}
		}

		seedJob := ls.routes[seedV].Jobs[seedRank]
		ls.routes[seedV].RemoveJobs(ls.in, seedRank, 1)
		ls.state.Unassigned[seedJob] = struct{}{}
		removed++

		for _, n := range near {
			if removed >= target {
				break
			}
			for rank, j := range ls.routes[n.v].Jobs {
				if j == n.job {
					ls.routes[n.v].RemoveJobs(ls.in, rank, 1)
					ls.state.Unassigned[j] = struct{}{}
					removed++
					break
				}
			}
		}

		ls.state.Setup(ls.in, ls.routes)
	}
}

// snapshot captures the current route contents for rollback.
func (ls *localSearch) snapshot() [][]int {
	out := make([][]int, len(ls.routes))
	for v, r := range ls.routes {
		out[v] = append([]int(nil), r.Jobs...)
	}
	return out
}

// restore rolls routes back to a snapshot and rebuilds all caches.
func (ls *localSearch) restore(snap [][]int) {
	for v, jobs := range snap {
		ls.routes[v].Jobs = append(ls.routes[v].Jobs[:0], jobs...)
		ls.routes[v].updateSchedule(ls.in)
	}
	ls.state.Setup(ls.in, ls.routes)
}
