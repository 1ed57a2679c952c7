package solver

// SolutionState holds the derived caches the operators read during neighbour
// exploration: prefix/suffix load sums, the cost of the edges surrounding
// each route edge, nearest-rank lookups between routes, and the unassigned
// set. It is read-only while moves are evaluated; after an accepted move only
// the entries keyed on the operator's update candidates are rebuilt.
type SolutionState struct {
	FwdAmounts [][]Amount
	BwdAmounts [][]Amount

	// EdgeCostsAroundEdge[v][r] is the cost of the edge entering position r
	// plus the cost of the edge leaving position r+1, with vehicle start/end
	// contributing where present. Defined for r in [0, size-2].
	EdgeCostsAroundEdge [][]int64

	// NearestJobRankInRoutes[v1][v2][r] is the rank in route v2 whose job is
	// cheapest to reach from the job at rank r of route v1, or -1 when v2 is
	// empty.
	NearestJobRankInRoutes [][][]int

	Unassigned map[int]struct{}
}

// NewSolutionState allocates empty caches for the given fleet size.
func NewSolutionState(nbVehicles, nbJobs int) *SolutionState {
	s := &SolutionState{
		FwdAmounts:             make([][]Amount, nbVehicles),
		BwdAmounts:             make([][]Amount, nbVehicles),
		EdgeCostsAroundEdge:    make([][]int64, nbVehicles),
		NearestJobRankInRoutes: make([][][]int, nbVehicles),
		Unassigned:             make(map[int]struct{}, nbJobs),
	}
	for v := range s.NearestJobRankInRoutes {
		s.NearestJobRankInRoutes[v] = make([][]int, nbVehicles)
	}
	return s
}

// Setup rebuilds every cache from scratch and derives the unassigned set.
func (s *SolutionState) Setup(in *Input, routes []*TWRoute) {
	for j := range in.Jobs {
		s.Unassigned[j] = struct{}{}
	}
	for _, r := range routes {
		for _, j := range r.Jobs {
			delete(s.Unassigned, j)
		}
	}
	for v := range routes {
		s.updateAmounts(in, routes[v])
		s.updateEdgeCosts(in, routes[v])
	}
	for v1 := range routes {
		for v2 := range routes {
			s.updateNearestJobRanks(in, routes[v1], routes[v2])
		}
	}
}

// UpdateRoute refreshes all caches keyed on a single vehicle after its route
// changed, including the nearest-rank slices on both sides.
func (s *SolutionState) UpdateRoute(in *Input, routes []*TWRoute, v int) {
	s.updateAmounts(in, routes[v])
	s.updateEdgeCosts(in, routes[v])
	for other := range routes {
		s.updateNearestJobRanks(in, routes[v], routes[other])
		if other != v {
			s.updateNearestJobRanks(in, routes[other], routes[v])
		}
	}
}

func (s *SolutionState) updateAmounts(in *Input, r *TWRoute) {
	v := r.VehicleRank
	n := r.Size()
	fwd := s.FwdAmounts[v][:0]
	bwd := s.BwdAmounts[v][:0]

	current := ZeroAmount(in.AmountSize())
	for _, j := range r.Jobs {
		current.Add(in.Jobs[j].Amount)
		fwd = append(fwd, current.Clone())
	}
	current = ZeroAmount(in.AmountSize())
	for k := n - 1; k >= 0; k-- {
		current.Add(in.Jobs[r.Jobs[k]].Amount)
		bwd = append(bwd, current.Clone())
	}
	// bwd was built back to front
	for i, j := 0, len(bwd)-1; i < j; i, j = i+1, j-1 {
		bwd[i], bwd[j] = bwd[j], bwd[i]
	}
	s.FwdAmounts[v] = fwd
	s.BwdAmounts[v] = bwd
}

// RouteAmount returns the total load of route v, zero when empty.
func (s *SolutionState) RouteAmount(in *Input, v int) Amount {
	if len(s.FwdAmounts[v]) == 0 {
		return ZeroAmount(in.AmountSize())
	}
	return s.FwdAmounts[v][len(s.FwdAmounts[v])-1]
}

func (s *SolutionState) updateEdgeCosts(in *Input, r *TWRoute) {
	v := r.VehicleRank
	n := r.Size()
	costs := s.EdgeCostsAroundEdge[v][:0]
	if n < 2 {
		s.EdgeCostsAroundEdge[v] = costs
		return
	}
	veh := r.vehicle(in)
	for rank := 0; rank+1 < n; rank++ {
		var c int64
		if rank == 0 {
			if veh.HasStart() {
				c += in.Matrix().At(veh.Start.Index, in.JobIndex(r.Jobs[0]))
			}
		} else {
			c += in.Matrix().At(in.JobIndex(r.Jobs[rank-1]), in.JobIndex(r.Jobs[rank]))
		}
		if rank+1 == n-1 {
			if veh.HasEnd() {
				c += in.Matrix().At(in.JobIndex(r.Jobs[rank+1]), veh.End.Index)
			}
		} else {
			c += in.Matrix().At(in.JobIndex(r.Jobs[rank+1]), in.JobIndex(r.Jobs[rank+2]))
		}
		costs = append(costs, c)
	}
	s.EdgeCostsAroundEdge[v] = costs
}

func (s *SolutionState) updateNearestJobRanks(in *Input, from, to *TWRoute) {
	ranks := s.NearestJobRankInRoutes[from.VehicleRank][to.VehicleRank][:0]
	m := in.Matrix()
	for _, j := range from.Jobs {
		best := -1
		var bestCost int64
		for r2, j2 := range to.Jobs {
			c := m.At(in.JobIndex(j), in.JobIndex(j2))
			if best < 0 || c < bestCost {
				best = r2
				bestCost = c
			}
		}
		ranks = append(ranks, best)
	}
	s.NearestJobRankInRoutes[from.VehicleRank][to.VehicleRank] = ranks
}
