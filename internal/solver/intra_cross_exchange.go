package solver

// IntraCrossExchange swaps two disjoint edges of the same route. All four
// orientation combinations are priced; the best one is kept, preferring
// normal order on ties.
type IntraCrossExchange struct {
	opBase
	reverseSEdge bool
	reverseTEdge bool
	first        int
	last         int
	chosen       []int
}

// NewIntraCrossExchange builds an intra-route cross-exchange candidate with
// sRank+2 <= tRank and tRank <= route.Size()-2.
func NewIntraCrossExchange(in *Input, st *SolutionState, route *TWRoute, vehicle, sRank, tRank int) *IntraCrossExchange {
	return &IntraCrossExchange{opBase: opBase{
		in: in, state: st,
		source: route, target: route,
		sVehicle: vehicle, sRank: sRank,
		tVehicle: vehicle, tRank: tRank,
	}}
}

func (op *IntraCrossExchange) arrangement(reverseS, reverseT bool) []int {
	sA, sB := op.source.Jobs[op.sRank], op.source.Jobs[op.sRank+1]
	tA, tB := op.source.Jobs[op.tRank], op.source.Jobs[op.tRank+1]
	if reverseS {
		sA, sB = sB, sA
	}
	if reverseT {
		tA, tB = tB, tA
	}
	seq := make([]int, 0, op.tRank+2-op.sRank)
	seq = append(seq, tA, tB)
	seq = append(seq, op.source.Jobs[op.sRank+2:op.tRank]...)
	seq = append(seq, sA, sB)
	return seq
}

func (op *IntraCrossExchange) Gain() int64 {
	if op.gainComputed {
		return op.storedGain
	}
	op.first, op.last = op.sRank, op.tRank+2
	best := int64(0)
	for i, orient := range [4][2]bool{{false, false}, {false, true}, {true, false}, {true, true}} {
		seq := op.arrangement(orient[0], orient[1])
		g := op.spanGain(op.source, op.first, op.last, seq)
		if i == 0 || g > best {
			best = g
			op.reverseSEdge, op.reverseTEdge = orient[0], orient[1]
			op.chosen = seq
		}
	}
	op.storedGain = best
	op.gainComputed = true
	return op.storedGain
}

func (op *IntraCrossExchange) IsValid() bool {
	return op.source.IsValidAdditionForTW(op.in, op.chosen, op.first, op.last)
}

func (op *IntraCrossExchange) Apply() {
	op.source.ReplaceJobs(op.in, op.chosen, op.first, op.last)
}

func (op *IntraCrossExchange) AdditionCandidates() []int { return nil }

func (op *IntraCrossExchange) UpdateCandidates() []int { return []int{op.sVehicle} }
