package solver

// IntraMixedExchange swaps a single job against an edge of the same route.
// The edge may land in the job's place reversed.
type IntraMixedExchange struct {
	opBase
	reverseTEdge bool
	first        int
	last         int
	normalSeq    []int
	reversedSeq  []int
}

// NewIntraMixedExchange builds an intra-route mixed-exchange candidate. The
// node at sRank must not belong to the edge at [tRank, tRank+1].
func NewIntraMixedExchange(in *Input, st *SolutionState, route *TWRoute, vehicle, sRank, tRank int) *IntraMixedExchange {
	return &IntraMixedExchange{opBase: opBase{
		in: in, state: st,
		source: route, target: route,
		sVehicle: vehicle, sRank: sRank,
		tVehicle: vehicle, tRank: tRank,
	}}
}

func (op *IntraMixedExchange) buildSeqs() {
	if op.normalSeq != nil {
		return
	}
	node := op.source.Jobs[op.sRank]
	tA, tB := op.source.Jobs[op.tRank], op.source.Jobs[op.tRank+1]
	if op.sRank < op.tRank {
		op.first, op.last = op.sRank, op.tRank+2
		middle := op.source.Jobs[op.sRank+1 : op.tRank]
		op.normalSeq = append(append(append(make([]int, 0, op.last-op.first), tA, tB), middle...), node)
		op.reversedSeq = append(append(append(make([]int, 0, op.last-op.first), tB, tA), middle...), node)
	} else {
		op.first, op.last = op.tRank, op.sRank+1
		middle := op.source.Jobs[op.tRank+2 : op.sRank]
		op.normalSeq = append(append(append(make([]int, 0, op.last-op.first), node), middle...), tA, tB)
		op.reversedSeq = append(append(append(make([]int, 0, op.last-op.first), node), middle...), tB, tA)
	}
}

func (op *IntraMixedExchange) segment() []int {
	op.buildSeqs()
	if op.reverseTEdge {
		return op.reversedSeq
	}
	return op.normalSeq
}

func (op *IntraMixedExchange) Gain() int64 {
	if !op.gainComputed {
		op.buildSeqs()
		normal := op.spanGain(op.source, op.first, op.last, op.normalSeq)
		reversed := op.spanGain(op.source, op.first, op.last, op.reversedSeq)
		if reversed > normal {
			op.reverseTEdge = true
			op.storedGain = reversed
		} else {
			op.storedGain = normal
		}
		op.gainComputed = true
	}
	return op.storedGain
}

func (op *IntraMixedExchange) IsValid() bool {
	return op.source.IsValidAdditionForTW(op.in, op.segment(), op.first, op.last)
}

func (op *IntraMixedExchange) Apply() {
	op.source.ReplaceJobs(op.in, op.segment(), op.first, op.last)
}

func (op *IntraMixedExchange) AdditionCandidates() []int { return nil }

func (op *IntraMixedExchange) UpdateCandidates() []int { return []int{op.sVehicle} }
