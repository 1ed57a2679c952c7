package solver

// IntraOrOpt moves an edge of two consecutive jobs to another position of
// the same route, forward or reversed. tRank is the insertion rank in the
// route after removal.
type IntraOrOpt struct {
	opBase
	reverseSegment bool
	first          int
	last           int
	normalSeq      []int
	reversedSeq    []int
}

// NewIntraOrOpt builds an intra-route or-opt candidate with sRank <=
// route.Size()-2, tRank in [0, route.Size()-2], tRank != sRank.
func NewIntraOrOpt(in *Input, st *SolutionState, route *TWRoute, vehicle, sRank, tRank int) *IntraOrOpt {
	return &IntraOrOpt{opBase: opBase{
		in: in, state: st,
		source: route, target: route,
		sVehicle: vehicle, sRank: sRank,
		tVehicle: vehicle, tRank: tRank,
	}}
}

func (op *IntraOrOpt) buildSeqs() {
	if op.normalSeq != nil {
		return
	}
	a, b := op.source.Jobs[op.sRank], op.source.Jobs[op.sRank+1]
	var middle []int
	if op.tRank < op.sRank {
		op.first, op.last = op.tRank, op.sRank+2
		middle = op.source.Jobs[op.tRank:op.sRank]
		op.normalSeq = append(append(make([]int, 0, op.last-op.first), a, b), middle...)
		op.reversedSeq = append(append(make([]int, 0, op.last-op.first), b, a), middle...)
	} else {
		op.first, op.last = op.sRank, op.tRank+2
		middle = op.source.Jobs[op.sRank+2 : op.tRank+2]
		op.normalSeq = append(append(make([]int, 0, op.last-op.first), middle...), a, b)
		op.reversedSeq = append(append(make([]int, 0, op.last-op.first), middle...), b, a)
	}
}

func (op *IntraOrOpt) segment() []int {
	op.buildSeqs()
	if op.reverseSegment {
		return op.reversedSeq
	}
	return op.normalSeq
}

func (op *IntraOrOpt) Gain() int64 {
	if !op.gainComputed {
		op.buildSeqs()
		normal := op.spanGain(op.source, op.first, op.last, op.normalSeq)
		reversed := op.spanGain(op.source, op.first, op.last, op.reversedSeq)
		if reversed > normal {
			op.reverseSegment = true
			op.storedGain = reversed
		} else {
			op.storedGain = normal
		}
		op.gainComputed = true
	}
	return op.storedGain
}

func (op *IntraOrOpt) IsValid() bool {
	return op.source.IsValidAdditionForTW(op.in, op.segment(), op.first, op.last)
}

func (op *IntraOrOpt) Apply() {
	op.source.ReplaceJobs(op.in, op.segment(), op.first, op.last)
}

func (op *IntraOrOpt) AdditionCandidates() []int { return nil }

func (op *IntraOrOpt) UpdateCandidates() []int { return []int{op.sVehicle} }
