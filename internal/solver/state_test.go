package solver

import "testing"

func stateFixture(t *testing.T) (*Input, *localSearch) {
	t.Helper()
	rows := [][]int64{
		{0, 4, 8, 12, 16},
		{4, 0, 5, 9, 13},
		{8, 5, 0, 6, 10},
		{12, 9, 6, 0, 7},
		{16, 13, 10, 7, 0},
	}
	jobs := []Job{
		{ID: 1, Location: Location{Index: 1}, Amount: Amount{2}},
		{ID: 2, Location: Location{Index: 2}, Amount: Amount{3}},
		{ID: 3, Location: Location{Index: 3}, Amount: Amount{1}},
		{ID: 4, Location: Location{Index: 4}, Amount: Amount{4}},
	}
	depot := Location{Index: 0}
	vehicles := []Vehicle{
		{ID: 1, Start: &depot, End: &depot, Capacity: Amount{10}},
		{ID: 2, Start: &depot, End: &depot, Capacity: Amount{10}},
	}
	in := mustInput(t, rows, jobs, vehicles)
	ls := newLocalSearch(in, 1)
	ls.routes[0].Jobs = []int{0, 1, 2}
	ls.routes[1].Jobs = []int{3}
	ls.routes[0].updateSchedule(in)
	ls.routes[1].updateSchedule(in)
	ls.state.Setup(in, ls.routes)
	return in, ls
}

func TestAmountPrefixSums(t *testing.T) {
	_, ls := stateFixture(t)
	fwd := ls.state.FwdAmounts[0]
	if fwd[0][0] != 2 || fwd[1][0] != 5 || fwd[2][0] != 6 {
		t.Fatalf("fwd amounts: %v", fwd)
	}
	bwd := ls.state.BwdAmounts[0]
	if bwd[0][0] != 6 || bwd[1][0] != 4 || bwd[2][0] != 1 {
		t.Fatalf("bwd amounts: %v", bwd)
	}
	if got := ls.state.RouteAmount(ls.in, 0)[0]; got != 6 {
		t.Fatalf("route amount: %d", got)
	}
}

func TestEdgeCostsAroundEdge(t *testing.T) {
	_, ls := stateFixture(t)
	// route 0: depot -> 1 -> 2 -> 3 -> depot (location indices)
	// rank 0 pairs the depot->1 edge with the 2->3 edge
	want0 := int64(4 + 6)
	// rank 1 pairs the 1->2 edge with the 3->depot edge
	want1 := int64(5 + 12)
	ec := ls.state.EdgeCostsAroundEdge[0]
	if len(ec) != 2 || ec[0] != want0 || ec[1] != want1 {
		t.Fatalf("edge costs: %v", ec)
	}
}

func TestNearestJobRanks(t *testing.T) {
	_, ls := stateFixture(t)
	// from each job of route 0, the only job of route 1 is rank 0
	near := ls.state.NearestJobRankInRoutes[0][1]
	if len(near) != 3 || near[0] != 0 || near[2] != 0 {
		t.Fatalf("nearest ranks: %v", near)
	}
	// from route 1's job at location 4, rank 2 (location 3) is closest in route 0
	near = ls.state.NearestJobRankInRoutes[1][0]
	if len(near) != 1 || near[0] != 2 {
		t.Fatalf("nearest ranks from route 1: %v", near)
	}
}

func TestIncrementalUpdateMatchesSetup(t *testing.T) {
	in, ls := stateFixture(t)

	// mutate route 0 and refresh incrementally
	ls.routes[0].RemoveJobs(in, 1, 1)
	ls.state.Unassigned[1] = struct{}{}
	ls.state.UpdateRoute(in, ls.routes, 0)

	fresh := NewSolutionState(len(ls.routes), len(in.Jobs))
	fresh.Setup(in, ls.routes)

	for v := range ls.routes {
		if len(fresh.FwdAmounts[v]) != len(ls.state.FwdAmounts[v]) {
			t.Fatalf("fwd amounts length mismatch for %d", v)
		}
		for k := range fresh.FwdAmounts[v] {
			if fresh.FwdAmounts[v][k][0] != ls.state.FwdAmounts[v][k][0] {
				t.Fatalf("fwd amounts diverge at %d/%d", v, k)
			}
		}
		if len(fresh.EdgeCostsAroundEdge[v]) != len(ls.state.EdgeCostsAroundEdge[v]) {
			t.Fatalf("edge costs length mismatch for %d", v)
		}
		for k := range fresh.EdgeCostsAroundEdge[v] {
			if fresh.EdgeCostsAroundEdge[v][k] != ls.state.EdgeCostsAroundEdge[v][k] {
				t.Fatalf("edge costs diverge at %d/%d", v, k)
			}
		}
	}
	for v1 := range ls.routes {
		for v2 := range ls.routes {
			a := fresh.NearestJobRankInRoutes[v1][v2]
			b := ls.state.NearestJobRankInRoutes[v1][v2]
			if !equalInts(a, b) {
				t.Fatalf("nearest ranks diverge at %d/%d: %v vs %v", v1, v2, a, b)
			}
		}
	}
}

func TestUnassignedDerivation(t *testing.T) {
	in, ls := stateFixture(t)
	if len(ls.state.Unassigned) != 0 {
		t.Fatalf("all jobs are routed: %v", ls.state.Unassigned)
	}
	ls.routes[0].RemoveJobs(in, 0, 1)
	ls.state.Setup(in, ls.routes)
	if _, ok := ls.state.Unassigned[0]; !ok || len(ls.state.Unassigned) != 1 {
		t.Fatalf("job 0 should be unassigned: %v", ls.state.Unassigned)
	}
}
