package solver

import "testing"

func mustInput(t *testing.T, rows [][]int64, jobs []Job, vehicles []Vehicle) *Input {
	t.Helper()
	m, err := NewMatrix(rows)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	in, err := NewInput(jobs, vehicles, m)
	if err != nil {
		t.Fatalf("NewInput: %v", err)
	}
	return in
}

func TestScheduleForwardBackward(t *testing.T) {
	// two co-located jobs, zero travel, disjoint windows
	in := mustInput(t,
		[][]int64{{0, 0}, {0, 0}},
		[]Job{
			{ID: 1, Location: Location{Index: 0}, Service: 60, TWs: []TimeWindow{{0, 60}}},
			{ID: 2, Location: Location{Index: 1}, Service: 60, TWs: []TimeWindow{{300, 360}}},
		},
		[]Vehicle{{ID: 1}},
	)
	r := NewTWRoute(0)
	r.Jobs = []int{0, 1}
	if !r.updateSchedule(in) {
		t.Fatal("schedule should be feasible")
	}
	if r.Earliest[0] != 0 || r.Earliest[1] != 300 {
		t.Fatalf("earliest: got %v", r.Earliest)
	}
	if r.Latest[1] != 360 {
		t.Fatalf("latest[1]: got %d", r.Latest[1])
	}
	if r.Latest[0] != 60 {
		t.Fatalf("latest[0]: got %d", r.Latest[0])
	}
}

func TestEarliestWindowChoice(t *testing.T) {
	in := mustInput(t,
		[][]int64{{0, 15}, {15, 0}},
		[]Job{
			{ID: 1, Location: Location{Index: 0}, Service: 0, TWs: []TimeWindow{{0, 10}, {20, 30}}},
			{ID: 2, Location: Location{Index: 1}, Service: 0, TWs: []TimeWindow{{0, 100}}},
		},
		[]Vehicle{{ID: 1}},
	)
	r := NewTWRoute(0)
	r.Jobs = []int{0, 1}
	if !r.updateSchedule(in) {
		t.Fatal("schedule should be feasible")
	}
	if r.TWRank[0] != 0 || r.Earliest[0] != 0 {
		t.Fatalf("first job should use its first window: tw=%d earliest=%d", r.TWRank[0], r.Earliest[0])
	}

	// an arrival past the first window end picks the next window
	r.Jobs = []int{1, 0}
	if !r.updateSchedule(in) {
		t.Fatal("schedule should be feasible")
	}
	if r.TWRank[1] != 1 || r.Earliest[1] != 20 {
		t.Fatalf("second window expected: tw=%d earliest=%d", r.TWRank[1], r.Earliest[1])
	}
}

func TestIsValidAdditionForTW(t *testing.T) {
	in := mustInput(t,
		[][]int64{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}},
		[]Job{
			{ID: 1, Location: Location{Index: 0}, Service: 60, TWs: []TimeWindow{{0, 60}}},
			{ID: 2, Location: Location{Index: 1}, Service: 60, TWs: []TimeWindow{{300, 360}}},
			{ID: 3, Location: Location{Index: 2}, Service: 60, TWs: []TimeWindow{{100, 200}}},
		},
		[]Vehicle{{ID: 1}},
	)
	r := NewTWRoute(0)
	r.Jobs = []int{0, 1}
	r.updateSchedule(in)

	if !r.IsValidAdditionForTW(in, []int{2}, 1, 1) {
		t.Fatal("insertion between windows should fit")
	}
	if r.IsValidAdditionForTW(in, []int{2}, 0, 0) {
		t.Fatal("insertion before the first job delays it past its window")
	}
	// removal is always feasible
	if !r.IsValidAdditionForTW(in, nil, 0, 1) {
		t.Fatal("removal should be feasible")
	}
}

func TestVehicleWindowBoundsRoute(t *testing.T) {
	in := mustInput(t,
		[][]int64{{0, 50}, {50, 0}},
		[]Job{{ID: 1, Location: Location{Index: 1}, Service: 60, TWs: []TimeWindow{{0, 1000}}}},
		[]Vehicle{{
			ID:    1,
			Start: &Location{Index: 0},
			End:   &Location{Index: 0},
			TW:    TimeWindow{0, 100},
		}},
	)
	r := NewTWRoute(0)
	r.Jobs = []int{0}
	if r.updateSchedule(in) {
		t.Fatal("route cannot return to depot inside the vehicle window")
	}
}

func TestRawRouteMutations(t *testing.T) {
	r := RawRoute{Jobs: []int{1, 2, 3, 4}}
	r.Insert(1, 9)
	if got := r.Jobs; got[1] != 9 || r.Size() != 5 {
		t.Fatalf("insert: %v", got)
	}
	r.Remove(1, 1)
	if r.Size() != 4 || r.Jobs[1] != 2 {
		t.Fatalf("remove: %v", r.Jobs)
	}
	r.Replace(1, 3, []int{7, 8, 9})
	if r.Size() != 5 || r.Jobs[1] != 7 || r.Jobs[3] != 9 || r.Jobs[4] != 4 {
		t.Fatalf("replace: %v", r.Jobs)
	}
	r.Reverse(0, 4)
	if r.Jobs[0] != 4 || r.Jobs[4] != 1 {
		t.Fatalf("reverse: %v", r.Jobs)
	}
}
