package solver

import "testing"

func TestNewInputValidation(t *testing.T) {
	m, _ := NewMatrix([][]int64{{0, 1}, {1, 0}})
	job := Job{ID: 1, Location: Location{Index: 0}}
	veh := Vehicle{ID: 1}

	if _, err := NewInput(nil, []Vehicle{veh}, m); err == nil {
		t.Fatal("empty jobs must be rejected")
	}
	if _, err := NewInput([]Job{job}, nil, m); err == nil {
		t.Fatal("empty vehicles must be rejected")
	}
	if _, err := NewInput([]Job{{ID: 1, Location: Location{Index: 9}}}, []Vehicle{veh}, m); err == nil {
		t.Fatal("out-of-bounds location must be rejected")
	}
	if _, err := NewInput(
		[]Job{{ID: 1, Location: Location{Index: 0}, Amount: Amount{1}}, {ID: 2, Location: Location{Index: 1}}},
		[]Vehicle{veh}, m); err == nil {
		t.Fatal("mixed amount arity must be rejected")
	}
	if _, err := NewInput(
		[]Job{{ID: 1, Location: Location{Index: 0}, TWs: []TimeWindow{{10, 5}}}},
		[]Vehicle{veh}, m); err == nil {
		t.Fatal("inverted time window must be rejected")
	}
	if _, err := NewInput(
		[]Job{{ID: 1, Location: Location{Index: 0}, TWs: []TimeWindow{{0, 100}, {50, 150}}}},
		[]Vehicle{veh}, m); err == nil {
		t.Fatal("overlapping time windows must be rejected")
	}
	if _, err := NewInput(
		[]Job{{ID: 1, Location: Location{Index: 0}, TWs: []TimeWindow{{0, 50}, {50, 100}}}},
		[]Vehicle{veh}, m); err == nil {
		t.Fatal("windows sharing an endpoint must be rejected")
	}
}

func TestNewInputDefaultsAndSorting(t *testing.T) {
	m, _ := NewMatrix([][]int64{{0, 1}, {1, 0}})
	in, err := NewInput(
		[]Job{{ID: 1, Location: Location{Index: 0}, TWs: []TimeWindow{{50, 60}, {0, 10}}}},
		[]Vehicle{{ID: 1}}, m)
	if err != nil {
		t.Fatalf("NewInput: %v", err)
	}
	if in.Jobs[0].TWs[0].Start != 0 || in.Jobs[0].TWs[1].Start != 50 {
		t.Fatalf("windows not sorted: %v", in.Jobs[0].TWs)
	}
	if in.Vehicles[0].TW != DefaultTimeWindow() {
		t.Fatalf("vehicle window default missing: %v", in.Vehicles[0].TW)
	}
	if !in.VehicleOKWithJob(0, 0) {
		t.Fatal("skill-free job must be covered")
	}
}

func TestSkillsSubset(t *testing.T) {
	if !NewSkills(nil).SubsetOf(NewSkills(nil)) {
		t.Fatal("empty set is a subset of itself")
	}
	if !NewSkills([]uint32{1}).SubsetOf(NewSkills([]uint32{1, 2})) {
		t.Fatal("subset expected")
	}
	if NewSkills([]uint32{3}).SubsetOf(NewSkills([]uint32{1, 2})) {
		t.Fatal("non-subset accepted")
	}
}
