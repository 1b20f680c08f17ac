package qp

import "testing"

func TestProject3SatisfiesBox(t *testing.T) {
	got := Project3([3]float64{10, -10, 0}, [3]float64{-1, -1, -1}, [3]float64{1, 1, 1}, nil, 5)
	for i, v := range got {
		if v < -1.0001 || v > 1.0001 {
			t.Errorf("component %d out of box: %v", i, v)
		}
	}
}

func TestProject3SatisfiesHalfspace(t *testing.T) {
	// constraint x <= 0
	h := Halfspace3{A: [3]float64{1, 0, 0}, B: 0}
	got := Project3([3]float64{5, 0, 0}, [3]float64{-100, -100, -100}, [3]float64{100, 100, 100}, []Halfspace3{h}, 10)
	if got[0] > 1e-6 {
		t.Errorf("expected x <= 0 satisfied, got %v", got[0])
	}
}

func TestProject3NoOpWhenFeasible(t *testing.T) {
	h := Halfspace3{A: [3]float64{1, 0, 0}, B: 10}
	got := Project3([3]float64{1, 2, 3}, [3]float64{-100, -100, -100}, [3]float64{100, 100, 100}, []Halfspace3{h}, 5)
	if got != ([3]float64{1, 2, 3}) {
		t.Errorf("expected feasible point unchanged, got %v", got)
	}
}

func TestProject3ItersFloor(t *testing.T) {
	// iters < 1 treated as 1, must still produce a finite, feasible result.
	h := Halfspace3{A: [3]float64{1, 0, 0}, B: 0}
	got := Project3([3]float64{5, 0, 0}, [3]float64{-100, -100, -100}, [3]float64{100, 100, 100}, []Halfspace3{h}, 0)
	if got[0] > 1e-6 {
		t.Errorf("expected constraint satisfied even with iters<1, got %v", got[0])
	}
}

func TestWorkspace3ReuseAcrossCalls(t *testing.T) {
	var ws Workspace3
	h := Halfspace3{A: [3]float64{1, 0, 0}, B: 0}
	first := ws.Solve([3]float64{5, 0, 0}, [3]float64{-100, -100, -100}, [3]float64{100, 100, 100}, []Halfspace3{h}, 5)
	second := ws.Solve([3]float64{5, 0, 0}, [3]float64{-100, -100, -100}, [3]float64{100, 100, 100}, []Halfspace3{h}, 5)
	if first != second {
		t.Errorf("expected deterministic result across reused workspace: %v vs %v", first, second)
	}
}

func TestProject4SatisfiesHalfspace(t *testing.T) {
	h := Halfspace4{A: [4]float64{1, 0, 0, 1}, B: 0}
	got := Project4([4]float64{5, 0, 0, 5}, [4]float64{-100, -100, -100, 0}, [4]float64{100, 100, 100, 100}, []Halfspace4{h}, 10)
	if dot4(h.A, got) > 1e-6 {
		t.Errorf("expected halfspace satisfied, got dot=%v", dot4(h.A, got))
	}
}

func TestActiveCount3(t *testing.T) {
	constraints := []Halfspace3{
		{A: [3]float64{1, 0, 0}, B: 0}, // binding at x=0
		{A: [3]float64{0, 1, 0}, B: 10}, // slack at x=0
	}
	n := ActiveCount3([3]float64{0, 0, 0}, constraints, 1e-6)
	if n != 1 {
		t.Errorf("expected 1 active constraint, got %d", n)
	}
}
