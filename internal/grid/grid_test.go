package grid

import (
	"sort"
	"testing"

	"github.com/san-kum/swarmeng/internal/vecmath"
)

func neighborsOf(g *Grid, points []vecmath.Vec3, i int, r float64) []int {
	var got []int
	g.ForEachNeighbor(points[i], r, false, i, func(j int) { got = append(got, j) })
	sort.Ints(got)
	return got
}

func TestForEachNeighborSmallN(t *testing.T) {
	points := []vecmath.Vec3{
		vecmath.New(0, 0, 0),
		vecmath.New(1, 0, 0),
		vecmath.New(10, 0, 0),
	}
	g := New(2)
	g.Rebuild(points)

	got := neighborsOf(g, points, 0, 1.5)
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("expected neighbor [1], got %v", got)
	}
}

func TestForEachNeighborLargeNMatchesBruteForce(t *testing.T) {
	n := 64 // above smallNThreshold
	points := make([]vecmath.Vec3, n)
	for i := 0; i < n; i++ {
		points[i] = vecmath.New(float64(i%8), float64(i/8), 0)
	}

	g := New(1.0)
	g.Rebuild(points)

	const r = 1.5
	for i := 0; i < n; i++ {
		got := neighborsOf(g, points, i, r)

		var want []int
		for j, p := range points {
			if j == i {
				continue
			}
			if points[i].DistanceSq(p) <= r*r {
				want = append(want, j)
			}
		}
		sort.Ints(want)

		if len(got) != len(want) {
			t.Fatalf("agent %d: got %v want %v", i, got, want)
		}
		for k := range got {
			if got[k] != want[k] {
				t.Fatalf("agent %d: got %v want %v", i, got, want)
			}
		}
	}
}

func TestIncludeSelf(t *testing.T) {
	points := []vecmath.Vec3{vecmath.New(0, 0, 0), vecmath.New(5, 0, 0)}
	g := New(1)
	g.Rebuild(points)

	var got []int
	g.ForEachNeighbor(points[0], 0.1, true, 0, func(j int) { got = append(got, j) })
	if len(got) != 1 || got[0] != 0 {
		t.Errorf("expected self included, got %v", got)
	}
}

func TestRebuildReusesCellsAcrossCalls(t *testing.T) {
	g := New(1)
	g.Rebuild(make([]vecmath.Vec3, 64))
	g.Rebuild([]vecmath.Vec3{vecmath.New(0, 0, 0)})

	var got []int
	g.ForEachNeighbor(vecmath.New(0, 0, 0), 0.1, true, 0, func(j int) { got = append(got, j) })
	if len(got) != 1 || got[0] != 0 {
		t.Errorf("expected single point after shrinking rebuild, got %v", got)
	}
}
