// Package grid implements the uniform spatial hash used for O(1)-per-pair
// neighbor queries. Cell side equals the largest neighbor radius any active
// algorithm needs, so a single rebuild per tick serves every query that
// tick makes.
package grid

import "github.com/san-kum/swarmeng/internal/vecmath"

// smallNThreshold is the agent count below which Grid falls back to brute
// force. The contract (ForEachNeighbor visits exactly the agents within r,
// no duplicates) is identical either way.
const smallNThreshold = 32

type cellKey struct{ cx, cy, cz int64 }

// Grid indexes a snapshot of agent positions by cell. It is rebuilt every
// tick from scratch; Rebuild reuses its backing map and slices across
// calls once they reach a high-water mark, so steady-state ticks allocate
// nothing.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]int32
	points   []vecmath.Vec3
}

// New constructs a Grid with the given cell size (typically
// max(neighbor_radius, cbf_neighbor_radius) across all active params).
// cellSize must be > 0.
func New(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Grid{cellSize: cellSize, cells: make(map[cellKey][]int32)}
}

// SetCellSize changes the cell size used by the next Rebuild. Changing it
// does not retroactively re-bucket the current contents.
func (g *Grid) SetCellSize(size float64) {
	if size <= 0 {
		size = 1
	}
	g.cellSize = size
}

func (g *Grid) keyOf(p vecmath.Vec3) cellKey {
	return cellKey{
		cx: floorDiv(p.X, g.cellSize),
		cy: floorDiv(p.Y, g.cellSize),
		cz: floorDiv(p.Z, g.cellSize),
	}
}

func floorDiv(v, size float64) int64 {
	q := v / size
	f := int64(q)
	if q < 0 && float64(f) != q {
		f--
	}
	return f
}

// Rebuild clears and reinserts every point in O(N). It must be called
// before any ForEachNeighbor query reflects the current positions.
func (g *Grid) Rebuild(points []vecmath.Vec3) {
	g.points = points
	for k := range g.cells {
		g.cells[k] = g.cells[k][:0]
	}
	if len(points) < smallNThreshold {
		// Small-N fallback: skip bucketing entirely, ForEachNeighbor
		// scans linearly. The map is left empty.
		return
	}
	for i, p := range points {
		k := g.keyOf(p)
		g.cells[k] = append(g.cells[k], int32(i))
	}
}

// ForEachNeighbor visits every agent index j with ‖points[j]-p‖ ≤ r,
// ties included, in no particular order. includeSelf controls whether an
// index whose stored position also lies within r (commonly the query
// agent itself) is visited; callers that query "neighbors of agent i"
// typically pass p = points[i] and includeSelf = false, then skip j==i
// inside fn regardless as a defensive measure.
func (g *Grid) ForEachNeighbor(p vecmath.Vec3, r float64, includeSelf bool, selfIndex int, fn func(j int)) {
	r2 := r * r
	if len(g.points) < smallNThreshold {
		for j, q := range g.points {
			if !includeSelf && j == selfIndex {
				continue
			}
			if p.DistanceSq(q) <= r2 {
				fn(j)
			}
		}
		return
	}

	cellR := int64(r/g.cellSize) + 1
	center := g.keyOf(p)
	for dz := -cellR; dz <= cellR; dz++ {
		for dy := -cellR; dy <= cellR; dy++ {
			for dx := -cellR; dx <= cellR; dx++ {
				k := cellKey{center.cx + dx, center.cy + dy, center.cz + dz}
				for _, j := range g.cells[k] {
					ji := int(j)
					if !includeSelf && ji == selfIndex {
						continue
					}
					if p.DistanceSq(g.points[ji]) <= r2 {
						fn(ji)
					}
				}
			}
		}
	}
}
