package main

import "math"

type cellKey struct {
	cx, cy int32
}

// SpatialGrid is a sparse uniform grid for broad-phase collision queries.
// Sectors are unbounded, so cells are hashed instead of stored in a flat array.
type SpatialGrid struct {
	cellSize float64
	cells    map[cellKey][]int
}

// NewSpatialGrid creates a grid with the given cell edge length
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = ContactCellSize
	}
	return &SpatialGrid{cellSize: cellSize, cells: make(map[cellKey][]int)}
}

// Clear resets all cells. Cells that stayed empty since the previous Clear
// are dropped, the rest keep their capacity.
func (g *SpatialGrid) Clear() {
	for k, v := range g.cells {
		if len(v) == 0 {
			delete(g.cells, k)
			continue
		}
		g.cells[k] = v[:0]
	}
}

func (g *SpatialGrid) cellOf(v float64) int32 {
	return int32(math.Floor(v / g.cellSize))
}

// Span returns how many cells per axis a circle of the given radius can cover
func (g *SpatialGrid) Span(radius float64) int {
	return int(math.Ceil(2*radius/g.cellSize)) + 1
}

// InsertCircle adds an entry to all cells overlapping its bounding box
func (g *SpatialGrid) InsertCircle(x, y, radius float64, ref int) {
	minCX, maxCX := g.cellOf(x-radius), g.cellOf(x+radius)
	minCY, maxCY := g.cellOf(y-radius), g.cellOf(y+radius)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			k := cellKey{cx, cy}
			g.cells[k] = append(g.cells[k], ref)
		}
	}
}

// Query returns all entries in cells that overlap the given bounding box.
// An entry spanning several cells may appear more than once.
func (g *SpatialGrid) Query(x, y, radius float64) []int {
	return g.QueryBuf(x, y, radius, nil)
}

// QueryBuf appends results to buf and returns the extended slice, avoiding per-call allocation
func (g *SpatialGrid) QueryBuf(x, y, radius float64, buf []int) []int {
	minCX, maxCX := g.cellOf(x-radius), g.cellOf(x+radius)
	minCY, maxCY := g.cellOf(y-radius), g.cellOf(y+radius)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			buf = append(buf, g.cells[cellKey{cx, cy}]...)
		}
	}
	return buf
}
