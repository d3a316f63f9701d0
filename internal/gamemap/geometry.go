package gamemap

import (
	"iter"
	"math/rand"
)

// Point is a cell coordinate.
type Point struct {
	X, Y int
}

// Unit steps for the eight movement directions.
var (
	North     = Point{0, -1}
	South     = Point{0, 1}
	East      = Point{1, 0}
	West      = Point{-1, 0}
	NorthEast = Point{1, -1}
	NorthWest = Point{-1, -1}
	SouthEast = Point{1, 1}
	SouthWest = Point{-1, 1}
)

// Directions lists the eight unit steps, orthogonal ones first.
var Directions = []Point{North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest}

// Add returns p offset by d.
func (p Point) Add(d Point) Point {
	return Point{p.X + d.X, p.Y + d.Y}
}

// Manhattan returns the taxicab distance between p and q.
func (p Point) Manhattan(q Point) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

// Closest returns the candidate nearest to p by Manhattan distance. Ties go
// to the earlier candidate.
func (p Point) Closest(candidates []Point) Point {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if p.Manhattan(c) < p.Manhattan(best) {
			best = c
		}
	}
	return best
}

// Farthest returns the candidate farthest from p by Manhattan distance.
func (p Point) Farthest(candidates []Point) Point {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if p.Manhattan(c) > p.Manhattan(best) {
			best = c
		}
	}
	return best
}

// Rect is an axis-aligned rectangle with inclusive corners.
type Rect struct {
	X1, Y1, X2, Y2 int
}

func (r Rect) Width() int  { return r.X2 - r.X1 + 1 }
func (r Rect) Height() int { return r.Y2 - r.Y1 + 1 }

// Area returns the number of cells in r, 0 for an empty rectangle.
func (r Rect) Area() int {
	if r.Width() <= 0 || r.Height() <= 0 {
		return 0
	}
	return r.Width() * r.Height()
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{(r.X1 + r.X2) / 2, (r.Y1 + r.Y2) / 2}
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X1 && p.X <= r.X2 && p.Y >= r.Y1 && p.Y <= r.Y2
}

// Intersects reports whether r overlaps other (inclusive edges).
func (r Rect) Intersects(other Rect) bool {
	return r.X1 <= other.X2 && r.X2 >= other.X1 &&
		r.Y1 <= other.Y2 && r.Y2 >= other.Y1
}

// Inset shrinks r by n cells on every side.
func (r Rect) Inset(n int) Rect {
	return Rect{r.X1 + n, r.Y1 + n, r.X2 - n, r.Y2 - n}
}

// OnEdge reports whether p lies on the border of r.
func (r Rect) OnEdge(p Point) bool {
	return r.Contains(p) && (p.X == r.X1 || p.X == r.X2 || p.Y == r.Y1 || p.Y == r.Y2)
}

// Points yields every cell of r in row-major order.
func (r Rect) Points() iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for y := r.Y1; y <= r.Y2; y++ {
			for x := r.X1; x <= r.X2; x++ {
				if !yield(Point{x, y}) {
					return
				}
			}
		}
	}
}

// RandomPoint returns a uniformly random cell of r.
func (r Rect) RandomPoint(rng *rand.Rand) Point {
	return Point{r.X1 + rng.Intn(r.Width()), r.Y1 + rng.Intn(r.Height())}
}

// RandomRect returns a random sub-rectangle of r at least minSize cells on
// each side. A rectangle no larger than minSize is returned unchanged.
func (r Rect) RandomRect(rng *rand.Rand, minSize int) Rect {
	if r.Width() <= minSize || r.Height() <= minSize {
		return r
	}
	w := minSize + rng.Intn(r.Width()-minSize+1)
	h := minSize + rng.Intn(r.Height()-minSize+1)
	x := r.X1 + rng.Intn(r.Width()-w+1)
	y := r.Y1 + rng.Intn(r.Height()-h+1)
	return Rect{x, y, x + w - 1, y + h - 1}
}

// Line traces a Bresenham line from a to b, both ends included. The sequence
// is computed lazily and may be ranged over any number of times.
func Line(a, b Point) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		dx := abs(b.X - a.X)
		dy := -abs(b.Y - a.Y)
		sx, sy := sign(b.X-a.X), sign(b.Y-a.Y)
		err := dx + dy
		p := a
		for {
			if !yield(p) || p == b {
				return
			}
			e2 := 2 * err
			if e2 >= dy {
				err += dy
				p.X += sx
			}
			if e2 <= dx {
				err += dx
				p.Y += sy
			}
		}
	}
}

// LPath yields an L-shaped path from a to b, both ends included. The
// horizontal leg comes first when horizontalFirst is set.
func LPath(a, b Point, horizontalFirst bool) iter.Seq[Point] {
	corner := Point{b.X, a.Y}
	if !horizontalFirst {
		corner = Point{a.X, b.Y}
	}
	return func(yield func(Point) bool) {
		for p := range Line(a, corner) {
			if !yield(p) {
				return
			}
		}
		first := true
		for p := range Line(corner, b) {
			if first {
				first = false
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
