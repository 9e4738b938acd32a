// Package geom provides the 2-D primitives used by the battle engine:
// points, circles, polar conversions, and the batched circle-intersect
// kernel behind collision detection and sensor scanning.
//
// All coordinates are float32 to match the lane width of the batched
// kernel; the scalar and batched paths must produce identical results.
package geom

import "math"

// Micron is the distance below which two points are considered
// coincident.
const Micron = 1e-3

// Point is a position or displacement in the playfield.
type Point struct {
	X, Y float32
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// DistanceSquared returns the squared distance between p and q.
// Cheaper than Distance when only comparing.
func (p Point) DistanceSquared(q Point) float32 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// Distance returns the distance between p and q.
func (p Point) Distance(q Point) float32 {
	return float32(math.Sqrt(float64(p.DistanceSquared(q))))
}

// Clamp returns p constrained to the rectangle [x0,x1]x[y0,y1].
func (p Point) Clamp(x0, x1, y0, y1 float32) Point {
	if p.X < x0 {
		p.X = x0
	}
	if p.X > x1 {
		p.X = x1
	}
	if p.Y < y0 {
		p.Y = y0
	}
	if p.Y > y1 {
		p.Y = y1
	}
	return p
}

// MoveToward returns p advanced toward target by at most step.
// It never overshoots: if target is within step, the result is target.
func (p Point) MoveToward(target Point, step float32) Point {
	if step <= 0 {
		return p
	}
	d := p.Distance(target)
	if d <= step || d <= Micron {
		return target
	}
	scale := step / d
	return Point{
		X: p.X + (target.X-p.X)*scale,
		Y: p.Y + (target.Y-p.Y)*scale,
	}
}

// UnitToward returns the unit direction from p to q, or the zero point
// when they coincide.
func (p Point) UnitToward(q Point) Point {
	d := p.Distance(q)
	if d <= Micron {
		return Point{}
	}
	return Point{(q.X - p.X) / d, (q.Y - p.Y) / d}
}

// Polar is a point in polar form.
type Polar struct {
	R     float32
	Theta float32
}

// ToCartesian converts pp to a Cartesian offset from origin.
func (pp Polar) ToCartesian(origin Point) Point {
	return Point{
		X: origin.X + pp.R*float32(math.Cos(float64(pp.Theta))),
		Y: origin.Y + pp.R*float32(math.Sin(float64(pp.Theta))),
	}
}

// ToPolar converts the displacement origin->p to polar form.
func (p Point) ToPolar(origin Point) Polar {
	d := p.Sub(origin)
	return Polar{
		R:     origin.Distance(p),
		Theta: float32(math.Atan2(float64(d.Y), float64(d.X))),
	}
}

// Circle is a bounding or sensor circle.
type Circle struct {
	Center Point
	Radius float32
}

// Intersects reports whether c and o overlap or touch:
// distance^2 <= (r1+r2)^2.
func (c Circle) Intersects(o Circle) bool {
	dr := c.Radius + o.Radius
	return c.Center.DistanceSquared(o.Center) <= dr*dr
}
