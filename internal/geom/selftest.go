package geom

import "fmt"

// SelfTest runs the quick built-in checks behind the --unitTests CLI
// flag; it panics on the first failure.
func SelfTest() {
	p := Point{3, 4}
	if d := p.Distance(Point{}); d != 5 {
		panic(fmt.Sprintf("geom: distance selftest got %f", d))
	}

	moved := Point{}.MoveToward(Point{10, 0}, 3)
	if moved.X != 3 || moved.Y != 0 {
		panic(fmt.Sprintf("geom: move selftest got (%f, %f)", moved.X, moved.Y))
	}
	arrived := Point{}.MoveToward(Point{1, 0}, 3)
	if arrived.X != 1 {
		panic("geom: move overshoot selftest failed")
	}

	var b LaneBlock
	for i := 0; i < Lanes; i++ {
		b.X[i] = float32(20 * (i + 1))
		b.R[i] = 5
	}
	mask := IntersectLanes(0, 0, 20, &b)
	for i := 0; i < Lanes; i++ {
		want := IntersectScalar(0, 0, 20, b.X[i], b.Y[i], b.R[i])
		if got := mask&(1<<i) != 0; got != want {
			panic(fmt.Sprintf("geom: lane %d selftest mismatch", i))
		}
	}
}
