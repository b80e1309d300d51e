package l1lattice

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Key identifies one cubic cell of the voxel lattice. Two keys refer to the
// same physical cell if and only if all three components are equal.
type Key struct {
	X, Y, Z int
}

// KeyFor returns the lattice key for world point p with cells of edge
// length size: floor(p/size) per axis. A point lying exactly on a cell
// boundary belongs to the cell on its positive side.
func KeyFor(p r3.Vec, size float64) Key {
	return Key{
		X: int(math.Floor(p.X / size)),
		Y: int(math.Floor(p.Y / size)),
		Z: int(math.Floor(p.Z / size)),
	}
}

// Representable reports whether every axis of floor(p/size) fits in an int,
// so KeyFor gives p a key of its own.
func Representable(p r3.Vec, size float64) bool {
	return fitsInt(p.X/size) && fitsInt(p.Y/size) && fitsInt(p.Z/size)
}

// fitsInt reports whether floor(v) lies in [math.MinInt, math.MaxInt].
// float64(math.MaxInt) rounds up to 2^63, hence the strict bound.
func fitsInt(v float64) bool {
	f := math.Floor(v)
	return f >= math.MinInt && f < math.MaxInt
}

// Center returns the world-space centre of the cell: key*size + size/2.
func (k Key) Center(size float64) r3.Vec {
	half := size / 2
	return r3.Vec{
		X: float64(k.X)*size + half,
		Y: float64(k.Y)*size + half,
		Z: float64(k.Z)*size + half,
	}
}

// Less orders keys by X, then Y, then Z.
func (k Key) Less(o Key) bool {
	if k.X != o.X {
		return k.X < o.X
	}
	if k.Y != o.Y {
		return k.Y < o.Y
	}
	return k.Z < o.Z
}

func (k Key) String() string {
	return fmt.Sprintf("(%d,%d,%d)", k.X, k.Y, k.Z)
}
