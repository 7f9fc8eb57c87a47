package libutil

import (
	"math"
)

const (
	Rad2Deg = float32(180 / math.Pi)
	Deg2Rad = float32(math.Pi / 180)
)

// InvalidAddress is returned to the gl loader for functions the driver does not export
const InvalidAddress uintptr = 0xffff_ffff_ffff_ffff

type Deleter interface {
	Delete()
}

type Releaser interface {
	Release()
}

// Cleanup collects resources while something is being constructed.
// Release frees them in reverse order and empties the list.
type Cleanup []Releaser

func (c *Cleanup) Add(r Releaser) {
	if r == nil {
		return
	}
	*c = append(*c, r)
}

// AddDeleter adapts objects that use Delete instead of Release.
func (c *Cleanup) AddDeleter(d Deleter) {
	if d == nil {
		return
	}
	*c = append(*c, releaseFunc(d.Delete))
}

func (c *Cleanup) Release() {
	list := *c
	for i := len(list) - 1; i >= 0; i-- {
		list[i].Release()
	}
	*c = nil
}

// Forget drops all entries without releasing them, ownership moved elsewhere.
func (c *Cleanup) Forget() {
	*c = nil
}

type releaseFunc func()

func (fn releaseFunc) Release() {
	fn()
}

func MaxI(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func MinI(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Log2I is floor(log2(v)) for v >= 1
func Log2I(v int) int {
	n := -1
	for v > 0 {
		v >>= 1
		n++
	}
	return n
}
