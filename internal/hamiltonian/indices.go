package hamiltonian

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrIndexOutOfRange = errors.New("orbital index out of range")
	ErrDuplicateIndex  = errors.New("orbital index listed twice")
)

// Indices are spin-orbital index lists ready for freezing and then
// eliminating. Freeze indexes the full 2n spin-orbitals; Remove indexes
// the spin-orbitals left after freezing.
type Indices struct {
	NumOrbitals int
	Freeze      []int
	Remove      []int
}

// NumRemaining is the spin-orbital count after freezing and eliminating
func (ix Indices) NumRemaining() int {
	return 2*ix.NumOrbitals - len(ix.Freeze) - len(ix.Remove)
}

// NormalizeIndices turns raw spatial-orbital freeze and remove lists,
// where negative entries count from the end, into spin-orbital lists.
// Remove entries are renumbered past the frozen orbitals below them and
// both lists are mirrored into the beta block.
func NormalizeIndices(freeze, remove []int, numOrbitals int) (Indices, error) {
	seen := make(map[int]bool, len(freeze)+len(remove))
	wrap := func(xs []int) ([]int, error) {
		out := make([]int, 0, len(xs))
		for _, x := range xs {
			if x < -numOrbitals || x >= numOrbitals {
				return nil, fmt.Errorf("%w: %d of %d orbitals", ErrIndexOutOfRange, x, numOrbitals)
			}
			if x < 0 {
				x += numOrbitals
			}
			if seen[x] {
				return nil, fmt.Errorf("%w: %d", ErrDuplicateIndex, x)
			}
			seen[x] = true
			out = append(out, x)
		}
		sort.Ints(out)
		return out, nil
	}
	f, err := wrap(freeze)
	if err != nil {
		return Indices{}, err
	}
	r, err := wrap(remove)
	if err != nil {
		return Indices{}, err
	}
	for i, x := range r {
		r[i] = x - sort.SearchInts(f, x)
	}
	ix := Indices{NumOrbitals: numOrbitals, Freeze: make([]int, 0, 2*len(f)), Remove: make([]int, 0, 2*len(r))}
	ix.Freeze = append(ix.Freeze, f...)
	for _, x := range f {
		ix.Freeze = append(ix.Freeze, x+numOrbitals)
	}
	ix.Remove = append(ix.Remove, r...)
	for _, x := range r {
		ix.Remove = append(ix.Remove, x+numOrbitals-len(f))
	}
	return ix, nil
}
