// Package pcindex stores sorted symbol start addresses compactly: 32-bit
// entries until a value needs 64 bits.
package pcindex

import (
	"math"

	"golang.org/x/exp/slices"
)

type PCIndex struct {
	i32 []uint32
	i64 []uint64
}

func New(sz int) PCIndex {
	return PCIndex{
		i32: make([]uint32, sz),
	}
}

// Set stores value at idx. Values must be set in ascending order.
func (it *PCIndex) Set(idx int, value uint64) {
	if it.i32 != nil && value < math.MaxUint32 {
		it.i32[idx] = uint32(value)
		return
	}
	if it.i32 != nil {
		widened := make([]uint64, len(it.i32))
		for j := 0; j < idx; j++ {
			widened[j] = uint64(it.i32[j])
		}
		it.i32 = nil
		it.i64 = widened
	}
	it.i64[idx] = value
}

func (it *PCIndex) Length() int {
	if it.i32 != nil {
		return len(it.i32)
	}
	return len(it.i64)
}

func (it *PCIndex) Get(idx int) uint64 {
	if it.i32 != nil {
		return uint64(it.i32[idx])
	}
	return it.i64[idx]
}

func (it *PCIndex) Is32() bool { return it.i32 != nil }

// FindIndex returns the index of the greatest value <= addr, the first one
// of a run of equal values, or -1 when addr precedes every value.
func (it *PCIndex) FindIndex(addr uint64) int {
	if it.Length() == 0 {
		return -1
	}
	if it.i32 != nil {
		if addr < uint64(it.i32[0]) {
			return -1
		}
		if addr >= math.MaxUint32 {
			return lowest(it.i32, len(it.i32)-1)
		}
		i, found := slices.BinarySearch(it.i32, uint32(addr))
		if !found {
			i--
		}
		return lowest(it.i32, i)
	}
	if addr < it.i64[0] {
		return -1
	}
	i, found := slices.BinarySearch(it.i64, addr)
	if !found {
		i--
	}
	return lowest(it.i64, i)
}

func lowest[T uint32 | uint64](values []T, i int) int {
	v := values[i]
	for i > 0 && values[i-1] == v {
		i--
	}
	return i
}
