package pcindex

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slices"
)

func TestPCIndex_FindIndex(t *testing.T) {
	s := "aaaaccfff"
	pci := New(len(s))
	for i := 0; i < len(s); i++ {
		pci.Set(i, uint64(s[i]))
	}
	assert.True(t, pci.Is32())
	assert.Equal(t, -1, pci.FindIndex(uint64(0x20)))
	assert.Equal(t, 0, pci.FindIndex(uint64('a')))
	assert.Equal(t, 0, pci.FindIndex(uint64('b')))
	assert.Equal(t, 4, pci.FindIndex(uint64('c')))
	assert.Equal(t, 4, pci.FindIndex(uint64('d')))
	assert.Equal(t, 4, pci.FindIndex(uint64('e')))
	assert.Equal(t, 6, pci.FindIndex(uint64('f')))
	assert.Equal(t, 6, pci.FindIndex(uint64('z')))
	assert.Equal(t, 6, pci.FindIndex(math.MaxUint64))
}

func TestPCIndex_Widen(t *testing.T) {
	values := []uint64{0x1000, 0x2000, 0x7fff00000000, 0x7fff00001000}
	pci := New(len(values))
	for i, v := range values {
		pci.Set(i, v)
	}
	assert.False(t, pci.Is32())
	assert.Equal(t, len(values), pci.Length())
	for i, v := range values {
		assert.Equal(t, v, pci.Get(i))
	}
	assert.Equal(t, 1, pci.FindIndex(0x2fff))
	assert.Equal(t, 2, pci.FindIndex(0x7fff00000fff))
	assert.Equal(t, -1, pci.FindIndex(0xfff))
}

func TestPCIndex_Empty(t *testing.T) {
	pci := New(0)
	assert.Equal(t, -1, pci.FindIndex(0x1000))
}

func BenchmarkBinSearch(b *testing.B) {
	const nsym = 64 * 1024
	rnd := rand.NewSource(239)
	syms := make([]uint64, nsym)
	for i := 0; i < nsym; i++ {
		syms[i] = uint64(rnd.Int63()) & 0x7fffffff
	}
	slices.Sort(syms)

	pci := New(nsym)
	for i, sym := range syms {
		pci.Set(i, sym)
	}
	b.ResetTimer()
	idx := 0
	for i := 0; i < b.N; i++ {
		for j := 0; j < nsym; j++ {
			idx += pci.FindIndex(syms[j])
		}
	}
}
