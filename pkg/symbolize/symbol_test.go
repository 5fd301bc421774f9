package symbolize

import (
	"testing"
	"unsafe"

	"github.com/ianlancetaylor/demangle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbol_Syminfo(t *testing.T) {
	s := &Symbol{kind: syminfoSymbol, pc: 0x1234, name: []byte("_ZN5boost6detail4workEv")}

	addr, ok := s.Addr()
	require.True(t, ok)
	assert.Equal(t, uintptr(0x1234), addr)

	name, ok := s.Name()
	require.True(t, ok)
	assert.Equal(t, "boost::detail::work()", name.String())

	_, ok = s.Filename()
	assert.False(t, ok)
	_, ok = s.FilenameRaw()
	assert.False(t, ok)
	_, ok = s.Lineno()
	assert.False(t, ok)
}

func TestSymbol_Pcinfo(t *testing.T) {
	s := &Symbol{kind: pcinfoSymbol, pc: 0x10, name: []byte("main"), filename: []byte("/src/main.c"), lineno: 12}

	file, ok := s.Filename()
	require.True(t, ok)
	assert.Equal(t, "/src/main.c", file)

	line, ok := s.Lineno()
	require.True(t, ok)
	assert.Equal(t, uint32(12), line)

	name, ok := s.Name()
	require.True(t, ok)
	assert.Equal(t, "main", name.String())
}

func TestSymbol_Absent(t *testing.T) {
	s := &Symbol{kind: syminfoSymbol}
	_, ok := s.Addr()
	assert.False(t, ok)
	_, ok = s.Name()
	assert.False(t, ok)
}

func TestSymbolName(t *testing.T) {
	name := SymbolName{raw: []byte("_ZN3foo3barEi")}
	s, ok := name.AsStr()
	require.True(t, ok)
	assert.Equal(t, "_ZN3foo3barEi", s)
	assert.Equal(t, "foo::bar(int)", name.String())
	assert.Equal(t, "foo::bar", name.Demangle(demangle.NoParams))
	assert.Equal(t, "main", SymbolName{raw: []byte("main")}.String())

	_, ok = SymbolName{raw: []byte{0xff, 0xfe}}.AsStr()
	assert.False(t, ok)
}

func TestResolveWhat(t *testing.T) {
	assert.Equal(t, uintptr(0x1000), Address(0x1000).AddressOrIP())
	assert.Equal(t, uintptr(0xfff), IP(0x1000).AddressOrIP())
	assert.Equal(t, uintptr(0), IP(0).AddressOrIP())
}

func TestPcinfoCallback_MissingFields(t *testing.T) {
	var calls int
	frame := callbackFrame{cb: func(*Symbol) { calls++ }}
	data := unsafe.Pointer(&frame)

	assert.Equal(t, -1, pcinfoCallback(data, 0x10, nil, 3, []byte("f")))
	assert.Equal(t, -1, pcinfoCallback(data, 0x10, []byte("a.c"), 3, nil))
	assert.Zero(t, calls)
	assert.False(t, frame.fired)

	assert.Equal(t, 0, pcinfoCallback(data, 0x10, []byte("a.c"), 3, []byte("f")))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, pcinfoCallback(data, 0x10, []byte("a.c"), 4, []byte("g")))
	assert.Equal(t, 1, calls)
}

func TestSyminfoCallback_NullName(t *testing.T) {
	var calls int
	frame := callbackFrame{cb: func(*Symbol) { calls++ }}
	data := unsafe.Pointer(&frame)

	syminfoCallback(data, 0x10, nil, 0, 0)
	assert.Zero(t, calls)
	syminfoCallback(data, 0x10, []byte("f"), 0x10, 8)
	assert.Equal(t, 1, calls)
}

func TestBomb(t *testing.T) {
	reasons := withAbort(t)

	func() {
		b := bomb{armed: true}
		defer b.explode()
		b.armed = false
	}()
	assert.Empty(t, *reasons)

	func() {
		defer func() { _ = recover() }()
		b := bomb{armed: true}
		defer b.explode()
		panic("unwind")
	}()
	assert.Len(t, *reasons, 1)
}
