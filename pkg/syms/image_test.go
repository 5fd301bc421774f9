//go:build linux

package syms

import (
	delf "debug/elf"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vietanhduong/symbolize/pkg/proc"
	"github.com/vietanhduong/symbolize/pkg/syms/elf"
	"github.com/vietanhduong/symbolize/pkg/syms/internal/fixture"
)

const cppSource = `namespace ns {
struct Counter {
  int bump(int x);
};
int Counter::bump(int x) {
  return x + 1;
}
}  // namespace ns

int main() {
  ns::Counter c;
  return c.bump(1);
}
`

const cppBumpLine = 5

func symbolValue(t *testing.T, path, name string) uint64 {
	t.Helper()
	ef, err := delf.Open(path)
	require.NoError(t, err)
	defer ef.Close()

	symbols, err := ef.Symbols()
	require.NoError(t, err)
	for _, sym := range symbols {
		if sym.Name == name {
			return sym.Value
		}
	}
	t.Fatalf("Symbol %s not found in %s", name, path)
	return 0
}

func loadFixture(t *testing.T, path string, opts *Options) *image {
	t.Helper()
	img, err := loadImage(path, opts, func(err error) { t.Logf("load %s: %v", path, err) })
	require.NoError(t, err)
	t.Cleanup(func() { img.file.Close() })
	return img
}

func logErr(t *testing.T) func(error) {
	return func(err error) { t.Logf("lookup: %v", err) }
}

func TestLoadImage_PIE(t *testing.T) {
	if runtime.GOARCH != "amd64" && runtime.GOARCH != "arm64" {
		t.Skipf("Internal PIE linking not supported on %s", runtime.GOARCH)
	}
	path := fixture.GoProgram(t, fixture.GoSource, "-buildmode=pie", "-ldflags=-w")

	img := loadFixture(t, path, &Options{})
	assert.Nil(t, img.file.FindSection(".gopclntab"))
	assert.Equal(t, ".data.rel.ro.gopclntab", pclntabSection(img.file))
	require.NotNil(t, img.gotab)
	assert.Nil(t, img.dwarf)

	addr := symbolValue(t, path, "main.helper")
	file, line, fn, ok := img.lineInfo(addr, logErr(t))
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(file, "main.go"), file)
	assert.Equal(t, fixture.GoHelperLine, line)
	assert.Equal(t, "main.helper", fn)

	sym, ok := img.symbol(addr + 1)
	require.True(t, ok)
	assert.Equal(t, "main.helper", sym.Name)
	assert.Equal(t, addr, sym.Start)
}

func TestDWARF_Go(t *testing.T) {
	path := fixture.GoProgram(t, fixture.GoSource)

	img := loadFixture(t, path, &Options{})
	require.NotNil(t, img.dwarf)

	addr := symbolValue(t, path, "main.helper")
	file, line, fn, ok := img.dwarf.lookup(addr, logErr(t))
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(file, "main.go"), file)
	assert.Equal(t, fixture.GoHelperLine, line)
	assert.Equal(t, "main.helper", fn)
	assert.NotEmpty(t, img.dwarf.funcs)

	_, _, _, ok = img.dwarf.lookup(0x10, logErr(t))
	assert.False(t, ok)
}

func TestDWARF_LinkageName(t *testing.T) {
	dir := t.TempDir()
	path := fixture.CProgram(t, "g++", dir, "counter.cc", cppSource, "-g", "-O0")

	img := loadFixture(t, path, &Options{})
	require.NotNil(t, img.dwarf)

	// the out of line definition names its declaration, which carries the
	// linkage name
	addr := symbolValue(t, path, "_ZN2ns7Counter4bumpEi")
	file, line, fn, ok := img.dwarf.lookup(addr, logErr(t))
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(file, "counter.cc"), file)
	assert.Equal(t, cppBumpLine, line)
	assert.Equal(t, "_ZN2ns7Counter4bumpEi", fn)
}

// splitDebugInfo moves the DWARF of dir/prog into dir/.debug/prog.debug and
// links it back through .gnu_debuglink.
func splitDebugInfo(t *testing.T, dir string) string {
	t.Helper()
	objcopy := fixture.Tool(t, "objcopy")
	fixture.Run(t, dir, nil, objcopy, "--only-keep-debug", "prog", "prog.debug")
	fixture.Run(t, dir, nil, objcopy, "--strip-debug", "--add-gnu-debuglink=prog.debug", "prog")

	debugfile := filepath.Join(dir, ".debug", "prog.debug")
	require.NoError(t, os.MkdirAll(filepath.Dir(debugfile), 0o755))
	require.NoError(t, os.Rename(filepath.Join(dir, "prog.debug"), debugfile))
	return debugfile
}

func TestFindDebugFileViaLink(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	path := fixture.CProgram(t, "gcc", dir, "prog.c", fixture.CSource, "-g", "-O0")
	debugfile := splitDebugInfo(t, dir)

	f, err := elf.Open(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "prog.debug", f.DebugLink())
	assert.False(t, hasDWARF(f))
	assert.Equal(t, debugfile, findDebugFileViaLink(f, t.TempDir()))
	assert.Equal(t, debugfile, findDebugFile(f, t.TempDir()))

	require.NoError(t, os.Remove(debugfile))
	assert.Empty(t, findDebugFileViaLink(f, t.TempDir()))
}

func TestLoadImage_DebugLink(t *testing.T) {
	dir := t.TempDir()
	path := fixture.CProgram(t, "gcc", dir, "prog.c", fixture.CSource, "-g", "-O0")
	splitDebugInfo(t, dir)

	img := loadFixture(t, path, &Options{UseDebugFile: true, DebugDir: t.TempDir()})
	require.NotNil(t, img.dwarf)
	assert.Nil(t, img.debug, "debug file is closed once its DWARF is loaded")

	addr := symbolValue(t, path, "helper")
	file, line, fn, ok := img.lineInfo(addr, logErr(t))
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(file, "prog.c"), file)
	assert.Equal(t, fixture.CHelperLine, line)
	assert.Equal(t, "helper", fn)

	noDebug := loadFixture(t, path, &Options{UseDebugFile: false})
	assert.Nil(t, noDebug.dwarf)
}

func TestLoadImage_DebugFileWithoutDWARF(t *testing.T) {
	dir := t.TempDir()
	path := fixture.CProgram(t, "gcc", dir, "prog.c", fixture.CSource, "-O0")

	// a debug file that carries no DWARF at all
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	debugfile := filepath.Join(dir, ".debug", "prog.debug")
	require.NoError(t, os.MkdirAll(filepath.Dir(debugfile), 0o755))
	require.NoError(t, os.WriteFile(debugfile, raw, 0o644))
	fixture.Run(t, dir, nil, fixture.Tool(t, "objcopy"), "--add-gnu-debuglink="+debugfile, "prog")

	img := loadFixture(t, path, &Options{UseDebugFile: true, DebugDir: t.TempDir()})
	assert.Nil(t, img.dwarf)
	assert.Nil(t, img.debug)
	require.NotNil(t, img.symtab)

	sym, ok := img.symbol(symbolValue(t, path, "helper"))
	require.True(t, ok)
	assert.Equal(t, "helper", sym.Name)
}

func TestMappedBias(t *testing.T) {
	maps := []*proc.ProcMap{
		{StartAddr: 0x555555554000, EndAddr: 0x555555555000, FileOffset: 0},
		{StartAddr: 0x555555555000, EndAddr: 0x555555556000, FileOffset: 0x1000},
	}
	text := delf.ProgHeader{Type: delf.PT_LOAD, Flags: delf.PF_R | delf.PF_X, Off: 0x1000, Vaddr: 0x1000}

	bias, ok := mappedBias(maps[1:], []delf.ProgHeader{text})
	require.True(t, ok)
	assert.Equal(t, uint64(0x555555554000), bias)

	// the segment starts past the end of the first mapping
	_, ok = mappedBias(maps[:1], []delf.ProgHeader{{Off: 0x1000, Vaddr: 0x1000}})
	assert.False(t, ok)

	_, ok = mappedBias(maps[1:], []delf.ProgHeader{{Off: 0, Vaddr: 0}})
	assert.False(t, ok)

	_, ok = mappedBias(nil, []delf.ProgHeader{text})
	assert.False(t, ok)
}
