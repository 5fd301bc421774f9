package syms

import (
	delf "debug/elf"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/samber/lo"
	"github.com/vietanhduong/symbolize/pkg/proc"
	"github.com/vietanhduong/symbolize/pkg/syms/elf"
	"golang.org/x/sys/unix"
)

// image is everything loaded for one executable: where it sits in memory
// and the three sources of names it may carry.
type image struct {
	file *elf.File
	// separate debug file, kept open only while the symbol table reads
	// names from it
	debug *elf.File
	bias  uint64

	symtab *elf.SymbolTable
	gotab  *goTable
	dwarf  *dwarfTable
}

func loadImage(path string, opts *Options, report func(error)) (*image, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, err
	}
	img := &image{file: f}

	if img.bias, err = loadBias(f, path); err != nil {
		glog.Warningf("Unable to determine load bias of %s, assuming 0: %v", path, err)
	}

	symopts := &elf.SymbolOptions{DemangleOpts: opts.DemangleType.ToOptions()}
	if img.symtab, err = f.NewSymbolTable(symopts); err != nil {
		glog.V(3).Infof("No symbol table in %s: %v", path, err)
	}

	if img.gotab, err = newGoTable(f); err != nil {
		glog.V(3).Infof("No Go line table in %s: %v", path, err)
	}

	debugf := f
	if !hasDWARF(f) && opts.UseDebugFile {
		if debugfile := findDebugFile(f, opts.DebugDir); debugfile != "" {
			if img.debug, err = elf.Open(debugfile); err != nil {
				report(fmt.Errorf("open debug file %s: %w", debugfile, err))
			} else {
				glog.V(2).Infof("Using debug file %s for %s", debugfile, path)
				debugf = img.debug
				if img.symtab == nil {
					img.symtab, _ = debugf.NewSymbolTable(symopts)
				}
			}
		}
	}
	if hasDWARF(debugf) {
		if data, err := debugf.DWARF(); err != nil {
			report(fmt.Errorf("load dwarf: %w", err))
		} else {
			img.dwarf = newDWARFTable(data)
		}
	}
	// DWARF is fully read into memory, only symbol names are read lazily
	if img.debug != nil && (img.symtab == nil || img.symtab.File != img.debug) {
		img.debug.Close()
		img.debug = nil
	}

	if img.symtab == nil && img.gotab == nil && img.dwarf == nil {
		f.Close()
		return nil, fmt.Errorf("no debug info in ELF executable %s", path)
	}
	return img, nil
}

// lineInfo resolves addr, relative to the link-time layout, against the Go
// line table and then DWARF. fn is empty when the function is unknown.
func (img *image) lineInfo(addr uint64, report func(error)) (file string, line int, fn string, ok bool) {
	if img.gotab != nil {
		if file, line, fn, ok = img.gotab.lookup(addr); ok {
			return
		}
	}
	if img.dwarf != nil {
		return img.dwarf.lookup(addr, report)
	}
	return "", 0, "", false
}

// symbol resolves addr against the ELF symbol table, falling back to the
// function table of a Go image stripped of its symbol table.
func (img *image) symbol(addr uint64) (elf.Sym, bool) {
	if img.symtab != nil {
		if sym, ok := img.symtab.Resolve(addr); ok {
			return sym, true
		}
	}
	if img.gotab != nil {
		return img.gotab.symbol(addr)
	}
	return elf.Sym{}, false
}

// loadBias returns the difference between runtime and link-time addresses
// of the image, read from the executable mapping of the same file.
func loadBias(f *elf.File, path string) (uint64, error) {
	if f.Type == delf.ET_EXEC {
		return 0, nil
	}
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, fmt.Errorf("unix stat %s: %w", path, err)
	}
	maps, err := proc.ParseSelfMap()
	if err != nil {
		return 0, fmt.Errorf("parse self maps: %w", err)
	}
	bias, ok := mappedBias(proc.FindByInode(maps, uint64(st.Dev), uint64(st.Ino)), f.ExecutableLoad())
	if !ok {
		return 0, fmt.Errorf("no executable mapping of %s", path)
	}
	return bias, nil
}

// mappedBias finds the mapping holding the start of an executable segment.
func mappedBias(maps []*proc.ProcMap, progs []delf.ProgHeader) (uint64, bool) {
	for _, m := range maps {
		for _, prog := range progs {
			if prog.Off < m.FileOffset {
				continue
			}
			if start := m.StartAddr + (prog.Off - m.FileOffset); m.Contains(start) {
				return start - prog.Vaddr, true
			}
		}
	}
	return 0, false
}

func hasDWARF(f *elf.File) bool {
	return f.FindSection(".debug_info") != nil || f.FindSection(".zdebug_info") != nil
}

func findDebugFile(f *elf.File, debugDir string) string {
	if id := f.BuildId(); id != nil {
		if debugfile := findDebugFileViaBuildId(*id, debugDir); debugfile != "" {
			return debugfile
		}
	}
	return findDebugFileViaLink(f, debugDir)
}

func findDebugFileViaBuildId(id elf.BuildId, debugDir string) string {
	if len(id.Id) < 3 || !id.GNU() {
		return ""
	}
	debugfile := filepath.Join(debugDir, ".build-id", id.Id[:2], id.Id[2:]+".debug")
	if _, err := os.Stat(debugfile); err == nil {
		return debugfile
	}
	return ""
}

func findDebugFileViaLink(f *elf.File, debugDir string) string {
	debuglink := f.DebugLink()
	if debuglink == "" {
		return ""
	}

	exe := f.FilePath()
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	dir := filepath.Dir(exe)
	paths := lo.Uniq([]string{
		// /usr/bin/ls.debug
		filepath.Join(dir, debuglink),
		// /usr/bin/.debug/ls.debug
		filepath.Join(dir, ".debug", debuglink),
		// /usr/lib/debug/usr/bin/ls.debug
		filepath.Join(debugDir, dir, debuglink),
	})
	for _, p := range paths {
		if p == exe {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
