package syms

import (
	"debug/gosym"
	"fmt"

	"github.com/vietanhduong/symbolize/pkg/syms/elf"
)

// goTable answers lookups for Go images from .gopclntab, which Go
// binaries keep even when DWARF and the symbol table are stripped.
type goTable struct {
	tab *gosym.Table
}

func newGoTable(f *elf.File) (*goTable, error) {
	text := f.FindSection(".text")
	if text == nil {
		return nil, fmt.Errorf("no .text section")
	}
	name := pclntabSection(f)
	if name == "" {
		return nil, fmt.Errorf("no .gopclntab section")
	}
	pclntab, err := f.SectionBytes(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	tab, err := gosym.NewTable(nil, gosym.NewLineTable(pclntab, text.Addr))
	if err != nil {
		return nil, fmt.Errorf("parse go symtab: %w", err)
	}
	if len(tab.Funcs) == 0 {
		return nil, fmt.Errorf("no symbol found")
	}
	return &goTable{tab: tab}, nil
}

// pclntabSection returns the name of the Go line table section. The linker
// moves it into relro for position independent executables.
func pclntabSection(f *elf.File) string {
	for _, name := range []string{".gopclntab", ".data.rel.ro.gopclntab"} {
		if f.FindSection(name) != nil {
			return name
		}
	}
	return ""
}

func (g *goTable) lookup(addr uint64) (file string, line int, fn string, ok bool) {
	f := g.tab.PCToFunc(addr)
	if f == nil {
		return "", 0, "", false
	}
	file, line, _ = g.tab.PCToLine(addr)
	if file == "" {
		return "", 0, "", false
	}
	return file, line, f.Name, true
}

func (g *goTable) symbol(addr uint64) (elf.Sym, bool) {
	f := g.tab.PCToFunc(addr)
	if f == nil {
		return elf.Sym{}, false
	}
	return elf.Sym{Name: f.Name, Start: f.Entry, Size: f.End - f.Entry}, true
}
