package elf

import (
	"debug/elf"
	"fmt"
	"sort"

	"github.com/ianlancetaylor/demangle"
	"github.com/vietanhduong/symbolize/pkg/syms/pcindex"
)

// SymbolTable is a sorted index over the function symbols of .symtab and
// .dynsym. Names stay in the file and are read when a lookup hits.
type SymbolTable struct {
	Index struct {
		Links  []elf.SectionHeader
		Names  []Name
		Sizes  []uint64
		Values pcindex.PCIndex
	}
	File *File

	opts []demangle.Option
}

// Sym is the symbol covering a looked up address.
type Sym struct {
	Name  string
	Start uint64
	Size  uint64
}

func (f *File) NewSymbolTable(opts *SymbolOptions) (*SymbolTable, error) {
	if opts == nil {
		opts = &SymbolOptions{}
	}
	sym, err := f.getSymbols(elf.SHT_SYMTAB)
	if err != nil {
		return nil, fmt.Errorf("get symbol section %s: %w", elf.SHT_SYMTAB.String(), err)
	}

	dynsym, err := f.getSymbols(elf.SHT_DYNSYM)
	if err != nil {
		return nil, fmt.Errorf("get symbol section %s: %w", elf.SHT_DYNSYM.String(), err)
	}

	total := len(dynsym.symbols) + len(sym.symbols)
	if total == 0 {
		return nil, fmt.Errorf("no function symbols")
	}

	all := make([]SymbolIndex, 0, total)
	all = append(all, sym.symbols...)
	all = append(all, dynsym.symbols...)

	sort.Slice(all, func(i, j int) bool {
		if all[i].Value == all[j].Value {
			return all[i].Name < all[j].Name
		}
		return all[i].Value < all[j].Value
	})

	ret := &SymbolTable{
		File: f,
		opts: opts.DemangleOpts,
	}
	ret.Index.Links = []elf.SectionHeader{
		sym.link(f),
		dynsym.link(f),
	}
	ret.Index.Names = make([]Name, total)
	ret.Index.Sizes = make([]uint64, total)
	ret.Index.Values = pcindex.New(total)
	for i := range all {
		ret.Index.Names[i] = all[i].Name
		ret.Index.Sizes[i] = all[i].Size
		ret.Index.Values.Set(i, all[i].Value)
	}
	return ret, nil
}

func (s *SymbolTable) Size() int { return len(s.Index.Names) }

// Resolve returns the symbol covering addr. A symbol with a recorded size
// covers [start, start+size); one without a size covers everything up to
// the next symbol.
func (s *SymbolTable) Resolve(addr uint64) (Sym, bool) {
	if len(s.Index.Names) == 0 {
		return Sym{}, false
	}
	i := s.Index.Values.FindIndex(addr)
	if i == -1 {
		return Sym{}, false
	}
	start := s.Index.Values.Get(i)
	size := s.Index.Sizes[i]
	if size != 0 && addr >= start+size {
		return Sym{}, false
	}
	name := s.symbolName(i)
	if name == "" {
		return Sym{}, false
	}
	return Sym{Name: name, Start: start, Size: size}, true
}

func (s *SymbolTable) symbolName(index int) string {
	secidx := s.Index.Names[index].SectionIndex()
	header := &s.Index.Links[secidx]
	name := s.Index.Names[index].Name()
	return s.File.getString(int(name)+int(header.Offset), s.opts...)
}
