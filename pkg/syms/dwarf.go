package syms

import (
	"debug/dwarf"
	"errors"
	"fmt"

	"github.com/go-delve/delve/pkg/dwarf/godwarf"
	"github.com/go-delve/delve/pkg/dwarf/reader"
	"github.com/golang/glog"
)

// dwarfTable answers line lookups from DWARF. Subprogram trees are loaded
// per compilation unit on the first lookup that lands in it.
type dwarfTable struct {
	data  *dwarf.Data
	r     *reader.Reader
	funcs map[dwarf.Offset][]*godwarf.Tree
}

func newDWARFTable(data *dwarf.Data) *dwarfTable {
	return &dwarfTable{
		data:  data,
		r:     reader.New(data),
		funcs: make(map[dwarf.Offset][]*godwarf.Tree),
	}
}

func (d *dwarfTable) lookup(addr uint64, report func(error)) (file string, line int, fn string, ok bool) {
	cu, err := d.r.SeekPC(addr)
	if err != nil {
		if !errors.Is(err, dwarf.ErrUnknownPC) {
			report(fmt.Errorf("seek compilation unit: %w", err))
		}
		return "", 0, "", false
	}
	lr, err := d.data.LineReader(cu)
	if err != nil {
		report(fmt.Errorf("line reader: %w", err))
		return "", 0, "", false
	}
	if lr == nil {
		return "", 0, "", false
	}
	var entry dwarf.LineEntry
	if err := lr.SeekPC(addr, &entry); err != nil {
		return "", 0, "", false
	}
	if entry.File == nil || entry.File.Name == "" {
		return "", 0, "", false
	}
	return entry.File.Name, entry.Line, d.funcName(cu, addr, report), true
}

func (d *dwarfTable) funcName(cu *dwarf.Entry, addr uint64, report func(error)) string {
	trees, ok := d.funcs[cu.Offset]
	if !ok {
		var err error
		if trees, err = d.loadFuncs(cu); err != nil {
			// keep whatever was loaded before the error
			report(fmt.Errorf("load subprograms: %w", err))
		}
		d.funcs[cu.Offset] = trees
		glog.V(3).Infof("Loaded %d subprograms of unit at offset 0x%x", len(trees), cu.Offset)
	}
	for _, tree := range trees {
		if tree.ContainsPC(addr) {
			return d.entryName(tree.Entry)
		}
	}
	return ""
}

func (d *dwarfTable) loadFuncs(cu *dwarf.Entry) ([]*godwarf.Tree, error) {
	r := d.data.Reader()
	r.Seek(cu.Offset)
	if _, err := r.Next(); err != nil {
		return nil, err
	}

	var trees []*godwarf.Tree
	for {
		e, err := r.Next()
		if err != nil {
			return trees, err
		}
		if e == nil || e.Tag == dwarf.TagCompileUnit {
			return trees, nil
		}
		if e.Tag != dwarf.TagSubprogram {
			continue
		}
		// abstract instances and declarations carry no code
		if e.Val(dwarf.AttrInline) != nil || e.Val(dwarf.AttrDeclaration) != nil {
			r.SkipChildren()
			continue
		}
		tree, err := godwarf.LoadTree(e.Offset, d.data, 0)
		if err != nil {
			return trees, err
		}
		if len(tree.Ranges) > 0 {
			trees = append(trees, tree)
		}
		r.SkipChildren()
	}
}

type attrs interface {
	Val(dwarf.Attr) interface{}
}

// entryName prefers the linkage name, following the declaration an out of
// line definition refers to.
func (d *dwarfTable) entryName(e attrs) string {
	for depth := 0; depth < 4; depth++ {
		if name, ok := e.Val(dwarf.AttrLinkageName).(string); ok && name != "" {
			return name
		}
		if name, ok := e.Val(dwarf.AttrName).(string); ok && name != "" {
			return name
		}
		ref := d.reference(e)
		if ref == nil {
			return ""
		}
		e = ref
	}
	return ""
}

func (d *dwarfTable) reference(e attrs) *dwarf.Entry {
	off, ok := e.Val(dwarf.AttrSpecification).(dwarf.Offset)
	if !ok {
		if off, ok = e.Val(dwarf.AttrAbstractOrigin).(dwarf.Offset); !ok {
			return nil
		}
	}
	r := d.data.Reader()
	r.Seek(off)
	ref, err := r.Next()
	if err != nil {
		return nil
	}
	return ref
}
