package elf

import (
	"debug/dwarf"
	"debug/elf"
	"fmt"
	"io"
	"os"

	bufra "github.com/avvmoto/buf-readerat"
)

// File is an ELF image opened for symbolization. Headers are copied out at
// open time; section contents and strings are read on demand through a
// buffered reader.
type File struct {
	elf.FileHeader
	Sections []elf.SectionHeader
	Progs    []elf.ProgHeader

	fpath       string
	f           *os.File
	ef          *elf.File
	r           io.ReaderAt
	stringCache map[int]string
}

func Open(fpath string) (*File, error) {
	f, err := os.OpenFile(fpath, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open elf file %s: %w", fpath, err)
	}
	ef, err := elf.NewFile(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("elf new file: %w", err)
	}

	this := &File{
		FileHeader: ef.FileHeader,
		Sections:   make([]elf.SectionHeader, 0, len(ef.Sections)),
		Progs:      make([]elf.ProgHeader, 0, len(ef.Progs)),
		fpath:      fpath,
		f:          f,
		ef:         ef,
		r:          bufra.NewBufReaderAt(f, 4*0x1000),
	}
	for i := range ef.Progs {
		this.Progs = append(this.Progs, ef.Progs[i].ProgHeader)
	}
	for i := range ef.Sections {
		this.Sections = append(this.Sections, ef.Sections[i].SectionHeader)
	}
	return this, nil
}

func (mf *File) FindSection(name string) *elf.SectionHeader {
	for i := range mf.Sections {
		if s := &mf.Sections[i]; s.Name == name {
			return s
		}
	}
	return nil
}

func (mf *File) FindSectionByType(styp elf.SectionType) *elf.SectionHeader {
	for i := range mf.Sections {
		if s := &mf.Sections[i]; s.Type == styp {
			return s
		}
	}
	return nil
}

// GetSectionData returns the raw contents of the named section, or nil
// when the image has no such section. Compressed sections are returned as
// stored.
func (mf *File) GetSectionData(name string) (*SectionData, error) {
	section := mf.FindSection(name)
	if section == nil || section.Type == elf.SHT_NOBITS {
		return nil, nil
	}
	if mf.r == nil {
		return nil, fmt.Errorf("elf file %s is closed", mf.fpath)
	}

	data := make([]byte, section.Size)
	if _, err := mf.r.ReadAt(data, int64(section.Offset)); err != nil {
		return nil, fmt.Errorf("read section %s: %w", name, err)
	}
	return &SectionData{data, section}, nil
}

// SectionBytes returns the decompressed contents of the named section.
func (mf *File) SectionBytes(name string) ([]byte, error) {
	if mf.ef == nil {
		return nil, fmt.Errorf("elf file %s is closed", mf.fpath)
	}
	s := mf.ef.Section(name)
	if s == nil {
		return nil, fmt.Errorf("no %s section", name)
	}
	return s.Data()
}

func (mf *File) DWARF() (*dwarf.Data, error) {
	if mf.ef == nil {
		return nil, fmt.Errorf("elf file %s is closed", mf.fpath)
	}
	return mf.ef.DWARF()
}

// ExecutableLoad returns the executable PT_LOAD segments.
func (mf *File) ExecutableLoad() []elf.ProgHeader {
	var ret []elf.ProgHeader
	for _, prog := range mf.Progs {
		if prog.Type == elf.PT_LOAD && prog.Flags&elf.PF_X != 0 {
			ret = append(ret, prog)
		}
	}
	return ret
}

func (mf *File) FilePath() string { return mf.fpath }

func (mf *File) Close() {
	if mf.f != nil {
		mf.f.Close()
		mf.f = nil
	}
	mf.ef = nil
	mf.r = nil
	mf.stringCache = nil
}
