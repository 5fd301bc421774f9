package elf

import (
	"bytes"
	"debug/elf"
	"fmt"
	"strings"
	"unsafe"

	"github.com/ianlancetaylor/demangle"
)

type SymbolOptions struct {
	DemangleOpts []demangle.Option
}

// getSymbols collects the function symbols of the first section of type
// styp. A missing section yields no symbols and no error.
func (mf *File) getSymbols(styp elf.SectionType) (*sectionSymbols, error) {
	if styp != elf.SHT_DYNSYM && styp != elf.SHT_SYMTAB {
		return nil, fmt.Errorf("unsupported elf section type %s", styp.String())
	}
	section := mf.FindSectionByType(styp)
	if section == nil {
		return &sectionSymbols{}, nil
	}
	sd, err := mf.GetSectionData(section.Name)
	if err != nil {
		return nil, fmt.Errorf("get section data: %w", err)
	}
	if sd == nil {
		return &sectionSymbols{}, nil
	}

	index := SYMTAB_TYPE
	if styp == elf.SHT_DYNSYM {
		index = DYNSYM_TYPE
	}

	switch mf.Class {
	case elf.ELFCLASS64:
		return readSymbols(sd, index, func(raw []byte) (uint32, byte, uint64, uint64) {
			sym := (*elf.Sym64)(unsafe.Pointer(&raw[0]))
			return sym.Name, sym.Info, sym.Value, sym.Size
		}, int(unsafe.Sizeof(elf.Sym64{})))
	case elf.ELFCLASS32:
		return readSymbols(sd, index, func(raw []byte) (uint32, byte, uint64, uint64) {
			sym := (*elf.Sym32)(unsafe.Pointer(&raw[0]))
			return sym.Name, sym.Info, uint64(sym.Value), uint64(sym.Size)
		}, int(unsafe.Sizeof(elf.Sym32{})))
	}
	return nil, fmt.Errorf("unsupported elf class %s", mf.Class.String())
}

type symDecoder func(raw []byte) (name uint32, info byte, value, size uint64)

func readSymbols(sd *SectionData, index SectionLinkIndex, decode symDecoder, size int) (*sectionSymbols, error) {
	if len(sd.Data)%size != 0 {
		return nil, fmt.Errorf("invalid section data size")
	}
	if len(sd.Data) == 0 {
		return &sectionSymbols{data: sd}, nil
	}

	// the first entry is the reserved undefined symbol
	data := sd.Data[size:]
	symbols := make([]SymbolIndex, 0, len(data)/size)
	for len(data) > 0 {
		raw := data[:size]
		data = data[size:]
		name, info, value, symsize := decode(raw)
		if value == 0 || info&0xf != byte(elf.STT_FUNC) {
			continue
		}
		if name >= 0x7fffffff {
			return nil, fmt.Errorf("invalid symbol name")
		}
		symbols = append(symbols, SymbolIndex{
			Name:  NewName(name, index),
			Value: value,
			Size:  symsize,
		})
	}
	return &sectionSymbols{sd, symbols}, nil
}

// getString reads the NUL-terminated string at file offset start.
func (mf *File) getString(start int, opts ...demangle.Option) string {
	if mf.r == nil {
		return ""
	}
	if s, ok := mf.stringCache[start]; ok {
		return s
	}
	const bufsize = 128
	var buf [bufsize]byte
	var builder strings.Builder
	for i := 0; i < 10; i++ {
		n, err := mf.r.ReadAt(buf[:], int64(start+i*bufsize))
		if n == 0 && err != nil {
			return ""
		}
		chunk := buf[:n]
		if index := bytes.IndexByte(chunk, 0); index >= 0 {
			builder.Write(chunk[:index])
			s := builder.String()
			if len(opts) > 0 {
				s = demangle.Filter(s, opts...)
			}
			if mf.stringCache == nil {
				mf.stringCache = make(map[int]string)
			}
			mf.stringCache[start] = s
			return s
		}
		builder.Write(chunk)
	}
	return ""
}
