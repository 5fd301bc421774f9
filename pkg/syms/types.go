package syms

import (
	"fmt"
	"strings"

	"github.com/ianlancetaylor/demangle"
)

type Options struct {
	// DemangleType applies to names read from the ELF symbol table. The
	// default reports them as stored, like the native backend does.
	DemangleType DemangleType
	// UseDebugFile looks for separate debug info (build-id or debuglink)
	// when the executable carries no DWARF.
	UseDebugFile bool
	// DebugDir is the root of the system debug file tree.
	DebugDir string
}

type DemangleType string

const (
	DemangleNone       DemangleType = "NONE"
	DemangleSimplified DemangleType = "SIMPLIFIED"
	DemangleTemplates  DemangleType = "TEMPLATES"
	DemangleFull       DemangleType = "FULL"
)

var defaultOptions = &Options{
	DemangleType: DemangleNone,
	UseDebugFile: true,
	DebugDir:     "/usr/lib/debug",
}

func DefaultOptions() Options { return *defaultOptions }

func ParseDemangleType(s string) (DemangleType, error) {
	switch dt := DemangleType(strings.ToUpper(s)); dt {
	case DemangleNone, DemangleSimplified, DemangleTemplates, DemangleFull:
		return dt, nil
	}
	return "", fmt.Errorf("unknown demangle type %q", s)
}

func (dt DemangleType) ToOptions() []demangle.Option {
	switch dt {
	case DemangleNone, "":
		return nil
	case DemangleSimplified:
		return []demangle.Option{demangle.NoParams, demangle.NoEnclosingParams, demangle.NoTemplateParams}
	case DemangleTemplates:
		return []demangle.Option{demangle.NoParams, demangle.NoEnclosingParams}
	default:
		return []demangle.Option{demangle.NoClones}
	}
}
