package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/vietanhduong/symbolize/pkg/backtrace"
	"github.com/vietanhduong/symbolize/pkg/bt"
	"github.com/vietanhduong/symbolize/pkg/symbolize"
	"github.com/vietanhduong/symbolize/pkg/syms"
)

func main() {
	var (
		ip           bool
		demangleType string
		goBackend    bool
		useDebugFile bool
	)
	flag.BoolVar(&ip, "ip", false, "Treat addresses as return addresses captured from a stack")
	flag.StringVar(&demangleType, "demangle", string(syms.DemangleFull), "Demangling of printed names: NONE, SIMPLIFIED, TEMPLATES or FULL")
	flag.BoolVar(&goBackend, "go-backend", false, "Force the pure Go debug info backend")
	flag.BoolVar(&useDebugFile, "debug-file", true, "Look up separate debug files by build id and debuglink. Applies whenever the Go backend resolves, which is the default unless built with -tags libbacktrace")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [ADDR...]\n\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "Resolves hex addresses inside this executable. Without addresses, prints its own stack.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	dt, err := syms.ParseDemangleType(demangleType)
	if err != nil {
		glog.Errorf("Invalid -demangle: %v", err)
		os.Exit(1)
	}

	opts := syms.DefaultOptions()
	opts.UseDebugFile = useDebugFile
	if b := selectBackend(goBackend, opts); b != nil {
		backtrace.SetBackend(b)
	}

	if flag.NArg() == 0 {
		printStack(dt)
		return
	}

	for _, arg := range flag.Args() {
		addr, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(arg), "0x"), 16, 64)
		if err != nil {
			glog.Errorf("Invalid address %q: %v", arg, err)
			os.Exit(1)
		}
		resolve := backtrace.Resolve
		if ip {
			resolve = backtrace.ResolveFrame
		}
		found := false
		resolve(uintptr(addr), func(s *symbolize.Symbol) {
			found = true
			fmt.Println(format(uintptr(addr), s, dt))
		})
		if !found {
			fmt.Printf("0x%x: ??\n", addr)
		}
	}
}

// selectBackend returns the Go backend configured with opts when it is
// forced or is the default of this build, and nil when the native backend
// stays in place.
func selectBackend(goBackend bool, opts syms.Options) bt.Backend {
	if _, ok := symbolize.DefaultBackend().(*syms.Backend); !ok && !goBackend {
		return nil
	}
	return syms.New(&opts)
}

func printStack(dt syms.DemangleType) {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(1, pcs)
	for _, pc := range pcs[:n] {
		found := false
		backtrace.ResolveFrame(pc, func(s *symbolize.Symbol) {
			found = true
			fmt.Println(format(pc, s, dt))
		})
		if !found {
			fmt.Printf("0x%x: ??\n", pc)
		}
	}
}

func format(addr uintptr, s *symbolize.Symbol, dt syms.DemangleType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "0x%x: ", addr)
	if name, ok := s.Name(); ok {
		b.WriteString(name.Demangle(dt.ToOptions()...))
	} else {
		b.WriteString("??")
	}
	if file, ok := s.Filename(); ok {
		line, _ := s.Lineno()
		fmt.Fprintf(&b, " at %s:%d", file, line)
	}
	return b.String()
}
