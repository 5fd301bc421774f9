package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/golang/glog"
	"github.com/vietanhduong/symbolize/pkg/backtrace"
)

type config struct {
	depth int
}

func main() {
	var depth int
	flag.IntVar(&depth, "depth", 3, "Recursion depth before the simulated crash")
	flag.Parse()

	defer func() {
		if r := recover(); r != nil {
			pcs := make([]uintptr, 64)
			// skip runtime.Callers and this deferred function
			n := runtime.Callers(2, pcs)
			fmt.Fprintf(os.Stderr, "panic: %v\n\n", r)
			for _, frame := range backtrace.Symbolize(pcs[:n]...) {
				fmt.Fprintln(os.Stderr, frame)
			}
			glog.Flush()
			os.Exit(2)
		}
	}()

	glog.Infof("Recursing %d times before crashing", depth)
	crash(&config{depth: depth}, 0)
}

//go:noinline
func crash(cfg *config, level int) {
	if level >= cfg.depth {
		var m map[string]int
		m["boom"]++
		return
	}
	crash(cfg, level+1)
}
