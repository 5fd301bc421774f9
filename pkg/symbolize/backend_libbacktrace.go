//go:build libbacktrace && cgo

package symbolize

import (
	"github.com/vietanhduong/symbolize/pkg/bt"
	"github.com/vietanhduong/symbolize/pkg/bt/libbacktrace"
)

func defaultBackend() bt.Backend { return libbacktrace.New() }
