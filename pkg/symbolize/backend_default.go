//go:build !libbacktrace || !cgo

package symbolize

import (
	"github.com/vietanhduong/symbolize/pkg/bt"
	"github.com/vietanhduong/symbolize/pkg/syms"
)

func defaultBackend() bt.Backend { return syms.New(nil) }
