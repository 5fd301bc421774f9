package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vietanhduong/symbolize/pkg/symbolize"
	"github.com/vietanhduong/symbolize/pkg/syms"
)

func TestSelectBackend(t *testing.T) {
	opts := syms.DefaultOptions()
	opts.UseDebugFile = false

	forced := selectBackend(true, opts)
	require.IsType(t, &syms.Backend{}, forced)
	assert.Equal(t, opts, forced.(*syms.Backend).Options())

	b := selectBackend(false, opts)
	if _, ok := symbolize.DefaultBackend().(*syms.Backend); !ok {
		assert.Nil(t, b)
		return
	}
	require.IsType(t, &syms.Backend{}, b)
	assert.False(t, b.(*syms.Backend).Options().UseDebugFile)
}
