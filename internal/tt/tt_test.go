package tt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProbeStore(t *testing.T) {
	tab := New(10)
	hit, _, _ := tab.Probe(42)
	require.False(t, hit)

	tab.Store(42, 1, Lower)
	hit, v, f := tab.Probe(42)
	require.True(t, hit)
	require.Equal(t, int8(1), v)
	require.Equal(t, Lower, f)

	// 同槽不同哈希不算命中
	hit, _, _ = tab.Probe(42 + 1<<10)
	require.False(t, hit)

	hits, stores := tab.Stats()
	require.Equal(t, uint64(1), hits)
	require.Equal(t, uint64(1), stores)
}

func TestExactNotReplacedByBound(t *testing.T) {
	tab := New(10)
	tab.Store(7, 0, Exact)
	tab.Store(7, 1, Lower)
	_, v, f := tab.Probe(7)
	require.Equal(t, int8(0), v)
	require.Equal(t, Exact, f)

	// 不同局面占同一槽时总是覆盖
	tab.Store(7+1<<10, -1, Upper)
	hit, _, _ := tab.Probe(7)
	require.False(t, hit)
}

func TestClear(t *testing.T) {
	tab := New(10)
	tab.Store(9, 1, Exact)
	tab.Clear()
	hit, _, _ := tab.Probe(9)
	require.False(t, hit)
	hits, stores := tab.Stats()
	require.Zero(t, hits)
	require.Zero(t, stores)
}

func TestFlagFor(t *testing.T) {
	for _, tc := range []struct {
		value, alpha, beta int8
		want               Flag
	}{
		{-1, -1, 1, Upper},
		{0, -1, 1, Exact},
		{1, -1, 1, Lower},
		{0, 0, 1, Upper},
		{0, -1, 0, Lower},
	} {
		require.Equal(t, tc.want, FlagFor(tc.value, tc.alpha, tc.beta), "%+v", tc)
	}
}
