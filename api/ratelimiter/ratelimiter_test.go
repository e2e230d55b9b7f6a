package ratelimiter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// go test -v -run=TestScopesAreSeparate
func TestScopesAreSeparate(t *testing.T) {
	limit := Limit{Rate: 0.0001, Burst: 1}

	require.True(t, Allow(RPC, "192.0.2.1", limit))
	require.False(t, Allow(RPC, "192.0.2.1", limit))

	require.True(t, Allow(Websocket, "192.0.2.1", limit))
	require.True(t, Allow(RPC, "192.0.2.2", limit))
	require.Same(t, GetLimiter(RPC, "192.0.2.1", limit), GetLimiter(RPC, "192.0.2.1", limit))
}

// go test -v -run=TestAllowHost
func TestAllowHost(t *testing.T) {
	limit := Limit{Rate: 0.0001, Burst: 1}

	host, ok := AllowHost(Operation, "198.51.100.9:1234", limit)
	require.True(t, ok)
	require.Equal(t, "198.51.100.9", host)

	// the port does not matter
	_, ok = AllowHost(Operation, "198.51.100.9:4321", limit)
	require.False(t, ok)

	_, ok = AllowHost(Operation, "not a host port", limit)
	require.True(t, ok)
}

// go test -v -run=TestNoLimit
func TestNoLimit(t *testing.T) {
	for i := 0; i < 100; i++ {
		require.True(t, Allow(Operation, "unlimited", Limit{}))
	}
}
