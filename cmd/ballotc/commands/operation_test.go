package commands

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitAddresses(t *testing.T) {
	require.Nil(t, splitAddresses(""))
	require.Nil(t, splitAddresses(" , "))
	require.Equal(t, []string{"a", "b", "c"}, splitAddresses("a, b,,c "))
}

func TestOperationsRequireCaller(t *testing.T) {
	caller = ""
	for _, cmd := range []string{"grant", "delegate", "vote", "bribe", "withdraw"} {
		rootCmd.SetArgs([]string{cmd})
		require.NotNil(t, rootCmd.Execute(), cmd)
	}
}
