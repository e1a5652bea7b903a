package flagx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterArgs_SeparateValue(t *testing.T) {
	got := FilterArgs([]string{"-a", "http://localhost:8080", "-x", "junk"}, []string{"-a"})
	require.Equal(t, []string{"-a", "http://localhost:8080"}, got)
}

func TestFilterArgs_EqualsForm(t *testing.T) {
	got := FilterArgs([]string{"--config=conf.json", "-a=addr", "-b=c"}, []string{"--config", "-a"})
	require.Equal(t, []string{"--config=conf.json", "-a=addr"}, got)
}

func TestFilterArgs_FlagFollowedByFlag(t *testing.T) {
	// -a has no value here; the next token is another flag and must not be
	// consumed as -a's value.
	got := FilterArgs([]string{"-a", "-i", "5"}, []string{"-a", "-i"})
	require.Equal(t, []string{"-a", "-i", "5"}, got)
}

func TestFilterArgs_NothingAllowed(t *testing.T) {
	got := FilterArgs([]string{"-x", "1", "-y"}, []string{"-a"})
	require.Empty(t, got)
	require.NotNil(t, got)
}
