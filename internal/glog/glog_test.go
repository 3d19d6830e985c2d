package glog

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestDisabledByDefault(t *testing.T) {
	require.False(t, Enabled(), "logging must be off until Enable is called")
}

func TestEnableDisableRoundTrip(t *testing.T) {
	require.False(t, Enabled())
	Enable(zerolog.InfoLevel)
	require.True(t, Enabled())
	Disable()
	require.False(t, Enabled())
}

func TestNoGlobalZerologMutation(t *testing.T) {
	before := zerolog.GlobalLevel()
	Enable(zerolog.DebugLevel)
	Infof("probe")
	Disable()
	require.Equal(t, before, zerolog.GlobalLevel(), "glog must never call zerolog.SetGlobalLevel")
}
