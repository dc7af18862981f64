package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false)
	log.Debug().Msg("hidden")
	log.Info().Str("file", "/a").Msg("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
	require.Contains(t, buf.String(), "file=/a")

	buf.Reset()
	verbose := New(&buf, true)
	verbose.Debug().Msg("visible")
	require.Contains(t, buf.String(), "visible")
	require.False(t, IsTerminal(&buf))
}
