package main

import (
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCmd_RoundsCornersByDefault(t *testing.T) {
	t.Parallel()

	cli := &CLI{}
	parser, err := kong.New(cli)
	require.NoError(t, err)

	// The default matches the daemon: rounded unless opted out.
	_, err = parser.Parse([]string{"render", "in.wav"})
	require.NoError(t, err)
	assert.True(t, cli.Render.Rounded)

	_, err = parser.Parse([]string{"render", "in.wav", "--no-rounded"})
	require.NoError(t, err)
	assert.False(t, cli.Render.Rounded)
}
