package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_ReflectsState(t *testing.T) {
	d := newFakeDisplay()
	s := newTestSession(t, d, 0)

	empty := s.Snapshot()
	assert.Equal(t, 0, empty.Managed)
	assert.Equal(t, "0x1", empty.Focused)
	assert.Empty(t, empty.Windows)

	mapWindows(t, s, d, 10, 20)
	require.NoError(t, s.HandleEvent(keyUp(code3)))
	require.NoError(t, s.HandleEvent(keyDown(codeTab)))

	snap := s.Snapshot()
	assert.Equal(t, 2, snap.Managed)
	assert.Equal(t, 1, snap.Cursor)
	assert.Equal(t, "0x14", snap.Focused)
	assert.True(t, snap.Cycling)
	assert.Equal(t, []WindowInfo{
		{Slot: 1, ID: "0x14", Shape: "left", Offset: 0, Visible: true},
		{Slot: 2, ID: "0xa", Shape: "left", Offset: screenWidth, Visible: false},
	}, snap.Windows)
}
