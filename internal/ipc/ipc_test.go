package ipc

import (
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/minwm/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	snap session.Snapshot
}

func (s staticSource) Snapshot() session.Snapshot { return s.snap }
func (s staticSource) Capacity() int { return 256 }

func startServer(t *testing.T, src StateSource) (*Server, string) {
	t.Helper()
	// Unix socket paths are length limited; keep it short.
	dir, err := os.MkdirTemp("", "minwm")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "s.sock")
	srv := NewServer(path, src, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)
	return srv, path
}

func testSnapshot() session.Snapshot {
	return session.Snapshot{
		Managed: 2,
		Cursor:  2,
		Focused: "0xa",
		Cycling: true,
		Windows: []session.WindowInfo{
			{Slot: 1, ID: "0x14", Shape: "left", Visible: true},
			{Slot: 2, ID: "0xa", Shape: "full", Visible: true},
		},
	}
}

func TestClient_GetStatus(t *testing.T) {
	_, path := startServer(t, staticSource{snap: testSnapshot()})

	status, err := NewClient(path).GetStatus()

	require.NoError(t, err)
	assert.Equal(t, 2, status.Managed)
	assert.Equal(t, 256, status.Capacity)
	assert.Equal(t, "0xa", status.Focused)
	assert.True(t, status.Cycling)
}

func TestClient_ListWindowsMarksFocus(t *testing.T) {
	_, path := startServer(t, staticSource{snap: testSnapshot()})

	data, err := NewClient(path).ListWindows()

	require.NoError(t, err)
	require.Len(t, data.Windows, 2)
	assert.False(t, data.Windows[0].Focused)
	assert.True(t, data.Windows[1].Focused)
	assert.Equal(t, "full", data.Windows[1].Shape)
}

func TestServer_UnknownCommand(t *testing.T) {
	_, path := startServer(t, staticSource{})

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte(`{"command":"RELOAD"}` + "\n"))
	require.NoError(t, err)

	raw, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Unknown command: RELOAD")
}

func TestServer_InvalidRequest(t *testing.T) {
	_, path := startServer(t, staticSource{})

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("not json\n"))
	require.NoError(t, err)

	raw, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"status":"ERROR"`)
}

func TestServer_StopRemovesSocket(t *testing.T) {
	srv, path := startServer(t, staticSource{})

	srv.Stop()

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.Error(t, NewClient(path).Ping())
}
