package ipc

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goa.design/toolcore/session"
	"goa.design/toolcore/telemetry"
	"goa.design/toolcore/tools"
)

func dialLoopback(addr *net.TCPAddr) (net.Conn, error) {
	return net.Dial("tcp", addr.String())
}

func closeWriteHalf(t *testing.T, conn net.Conn) {
	t.Helper()
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		require.NoError(t, cw.CloseWrite())
	}
}

type recordingConversation struct {
	mu  sync.Mutex
	ops []session.Op
}

func (c *recordingConversation) SubmitOp(ctx context.Context, op session.Op) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = append(c.ops, op)
	return nil
}

func (c *recordingConversation) opsSnapshot() []session.Op {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]session.Op(nil), c.ops...)
}

func TestServer_WritesAndRemovesMetadataFile(t *testing.T) {
	dir := t.TempDir()
	conv := &recordingConversation{}
	srv, err := StartServer(dir, "conv-1", conv, telemetry.NewNoopLogger())
	require.NoError(t, err)

	metaPath := MetadataPath(dir, "conv-1")
	_, err = os.Stat(metaPath)
	require.NoError(t, err, "metadata file must exist while the server is running")

	addr, err := ReadMetadata(metaPath)
	require.NoError(t, err)
	assert.Equal(t, srv.Addr().Port, addr.Port)

	srv.Shutdown()

	_, err = os.Stat(metaPath)
	assert.True(t, os.IsNotExist(err), "metadata file must be removed on shutdown")
}

func TestServer_DeliverSubmitsOpAndReturnsOK(t *testing.T) {
	dir := t.TempDir()
	conv := &recordingConversation{}
	srv, err := StartServer(dir, "conv-1", conv, telemetry.NewNoopLogger())
	require.NoError(t, err)
	defer srv.Shutdown()

	success := true
	output := tools.FunctionCallOutputPayload{Content: "real result", Success: &success}
	require.NoError(t, Deliver(srv.Addr(), "call-1", output))

	require.Eventually(t, func() bool {
		return len(conv.opsSnapshot()) == 1
	}, time.Second, 10*time.Millisecond)

	op := conv.opsSnapshot()[0].(session.DeliverPendingToolResultOp)
	assert.Equal(t, "call-1", string(op.CallID))
	assert.Equal(t, "real result", op.Output.Content)
}

func TestServer_EmptyBodyClosesSilently(t *testing.T) {
	dir := t.TempDir()
	conv := &recordingConversation{}
	srv, err := StartServer(dir, "conv-1", conv, telemetry.NewNoopLogger())
	require.NoError(t, err)
	defer srv.Shutdown()

	conn, err := dialLoopback(srv.Addr())
	require.NoError(t, err)
	closeWriteHalf(t, conn)
	_ = conn.Close()

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, conv.opsSnapshot())
}

func TestMetadataPath(t *testing.T) {
	got := MetadataPath("/home/user/.codex", "conv-9")
	assert.Equal(t, filepath.Join("/home/user/.codex", "live", "conv-9.json"), got)
}
