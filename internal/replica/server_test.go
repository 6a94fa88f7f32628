package replica

import (
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abrasumente233/kvkv/internal/proto"
	"github.com/abrasumente233/kvkv/internal/resp"
)

func newTestServer() (*Server, net.Conn) {
	client, serverSide := net.Pipe()
	s := NewServer("test", zerolog.Nop())
	go s.handleSocket(serverSide)
	return s, client
}

func TestReplicaHandshakeAssignsIDOnce(t *testing.T) {
	s, client := newTestServer()
	defer client.Close()
	pc := proto.NewConn(client)

	reply, err := pc.Talk(proto.NewHandshake(7))
	require.NoError(t, err)
	assert.Equal(t, proto.NewHandshake(proto.Sentinel), reply)
	assert.Equal(t, uint32(7), s.backend.ID)

	// A second handshake with a different id must not overwrite the
	// already-assigned id.
	reply2, err := pc.Talk(proto.NewHandshake(99))
	require.NoError(t, err)
	assert.Equal(t, proto.NewHandshake(7), reply2)
	assert.Equal(t, uint32(7), s.backend.ID)
}

func TestReplicaServesReadDirectly(t *testing.T) {
	_, client := newTestServer()
	defer client.Close()
	pc := proto.NewConn(client)

	reply, err := pc.Talk(proto.NewResp(resp.BulkStrings("GET", "missing")))
	require.NoError(t, err)
	assert.Equal(t, proto.NewResp(resp.BulkStrings("nil")), reply)
}

func TestReplicaTwoPhaseCommitOnWrite(t *testing.T) {
	_, client := newTestServer()
	defer client.Close()
	pc := proto.NewConn(client)

	vote, err := pc.Talk(proto.NewResp(resp.BulkStrings("SET", "k", "v")))
	require.NoError(t, err)
	assert.Equal(t, proto.NewVote(true), vote)

	reply, err := pc.Talk(proto.NewDecision(true))
	require.NoError(t, err)
	assert.Equal(t, proto.NewResp(resp.NewSimpleString("OK")), reply)

	getReply, err := pc.Talk(proto.NewResp(resp.BulkStrings("GET", "k")))
	require.NoError(t, err)
	assert.Equal(t, proto.NewResp(resp.BulkStrings("v")), getReply)
}

func TestReplicaAbortDoesNotApplyWrite(t *testing.T) {
	_, client := newTestServer()
	defer client.Close()
	pc := proto.NewConn(client)

	_, err := pc.Talk(proto.NewResp(resp.BulkStrings("SET", "k", "v")))
	require.NoError(t, err)

	reply, err := pc.Talk(proto.NewDecision(false))
	require.NoError(t, err)
	assert.Equal(t, proto.NewDecision(false), reply)

	getReply, err := pc.Talk(proto.NewResp(resp.BulkStrings("GET", "k")))
	require.NoError(t, err)
	assert.Equal(t, proto.NewResp(resp.BulkStrings("nil")), getReply)
}

func TestReplicaInvalidCommandReply(t *testing.T) {
	_, client := newTestServer()
	defer client.Close()
	pc := proto.NewConn(client)

	reply, err := pc.Talk(proto.NewResp(resp.BulkStrings("PING", "")))
	require.NoError(t, err)
	assert.Equal(t, proto.NewResp(resp.NewError("Invalid Command")), reply)
}

// TestCloseWaitsForLiveConnectionBeforeReturning checks the drain ordering
// directly: Close must block until handleSocket has released its connection
// before returning, rather than returning while a frame is still in flight.
func TestCloseWaitsForLiveConnectionBeforeReturning(t *testing.T) {
	s, client := newTestServer()
	defer client.Close()

	closed := make(chan struct{})
	go func() {
		s.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned before the live connection was released")
	case <-time.After(50 * time.Millisecond):
	}

	client.Close()

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return after the connection was released")
	}
}

func TestReplicaProtocolViolationClosesConnection(t *testing.T) {
	_, client := newTestServer()
	defer client.Close()
	pc := proto.NewConn(client)

	_, err := pc.Talk(proto.NewResp(resp.BulkStrings("SET", "k", "v")))
	require.NoError(t, err)

	require.NoError(t, pc.WriteValue(proto.NewHandshake(1)))
	_, err = pc.ReadValue()
	assert.Error(t, err)
}
