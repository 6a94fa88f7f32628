package master

import (
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/abrasumente233/kvkv/internal/proto"
)

// Status is a replica record's connectivity state. replicaConn.conn is
// simply nil whenever status is Offline, and every call site that needs
// the connection only runs when status != Offline, which keeps the
// invariant obvious at each use rather than threading a separate
// "connected" bool alongside a nullable field.
type Status int

const (
	Offline Status = iota
	Online
	Recover
)

func (s Status) String() string {
	switch s {
	case Offline:
		return "offline"
	case Online:
		return "online"
	case Recover:
		return "recover"
	default:
		return "unknown"
	}
}

// replicaConn is the master's record of one configured replica: its stable
// identity, address, current status, and — when online — the connection
// the coordinator goroutine exclusively owns.
type replicaConn struct {
	id     uint32
	addr   string
	status Status

	raw  net.Conn
	conn *proto.Conn
}

// talk writes v and waits for the peer's reply, bounded by timeout. A
// timeout or I/O error returns an error without touching status — the
// caller decides whether to demote, since phase 1 and phase 2 react to a
// dead replica differently (drop the vote vs. ignore a missed ack).
func (r *replicaConn) talk(v proto.Value, timeout time.Duration) (proto.Value, error) {
	if r.raw == nil || r.conn == nil {
		return proto.Value{}, errors.Errorf("replica %d has no connection", r.id)
	}
	deadline := time.Now().Add(timeout)
	if err := r.raw.SetDeadline(deadline); err != nil {
		return proto.Value{}, errors.Wrap(err, "master: set deadline")
	}
	defer r.raw.SetDeadline(time.Time{})

	return r.conn.Talk(v)
}

func (r *replicaConn) close() {
	if r.raw != nil {
		r.raw.Close()
	}
	r.raw = nil
	r.conn = nil
}
