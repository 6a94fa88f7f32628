package master

import (
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/abrasumente233/kvkv/internal/proto"
)

// connectAll establishes a connection to every configured replica before
// the coordinator starts accepting work. A handshake shape violation here
// is fatal — this is bootstrap, not an in-flight demotion, so there is no
// partial cluster to fall back to.
func (m *Master) connectAll() error {
	for _, r := range m.replicas {
		if err := m.connectReplica(r); err != nil {
			return errors.Wrapf(err, "master: connecting to replica %d", r.id)
		}
	}
	m.log.Info().Int("count", len(m.replicas)).Msg("established connections to all replicas")
	return nil
}

// connectReplica retries connect(addr) with no bound on attempts — a
// replica that is slow to come up simply delays startup, it does not
// fail it.
func (m *Master) connectReplica(r *replicaConn) error {
	for {
		m.log.Info().Uint32("replica_id", r.id).Str("addr", r.addr).Msg("waiting for replica")
		conn, err := net.Dial("tcp", r.addr)
		if err == nil {
			r.raw = conn
			break
		}
		time.Sleep(m.reconnectInterval)
	}

	r.conn = proto.NewConn(r.raw)
	r.status = Online

	response, err := r.conn.Talk(proto.NewHandshake(r.id))
	if err != nil {
		return errors.Wrap(err, "handshake")
	}

	if response.Kind != proto.Handshake {
		return errors.Errorf("replica replied with non-handshake %s during handshake", response.Kind)
	}

	switch {
	case response.HandshakeID == proto.Sentinel:
		m.log.Info().Uint32("replica_id", r.id).Msg("replica acked sentinel id, fresh start")
		if m.written {
			// Catch-up of a fresh replica joining after writes have
			// already occurred is unimplemented: Replicate(map) is
			// reserved in the wire protocol but never emitted. A replica
			// landing here is not Online, so neither read scheduling nor
			// 2PC ever routes traffic to it.
			r.status = Recover
		} else {
			r.status = Online
		}
	case response.HandshakeID == r.id:
		m.log.Info().Uint32("replica_id", r.id).Msg("reconnected")
		r.status = Online
	default:
		return errors.Errorf("replica %d acked mismatched id %d", r.id, response.HandshakeID)
	}

	return nil
}

// demote marks r Offline and releases its connection after an I/O error or
// timeout mid-operation. The coordinator must not crash on a per-replica
// error — it demotes and keeps serving the rest of the cluster, rather
// than panicking and taking the whole service down with it.
func (m *Master) demote(r *replicaConn, cause error) {
	m.log.Warn().Uint32("replica_id", r.id).Err(cause).Msg("demoting replica to offline")
	r.close()
	r.status = Offline
}
