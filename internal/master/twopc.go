package master

import (
	"github.com/pkg/errors"

	"github.com/abrasumente233/kvkv/internal/proto"
	"github.com/abrasumente233/kvkv/internal/resp"
)

// askReplica sends value as a read and unwraps the expected Resp reply.
func (m *Master) askReplica(r *replicaConn, value resp.Value) (resp.Value, error) {
	response, err := r.talk(proto.NewResp(value), m.phaseTimeout)
	if err != nil {
		return resp.Value{}, errors.Wrapf(err, "replica %d", r.id)
	}
	if response.Kind != proto.Resp {
		return resp.Value{}, errors.Errorf("replica %d replied with non-resp %s", r.id, response.Kind)
	}
	return response.RespValue, nil
}

// doWrite drives two-phase commit for value across every Online replica —
// restricted to Online rather than every configured address, so an Offline
// replica no longer blocks the cluster forever.
func (m *Master) doWrite(value resp.Value) resp.Value {
	online := make([]*replicaConn, 0, len(m.replicas))
	for _, r := range m.replicas {
		if r.status == Online {
			online = append(online, r)
		}
	}
	if len(online) == 0 {
		m.log.Warn().Msg("no live replica for write")
		return resp.NewError("ERROR")
	}

	voted, allYes := m.collectVotes(online, value)
	decision := proto.NewDecision(allYes)
	result, ok := m.broadcastDecision(voted, decision, allYes)

	if !allYes {
		return resp.NewError("ERROR")
	}
	m.written = true
	if !ok {
		return resp.NewError("ERROR")
	}
	return result
}

// collectVotes runs Phase 1: send Resp(value) to each Online replica in
// order, await Vote(b), and fold the AND. Votes are collected sequentially,
// not in parallel, so a demotion mid-collection has a well-defined effect
// on which replica is "next". A replica that errors or times
// out is demoted immediately and its vote does not count toward allYes —
// it also does not participate in Phase 2, since it never successfully
// voted.
func (m *Master) collectVotes(online []*replicaConn, value resp.Value) (voted []*replicaConn, allYes bool) {
	allYes = true
	for _, r := range online {
		response, err := r.talk(proto.NewResp(value), m.phaseTimeout)
		if err != nil {
			m.demote(r, err)
			allYes = false
			continue
		}
		if response.Kind != proto.Vote {
			m.demote(r, errors.Errorf("replica %d replied with non-vote %s in Phase 1", r.id, response.Kind))
			allYes = false
			continue
		}
		allYes = allYes && response.VoteYes
		voted = append(voted, r)
	}
	return voted, allYes
}

// broadcastDecision runs Phase 2: send Decision(allYes) to every replica
// that voted, in order. On commit, each replica's reply is a Resp(...); the
// value forwarded to the client is the last commit reply received. On
// abort, each replica's reply is a Decision(false) acknowledgement and is
// otherwise ignored. A replica that errors or times out here is demoted but
// does not change allYes — Phase 1 already decided the outcome.
func (m *Master) broadcastDecision(voted []*replicaConn, decision proto.Value, commit bool) (resp.Value, bool) {
	var last resp.Value
	committed := false

	for _, r := range voted {
		reply, err := r.talk(decision, m.phaseTimeout)
		if err != nil {
			m.demote(r, err)
			continue
		}
		if commit {
			if reply.Kind != proto.Resp {
				m.demote(r, errors.Errorf("replica %d replied with non-resp %s on commit", r.id, reply.Kind))
				continue
			}
			last = reply.RespValue
			committed = true
		}
	}

	return last, committed
}
