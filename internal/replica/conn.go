package replica

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/abrasumente233/kvkv/internal/command"
	"github.com/abrasumente233/kvkv/internal/proto"
	"github.com/abrasumente233/kvkv/internal/resp"
)

// handleFrame reads and dispatches exactly one frame, following a simple
// per-connection state machine: Idle, then either a one-shot
// handshake/read reply or the 2PC-participant sub-state-machine for a
// write.
func (s *Server) handleFrame(pc *proto.Conn, log zerolog.Logger) error {
	v, err := pc.ReadValue()
	if err != nil {
		return err
	}

	switch v.Kind {
	case proto.Handshake:
		return s.handleHandshake(pc, log, v)
	case proto.Resp:
		if resp.IsWrite(v.RespValue) {
			return s.handleWrite(pc, log, v.RespValue)
		}
		response := s.processResp(log, v.RespValue)
		return pc.WriteValue(proto.NewResp(response))
	default:
		log.Warn().Str("kind", v.Kind.String()).Msg("unexpected proto value in Idle")
		return pc.WriteValue(proto.NewResp(resp.NewError("ERROR")))
	}
}

// handleHandshake replies with the backend's previously-stored id and only
// then adopts the peer's id — and only if this backend has never been
// assigned one. Overwriting the id unconditionally on every handshake would
// drift the replica's identity on a crossed/duplicate handshake; a stable
// identity for the lifetime of the process requires adopting it once.
func (s *Server) handleHandshake(pc *proto.Conn, log zerolog.Logger, v proto.Value) error {
	reply := proto.NewHandshake(s.backend.ID)
	if err := pc.WriteValue(reply); err != nil {
		return errors.Wrap(err, "replica: write handshake reply")
	}

	if s.backend.ID == proto.Sentinel {
		log.Info().Uint32("id", v.HandshakeID).Msg("assigned replica id")
		s.backend.ID = v.HandshakeID
	}
	return nil
}

// handleWrite runs the 2PC-participant sub-state-machine for a single
// write: vote yes immediately, then await the coordinator's Decision and
// apply or discard accordingly.
func (s *Server) handleWrite(pc *proto.Conn, log zerolog.Logger, value resp.Value) error {
	if err := pc.WriteValue(proto.NewVote(true)); err != nil {
		return errors.Wrap(err, "replica: write vote")
	}
	log.Debug().Msg("voted yes")

	decision, err := pc.ReadValue()
	if err != nil {
		return errors.Wrap(err, "replica: read decision")
	}

	if decision.Kind != proto.Decision {
		return errors.Errorf("replica: protocol violation: expected Decision, got %s", decision.Kind)
	}

	if decision.DecisionYes {
		log.Debug().Msg("coordinator says commit")
		response := s.processResp(log, value)
		return pc.WriteValue(proto.NewResp(response))
	}

	log.Debug().Msg("coordinator says abort")
	return pc.WriteValue(proto.NewDecision(false))
}

func (s *Server) processResp(log zerolog.Logger, value resp.Value) resp.Value {
	cmd, err := command.FromResp(value)
	if err != nil {
		return resp.NewError("Invalid Command")
	}
	response := s.backend.Execute(cmd)
	log.Debug().Interface("command", cmd).Msg("executed command")
	return response
}
