package proto

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/abrasumente233/kvkv/internal/resp"
)

var kindNames = map[Kind]string{
	Handshake: "handshake",
	Resp:      "resp",
	Vote:      "vote",
	Decision:  "decision",
	Replicate: "replicate",
}

var nameKinds = map[string]Kind{
	"handshake": Handshake,
	"resp":      Resp,
	"vote":      Vote,
	"decision":  Decision,
	"replicate": Replicate,
}

type wireValue struct {
	Type        string            `json:"type"`
	HandshakeID *uint32           `json:"handshake_id,omitempty"`
	Resp        *resp.Value       `json:"resp,omitempty"`
	Vote        *bool             `json:"vote,omitempty"`
	Decision    *bool             `json:"decision,omitempty"`
	Snapshot    map[string]string `json:"snapshot,omitempty"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	name, ok := kindNames[v.Kind]
	if !ok {
		return nil, errors.Errorf("proto: unknown value kind %d", v.Kind)
	}

	w := wireValue{Type: name}
	switch v.Kind {
	case Handshake:
		id := v.HandshakeID
		w.HandshakeID = &id
	case Resp:
		w.Resp = &v.RespValue
	case Vote:
		yes := v.VoteYes
		w.Vote = &yes
	case Decision:
		yes := v.DecisionYes
		w.Decision = &yes
	case Replicate:
		w.Snapshot = v.Snapshot
	}
	return json.Marshal(w)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return errors.Wrap(err, "proto: unmarshal value")
	}
	kind, ok := nameKinds[w.Type]
	if !ok {
		return errors.Errorf("proto: unknown wire type %q", w.Type)
	}

	*v = Value{Kind: kind}
	switch kind {
	case Handshake:
		if w.HandshakeID == nil {
			return errors.New("proto: handshake missing id")
		}
		v.HandshakeID = *w.HandshakeID
	case Resp:
		if w.Resp == nil {
			return errors.New("proto: resp missing value")
		}
		v.RespValue = *w.Resp
	case Vote:
		if w.Vote == nil {
			return errors.New("proto: vote missing bool")
		}
		v.VoteYes = *w.Vote
	case Decision:
		if w.Decision == nil {
			return errors.New("proto: decision missing bool")
		}
		v.DecisionYes = *w.Decision
	case Replicate:
		v.Snapshot = w.Snapshot
	}
	return nil
}
