package resp

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// kindNames gives Value's JSON wire representation a self-describing tag,
// the same "type" tag field proto.Value uses for its own variants.
var kindNames = map[Kind]string{
	SimpleString: "simple",
	Error:        "error",
	Integer:      "integer",
	BulkString:   "bulk",
	Array:        "array",
}

var nameKinds = map[string]Kind{
	"simple":  SimpleString,
	"error":   Error,
	"integer": Integer,
	"bulk":    BulkString,
	"array":   Array,
}

type wireValue struct {
	Type  string  `json:"type"`
	Str   string  `json:"str,omitempty"`
	Int   int64   `json:"int,omitempty"`
	Items []Value `json:"items,omitempty"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	name, ok := kindNames[v.Kind]
	if !ok {
		return nil, errors.Errorf("resp: unknown value kind %d", v.Kind)
	}
	w := wireValue{Type: name, Str: v.Str, Int: v.Int, Items: v.Items}
	return json.Marshal(w)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return errors.Wrap(err, "resp: unmarshal value")
	}
	kind, ok := nameKinds[w.Type]
	if !ok {
		return errors.Errorf("resp: unknown wire type %q", w.Type)
	}
	v.Kind = kind
	v.Str = w.Str
	v.Int = w.Int
	v.Items = w.Items
	return nil
}
