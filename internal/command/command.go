// Package command decodes a RESP value into one of the three supported
// verbs, classifying anything else as invalid.
package command

import (
	"github.com/pkg/errors"

	"github.com/abrasumente233/kvkv/internal/resp"
)

type Kind int

const (
	Get Kind = iota
	Set
	Del
)

// Command is the decoded shape of a client request: Get(key), Set(key,
// value), or Del(keys...).
type Command struct {
	Kind  Kind
	Key   string
	Value string
	Keys  []string
}

// ErrInvalidCommand is returned for any RespValue that is not an Array with
// a recognized verb and correct arity.
var ErrInvalidCommand = errors.New("command: invalid command")

// FromResp decodes v into a Command. v must be an Array whose first element
// is a BulkString verb in {GET, SET, DEL} (case-sensitive, uppercase); any
// other shape yields ErrInvalidCommand. GET requires exactly one further
// bulk string, SET requires two, DEL requires one or more.
func FromResp(v resp.Value) (Command, error) {
	if v.Kind != resp.Array || len(v.Items) == 0 {
		return Command{}, ErrInvalidCommand
	}

	verb := v.Items[0]
	if verb.Kind != resp.BulkString {
		return Command{}, ErrInvalidCommand
	}

	args := v.Items[1:]
	switch verb.Str {
	case "GET":
		return getCommand(args)
	case "SET":
		return setCommand(args)
	case "DEL":
		return delCommand(args)
	default:
		return Command{}, ErrInvalidCommand
	}
}

func bulkStr(v resp.Value) (string, bool) {
	if v.Kind != resp.BulkString {
		return "", false
	}
	return v.Str, true
}

func getCommand(args []resp.Value) (Command, error) {
	if len(args) != 1 {
		return Command{}, ErrInvalidCommand
	}
	key, ok := bulkStr(args[0])
	if !ok {
		return Command{}, ErrInvalidCommand
	}
	return Command{Kind: Get, Key: key}, nil
}

func setCommand(args []resp.Value) (Command, error) {
	if len(args) != 2 {
		return Command{}, ErrInvalidCommand
	}
	key, ok := bulkStr(args[0])
	if !ok {
		return Command{}, ErrInvalidCommand
	}
	value, ok := bulkStr(args[1])
	if !ok {
		return Command{}, ErrInvalidCommand
	}
	return Command{Kind: Set, Key: key, Value: value}, nil
}

func delCommand(args []resp.Value) (Command, error) {
	if len(args) == 0 {
		return Command{}, ErrInvalidCommand
	}
	keys := make([]string, len(args))
	for i, a := range args {
		k, ok := bulkStr(a)
		if !ok {
			return Command{}, ErrInvalidCommand
		}
		keys[i] = k
	}
	return Command{Kind: Del, Keys: keys}, nil
}
