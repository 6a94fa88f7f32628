// Package backend applies a decoded Command to a store.Store and produces
// the RESP reply. No command is ever refused here; malformed input is
// rejected earlier by the command package.
package backend

import (
	"github.com/abrasumente233/kvkv/internal/command"
	"github.com/abrasumente233/kvkv/internal/resp"
	"github.com/abrasumente233/kvkv/internal/store"
)

// Backend pairs a replica's identity with its store. The identity starts at
// proto.Sentinel and is overwritten exactly once, on first handshake.
type Backend struct {
	ID    uint32
	Store store.Store
}

// Execute applies cmd and returns the RESP value to send back to the
// caller.
func (b *Backend) Execute(cmd command.Command) resp.Value {
	switch cmd.Kind {
	case command.Get:
		return b.get(cmd.Key)
	case command.Set:
		return b.set(cmd.Key, cmd.Value)
	case command.Del:
		return b.del(cmd.Keys)
	default:
		return resp.NewError("ERROR")
	}
}

func (b *Backend) get(key string) resp.Value {
	v, ok := b.Store.Get(key)
	if !ok {
		return resp.BulkStrings("nil")
	}
	return resp.BulkStrings(v)
}

func (b *Backend) set(key, value string) resp.Value {
	b.Store.Put(key, value)
	return resp.NewSimpleString("OK")
}

func (b *Backend) del(keys []string) resp.Value {
	var deleted int64
	for _, k := range keys {
		if b.Store.Del(k) {
			deleted++
		}
	}
	return resp.NewInteger(deleted)
}
