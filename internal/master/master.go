// Package master implements the master side of kvkv: it accepts client
// RESP connections, fans them in to a single coordinator goroutine, and
// drives either round-robin read scheduling or a two-phase commit across
// replicas for writes.
package master

import (
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/abrasumente233/kvkv/internal/resp"
)

// shutdownDrainTimeout bounds how long Close waits for live client
// connections to finish their in-flight request before force-closing them.
const shutdownDrainTimeout = 5 * time.Second

// request pairs a client's RESP value with a one-shot reply channel — a
// message carrying its own reply path, rather than a callback or a
// future registry keyed by request id.
type request struct {
	value resp.Value
	reply chan resp.Value
}

// Master owns the full replica list and their connections; it is the only
// goroutine that ever reads or writes a replica connection, and the only
// one that ever mutates replica status.
type Master struct {
	replicas  []*replicaConn
	inbox     chan request
	nextSched uint32
	written   bool

	phaseTimeout      time.Duration
	reconnectInterval time.Duration

	// clients, clientWG, and done track live client connections so Close
	// can drain them before the inbox is closed, rather than racing an
	// in-flight Enqueue send against close(m.inbox). clients is keyed by
	// a connection id so a timed-out drain can force-close whatever is
	// still open.
	clients   sync.Map
	clientWG  sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
	// sendMu is held for reading around every inbox send and for writing
	// around close(m.inbox), so no send can ever hit a closed inbox.
	sendMu sync.RWMutex

	log zerolog.Logger
}

// NewMaster builds a Master from a configured, ordered replica address
// list. Replica ids are stable for the process lifetime: id equals
// position in this list.
func NewMaster(replicaAddrs []string, phaseTimeout, reconnectInterval time.Duration, log zerolog.Logger) *Master {
	replicas := make([]*replicaConn, len(replicaAddrs))
	for i, addr := range replicaAddrs {
		replicas[i] = &replicaConn{id: uint32(i), addr: addr, status: Offline}
	}
	return &Master{
		replicas:          replicas,
		inbox:             make(chan request, 16),
		phaseTimeout:      phaseTimeout,
		reconnectInterval: reconnectInterval,
		done:              make(chan struct{}),
		log:               log,
	}
}

// Run connects to every configured replica, then serves fan-in requests one
// at a time until the inbox is closed. The coordinator is strictly serial:
// one in-flight request at a time across the whole cluster.
func (m *Master) Run() error {
	if err := m.connectAll(); err != nil {
		return err
	}

	m.log.Info().Msg("accepting RESP messages")
	for req := range m.inbox {
		req.reply <- m.handle(req.value)
	}

	m.log.Info().Msg("shutting down master")
	return nil
}

// Enqueue submits a client's RESP value to the coordinator and blocks for
// its reply. Called from each client connection's own goroutine; the
// bounded inbox (capacity 16) is the only cross-task communication the
// master has, giving natural backpressure when the coordinator lags.
//
// The send is raced against done rather than sent unconditionally, so a
// client request arriving after Close has started never sends on an inbox
// that Close is about to close.
func (m *Master) Enqueue(v resp.Value) resp.Value {
	reply := make(chan resp.Value, 1)
	m.sendMu.RLock()
	select {
	case <-m.done:
		m.sendMu.RUnlock()
		return resp.NewError("ERROR")
	default:
	}
	select {
	case m.inbox <- request{value: v, reply: reply}:
	case <-m.done:
		m.sendMu.RUnlock()
		return resp.NewError("ERROR")
	}
	m.sendMu.RUnlock()
	return <-reply
}

// trackClient registers a live client connection under id so Close can
// force-close it if the drain below times out, and returns a func to
// unregister it. Called from each client connection's own goroutine.
func (m *Master) trackClient(id string, conn net.Conn) (untrack func()) {
	m.clientWG.Add(1)
	m.clients.Store(id, conn)
	return func() {
		m.clients.Delete(id)
		m.clientWG.Done()
	}
}

// Close signals every in-flight Enqueue to stop, waits for live client
// connections to drain (force-closing whatever is still open after
// shutdownDrainTimeout), and only then closes the inbox so Run can return.
// This ordering is what keeps a client's in-flight "m.inbox <- request{}"
// send from ever racing the inbox's close.
func (m *Master) Close() {
	m.closeOnce.Do(func() {
		close(m.done)

		drained := make(chan struct{})
		go func() {
			m.clientWG.Wait()
			close(drained)
		}()

		select {
		case <-drained:
		case <-time.After(shutdownDrainTimeout):
			m.log.Warn().Msg("client drain timed out, forcing connections closed")
			m.clients.Range(func(_, v interface{}) bool {
				if conn, ok := v.(net.Conn); ok {
					conn.Close()
				}
				return true
			})
			<-drained
		}

		m.sendMu.Lock()
		close(m.inbox)
		m.sendMu.Unlock()
	})
}

func (m *Master) handle(v resp.Value) resp.Value {
	if resp.IsWrite(v) {
		return m.doWrite(v)
	}
	return m.doRead(v)
}

func (m *Master) doRead(v resp.Value) resp.Value {
	r := m.scheduleNext()
	if r == nil {
		m.log.Warn().Msg("no replica available")
		return resp.NewError("ERROR")
	}

	m.log.Debug().Uint32("replica_id", r.id).Msg("scheduling read")
	response, err := m.askReplica(r, v)
	if err != nil {
		m.demote(r, err)
		return resp.NewError("ERROR")
	}
	return response
}
