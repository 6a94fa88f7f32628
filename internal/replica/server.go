// Package replica implements the replica side of kvkv: it accepts
// connections from a master, runs the handshake, and serves each
// connection's requests — including acting as a two-phase-commit
// participant for writes — one frame at a time.
package replica

import (
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/abrasumente233/kvkv/internal/backend"
	"github.com/abrasumente233/kvkv/internal/proto"
	"github.com/abrasumente233/kvkv/internal/store"
)

// shutdownDrainTimeout bounds how long Close waits for the master's live
// connection to finish its in-flight frame before force-closing it.
const shutdownDrainTimeout = 5 * time.Second

// Server listens for master connections and dispatches each accepted
// socket to a single backend. The backend's identity starts at the
// sentinel value and is assigned on first handshake.
type Server struct {
	Addr    string
	Log     zerolog.Logger
	backend *backend.Backend

	// conns and connWG track live master connections so Close can drain
	// them before returning, rather than leaving handleSocket goroutines
	// to exit on their own time after the listener is closed.
	conns     sync.Map
	connWG    sync.WaitGroup
	closeOnce sync.Once
}

func NewServer(addr string, log zerolog.Logger) *Server {
	return &Server{
		Addr: addr,
		Log:  log,
		backend: &backend.Backend{
			ID:    proto.Sentinel,
			Store: store.NewMapStore(),
		},
	}
}

// Run serves connections accepted on ln, which the caller has already bound
// to Addr, until the listener errors or the process is asked to stop
// (closing ln from another goroutine).
func (s *Server) Run(ln net.Listener) error {
	s.Log.Info().Str("addr", s.Addr).Msg("replica listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.handleSocket(conn)
	}
}

// Close waits for live master connections to drain (force-closing whatever
// is still open after shutdownDrainTimeout), mirroring the master's own
// bounded-drain shutdown so a replica never tears down a connection out
// from under a frame still being handled.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		drained := make(chan struct{})
		go func() {
			s.connWG.Wait()
			close(drained)
		}()

		select {
		case <-drained:
		case <-time.After(shutdownDrainTimeout):
			s.Log.Warn().Msg("connection drain timed out, forcing connections closed")
			s.conns.Range(func(_, v interface{}) bool {
				if conn, ok := v.(net.Conn); ok {
					conn.Close()
				}
				return true
			})
			<-drained
		}
	})
}

// handleSocket serves one accepted connection to completion. Connections
// are handled one at a time per socket (serial per-connection) —
// concurrency comes from accepting multiple sockets, not from
// interleaving frames within one.
func (s *Server) handleSocket(conn net.Conn) {
	defer conn.Close()

	connID := conn.RemoteAddr().String()
	s.connWG.Add(1)
	s.conns.Store(connID, conn)
	defer func() {
		s.conns.Delete(connID)
		s.connWG.Done()
	}()

	connLog := s.Log.With().Str("remote", connID).Logger()
	pc := proto.NewConn(conn)

	for {
		if err := s.handleFrame(pc, connLog); err != nil {
			connLog.Info().Err(err).Msg("replica connection closed")
			return
		}
	}
}
