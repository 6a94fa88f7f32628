package master

import (
	"net"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abrasumente233/kvkv/internal/resp"
)

// ListenAndServe accepts client connections on ln and serves each with its
// own goroutine: reads frames, hands them to the coordinator via Enqueue,
// writes back whatever it returns. Client requests on a single connection
// are served in order, since Enqueue blocks for its own reply before the
// connection's goroutine reads the next frame.
func ListenAndServe(ln net.Listener, m *Master, log zerolog.Logger) error {
	log.Info().Str("addr", ln.Addr().String()).Msg("master listening for clients")
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go serveClient(conn, m, log)
	}
}

func serveClient(conn net.Conn, m *Master, log zerolog.Logger) {
	defer conn.Close()

	connID := uuid.NewString()
	untrack := m.trackClient(connID, conn)
	defer untrack()

	connLog := log.With().Str("conn_id", connID).Str("remote", conn.RemoteAddr().String()).Logger()

	fr := resp.NewFrameReader(conn)
	for {
		v, err := fr.ReadValue()
		if err != nil {
			connLog.Debug().Err(err).Msg("client connection closed")
			return
		}

		response := m.Enqueue(v)

		if _, err := conn.Write(resp.Encode(response)); err != nil {
			connLog.Debug().Err(err).Msg("failed writing reply to client")
			return
		}
	}
}
