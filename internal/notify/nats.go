package notify

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/grimkor/fs-log-parser/internal/config"
	"github.com/grimkor/fs-log-parser/internal/domain"
)

// NATS publishes updates on a NATS subject per update kind, so overlay
// clients can subscribe without holding a WebSocket to the HTTP API. With
// cfg.Embed an in-process server is started and torn down with the sink.
type NATS struct {
	conn   *nats.Conn
	srv    *server.Server
	prefix string
}

// NewNATS connects (or embeds) the notification bus
func NewNATS(cfg config.NATSConfig) (*NATS, error) {
	url := cfg.URL
	var srv *server.Server

	if cfg.Embed {
		opts := &server.Options{
			Host:   "127.0.0.1",
			Port:   cfg.Port,
			NoSigs: true,
			NoLog:  true,
		}
		s, err := server.NewServer(opts)
		if err != nil {
			return nil, fmt.Errorf("creating embedded nats server: %w", err)
		}
		go s.Start()
		if !s.ReadyForConnections(5 * time.Second) {
			s.Shutdown()
			return nil, fmt.Errorf("embedded nats server not ready")
		}
		srv = s
		url = s.ClientURL()
	}
	if url == "" {
		url = nats.DefaultURL
	}

	conn, err := nats.Connect(url, nats.Name("fslog"), nats.MaxReconnects(-1))
	if err != nil {
		if srv != nil {
			srv.Shutdown()
		}
		return nil, fmt.Errorf("connecting to nats at %s: %w", url, err)
	}

	return &NATS{conn: conn, srv: srv, prefix: cfg.SubjectPrefix}, nil
}

// Publish implements Sink
func (n *NATS) Publish(update interface{}) {
	var subject string
	switch update.(type) {
	case domain.PlayerUpdate:
		subject = n.prefix + ".player"
	case domain.RankUpdate:
		subject = n.prefix + ".rank"
	case domain.LiveResult:
		subject = n.prefix + ".result"
	default:
		return
	}

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling update: %v", err)
		return
	}
	if err := n.conn.Publish(subject, data); err != nil {
		log.Printf("NATS publish to %s failed: %v", subject, err)
	}
}

// Close drains the connection and stops the embedded server if any
func (n *NATS) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
	if n.srv != nil {
		n.srv.Shutdown()
	}
}
