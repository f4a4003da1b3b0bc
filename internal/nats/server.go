// Package nats runs the embedded NATS server that backs the local journal.
// The server lives inside the CLI process: it opens no network port and
// keeps its JetStream files under the configured data directory.
package nats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/orbitfund/orbitfund/internal/logger"
)

// StartEmbeddedNATS starts an embedded NATS server with JetStream enabled,
// storing stream files in dataDir. The server accepts in-process connections
// only. Returns an error if it is not ready within four seconds.
func StartEmbeddedNATS(dataDir string) (*server.Server, error) {
	logger.Debug("Starting embedded NATS server with data dir: %s", dataDir)

	ns, err := server.NewServer(&server.Options{
		JetStream:  true,
		StoreDir:   dataDir,
		DontListen: true, // in-process only
		NoSigs:     true, // signals belong to the CLI, not the server
	})
	if err != nil {
		logger.Error("Failed to create NATS server: %v", err)
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	// Start blocks until shutdown, so it runs in the background
	go ns.Start()

	logger.Debug("Waiting for NATS server to be ready...")
	if !ns.ReadyForConnections(4 * time.Second) {
		logger.Error("NATS server failed to start within 4s timeout")
		ns.Shutdown()
		return nil, errors.New("nats server failed to start within timeout")
	}
	logger.Debug("NATS server ready for connections")
	return ns, nil
}

// ConnectInProcess creates a client connection to the embedded server. The
// connection talks to the server directly instead of over a socket.
func ConnectInProcess(ns *server.Server) (*nats.Conn, error) {
	logger.Debug("Connecting to NATS server in-process")
	conn, err := nats.Connect("", nats.InProcessServer(ns), nats.Name("orbitfund"))
	if err != nil {
		logger.Error("Failed to connect to NATS in-process: %v", err)
		return nil, fmt.Errorf("connecting in-process: %w", err)
	}
	logger.Debug("Connected to NATS successfully")
	return conn, nil
}

// Embedded bundles the running server, its connection, the JetStream context
// and the journal stream. Close releases all of them.
type Embedded struct {
	Server *server.Server
	Conn   *nats.Conn
	JS     jetstream.JetStream
	Stream jetstream.Stream
}

// Open starts the server in dataDir, connects to it and makes sure the
// journal stream exists. Anything started before a failing step is shut down
// again, so a failed Open leaves nothing running.
func Open(ctx context.Context, dataDir string) (*Embedded, error) {
	ns, err := StartEmbeddedNATS(dataDir)
	if err != nil {
		return nil, err
	}
	nc, err := ConnectInProcess(ns)
	if err != nil {
		ns.Shutdown()
		return nil, err
	}
	js, err := jetstream.New(nc)
	if err != nil {
		_ = Shutdown(nc, ns)
		return nil, fmt.Errorf("creating jetstream context: %w", err)
	}
	stream, err := SetupStream(ctx, js)
	if err != nil {
		_ = Shutdown(nc, ns)
		return nil, fmt.Errorf("setting up stream: %w", err)
	}
	logger.Debug("Journal stream %s ready", StreamName)
	return &Embedded{Server: ns, Conn: nc, JS: js, Stream: stream}, nil
}

// Close drains the connection and stops the server.
func (e *Embedded) Close() error {
	return Shutdown(e.Conn, e.Server)
}

// Shutdown stops the connection and then the server. The connection is
// drained first so published journal events are acknowledged before the
// server goes away. Each phase is bounded by a timeout so a stuck server
// never hangs the CLI on exit. Either argument may be nil.
func Shutdown(nc *nats.Conn, ns *server.Server) error {
	logger.Debug("Starting NATS shutdown")

	if nc != nil {
		logger.Debug("Draining NATS connection")
		drained := make(chan error, 1)
		go func() { drained <- nc.Drain() }()

		select {
		case err := <-drained:
			if err != nil {
				logger.Warn("NATS drain failed, forcing close: %v", err)
				nc.Close()
			} else {
				logger.Debug("NATS connection drained successfully")
			}
		case <-time.After(2 * time.Second):
			logger.Warn("NATS drain timed out after 2s, forcing close")
			nc.Close()
		}
	}

	if ns == nil {
		logger.Debug("NATS shutdown complete")
		return nil
	}
	logger.Debug("Shutting down NATS server")
	ns.Shutdown()

	// WaitForShutdown has no timeout of its own
	done := make(chan struct{})
	go func() {
		ns.WaitForShutdown()
		close(done)
	}()
	select {
	case <-done:
		logger.Debug("NATS server shut down cleanly")
		return nil
	case <-time.After(5 * time.Second):
		// there is no force-stop API; returning at least keeps the CLI from hanging
		logger.Error("NATS server shutdown timed out after 5s")
		return errors.New("nats server shutdown timed out")
	}
}
