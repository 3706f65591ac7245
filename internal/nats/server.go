package nats

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/storelaunch/internal/logger"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	readyTimeout    = 4 * time.Second
	drainTimeout    = 2 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Embedded is an in-process JetStream server holding the activity stream.
// It opens no network ports and traps no signals.
type Embedded struct {
	Server *server.Server
	Conn   *nats.Conn
	JS     jetstream.JetStream
	Stream jetstream.Stream

	dir string
}

// Start boots the server in a fresh temp dir, connects to it in-process
// and sets up the activity stream. Failed async publishes are logged.
func Start(ctx context.Context) (*Embedded, error) {
	dir, err := os.MkdirTemp("", "storelaunch-nats-")
	if err != nil {
		return nil, fmt.Errorf("failed to create nats store dir: %w", err)
	}
	e := &Embedded{dir: dir}

	if e.Server, err = startServer(dir); err != nil {
		e.Close()
		return nil, err
	}

	e.Conn, err = nats.Connect("", nats.InProcessServer(e.Server))
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to connect to nats in-process: %w", err)
	}

	e.JS, err = jetstream.New(e.Conn, jetstream.WithPublishAsyncErrHandler(
		func(_ jetstream.JetStream, msg *nats.Msg, err error) {
			logger.Warn("Dropping event on %s: %v", msg.Subject, err)
		},
	))
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}

	if e.Stream, err = SetupStream(ctx, e.JS); err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to set up activity stream: %w", err)
	}

	logger.Debug("Embedded NATS ready (store dir %q)", dir)
	return e, nil
}

// startServer runs a JetStream-enabled server rooted at dir and waits for
// it to accept connections.
func startServer(dir string) (*server.Server, error) {
	ns, err := server.NewServer(&server.Options{
		JetStream:  true,
		StoreDir:   dir,
		DontListen: true,
		NoSigs:     true,
		NoLog:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create nats server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(readyTimeout) {
		ns.Shutdown()
		return nil, fmt.Errorf("nats server not ready after %s", readyTimeout)
	}
	return ns, nil
}

// Close drains the connection, stops the server and removes the store dir.
// Each wait is bounded so a wedged connection cannot hang process exit.
// Close is safe to call more than once.
func (e *Embedded) Close() error {
	var err error
	if e.Conn != nil {
		drain(e.Conn)
		e.Conn = nil
	}
	if e.Server != nil {
		err = stop(e.Server)
		e.Server = nil
	}
	if e.dir != "" {
		os.RemoveAll(e.dir)
		e.dir = ""
	}
	return err
}

func drain(nc *nats.Conn) {
	done := make(chan error, 1)
	go func() { done <- nc.Drain() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Warn("NATS drain failed, forcing close: %v", err)
			nc.Close()
		}
	case <-time.After(drainTimeout):
		logger.Warn("NATS drain timed out after %s, forcing close", drainTimeout)
		nc.Close()
	}
}

func stop(ns *server.Server) error {
	ns.Shutdown()

	done := make(chan struct{})
	go func() {
		ns.WaitForShutdown()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(shutdownTimeout):
		return errors.New("nats server shutdown timed out")
	}
}
