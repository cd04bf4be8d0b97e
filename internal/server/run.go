package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds graceful shutdown after ctx is cancelled.
const ShutdownTimeout = 5 * time.Second

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
// With watch set, the graph file is reloaded when it changes.
func (s *Server) Run(ctx context.Context, addr string, watch bool) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, watch)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, watch bool) error {
	var w *Watcher
	if watch {
		var err error
		if w, err = NewWatcher(s.Snapshot().Path, DefaultDebounce); err != nil {
			ln.Close()
			return err
		}
		defer w.Close()
	}

	srv := newHTTPServer(ln.Addr().String(), s.Handler())
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("serving", "addr", ln.Addr().String(), "watch", watch)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if w != nil {
		g.Go(func() error {
			return w.Run(gctx, func() {
				if err := s.Reload(gctx); err != nil {
					s.logger.Error("reload failed, keeping previous graph", "err", err)
				}
			})
		})
	}

	return g.Wait()
}
