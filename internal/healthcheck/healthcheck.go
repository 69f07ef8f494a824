package healthcheck

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

type Server struct {
	port    int
	metrics http.Handler
}

// NewServer serves /health-check and, when metrics is not nil, /metrics.
func NewServer(port int, metrics http.Handler) *Server {
	return &Server{port: port, metrics: metrics}
}

func (hs *Server) handle(w http.ResponseWriter, r *http.Request) {
	select {
	case <-r.Context().Done():
		w.WriteHeader(http.StatusServiceUnavailable)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (hs *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health-check", hs.handle)
	if hs.metrics != nil {
		mux.Handle("/metrics", hs.metrics)
	}

	return mux
}

func (hs *Server) ListenAndServe(ctx context.Context) error {
	baseContextFunc := func(_ net.Listener) context.Context {
		return ctx
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", hs.port),
		BaseContext:       baseContextFunc,
		Handler:           hs.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		_ = srv.ListenAndServe()
	}()

	<-ctx.Done()

	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutDown); err != nil {
		return fmt.Errorf("server shutdown failed:%v", err)
	}

	return nil
}
