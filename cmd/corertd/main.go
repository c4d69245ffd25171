// Command corertd runs a small admin/metrics HTTP server alongside a TCP
// echo server, both driven by the runtime's executor, to exercise the
// net adapters end-to-end outside of tests. /metrics serves the default
// Prometheus registry; the pool and timer metrics are created without a
// registerer, so they do not appear there.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/entropyrt/corert/internal/corelog"
	"github.com/entropyrt/corert/pkg/executor"
	"github.com/entropyrt/corert/pkg/timer"
)

func main() {
	adminAddr := flag.String("admin-addr", "127.0.0.1:9090", "address for the admin/metrics HTTP server")
	echoAddr := flag.String("echo-addr", "127.0.0.1:9091", "address for the TCP echo server")
	asyncWorkers := flag.Int("async-workers", 4, "async pool worker count")
	blockingWorkers := flag.Int("blocking-workers", 4, "blocking pool worker count")
	jsonLogs := flag.Bool("json-logs", false, "emit logs as JSON instead of text")
	flag.Parse()

	cfg := corelog.DefaultConfig()
	if *jsonLogs {
		cfg.Format = corelog.JSONFormat
	}
	corelog.InitGlobalLogger(cfg)
	log := corelog.GetGlobalLogger().WithComponent("corertd")

	timer.StartTimerThread()

	e, err := executor.New(*asyncWorkers, *blockingWorkers)
	if err != nil {
		log.Errorf("creating executor: %v", err)
		os.Exit(1)
	}

	echo, err := newEchoServer(e, *echoAddr)
	if err != nil {
		log.Errorf("binding echo server: %v", err)
		os.Exit(1)
	}
	echo.start()
	log.Infof("echo server listening on %s", echo.Addr())

	admin := newAdminServer(*adminAddr, e)
	go func() {
		if err := admin.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("admin server: %v", err)
		}
	}()
	log.Infof("admin server listening on %s", *adminAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = admin.Shutdown(shutdownCtx)
	echo.stop()

	if err := e.Join(); err != nil {
		log.Errorf("executor join: %v", err)
	}
}

func newAdminServer(addr string, e *executor.Executor) *http.Server {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"async_pool":%q,"blocking_pool":%q}`,
			e.AsyncPool().String(), e.BlockingPool().String())
	})
	return &http.Server{Addr: addr, Handler: r}
}
