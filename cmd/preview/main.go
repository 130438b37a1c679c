// Command preview serves a local export of the web console the way the CDN
// does, so end-to-end browser suites can run against a build before deploy.
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
	logging "github.com/ipfs/go-log/v2"

	"approvals-web/origin"
)

var log = logging.Logger("approvals-web/preview")

func main() {
	dir := flag.String("dir", "out", "directory holding the static export")
	addr := flag.String("addr", "127.0.0.1:3000", "listen address")
	notFound := flag.String("not-found", origin.DefaultNotFoundKey, "page served for missing objects, empty to disable")
	logLevel := flag.String("log-level", origin.DefaultLogLevel, "log level")
	flag.Parse()

	if err := logging.SetLogLevel("*", *logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level %q: %s\n", *logLevel, err)
		os.Exit(2)
	}

	info, err := os.Stat(*dir)
	if err != nil || !info.IsDir() {
		fmt.Fprintf(os.Stderr, "export directory %q not found\n", *dir)
		os.Exit(1)
	}

	cfg := origin.DefaultConfig()
	cfg.NotFoundKey = *notFound
	cfg.CacheControl = "no-store"

	srv := &http.Server{
		Addr:              *addr,
		Handler:           newRouter(origin.NewHandler(origin.NewDirStore(os.DirFS(*dir)), cfg)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infow("serving export", "dir", *dir, "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("listening", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("shutting down", "error", err)
	}
}

func newRouter(site http.Handler) http.Handler {
	r := mux.NewRouter().SkipClean(true)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.PathPrefix("/").Handler(site)
	return r
}
