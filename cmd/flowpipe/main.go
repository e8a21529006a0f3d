// flowpipe runs the Flow Scoring Pipeline's cooperative polling loop
// (§5): promote staged captures, convert them to flow features, score
// them, route benign/suspicious rows, and trigger incremental
// retraining. It serves Prometheus metrics alongside the loop and
// shuts the scheduler down cleanly on SIGINT/SIGTERM.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gigersam/nidspipe/internal/config"
	"github.com/gigersam/nidspipe/internal/minilog"
	"github.com/gigersam/nidspipe/internal/pipeline"
)

var metricsAddr = flag.String("metrics-addr", ":9090", "address to serve /metrics on")

func usage() {
	fmt.Fprintln(os.Stderr, "usage: flowpipe run")
	flag.PrintDefaults()
}

func main() {
	fs := flag.NewFlagSet("flowpipe", flag.ExitOnError)
	p := config.FlagSet(fs)
	fs.StringVar(metricsAddr, "metrics-addr", *metricsAddr, "address to serve /metrics on")
	fs.Usage = usage
	fs.Parse(os.Args[1:])
	minilog.Init()

	args := fs.Args()
	if len(args) != 1 || args[0] != "run" {
		usage()
		os.Exit(1)
	}

	if err := p.Validate(); err != nil {
		minilog.Error("flowpipe: %v", err)
		os.Exit(2)
	}

	fsp, err := pipeline.New(p)
	if err != nil {
		minilog.Error("flowpipe: %v", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: *metricsAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			minilog.Error("flowpipe: metrics server: %v", err)
		}
	}()

	stop := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		minilog.Info("flowpipe: signal received, shutting down")
		close(stop)
	}()

	runErr := fsp.Run(stop)
	srv.Close()
	if runErr != nil {
		minilog.Error("flowpipe: %v", runErr)
		os.Exit(1)
	}
}
