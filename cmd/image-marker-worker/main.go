package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/ironsheep/image-marker-mcp/internal/app"
	"github.com/ironsheep/image-marker-mcp/internal/queue"
)

var Version = "dev"

func main() {
	configPath := flag.StringP("config", "c", "", "Path to a YAML config file")
	showVersion := flag.BoolP("version", "v", false, "Print version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("image-marker-worker %s\n", Version)
		return
	}

	a, err := app.Setup(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "image-marker-worker: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	cfg := a.Config.Kafka
	if len(cfg.Brokers) == 0 {
		a.Log.Error("kafka.brokers is empty")
		a.Close()
		os.Exit(1)
	}

	w := queue.NewWorker(
		queue.NewReader(cfg.Brokers, cfg.JobsTopic, cfg.GroupID),
		queue.NewWriter(cfg.Brokers, cfg.ResultsTopic),
		a.Service,
		queue.Options{OutputDir: a.Config.Marker.OutputDir, InFlight: a.Config.Marker.Workers},
		a.Log.WithField("component", "queue"),
	)
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	a.Log.WithField("brokers", cfg.Brokers).WithField("topic", cfg.JobsTopic).Info("worker started")
	if err := w.Run(ctx); err != nil {
		a.Log.WithError(err).Error("worker stopped")
		w.Close()
		a.Close()
		os.Exit(1)
	}
	a.Log.Info("worker stopped")
}
