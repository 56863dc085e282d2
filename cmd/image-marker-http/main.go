package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/ironsheep/image-marker-mcp/internal/app"
	"github.com/ironsheep/image-marker-mcp/internal/httpapi"
)

var Version = "dev"

func main() {
	configPath := flag.StringP("config", "c", "", "Path to a YAML config file")
	showVersion := flag.BoolP("version", "v", false, "Print version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("image-marker-http %s\n", Version)
		return
	}

	a, err := app.Setup(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "image-marker-http: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	cfg := a.Config.HTTP
	handler := httpapi.NewHandler(a.Service, a.Config.Marker.OutputDir)
	srv := httpapi.NewServer(cfg.Addr, httpapi.InitRoutes(handler, cfg.Mode, a.Log), cfg.ReadTimeout, cfg.WriteTimeout, a.Log)

	errc := make(chan error, 1)
	go func() { errc <- srv.Run() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-errc:
		if err != nil {
			a.Log.WithError(err).Error("http server failed")
			a.Close()
			os.Exit(1)
		}
	case <-quit:
		a.Log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.Log.WithError(err).Error("shutdown failed")
		}
	}
}
