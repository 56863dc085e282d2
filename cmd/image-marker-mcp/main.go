package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/ironsheep/image-marker-mcp/internal/app"
	"github.com/ironsheep/image-marker-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.StringP("config", "c", "", "Path to a YAML config file (default ./config/config.yaml when present)")
	showVersion := flag.BoolP("version", "v", false, "Print version information")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "image-marker-mcp - MCP server for marking images with text and images")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Usage: image-marker-mcp [options]")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Options:")
		flag.PrintDefaults()
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Environment variables:")
		fmt.Fprintln(os.Stderr, "  IMAGE_MARKER_LOG_LEVEL=debug          Enable debug logging")
		fmt.Fprintln(os.Stderr, "  IMAGE_MARKER_MARKER_OUTPUT_DIR=<dir>  Where results are written")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "This server communicates via MCP protocol over stdin/stdout.")
		fmt.Fprintln(os.Stderr, "Configure it in your MCP client (e.g., Claude Desktop).")
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("image-marker-mcp %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}

	// Logging goes to stderr; stdout is for MCP protocol
	a, err := app.Setup(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "image-marker-mcp: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Log.Debugf("Image Marker MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)

	srv := server.New(a.Service, a.Config.Marker.OutputDir, a.Log)
	if err := srv.Run(); err != nil {
		a.Log.WithError(err).Error("server error")
		a.Close()
		os.Exit(1)
	}
}
