package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chainsafe/faceauth-middleware/pkg/app/api"
	"github.com/chainsafe/faceauth-middleware/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadAPIServer(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := api.NewServer(cfg).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "API server stopped: %v\n", err)
		os.Exit(1)
	}
}
