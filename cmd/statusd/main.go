package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/zenobia-pay/client/internal/config"
	"github.com/zenobia-pay/client/internal/statusd"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	port := flag.Int("port", 0, "Override listen port")
	dropAfter := flag.Int("drop-after", 0, "Abnormally drop each stream after N status frames (fault injection)")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port > 0 {
		cfg.Statusd.Port = *port
	}
	if *dropAfter > 0 {
		cfg.Statusd.DropAfter = *dropAfter
	}

	store := statusd.NewStore()
	server := statusd.NewServer(cfg.Statusd, store)

	mux := http.NewServeMux()
	server.SetupRoutes(mux)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		os.Exit(0)
	}()

	if err := statusd.ListenAndServe(cfg.Statusd.Host, cfg.Statusd.Port, mux); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
