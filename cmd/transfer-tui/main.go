package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zenobia-pay/client/internal/app"
	"github.com/zenobia-pay/client/internal/config"
	"github.com/zenobia-pay/client/internal/track"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	host := flag.String("host", "", "Override status service host")
	insecure := flag.Bool("insecure", false, "Use ws:// instead of wss://")
	endpoint := flag.String("endpoint", "", "Override create-transfer endpoint")
	transferID := flag.String("transfer", "", "Resume tracking an existing transfer id")
	signature := flag.String("signature", "", "Signature for -transfer")
	amount := flag.Int64("amount", 0, "Amount (minor units) for a new transfer")
	statement := flag.String("statement", "", "Statement line for a new transfer, e.g. \"Coffee:1000\"")
	qrPath := flag.String("qr", "", "Write the transfer's QR code PNG to this path")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fatalf("load config: %v", err)
	}
	if *host != "" {
		cfg.Tracker.StatusHost = *host
	}
	if *insecure {
		cfg.Tracker.Secure = false
	}
	if *endpoint != "" {
		cfg.Tracker.CreateEndpoint = *endpoint
	}

	session := track.NewSession(cfg.Tracker.TrackConfig())

	id, sig := *transferID, *signature
	if id == "" {
		if *amount <= 0 {
			fatalf("either -transfer/-signature or -amount is required")
		}
		transfer, err := createTransfer(cfg.Tracker.CreateEndpoint, *amount, *statement)
		if err != nil {
			fatalf("create transfer: %v", err)
		}
		id, sig = transfer.TransferRequestID, transfer.Signature
		if *qrPath != "" {
			png, err := transfer.QR(512)
			if err != nil {
				fatalf("render QR: %v", err)
			}
			if err := os.WriteFile(*qrPath, png, 0644); err != nil {
				fatalf("write QR: %v", err)
			}
		}
	} else if sig == "" {
		fatalf("-signature is required with -transfer")
	}

	p := tea.NewProgram(app.New(session, id, sig), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fatalf("%v", err)
	}
}

func createTransfer(endpoint string, amount int64, statement string) (*track.Transfer, error) {
	req := track.CreateRequest{Amount: amount}
	if statement != "" {
		name, lineAmount := statement, amount
		if i := strings.LastIndex(statement, ":"); i > 0 {
			name = statement[:i]
			if _, err := fmt.Sscanf(statement[i+1:], "%d", &lineAmount); err != nil {
				return nil, fmt.Errorf("bad statement line %q", statement)
			}
		}
		req.Statement = []track.StatementItem{{Name: name, Amount: lineAmount, Quantity: 1}}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return track.CreateTransfer(ctx, endpoint, req)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
