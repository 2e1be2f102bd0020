package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print dataset change events pushed by the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint, err := websocketURL(apiBase, "/ws")
		if err != nil {
			return fmt.Errorf("ws url: %w", err)
		}

		ctx := cmd.Context()
		for {
			if err := runWebSocket(ctx, endpoint); err != nil && ctx.Err() == nil {
				log.Printf("[watch] disconnected: %v", err)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second): // reconnect
			}
		}
	},
}

// runWebSocket prints every frame from wsURL until the connection drops or
// ctx ends.
func runWebSocket(ctx context.Context, wsURL string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("[watch] connected to %s", wsURL)

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var obj map[string]any
		if err := json.Unmarshal(msg, &obj); err != nil {
			fmt.Println(string(msg))
			continue
		}
		b, _ := json.MarshalIndent(obj, "", "  ")
		fmt.Println(string(b))
	}
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}
