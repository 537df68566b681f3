// Healthcheck probe for the grading service container. Exits 0 when the
// health endpoint answers 200, 1 otherwise.
package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"
)

const (
	defaultAddr  = "127.0.0.1:8080"
	probeTimeout = 2 * time.Second
)

func main() {
	os.Exit(check())
}

func check() int {
	addr := loopbackAddr(os.Getenv("LABGRADER_LISTEN_ADDR"))

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/api/v1/health", nil)
	if err != nil {
		return 1
	}

	client := &http.Client{Timeout: probeTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return 1
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 1
	}

	return 0
}

// loopbackAddr rewrites the configured listen address so the probe connects
// over loopback. The server binds 0.0.0.0 inside the container but the probe
// runs in the same network namespace.
func loopbackAddr(raw string) string {
	if raw == "" {
		return defaultAddr
	}

	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return defaultAddr
	}

	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}

	return net.JoinHostPort(host, port)
}
