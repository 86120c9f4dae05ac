package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kyori-mfv/mfext/internal/logging"
)

// Health is the body of GET /health.
type Health struct {
	Status       string       `json:"status"`
	Server       string       `json:"server"`
	Port         int          `json:"port"`
	Uptime       string       `json:"uptime"`
	Memory       HealthMemory `json:"memory"`
	RSCServerURL string       `json:"rscServerUrl,omitempty"`
	Timestamp    string       `json:"timestamp"`
}

// HealthMemory reports heap figures in human readable form.
type HealthMemory struct {
	HeapUsed  string `json:"heapUsed"`
	HeapTotal string `json:"heapTotal"`
	Sys       string `json:"sys"`
}

// healthHandler reports liveness. port is read on every request so a server
// bound to port 0 reports the port it got.
func healthHandler(name string, started time.Time, port func() int, rscURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mem := logging.ReadMemory()
		h := Health{
			Status: "ok",
			Server: name,
			Port:   port(),
			Uptime: fmt.Sprintf("%ds", int(time.Since(started).Seconds())),
			Memory: HealthMemory{
				HeapUsed:  humanize.Bytes(mem.HeapUsed),
				HeapTotal: humanize.Bytes(mem.HeapTotal),
				Sys:       humanize.Bytes(mem.Sys),
			},
			RSCServerURL: rscURL,
			Timestamp:    time.Now().UTC().Format(time.RFC3339Nano),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(h)
	}
}
