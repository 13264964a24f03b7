package telemetry

import (
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"tldrscope/internal/domain"
)

// WriteTextfile dumps the registry in the node_exporter textfile format.
// An empty path is a no-op.
func WriteTextfile(path string, gatherer prometheus.Gatherer) error {
	if path == "" || gatherer == nil {
		return nil
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return domain.E(domain.CodeInternal, "telemetry.textfile", "create metrics directory", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return domain.E(domain.CodeInternal, "telemetry.textfile", "write metrics textfile", err)
	}
	return nil
}
