// Package device provides the stable per-install identifier attached to
// sessions for diagnostics. It is an opaque string; no coordination or
// locking logic is ever built on top of it.
package device

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LoadOrCreateID returns this install's device id, generating and
// persisting one on first run.
func LoadOrCreateID(dataDir, filename string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}

	path := filepath.Join(dataDir, filename)
	data, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if id != "" {
			return id, nil
		}
	}

	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}

	log.Info().Str("deviceId", id).Msg("generated device identity")
	return id, nil
}
