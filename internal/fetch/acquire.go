package fetch

import (
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/page-audit/auditor/internal/config"
)

var chromiumCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
}

// NewAcquirer builds the acquirer the configuration asks for. In auto mode
// the renderer is used when a Chromium binary can be found, plain HTTP
// otherwise.
func NewAcquirer(cfg *config.Config, log *slog.Logger) (Acquirer, error) {
	if log == nil {
		log = slog.Default()
	}

	switch cfg.AcquireMode {
	case config.AcquireHTTP:
		return NewFetcher(cfg), nil
	case config.AcquireRender:
		return NewRenderer(cfg)
	case config.AcquireAuto:
		if chromiumAvailable(cfg) {
			return NewRenderer(cfg)
		}
		log.Info("no chromium binary found, falling back to plain http acquisition")
		return NewFetcher(cfg), nil
	default:
		return nil, fmt.Errorf("unknown acquire mode: %q", cfg.AcquireMode)
	}
}

func chromiumAvailable(cfg *config.Config) bool {
	if cfg.ChromiumPath != "" {
		if _, err := exec.LookPath(cfg.ChromiumPath); err == nil {
			return true
		}
		return false
	}
	for _, name := range chromiumCandidates {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}
