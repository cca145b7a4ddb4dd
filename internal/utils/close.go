package utils

import (
	"io"

	"github.com/MrSnakeDoc/moraka/internal/logger"
)

// CloseLogged closes c during shutdown and reports the outcome under name.
// A nil closer is skipped.
func CloseLogged(c io.Closer, name string, log logger.Logger) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		log.Warn("failed to close", logger.String("component", name), logger.Error(err))
		return
	}
	log.Info("✅ closed cleanly", logger.String("component", name))
}

// CloserFunc adapts a func to io.Closer.
type CloserFunc func() error

func (f CloserFunc) Close() error { return f() }
