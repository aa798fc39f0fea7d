// Package logging provides the contextualized zerolog loggers used across
// the module.  Output destination and level are left to the embedding
// application via zerolog's global logger.
package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// GetLogger returns a logger tagged with the given component name.
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
