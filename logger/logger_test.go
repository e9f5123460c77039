package logger_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/zksonic/sonic/logger"
)

func TestLogger(t *testing.T) {
	defer logger.Disable()

	t.Run("EventChain", func(t *testing.T) {
		var buf bytes.Buffer
		logger.Set(zerolog.New(&buf))

		log := logger.Logger()
		log.Info().Int("n", 4).Msg("preprocessed circuit")

		assert.Contains(t, buf.String(), "preprocessed circuit")
		assert.Contains(t, buf.String(), `"n":4`)
	})

	t.Run("Disable", func(t *testing.T) {
		var buf bytes.Buffer
		logger.Set(zerolog.New(&buf))
		logger.Disable()

		log := logger.Logger()
		log.Info().Msg("dropped")

		assert.Empty(t, buf.String())
	})

	t.Run("SetOutput", func(t *testing.T) {
		var buf bytes.Buffer
		logger.Set(zerolog.New(nil))
		logger.SetOutput(&buf)

		log := logger.Logger()
		log.Info().Msg("redirected")

		assert.Contains(t, buf.String(), "redirected")
	})
}
