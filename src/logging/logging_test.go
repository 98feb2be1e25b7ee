package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/radixwiki/wiki/src/oops"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestPrettyWriter(t *testing.T) {
	var out bytes.Buffer
	logger := zerolog.New(NewPrettyZerologWriter(&out))

	logger.Error().
		Stack().
		Err(oops.New(errors.New("connection refused"), "failed to fetch price")).
		Str("address", "resource_abc").
		Msg("price fetch failed")

	s := out.String()
	assert.Contains(t, s, "price fetch failed")
	assert.Contains(t, s, "connection refused")
	assert.Contains(t, s, "address")
	assert.Contains(t, s, "Stack trace:")
	assert.Contains(t, s, "TestPrettyWriter")
}

func TestPrettyWriterPassesThroughGarbage(t *testing.T) {
	var out bytes.Buffer
	w := NewPrettyZerologWriter(&out)
	n, err := w.Write([]byte("not json\n"))
	assert.NoError(t, err)
	assert.Equal(t, 9, n)
	assert.Equal(t, "not json\n", out.String())
}

func TestContextLogger(t *testing.T) {
	assert.Same(t, GlobalLogger(), ExtractLogger(context.Background()))

	logger := With().Str("job", "test").Logger()
	ctx := AttachLoggerToContext(&logger, context.Background())
	assert.Same(t, &logger, ExtractLogger(ctx))
}
