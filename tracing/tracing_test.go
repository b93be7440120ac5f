package tracing

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestInit(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	shutdown, err := Init(Config{Output: &buf})
	is.NoErr(err)

	_, span := Tracer().Start(context.Background(), "cachestore.flush_expired")
	span.End()

	is.NoErr(shutdown(context.Background()))
	is.True(strings.Contains(buf.String(), "cachestore.flush_expired"))
}
