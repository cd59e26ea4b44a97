package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestRegisterLogHooks(t *testing.T) {
	t.Cleanup(Reset)

	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)
	RegisterLogHooks(logger)

	ctx := context.Background()
	Composition().OnFetchComplete(ctx, "A1", true, 2, time.Second)
	Cache().OnCacheHit(ctx, "store")
	HTTP().OnError(ctx, "GET", "www.amazon.es", "/dp/A1", errors.New("reset"))

	out := buf.String()
	for _, want := range []string{"fetch complete", "id=A1", "attempts=2", "layer=store", "http error", "error=reset"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
