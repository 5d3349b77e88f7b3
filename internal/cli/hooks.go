package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cratemap/pkg/observability"
)

// debugHooks forwards observability events to the CLI logger at debug
// level. It is registered only under --verbose, so the default run pays
// nothing for instrumentation.
type debugHooks struct {
	logger *log.Logger
}

// registerDebugHooks installs logger-backed hooks for resolve, cache, and
// HTTP events.
func registerDebugHooks(logger *log.Logger) {
	h := &debugHooks{logger: logger}
	observability.SetResolveHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h *debugHooks) OnResolveStart(_ context.Context, pkg string) {
	h.logger.Debugf("resolve %s", pkg)
}

func (h *debugHooks) OnResolveComplete(_ context.Context, pkg string, depCount int, duration time.Duration, err error) {
	if err != nil {
		h.logger.Debugf("resolve %s failed after %s: %v", pkg, duration.Round(time.Millisecond), err)
		return
	}
	h.logger.Debugf("resolve %s: %d deps (%s)", pkg, depCount, duration.Round(time.Millisecond))
}

func (h *debugHooks) OnBuildStart(_ context.Context, root string) {
	h.logger.Debugf("build %s", root)
}

func (h *debugHooks) OnBuildComplete(_ context.Context, root string, nodeCount, cycleCount int, duration time.Duration, err error) {
	if err != nil {
		h.logger.Debugf("build %s failed after %s: %v", root, duration.Round(time.Millisecond), err)
		return
	}
	h.logger.Debugf("build %s: %d nodes, %d cycles (%s)", root, nodeCount, cycleCount, duration.Round(time.Millisecond))
}

func (h *debugHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debugf("cache hit: %s", keyType)
}

func (h *debugHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debugf("cache miss: %s", keyType)
}

func (h *debugHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debugf("cache set: %s (%d bytes)", keyType, size)
}

func (h *debugHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debugf("http %s %s%s", method, host, path)
}

func (h *debugHooks) OnResponse(_ context.Context, method, host, path string, statusCode int, duration time.Duration) {
	h.logger.Debugf("http %s %s%s: %d (%s)", method, host, path, statusCode, duration.Round(time.Millisecond))
}

func (h *debugHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debugf("http %s %s%s: %v", method, host, path, err)
}
