// File: internal/observability/logger_test.go
package observability

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/hogflix/hogsim/internal/config"
)

// memorySink is a thread-safe WriteSyncer capturing log output.
type memorySink struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (s *memorySink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}
func (s *memorySink) Sync() error { return nil }
func (s *memorySink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func testLoggerConfig() config.LoggerConfig {
	return config.LoggerConfig{
		Level:       "debug",
		Format:      "console",
		ServiceName: "hogsim-test",
		Colors:      config.ColorConfig{Info: "green", Error: "red"},
	}
}

func TestInitializeWritesToConsoleCore(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	sink := &memorySink{}
	Initialize(testLoggerConfig(), zapcore.Lock(sink))

	GetLogger().Info("session started")
	out := sink.String()
	assert.Contains(t, out, "session started")
	assert.Contains(t, out, "hogsim-test")
}

func TestInitializeIsIdempotent(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	first := &memorySink{}
	second := &memorySink{}
	Initialize(testLoggerConfig(), zapcore.Lock(first))
	Initialize(testLoggerConfig(), zapcore.Lock(second))

	GetLogger().Info("only once")
	assert.Contains(t, first.String(), "only once")
	assert.Empty(t, second.String(), "a second Initialize must be a no-op")
}

func TestColorizedLevelEncoding(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	sink := &memorySink{}
	Initialize(testLoggerConfig(), zapcore.Lock(sink))

	GetLogger().Info("colored")
	assert.Contains(t, sink.String(), colorGreen+"INFO"+colorReset)
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	cfg := testLoggerConfig()
	cfg.Level = "extremely-verbose"
	sink := &memorySink{}
	Initialize(cfg, zapcore.Lock(sink))

	GetLogger().Debug("below the fallback level")
	GetLogger().Info("at the fallback level")

	out := sink.String()
	assert.NotContains(t, out, "below the fallback level")
	assert.Contains(t, out, "at the fallback level")
}

func TestGetLoggerBeforeInitializeNeverNil(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	require.NotNil(t, GetLogger())
}
