package logging

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogBeforeInitDoesNotInitialize(t *testing.T) {
	defaultLogger = nil

	Info("Test", "message before init")

	assert.Nil(t, defaultLogger, "logging before Init must not construct the logger")
}

func TestConcurrentLoggingBeforeInit(t *testing.T) {
	defaultLogger = nil

	// Run under -race: the fallback path must not mutate package globals.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Warn("Test", "concurrent message %d", n)
		}(i)
	}
	wg.Wait()

	assert.Nil(t, defaultLogger)
}

func TestInitAndLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelWarn, &buf)
	t.Cleanup(func() { defaultLogger = nil })

	Info("Test", "below threshold")
	Warn("Test", "kept %d", 1)

	out := buf.String()
	assert.NotContains(t, out, "below threshold")
	assert.Contains(t, out, "kept 1")
	assert.Contains(t, out, "subsystem=Test")
}

func TestSetLevelAdjustsFilter(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelInfo, &buf)
	t.Cleanup(func() { defaultLogger = nil })

	Debug("Test", "dropped")
	SetLevel(LevelDebug)
	Debug("Test", "visible")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "visible")
}
