package logging

import (
	"bytes"
	"testing"

	clog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// swapLogger replaces L with a buffer-backed logger for the duration of the test
func swapLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := L
	L = clog.New(&buf)
	L.SetLevel(clog.DebugLevel)
	t.Cleanup(func() { L = prev })
	return &buf
}

func TestHelpers_WriteToBuffer(t *testing.T) {
	buf := swapLogger(t)

	Debugf("hello %s", "dbg")
	Infof("info %d", 1)
	Warnf("warn")
	Errorf("err %v", "E")
	With("requestID", "abc").Info("child")

	out := buf.String()
	assert.Contains(t, out, "hello dbg")
	assert.Contains(t, out, "info 1")
	assert.Contains(t, out, "warn")
	assert.Contains(t, out, "err E")
	assert.Contains(t, out, "requestID=abc")
}

func TestInit_Level(t *testing.T) {
	buf := swapLogger(t)

	require.NoError(t, Init("warn"))
	Infof("hidden")
	Warnf("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	assert.Error(t, Init("loud"))
	assert.NoError(t, Init(""))
}
