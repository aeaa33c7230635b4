package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_JSONInProduction(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(false, buf)

	ForSource("gate", "203.0.113.7").Info("blocked source rejected")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "gate", line["component"])
	assert.Equal(t, "203.0.113.7", line["source_ip"])
	assert.Equal(t, "blocked source rejected", line["msg"])
}

func TestInit_DebugEmitsDebugLines(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(true, buf)
	defer Init(false, nil)

	WithFields(map[string]any{"k": "v"}).Debug("debug line")
	assert.Contains(t, buf.String(), "debug line")
	assert.Contains(t, buf.String(), "k=v")
}
