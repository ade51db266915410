package helpers

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Levels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("gw", "development", "").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("gw", "production", "").GetLevel())
	assert.Equal(t, logrus.WarnLevel, NewLogger("gw", "production", "warn").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("gw", "production", "loud").GetLevel())
}

func TestNewLogger_StampsApp(t *testing.T) {
	logger := NewLogger("gw", "production", "")
	var buf bytes.Buffer
	logger.SetOutput(&buf)

	LogError(logger, "group flow failed", errors.New("boom"), logrus.Fields{"op": "create"})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "gw", line["app"])
	assert.Equal(t, "production", line["env"])
	assert.Equal(t, "create", line["op"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "error", line["level"])
}
