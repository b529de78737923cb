package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	l, err := New("debug")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))
	assert.Same(t, l, InfoLogger)

	assert.NotPanics(t, func() { Info("cycle %d done", 1) })

	_, err = New("loud")
	assert.Error(t, err)
}

func TestSetServiceName(t *testing.T) {
	old := SetServiceName("paper_bot")
	defer SetServiceName(old)
	assert.Equal(t, "paper_bot", SetServiceName("paper_bot"))
}
