package handlers

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnbendi/kubeplane/internal/status"
)

func TestStatusReportsNothingRecorded(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Status(&out, t.TempDir(), true))
	assert.Contains(t, out.String(), "no convergence pass recorded yet")
}

func TestStatusPlainOutput(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeLastStatus(dir, status.Waiting("certificates"), nil))

	var out bytes.Buffer
	require.NoError(t, Status(&out, dir, true))

	assert.Contains(t, out.String(), "status: waiting: certificates")
	assert.Contains(t, out.String(), "last pass:")
	assert.NotContains(t, out.String(), "error:")
}

func TestStatusIncludesPassError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeLastStatus(dir, status.Ready, errors.New("disk full")))

	var out bytes.Buffer
	require.NoError(t, Status(&out, dir, true))

	assert.Contains(t, out.String(), "error: disk full")
}

func TestLevelNameRoundTrip(t *testing.T) {
	for _, level := range []status.Level{status.LevelReady, status.LevelWaiting, status.LevelBlocked} {
		assert.Equal(t, level, parseLevel(levelName(level)))
	}
}
