package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorstEmptyIsReady(t *testing.T) {
	var r Recorder
	assert.Equal(t, Ready, r.Worst())
	assert.Equal(t, "ready", r.Worst().String())
}

func TestWorstPrefersBlockedOverWaiting(t *testing.T) {
	var r Recorder
	r.Add(Waiting("certificates"))
	r.Add(Blocked("missing relation to etcd"))
	r.Add(Waiting("cluster name"))

	got := r.Worst()
	assert.Equal(t, LevelBlocked, got.Level)
	assert.Equal(t, "blocked: missing relation to etcd", got.String())
}

func TestWorstFirstOfEqualSeverityWins(t *testing.T) {
	var r Recorder
	r.Add(Waiting("certificates"))
	r.Add(Waiting("etcd"))

	assert.Equal(t, "waiting: certificates", r.Worst().String())
}

func TestAddIgnoresReady(t *testing.T) {
	var r Recorder
	r.Add(Ready)
	assert.Equal(t, Ready, r.Worst())
}

func TestResetClearsConditions(t *testing.T) {
	var r Recorder
	r.Add(Blocked("missing relation to certificate authority"))
	r.Reset()
	assert.Equal(t, Ready, r.Worst())
}
