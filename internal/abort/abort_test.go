package abort

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignal_Trigger(t *testing.T) {
	s := New()
	assert.False(t, s.Triggered())

	s.Trigger()
	assert.True(t, s.Triggered())

	select {
	case <-s.Done():
	default:
		t.Fatal("Done channel not closed after Trigger")
	}

	// Triggering again must not panic.
	s.Trigger()
	assert.True(t, s.Triggered())
}

func TestCombine_NoSources(t *testing.T) {
	assert.Nil(t, Combine())
	assert.Nil(t, Combine(nil, nil))
}

func TestCombine_SingleSource(t *testing.T) {
	src := New()
	combined := Combine(src.Done())
	require.NotNil(t, combined)
	assert.False(t, combined.Triggered())

	src.Trigger()
	select {
	case <-combined.Done():
	case <-time.After(time.Second):
		t.Fatal("combined signal did not follow its source")
	}
}

func TestCombine_AlreadyTriggeredSource(t *testing.T) {
	src := New()
	src.Trigger()

	combined := Combine(New().Done(), src.Done())
	require.NotNil(t, combined)
	assert.True(t, combined.Triggered())
}

func TestCombine_AnySourceWins(t *testing.T) {
	a, b, c := New(), New(), New()
	combined := Combine(a.Done(), b.Done(), c.Done())
	require.NotNil(t, combined)

	b.Trigger()
	select {
	case <-combined.Done():
	case <-time.After(time.Second):
		t.Fatal("combined signal did not trigger on second source")
	}
}

func TestCombine_TriggerReleasesWatchers(t *testing.T) {
	// Triggering the combined signal directly must be safe even when no
	// source ever fires; the watchers exit via the combined done channel.
	src := New()
	combined := Combine(src.Done())
	combined.Trigger()
	assert.True(t, combined.Triggered())

	// A source firing afterward is a no-op.
	src.Trigger()
	assert.True(t, combined.Triggered())
}
