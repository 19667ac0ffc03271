package toast

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestShowReplacesCurrent(t *testing.T) {
	n := New(time.Minute)
	defer n.Close()

	first := n.Success("Branch created successfully")
	second := n.Error("Failed to load terminals")

	got, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, second.ID, got.ID)
	assert.NotEqual(t, first.ID, got.ID)
	assert.Equal(t, KindError, got.Kind)
	assert.Equal(t, "Failed to load terminals", got.Message)
}

func TestToastExpires(t *testing.T) {
	n := New(20 * time.Millisecond)
	defer n.Close()

	n.Success("saved")

	require.Eventually(t, func() bool {
		_, ok := n.Current()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestReplacedToastKeepsFullLifetime(t *testing.T) {
	n := New(80 * time.Millisecond)
	defer n.Close()

	n.Success("first")
	time.Sleep(50 * time.Millisecond)
	n.Success("second")
	time.Sleep(50 * time.Millisecond)

	got, ok := n.Current()
	require.True(t, ok, "second toast must not expire with the first one's timer")
	assert.Equal(t, "second", got.Message)
}

func TestDismiss(t *testing.T) {
	n := New(time.Minute)
	defer n.Close()

	n.Show("hello", KindInfo)
	n.Dismiss()

	_, ok := n.Current()
	assert.False(t, ok)
	n.Dismiss()
}

func TestSubscribe(t *testing.T) {
	n := New(time.Minute)
	defer n.Close()

	var mu sync.Mutex
	var seen []string
	unsubscribe := n.Subscribe(func(tt *Toast) {
		mu.Lock()
		defer mu.Unlock()
		if tt == nil {
			seen = append(seen, "<cleared>")
			return
		}
		seen = append(seen, tt.Message)
	})

	n.Success("one")
	n.Dismiss()
	unsubscribe()
	n.Success("two")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"one", "<cleared>"}, seen)
}

func TestShowAfterCloseIsIgnored(t *testing.T) {
	n := New(time.Minute)
	n.Close()
	n.Success("late")

	_, ok := n.Current()
	assert.False(t, ok)
}
