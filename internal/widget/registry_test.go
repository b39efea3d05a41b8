package widget

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dealinefunnel/countdown-service/internal/models"
)

func TestRegistry_BeginClaimsOnce(t *testing.T) {
	registry := NewRegistry()

	assert.True(t, registry.Begin("container-1"))
	assert.False(t, registry.Begin("container-1"))

	// Other containers are independent
	assert.True(t, registry.Begin("container-2"))
}

func TestRegistry_AttachKeepsContainerClaimed(t *testing.T) {
	registry := NewRegistry()
	renderer := &recordingRenderer{}
	engine := NewEngine(renderer)

	assert.True(t, registry.Begin("container-1"))
	registry.Attach("container-1", engine)

	assert.False(t, registry.Begin("container-1"))

	got, ok := registry.Engine("container-1")
	assert.True(t, ok)
	assert.Same(t, engine, got)
	assert.Equal(t, 1, registry.Len())
}

func TestRegistry_ReleaseAllowsRetry(t *testing.T) {
	registry := NewRegistry()

	assert.True(t, registry.Begin("container-1"))
	registry.Release("container-1")
	assert.True(t, registry.Begin("container-1"))
}

func TestRegistry_RemoveStopsEngine(t *testing.T) {
	registry := NewRegistry()
	renderer := &recordingRenderer{}
	engine := NewEngine(renderer, WithInterval(time.Hour))
	engine.Start(time.Now().Add(time.Hour), models.CampaignConfig{})

	registry.Begin("container-1")
	registry.Attach("container-1", engine)

	registry.Remove("container-1")

	assert.Equal(t, StateStopped, engine.State())
	_, ok := registry.Engine("container-1")
	assert.False(t, ok)
	assert.Equal(t, 0, registry.Len())

	// A removed container may be mounted again
	assert.True(t, registry.Begin("container-1"))
}

func TestRegistry_RemoveUnknownContainerIsNoop(t *testing.T) {
	registry := NewRegistry()
	registry.Remove("never-seen")
	assert.Equal(t, 0, registry.Len())
}

func TestRegistry_ConcurrentBeginsClaimExactlyOnce(t *testing.T) {
	registry := NewRegistry()

	const goroutines = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if registry.Begin("container-1") {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	assert.Len(t, wins, 1)
}
