package widget

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"

	"github.com/dealinefunnel/countdown-service/internal/endpoint"
	"github.com/dealinefunnel/countdown-service/internal/repository"
	"github.com/dealinefunnel/countdown-service/internal/service"
	"github.com/dealinefunnel/countdown-service/internal/transport"
)

// newCountdownServer runs the real service stack over in-memory
// repositories, so widget tests exercise the actual wire protocol
func newCountdownServer(now func() time.Time) *httptest.Server {
	campaigns := repository.NewMockCampaignRepository()
	visitors := repository.NewMemoryVisitorRepository(campaigns)
	deadlineSvc := service.NewDeadlineServiceWithClock(campaigns, visitors, now)
	campaignSvc := service.NewCampaignService(campaigns)

	handler := transport.NewHTTPHandler(
		endpoint.MakeVisitorEndpoints(deadlineSvc),
		endpoint.MakeCampaignEndpoints(campaignSvc),
		log.NewNopLogger(),
	)
	return httptest.NewServer(handler)
}

func newTestWidget(serverURL string, clock *fakeClock) (*Widget, *MemoryStore) {
	api := NewClient(serverURL, WithPolicy(fastPolicy))
	store := NewMemoryStore()
	identity := NewIdentity(api, store, staticFingerprint("fp-device"))

	w := NewWidget(api, identity,
		widgetClockOption(clock),
		WithTickInterval(time.Hour), // tests pump the engine by hand
	)
	return w, store
}

func widgetClockOption(clock *fakeClock) WidgetOption {
	return WithWidgetClock(clock.Now)
}

func TestWidget_MountEvergreenCampaign(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
	server := newCountdownServer(clock.Now)
	defer server.Close()

	w, _ := newTestWidget(server.URL, clock)
	renderer := &recordingRenderer{}

	engine, err := w.Mount(context.Background(), Container{
		ID:         "container-1",
		CampaignID: "flash-sale",
		PageURL:    "https://shop.example.com/offers/summer",
		Renderer:   renderer,
	})

	assert.NoError(t, err)
	assert.Equal(t, StateRunning, engine.State())
	// Evergreen 1440 minutes: deadline is first visit plus 24 hours
	assert.True(t, engine.Deadline().Equal(clock.Now().Add(24*time.Hour)))
	assert.Equal(t, 1, renderer.loading)
	assert.Equal(t, 1, renderer.countdownCount())
	assert.Equal(t, Remaining{Days: 1}, renderer.countdowns[0])
}

func TestWidget_RepeatMountKeepsDeadline(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
	server := newCountdownServer(clock.Now)
	defer server.Close()

	w, _ := newTestWidget(server.URL, clock)

	engine, err := w.Mount(context.Background(), Container{
		ID:         "container-1",
		CampaignID: "flash-sale",
		Renderer:   &recordingRenderer{},
	})
	assert.NoError(t, err)
	firstDeadline := engine.Deadline()

	// The visitor comes back an hour later: the page reloads, the widget
	// remounts, and the stored identity makes the deadline stick
	w.Unmount("container-1")
	clock.Advance(time.Hour)

	engine, err = w.Mount(context.Background(), Container{
		ID:         "container-1",
		CampaignID: "flash-sale",
		Renderer:   &recordingRenderer{},
	})
	assert.NoError(t, err)
	assert.True(t, engine.Deadline().Equal(firstDeadline), "repeat visit must reuse the stored deadline")
}

func TestWidget_DoubleMountIsRejected(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
	server := newCountdownServer(clock.Now)
	defer server.Close()

	w, _ := newTestWidget(server.URL, clock)
	container := Container{
		ID:         "container-1",
		CampaignID: "flash-sale",
		Renderer:   &recordingRenderer{},
	}

	_, err := w.Mount(context.Background(), container)
	assert.NoError(t, err)

	_, err = w.Mount(context.Background(), container)
	assert.ErrorIs(t, err, ErrAlreadyMounted)
}

func TestWidget_MountUnknownCampaignFailsTerminally(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
	server := newCountdownServer(clock.Now)
	defer server.Close()

	w, _ := newTestWidget(server.URL, clock)
	renderer := &recordingRenderer{}

	engine, err := w.Mount(context.Background(), Container{
		ID:         "container-1",
		CampaignID: "ghost",
		Renderer:   renderer,
	})

	assert.Error(t, err)
	assert.Equal(t, StateError, engine.State())
	assert.Equal(t, []string{"countdown unavailable"}, renderer.errors)

	// Failed containers stay claimed: no retry without a page reload
	_, err = w.Mount(context.Background(), Container{
		ID:         "container-1",
		CampaignID: "flash-sale",
		Renderer:   &recordingRenderer{},
	})
	assert.ErrorIs(t, err, ErrAlreadyMounted)
}

func TestWidget_FingerprintFailureFailsMount(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
	server := newCountdownServer(clock.Now)
	defer server.Close()

	api := NewClient(server.URL, WithPolicy(fastPolicy))
	broken := FingerprintFunc(func(ctx context.Context) (string, error) {
		return "", errors.New("canvas blocked")
	})
	identity := NewIdentity(api, NewMemoryStore(), broken)
	w := NewWidget(api, identity, WithWidgetClock(clock.Now), WithTickInterval(time.Hour))

	renderer := &recordingRenderer{}
	engine, err := w.Mount(context.Background(), Container{
		ID:         "container-1",
		CampaignID: "flash-sale",
		Renderer:   renderer,
	})

	assert.Error(t, err)
	assert.Equal(t, StateError, engine.State())
	assert.Len(t, renderer.errors, 1)
}

func TestWidget_PageNotTargeted(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
	server := newCountdownServer(clock.Now)
	defer server.Close()

	w, _ := newTestWidget(server.URL, clock)
	renderer := &recordingRenderer{}

	// flash-sale targets /offers/* only
	_, err := w.Mount(context.Background(), Container{
		ID:         "container-1",
		CampaignID: "flash-sale",
		PageURL:    "https://shop.example.com/pricing",
		Renderer:   renderer,
	})

	assert.ErrorIs(t, err, ErrPageNotTargeted)
	assert.Equal(t, 1, renderer.cleared)
	assert.Equal(t, 0, renderer.countdownCount())
}

func TestWidget_FixedCampaignCountsToSharedDeadline(t *testing.T) {
	clock := newFakeClock(time.Now())
	server := newCountdownServer(clock.Now)
	defer server.Close()

	w, _ := newTestWidget(server.URL, clock)
	renderer := &recordingRenderer{}

	engine, err := w.Mount(context.Background(), Container{
		ID:         "container-1",
		CampaignID: "product-launch",
		Renderer:   renderer,
	})

	assert.NoError(t, err)
	assert.Equal(t, StateRunning, engine.State())
	// Seeded launch deadline is ~72h out
	remaining := engine.Deadline().Sub(clock.Now())
	assert.InDelta(t, (72 * time.Hour).Seconds(), remaining.Seconds(), (time.Minute).Seconds())
}

func TestWidget_CountdownExpiresThroughTicks(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
	server := newCountdownServer(clock.Now)
	defer server.Close()

	w, _ := newTestWidget(server.URL, clock)
	renderer := &recordingRenderer{}

	engine, err := w.Mount(context.Background(), Container{
		ID:         "container-1",
		CampaignID: "flash-sale",
		Renderer:   renderer,
	})
	assert.NoError(t, err)

	clock.Advance(23 * time.Hour)
	assert.True(t, engine.Tick())
	assert.Equal(t, StateRunning, engine.State())

	clock.Advance(2 * time.Hour)
	assert.False(t, engine.Tick())
	assert.Equal(t, StateExpired, engine.State())
	assert.Equal(t, 1, renderer.expired)
}

func TestWidget_UnmountStopsEngine(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
	server := newCountdownServer(clock.Now)
	defer server.Close()

	w, _ := newTestWidget(server.URL, clock)

	engine, err := w.Mount(context.Background(), Container{
		ID:         "container-1",
		CampaignID: "flash-sale",
		Renderer:   &recordingRenderer{},
	})
	assert.NoError(t, err)

	w.Unmount("container-1")
	assert.Equal(t, StateStopped, engine.State())

	_, ok := w.Engine("container-1")
	assert.False(t, ok)
}

func TestWidget_MountValidation(t *testing.T) {
	clock := newFakeClock(time.Now())
	w, _ := newTestWidget("http://localhost:0", clock)

	_, err := w.Mount(context.Background(), Container{CampaignID: "flash-sale", Renderer: &recordingRenderer{}})
	assert.Error(t, err)

	_, err = w.Mount(context.Background(), Container{ID: "c", Renderer: &recordingRenderer{}})
	assert.Error(t, err)

	_, err = w.Mount(context.Background(), Container{ID: "c", CampaignID: "flash-sale"})
	assert.Error(t, err)
}
