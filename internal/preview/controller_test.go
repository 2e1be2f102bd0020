package preview

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedFetcher blocks each fetch until the test releases it.
type gatedFetcher struct {
	mu    sync.Mutex
	gates map[string]chan error
	calls atomic.Int32
	urls  []string
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{gates: make(map[string]chan error)}
}

func (f *gatedFetcher) gate(url string) chan error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.gates[url]
	if !ok {
		ch = make(chan error, 1)
		f.gates[url] = ch
	}
	return ch
}

func (f *gatedFetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.mu.Unlock()

	select {
	case err := <-f.gate(url):
		if err != nil {
			return nil, err
		}
		return image.NewRGBA(image.Rect(0, 0, 40, 20)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *gatedFetcher) release(url string, err error) { f.gate(url) <- err }

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

func newTestController(f Fetcher, redraws *atomic.Int32) *Controller {
	return NewController(f, func() { redraws.Add(1) }, Options{Timeout: time.Second, Logger: quiet()})
}

func TestController_InitialState(t *testing.T) {
	var redraws atomic.Int32
	c := newTestController(newGatedFetcher(), &redraws)
	assert.Equal(t, State{Kind: Idle, Status: StatusIdle}, c.State())
	assert.Nil(t, c.Image())
}

func TestController_EmptyURLSkipsFetch(t *testing.T) {
	f := newGatedFetcher()
	var redraws atomic.Int32
	c := newTestController(f, &redraws)

	c.Update("   ")
	c.Wait()

	assert.Equal(t, Empty, c.State().Kind)
	assert.Equal(t, StatusEmpty, c.State().Status)
	assert.Equal(t, int32(0), f.calls.Load())
	assert.Equal(t, int32(1), redraws.Load())
}

func TestController_LoadSuccess(t *testing.T) {
	f := newGatedFetcher()
	var redraws atomic.Int32
	c := newTestController(f, &redraws)

	c.Update("https://example.com/a.png")
	assert.Equal(t, State{Kind: Loading, URL: "https://example.com/a.png", Status: StatusLoading}, c.State())

	f.release("https://example.com/a.png", nil)
	c.Wait()

	st := c.State()
	assert.Equal(t, Loaded, st.Kind)
	assert.Equal(t, "https://example.com/a.png", st.URL)
	require.NotNil(t, c.Image())
	assert.Equal(t, int32(2), redraws.Load())
}

func TestController_LoadFailure(t *testing.T) {
	f := newGatedFetcher()
	var redraws atomic.Int32
	c := newTestController(f, &redraws)

	c.Update("https://example.com/broken.png")
	f.release("https://example.com/broken.png", errors.New("boom"))
	c.Wait()

	assert.Equal(t, Failed, c.State().Kind)
	assert.Equal(t, StatusFailed, c.State().Status)
	assert.Nil(t, c.Image())
}

func TestController_TimeoutFails(t *testing.T) {
	f := newGatedFetcher()
	c := NewController(f, nil, Options{Timeout: 20 * time.Millisecond, Logger: quiet()})

	c.Update("https://example.com/slow.png")
	c.Wait()
	assert.Equal(t, Failed, c.State().Kind)
}

func TestController_StaleResultIgnored(t *testing.T) {
	f := newGatedFetcher()
	var redraws atomic.Int32
	c := newTestController(f, &redraws)

	c.Update("https://a.example/old.png")
	c.Update("https://b.example/new.png")

	f.release("https://b.example/new.png", nil)
	f.release("https://a.example/old.png", nil)
	c.Wait()

	st := c.State()
	assert.Equal(t, Loaded, st.Kind)
	assert.Equal(t, "https://b.example/new.png", st.URL)
}

func TestController_StaleFailureDoesNotOverrideLoading(t *testing.T) {
	f := newGatedFetcher()
	var redraws atomic.Int32
	c := newTestController(f, &redraws)

	c.Update("https://a.example/old.png")
	c.Update("https://b.example/new.png")

	f.release("https://a.example/old.png", errors.New("late failure"))
	// wait for the stale goroutine only; the new one stays gated
	require.Eventually(t, func() bool { return f.calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, State{Kind: Loading, URL: "https://b.example/new.png", Status: StatusLoading}, c.State())

	f.release("https://b.example/new.png", nil)
	c.Wait()
	assert.Equal(t, Loaded, c.State().Kind)
}

func TestController_EmptyAfterLoadingDiscardsResult(t *testing.T) {
	f := newGatedFetcher()
	var redraws atomic.Int32
	c := newTestController(f, &redraws)

	c.Update("https://a.example/a.png")
	c.Update("")
	f.release("https://a.example/a.png", nil)
	c.Wait()

	assert.Equal(t, Empty, c.State().Kind)
}

func TestController_SameURLIsNoop(t *testing.T) {
	f := newGatedFetcher()
	var redraws atomic.Int32
	c := newTestController(f, &redraws)

	c.Update("https://a.example/a.png")
	c.Update("https://a.example/a.png")
	f.release("https://a.example/a.png", nil)
	c.Wait()
	c.Update("https://a.example/a.png")
	c.Wait()

	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, int32(2), redraws.Load())
}

func TestController_ProxyRewrite(t *testing.T) {
	f := newGatedFetcher()
	c := NewController(f, nil, Options{ProxyBase: "http://localhost:8080/", Logger: quiet()})

	want := "http://localhost:8080/preview/icon?url=https%3A%2F%2Fa.example%2Fa.png%3Fv%3D1"
	f.release(want, nil)
	c.Update("https://a.example/a.png?v=1")
	c.Wait()

	require.Len(t, f.urls, 1)
	assert.Equal(t, want, f.urls[0])
	assert.Equal(t, "https://a.example/a.png?v=1", c.State().URL)
}

type recordingSurface struct {
	fills  []image.Rectangle
	images []image.Rectangle
	clips  []image.Rectangle
	texts  []string
	at     []image.Point
}

func (s *recordingSurface) FillRect(r image.Rectangle, _ color.Color) { s.fills = append(s.fills, r) }
func (s *recordingSurface) DrawImage(_ image.Image, dst, clip image.Rectangle) {
	s.images = append(s.images, dst)
	s.clips = append(s.clips, clip)
}
func (s *recordingSurface) DrawText(text string, center image.Point) {
	s.texts = append(s.texts, text)
	s.at = append(s.at, center)
}

func TestController_Render(t *testing.T) {
	f := newGatedFetcher()
	c := NewController(f, nil, Options{Logger: quiet()})
	rect := image.Rect(10, 10, 210, 110)

	s := &recordingSurface{}
	c.Render(s, rect)
	assert.Equal(t, []string{StatusIdle}, s.texts)
	assert.Equal(t, []image.Point{{110, 60}}, s.at)

	f.release("https://a.example/a.png", nil)
	c.Update("https://a.example/a.png")
	c.Wait()

	s = &recordingSurface{}
	c.Render(s, rect)
	require.Len(t, s.images, 1)
	// 40x20 into 200x100 scales by 5
	assert.Equal(t, image.Rect(10, 10, 210, 110), s.images[0])
	assert.Equal(t, rect, s.clips[0])
	assert.Empty(t, s.texts)
}
