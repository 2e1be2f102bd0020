package preview

import (
	"context"
	"image"
	"log"
	"strings"
	"sync"
	"time"
)

// Fetcher retrieves and decodes one image.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (image.Image, error)
}

type Options struct {
	// Timeout bounds one image fetch; expiry counts as a failed load.
	Timeout time.Duration
	// ProxyBase, when set, routes fetches through ProxyBase/preview/icon.
	ProxyBase string
	Logger    *log.Logger
}

// Controller owns the preview state. Update starts loads asynchronously;
// every transition calls redraw, outside the controller lock.
type Controller struct {
	fetcher   Fetcher
	redraw    func()
	timeout   time.Duration
	proxyBase string
	logger    *log.Logger

	mu    sync.Mutex
	seq   uint64
	state State
	img   image.Image

	inflight sync.WaitGroup
}

func NewController(fetcher Fetcher, redraw func(), opts Options) *Controller {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if redraw == nil {
		redraw = func() {}
	}
	return &Controller{
		fetcher:   fetcher,
		redraw:    redraw,
		timeout:   opts.Timeout,
		proxyBase: strings.TrimRight(opts.ProxyBase, "/"),
		logger:    opts.Logger,
		state:     stateFor(Idle, ""),
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Image returns the decoded image while the state is Loaded.
func (c *Controller) Image() image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Kind != Loaded {
		return nil
	}
	return c.img
}

// Update points the preview at iconURL. A blank URL shows the empty state
// without fetching; re-requesting the URL that is already loading or loaded
// does nothing.
func (c *Controller) Update(iconURL string) {
	url := strings.TrimSpace(iconURL)

	c.mu.Lock()
	if url != "" && url == c.state.URL && (c.state.Kind == Loading || c.state.Kind == Loaded) {
		c.mu.Unlock()
		return
	}

	c.seq++
	c.img = nil
	if url == "" {
		c.state = stateFor(Empty, "")
		c.mu.Unlock()
		c.redraw()
		return
	}

	seq := c.seq
	c.state = stateFor(Loading, url)
	c.inflight.Add(1)
	c.mu.Unlock()

	c.redraw()
	go c.load(seq, url)
}

func (c *Controller) load(seq uint64, url string) {
	defer c.inflight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	target := url
	if c.proxyBase != "" {
		target = ProxyURL(c.proxyBase, url)
	}
	img, err := c.fetcher.Fetch(ctx, target)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.logger.Printf("[preview] discarding stale result for %s", url)
		return
	}
	if err != nil || img == nil {
		c.state = stateFor(Failed, url)
		c.mu.Unlock()
		c.logger.Printf("[preview] load %s failed: %v", url, err)
		c.redraw()
		return
	}
	c.img = img
	c.state = stateFor(Loaded, url)
	c.mu.Unlock()

	c.redraw()
}

// Wait blocks until every fetch started so far has completed.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Render draws the loaded image aspect-fit into rect, or the status text.
func (c *Controller) Render(s Surface, rect image.Rectangle) {
	c.mu.Lock()
	st, img := c.state, c.img
	c.mu.Unlock()

	if st.Kind == Loaded && img != nil {
		b := img.Bounds()
		s.DrawImage(img, FitRect(b.Dx(), b.Dy(), rect), rect)
		return
	}
	s.DrawText(st.Status, image.Pt((rect.Min.X+rect.Max.X)/2, (rect.Min.Y+rect.Max.Y)/2))
}
