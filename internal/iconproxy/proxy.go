package iconproxy

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/sync/singleflight"

	"charselect/internal/preview"
)

var ErrBadURL = errors.New("icon url must be http or https")

// Icon is an image body ready to be served.
type Icon struct {
	ContentType string
	Body        []byte
	Width       int
	Height      int
}

type Config struct {
	Dir      string
	Timeout  time.Duration
	MaxBytes int64
	MemItems int
	MemBytes int64
	// MaxSide bounds the longest edge of stored icons; larger images are
	// downscaled and stored as PNG.
	MaxSide int
}

// Proxy fetches remote icons on behalf of the editor, keeping a memory LRU
// in front of a sha256-verified disk cache indexed in sqlite.
type Proxy struct {
	cfg    Config
	client *http.Client
	repo   *Repo
	mem    *memCache
	group  singleflight.Group
	logger *log.Logger
}

func NewProxy(cfg Config, repo *Repo, logger *log.Logger) (*Proxy, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = preview.MaxImageBytes
	}
	if cfg.MemItems <= 0 {
		cfg.MemItems = 64
	}
	if cfg.MemBytes <= 0 {
		cfg.MemBytes = 256 << 20
	}
	if cfg.MaxSide <= 0 {
		cfg.MaxSide = 1024
	}
	if logger == nil {
		logger = log.Default()
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create icon cache dir: %w", err)
	}

	return &Proxy{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		repo:   repo,
		mem:    newMemCache(cfg.MemItems, cfg.MemBytes),
		logger: logger,
	}, nil
}

// CacheKey names the cache entry of a source URL.
func CacheKey(rawURL string) string {
	sum := md5.Sum([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}

func validURL(rawURL string) (string, error) {
	s := strings.TrimSpace(rawURL)
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrBadURL
	}
	return s, nil
}

// Get returns the icon for rawURL from memory, disk or the network, in that
// order. Concurrent requests for one URL share a single download.
func (p *Proxy) Get(ctx context.Context, rawURL string) (Icon, error) {
	src, err := validURL(rawURL)
	if err != nil {
		return Icon{}, err
	}
	key := CacheKey(src)

	if icon, ok := p.mem.Get(key); ok {
		return icon, nil
	}

	v, err, _ := p.group.Do(key, func() (any, error) {
		if icon, ok := p.mem.Get(key); ok {
			return icon, nil
		}
		// a client hanging up must not fail the other waiters
		dctx := context.WithoutCancel(ctx)

		if icon, ok := p.fromDisk(dctx, key); ok {
			p.mem.Put(key, icon)
			return icon, nil
		}

		icon, err := p.download(dctx, src)
		if err != nil {
			return Icon{}, err
		}
		if err := p.persist(dctx, key, src, icon); err != nil {
			p.logger.Printf("[iconproxy] persist %s: %v", src, err)
		}
		p.mem.Put(key, icon)
		return icon, nil
	})
	if err != nil {
		return Icon{}, err
	}
	return v.(Icon), nil
}

func (p *Proxy) fromDisk(ctx context.Context, key string) (Icon, bool) {
	if p.repo == nil {
		return Icon{}, false
	}
	e, err := p.repo.Get(ctx, key)
	if err != nil {
		p.logger.Printf("[iconproxy] index lookup %s: %v", key, err)
		return Icon{}, false
	}
	if e == nil {
		return Icon{}, false
	}

	body, err := os.ReadFile(filepath.Join(p.cfg.Dir, e.File))
	if err == nil && sha256Hex(body) == e.SHA256 {
		return Icon{ContentType: e.ContentType, Body: body, Width: e.Width, Height: e.Height}, true
	}

	p.logger.Printf("[iconproxy] dropping corrupt cache entry %s", key)
	_ = os.Remove(filepath.Join(p.cfg.Dir, e.File))
	_ = p.repo.Delete(ctx, key)
	return Icon{}, false
}

func (p *Proxy) download(ctx context.Context, src string) (Icon, error) {
	body, err := preview.Download(ctx, p.client, src, p.cfg.MaxBytes)
	if err != nil {
		return Icon{}, err
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return Icon{}, fmt.Errorf("decode %s: %w", src, err)
	}

	b := img.Bounds()
	if max(b.Dx(), b.Dy()) <= p.cfg.MaxSide {
		return Icon{
			ContentType: http.DetectContentType(body),
			Body:        body,
			Width:       b.Dx(),
			Height:      b.Dy(),
		}, nil
	}

	fit := preview.FitRect(b.Dx(), b.Dy(), image.Rect(0, 0, p.cfg.MaxSide, p.cfg.MaxSide))
	dst := image.NewRGBA(image.Rect(0, 0, fit.Dx(), fit.Dy()))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return Icon{}, fmt.Errorf("encode thumbnail: %w", err)
	}
	return Icon{
		ContentType: "image/png",
		Body:        buf.Bytes(),
		Width:       fit.Dx(),
		Height:      fit.Dy(),
	}, nil
}

func (p *Proxy) persist(ctx context.Context, key, src string, icon Icon) error {
	if p.repo == nil {
		return nil
	}
	if err := writeFileAtomic(filepath.Join(p.cfg.Dir, key), icon.Body); err != nil {
		return err
	}
	return p.repo.Upsert(ctx, Entry{
		Key:         key,
		URL:         src,
		File:        key,
		SHA256:      sha256Hex(icon.Body),
		ContentType: icon.ContentType,
		Size:        int64(len(icon.Body)),
		Width:       icon.Width,
		Height:      icon.Height,
		FetchedAt:   time.Now(),
	})
}

func (p *Proxy) Stats() (int, int64) {
	return p.mem.Len()
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// writeFileAtomic writes to a temp file in the target directory and renames
// it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp_")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
