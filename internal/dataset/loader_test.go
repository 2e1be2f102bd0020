package dataset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charselect/pkg/models"
)

func newDataServer(t *testing.T, files map[string]string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		body, ok := files[r.URL.Path]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPLoader_Load(t *testing.T) {
	srv := newDataServer(t, map[string]string{
		"/data/genshin.json": `[
			{"name_cn": " 雷电将军 ", "name_en": "Raiden Shogun", "icon_url": "https://example.com/raiden.png"},
			{"name_cn": "胡桃", "icon_url": 42},
			"not an object",
			{}
		]`,
	}, nil)

	l := NewHTTPLoader(srv.URL+"/data/", time.Second)
	recs, err := l.Load(context.Background(), "genshin.json")
	require.NoError(t, err)
	require.Len(t, recs, 4)

	assert.Equal(t, "雷电将军", recs[0].NameCN)
	assert.Equal(t, "Raiden Shogun", recs[0].NameEN)
	assert.Equal(t, "https://example.com/raiden.png", recs[0].IconURL)
	assert.Equal(t, "胡桃", recs[1].NameCN)
	assert.Empty(t, recs[1].IconURL)
	assert.Equal(t, models.CharacterRecord{}, recs[2], "non-object element becomes an empty record")
	assert.Equal(t, "未命名角色", recs[3].DisplayName())
}

func TestHTTPLoader_Errors(t *testing.T) {
	var hits atomic.Int32
	srv := newDataServer(t, map[string]string{
		"/data/object.json": `{"name_cn": "胡桃"}`,
		"/data/null.json":   `null`,
	}, &hits)
	l := NewHTTPLoader(srv.URL+"/data", time.Second)

	_, err := l.Load(context.Background(), "missing.json")
	assert.True(t, errors.Is(err, ErrTransport), "got %v", err)

	_, err = l.Load(context.Background(), "object.json")
	assert.True(t, errors.Is(err, ErrShape), "got %v", err)

	_, err = l.Load(context.Background(), "null.json")
	assert.True(t, errors.Is(err, ErrShape), "got %v", err)

	before := hits.Load()
	_, err = l.Load(context.Background(), "../secret.json")
	assert.True(t, errors.Is(err, ErrName), "got %v", err)
	assert.Equal(t, before, hits.Load(), "rejected names must not be fetched")

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, KindName, le.Kind)
}

func TestHTTPLoader_TooLarge(t *testing.T) {
	payload := `[{"name_cn": "雷电将军"}, {"name_cn": "胡桃"}]`
	srv := newDataServer(t, map[string]string{"/data/big.json": payload}, nil)

	l := NewHTTPLoader(srv.URL+"/data", time.Second)
	l.MaxBytes = int64(len(payload)) - 1
	_, err := l.Load(context.Background(), "big.json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport), "got %v", err)
	assert.False(t, errors.Is(err, ErrShape))
	assert.Contains(t, err.Error(), "too large")

	l.MaxBytes = int64(len(payload))
	recs, err := l.Load(context.Background(), "big.json")
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestHTTPLoader_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	l := NewHTTPLoader(srv.URL, 50*time.Millisecond)
	_, err := l.Load(context.Background(), "slow.json")
	assert.True(t, errors.Is(err, ErrTransport), "got %v", err)
}

func TestDirLoader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hsr.json"), []byte(`[{"name_en": "Kafka"}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(dir), "secret.json"), []byte(`[]`), 0o644))

	l := NewDirLoader(dir)
	recs, err := l.Load(context.Background(), "hsr.json")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Kafka", recs[0].DisplayName())

	_, err = l.Load(context.Background(), "../secret.json")
	assert.True(t, errors.Is(err, ErrName))

	_, err = l.Load(context.Background(), "absent.json")
	assert.True(t, errors.Is(err, ErrTransport))
}
