package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"charselect/pkg/models"
)

const maxDatasetBytes = 32 << 20

// Loader fetches the raw records of one dataset. Implementations do not
// touch shared state; indexing and caching are left to the caller.
type Loader interface {
	Load(ctx context.Context, name string) ([]models.CharacterRecord, error)
}

// HTTPLoader fetches dataset files relative to a fixed base URL,
// e.g. http://localhost:8080/data.
type HTTPLoader struct {
	BaseURL string
	Client  *http.Client
	// MaxBytes caps the response body; larger datasets fail as transport
	// errors.
	MaxBytes int64
}

func NewHTTPLoader(baseURL string, timeout time.Duration) *HTTPLoader {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPLoader{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Client:   &http.Client{Timeout: timeout},
		MaxBytes: maxDatasetBytes,
	}
}

func (l *HTTPLoader) Load(ctx context.Context, name string) ([]models.CharacterRecord, error) {
	clean, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.BaseURL+"/"+url.PathEscape(clean), nil)
	if err != nil {
		return nil, &LoadError{Kind: KindTransport, Name: clean, Err: fmt.Errorf("build request: %w", err)}
	}

	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, &LoadError{Kind: KindTransport, Name: clean, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &LoadError{
			Kind: KindTransport,
			Name: clean,
			Err:  fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	limit := l.MaxBytes
	if limit <= 0 {
		limit = maxDatasetBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &LoadError{Kind: KindTransport, Name: clean, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > limit {
		return nil, &LoadError{Kind: KindTransport, Name: clean, Err: fmt.Errorf("dataset too large: over %d bytes", limit)}
	}
	return ParseRecords(clean, body)
}

// DirLoader reads dataset files straight from a local data directory.
type DirLoader struct {
	Dir string
}

func NewDirLoader(dir string) *DirLoader {
	return &DirLoader{Dir: dir}
}

func (l *DirLoader) Load(_ context.Context, name string) ([]models.CharacterRecord, error) {
	path, err := l.Path(name)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Kind: KindTransport, Name: name, Err: err}
	}
	return ParseRecords(filepath.Base(path), b)
}

// Path resolves name to an absolute path confined to the data directory.
func (l *DirLoader) Path(name string) (string, error) {
	clean, err := NormalizeName(name)
	if err != nil {
		return "", err
	}
	dir, err := filepath.Abs(l.Dir)
	if err != nil {
		return "", &LoadError{Kind: KindName, Name: name, Err: err}
	}
	full := filepath.Join(dir, clean)
	if !strings.HasPrefix(full, dir+string(os.PathSeparator)) {
		return "", &LoadError{Kind: KindName, Name: name}
	}
	return full, nil
}

// ParseRecords decodes a dataset payload. The payload must be a JSON array;
// elements that are not objects, and fields that are not strings, are
// treated as empty.
func ParseRecords(name string, payload []byte) ([]models.CharacterRecord, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &LoadError{Kind: KindShape, Name: name}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, &LoadError{Kind: KindShape, Name: name, Err: fmt.Errorf("decode: %w", err)}
	}

	out := make([]models.CharacterRecord, 0, len(raw))
	for _, item := range raw {
		var fields map[string]any
		_ = json.Unmarshal(item, &fields)

		out = append(out, models.CharacterRecord{
			NameCN:   stringField(fields, "name_cn"),
			NameEN:   stringField(fields, "name_en"),
			IconURL:  stringField(fields, "icon_url"),
			SourceCN: stringField(fields, "source_cn"),
			SourceEN: stringField(fields, "source_en"),
			Tag:      stringField(fields, "tag"),
		})
	}
	return out, nil
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, ok := m[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
