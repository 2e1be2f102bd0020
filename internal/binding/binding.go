// Package binding keeps a node's dataset selector, character selector and
// image preview consistent with each other.
package binding

import (
	"context"
	"image"
	"log"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"charselect/internal/dataset"
	"charselect/internal/preview"
	"charselect/internal/widget"
)

// Source resolves a dataset name to its index and display list.
// *dataset.Cache is the shared implementation.
type Source interface {
	GetOrLoad(ctx context.Context, name string) dataset.Entry
}

type Options struct {
	Preview preview.Options
	Logger  *log.Logger
}

// Binding is the per-node selector state. Nodes never share a Binding; only
// the Source behind it is shared.
type Binding struct {
	ID uuid.UUID

	node      widget.Node
	datasets  widget.Combo
	character widget.Combo
	source    Source
	preview   *preview.Controller
	widget    *preview.Widget
	logger    *log.Logger

	baseHeight int

	mu     sync.Mutex
	gen    uint64
	active string
	entry  dataset.Entry
}

// New wires the two selectors of node to a preview widget and loads the
// dataset currently selected in datasets.
func New(node widget.Node, datasets, character widget.Combo, source Source, fetcher preview.Fetcher, opts Options) *Binding {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Preview.Logger == nil {
		opts.Preview.Logger = opts.Logger
	}

	b := &Binding{
		ID:         uuid.New(),
		node:       node,
		datasets:   datasets,
		character:  character,
		source:     source,
		logger:     opts.Logger,
		baseHeight: node.Size().Y,
		entry:      dataset.EmptyEntry(),
	}
	b.preview = preview.NewController(fetcher, node.RequestRedraw, opts.Preview)
	b.widget = preview.NewWidget("preview", b.preview)

	datasets.OnChange(func(v string) { b.DatasetChanged(context.Background(), v) })
	character.OnChange(b.CharacterChanged)

	b.DatasetChanged(context.Background(), datasets.Value())
	return b
}

// DatasetChanged switches the node to dataset name: the character list is
// replaced, an invalid current character is reset to the first entry and
// the preview follows the resulting character.
func (b *Binding) DatasetChanged(ctx context.Context, name string) {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	b.mu.Unlock()

	entry := b.source.GetOrLoad(ctx, name)

	b.mu.Lock()
	if gen != b.gen {
		b.mu.Unlock()
		b.logger.Printf("[binding %s] dropping superseded dataset %q", b.short(), name)
		return
	}
	b.active = strings.TrimSpace(name)
	b.entry = entry

	b.character.SetValues(entry.List)
	current := b.character.Value()
	if !slices.Contains(entry.List, current) {
		current = entry.List[0]
		b.character.SetValue(current)
	}
	iconURL := entry.Index.IconURL(current)
	b.mu.Unlock()

	b.preview.Update(iconURL)
	b.resize()
}

// CharacterChanged resolves value through the active dataset and updates
// the preview.
func (b *Binding) CharacterChanged(value string) {
	b.mu.Lock()
	iconURL := b.entry.Index.IconURL(value)
	b.mu.Unlock()

	b.preview.Update(iconURL)
}

// Restore applies persisted control values after the host reloads a graph.
// The dataset is re-resolved before the character so a character restored
// ahead of its dataset still ends up previewed.
func (b *Binding) Restore(ctx context.Context, values map[string]string) {
	if v, ok := values[b.datasets.Name()]; ok {
		b.datasets.SetValue(v)
	}
	if v, ok := values[b.character.Name()]; ok {
		b.character.SetValue(v)
	}

	b.DatasetChanged(ctx, b.datasets.Value())
	b.CharacterChanged(b.character.Value())
}

func (b *Binding) resize() {
	size := b.node.Size()
	_, h := b.widget.ComputeSize(size.X)
	b.node.SetSize(image.Pt(size.X, b.baseHeight+h))
	b.node.RequestRedraw()
}

// Draw renders the preview widget at y inside the node.
func (b *Binding) Draw(s preview.Surface, y int) {
	b.widget.Draw(s, b.node.Size().X, y)
}

func (b *Binding) Preview() *preview.Controller { return b.preview }

func (b *Binding) Widget() *preview.Widget { return b.widget }

// Dataset returns the dataset name the node currently shows.
func (b *Binding) Dataset() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

func (b *Binding) Entry() dataset.Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entry
}

func (b *Binding) short() string {
	return b.ID.String()[:8]
}
