// Package widget holds the host-side control contracts the selector binds to,
// plus headless implementations used by the CLI and tests.
package widget

import (
	"image"
	"slices"
	"sync"
)

// Combo is a dropdown control: a current value chosen from a list of values.
type Combo interface {
	Name() string
	Value() string
	SetValue(v string)
	Values() []string
	SetValues(values []string)
	// OnChange registers fn to run, in registration order, after the user
	// picks a value.
	OnChange(fn func(value string))
}

// Node is the graph node hosting the widgets.
type Node interface {
	Size() image.Point
	SetSize(size image.Point)
	RequestRedraw()
}

// HeadlessCombo is an in-memory Combo.
type HeadlessCombo struct {
	name string

	mu     sync.Mutex
	value  string
	values []string
	subs   []func(string)
}

func NewCombo(name, value string, values []string) *HeadlessCombo {
	return &HeadlessCombo{name: name, value: value, values: slices.Clone(values)}
}

func (c *HeadlessCombo) Name() string { return c.name }

func (c *HeadlessCombo) Value() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

func (c *HeadlessCombo) SetValue(v string) {
	c.mu.Lock()
	c.value = v
	c.mu.Unlock()
}

func (c *HeadlessCombo) Values() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.values)
}

func (c *HeadlessCombo) SetValues(values []string) {
	c.mu.Lock()
	c.values = slices.Clone(values)
	c.mu.Unlock()
}

func (c *HeadlessCombo) OnChange(fn func(string)) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

// Select sets the value as a user would and notifies subscribers.
func (c *HeadlessCombo) Select(v string) {
	c.mu.Lock()
	c.value = v
	subs := slices.Clone(c.subs)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// HeadlessNode records size changes and counts redraw requests.
type HeadlessNode struct {
	mu      sync.Mutex
	size    image.Point
	redraws int
}

func NewNode(w, h int) *HeadlessNode {
	return &HeadlessNode{size: image.Pt(w, h)}
}

func (n *HeadlessNode) Size() image.Point {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.size
}

func (n *HeadlessNode) SetSize(size image.Point) {
	n.mu.Lock()
	n.size = size
	n.mu.Unlock()
}

func (n *HeadlessNode) RequestRedraw() {
	n.mu.Lock()
	n.redraws++
	n.mu.Unlock()
}

func (n *HeadlessNode) Redraws() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.redraws
}
