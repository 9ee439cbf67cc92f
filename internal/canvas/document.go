package canvas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sync"
)

// NodeType identifies the kind of node stored in a Document
type NodeType string

const (
	NodeImageRegion NodeType = "IMAGE_REGION"
	NodeNote        NodeType = "NOTE"
	NodeSlide       NodeType = "SLIDE"
	NodeComponent   NodeType = "COMPONENT"
)

const slideGap = 100

// Node is a snapshot of one document node
type Node struct {
	ID        NodeID    `json:"id"`
	Type      NodeType  `json:"type"`
	Name      string    `json:"name,omitempty"`
	Bounds    Rect      `json:"bounds"`
	Text      string    `json:"text,omitempty"`
	ImageHash string    `json:"imageHash,omitempty"`
	ScaleMode ScaleMode `json:"scaleMode,omitempty"`
	Parent    NodeID    `json:"parent,omitempty"`
	Children  []NodeID  `json:"children,omitempty"`
}

// Snapshot is the exported state of a Document
type Snapshot struct {
	Page      []NodeID       `json:"page"`
	Nodes     []Node         `json:"nodes"`
	Selection []NodeID       `json:"selection"`
	Viewport  *Rect          `json:"viewport,omitempty"`
	ViewMode  ViewMode       `json:"viewMode"`
	Images    map[string]int `json:"images"`
}

// Document is an in-memory Sink. It is safe for concurrent use.
type Document struct {
	mu          sync.RWMutex
	nextID      int
	nodes       map[NodeID]*Node
	order       []NodeID
	page        []NodeID
	selection   []NodeID
	viewport    *Rect
	viewMode    ViewMode
	images      map[string][]byte
	slideWidth  float64
	slideHeight float64
}

// NewDocument creates an empty document with default slide dimensions
func NewDocument() *Document {
	return &Document{
		nodes:       make(map[NodeID]*Node),
		images:      make(map[string][]byte),
		viewMode:    ViewSingle,
		slideWidth:  DefaultSlideWidth,
		slideHeight: DefaultSlideHeight,
	}
}

// SetSlideSize changes the dimensions of slides created afterwards
func (d *Document) SetSlideSize(width, height float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slideWidth = width
	d.slideHeight = height
}

func (d *Document) newNode(nodeType NodeType) *Node {
	d.nextID++
	node := &Node{ID: NodeID(fmt.Sprintf("%d:%d", d.nextID/1000, d.nextID%1000)), Type: nodeType}
	d.nodes[node.ID] = node
	d.order = append(d.order, node.ID)
	return node
}

func (d *Document) CreateImageRegion(region ImageRegion) (NodeID, error) {
	if region.Bounds.Width <= 0 || region.Bounds.Height <= 0 {
		return "", fmt.Errorf("image region %q has empty bounds", region.Name)
	}
	if len(region.Image) == 0 {
		return "", fmt.Errorf("image region %q has no image content", region.Name)
	}

	sum := sha256.Sum256(region.Image)
	hash := hex.EncodeToString(sum[:])

	d.mu.Lock()
	defer d.mu.Unlock()

	d.images[hash] = region.Image
	node := d.newNode(NodeImageRegion)
	node.Name = region.Name
	node.Bounds = region.Bounds
	node.ImageHash = hash
	node.ScaleMode = region.ScaleMode
	if node.ScaleMode == "" {
		node.ScaleMode = ScaleFill
	}
	return node.ID, nil
}

func (d *Document) CreateNote(note Note) (NodeID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	node := d.newNode(NodeNote)
	node.Text = note.Text
	node.Name = note.Text
	node.Bounds = Rect{X: note.X, Y: note.Y, Width: 240, Height: 240}
	return node.ID, nil
}

// CreateSlide creates a detached slide. It is positioned after the slides
// already on the page when appended.
func (d *Document) CreateSlide() (Slide, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	node := d.newNode(NodeSlide)
	node.Bounds = Rect{Width: d.slideWidth, Height: d.slideHeight}

	return Slide{ID: node.ID, Width: d.slideWidth, Height: d.slideHeight}, nil
}

func (d *Document) WrapInComponent(child NodeID, name string) (NodeID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	inner, ok := d.nodes[child]
	if !ok {
		return "", fmt.Errorf("node %s not found", child)
	}

	node := d.newNode(NodeComponent)
	node.Name = name
	node.Bounds = inner.Bounds
	node.Children = []NodeID{child}
	inner.Parent = node.ID
	inner.Bounds.X, inner.Bounds.Y = 0, 0
	return node.ID, nil
}

func (d *Document) Append(node NodeID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.nodes[node]; !ok {
		return fmt.Errorf("node %s not found", node)
	}
	slides := 0
	for _, id := range d.page {
		if id == node {
			return nil
		}
		if d.nodes[id].Type == NodeSlide {
			slides++
		}
	}

	if n := d.nodes[node]; n.Type == NodeSlide {
		n.Name = fmt.Sprintf("Slide %d", slides+1)
		n.Bounds.X = float64(slides) * (n.Bounds.Width + slideGap)
	}
	d.page = append(d.page, node)
	return nil
}

func (d *Document) AppendTo(parent, child NodeID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.nodes[parent]
	if !ok {
		return fmt.Errorf("parent node %s not found", parent)
	}
	c, ok := d.nodes[child]
	if !ok {
		return fmt.Errorf("node %s not found", child)
	}
	c.Parent = parent
	p.Children = append(p.Children, child)
	return nil
}

// Remove deletes a node with its descendants and detaches it from its
// parent, the page and the selection
func (d *Document) Remove(id NodeID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	node, ok := d.nodes[id]
	if !ok {
		return fmt.Errorf("node %s not found", id)
	}
	if parent, ok := d.nodes[node.Parent]; ok {
		parent.Children = without(parent.Children, id)
	}
	d.removeTree(node)
	d.pruneImages()
	return nil
}

func (d *Document) removeTree(node *Node) {
	for _, child := range node.Children {
		if c, ok := d.nodes[child]; ok {
			d.removeTree(c)
		}
	}
	delete(d.nodes, node.ID)
	d.order = without(d.order, node.ID)
	d.page = without(d.page, node.ID)
	d.selection = without(d.selection, node.ID)
}

// pruneImages drops content no remaining node refers to
func (d *Document) pruneImages() {
	used := make(map[string]bool, len(d.images))
	for _, node := range d.nodes {
		if node.ImageHash != "" {
			used[node.ImageHash] = true
		}
	}
	for hash := range d.images {
		if !used[hash] {
			delete(d.images, hash)
		}
	}
}

func without(ids []NodeID, id NodeID) []NodeID {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func (d *Document) Select(nodes []NodeID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, id := range nodes {
		if _, ok := d.nodes[id]; !ok {
			return fmt.Errorf("node %s not found", id)
		}
	}
	d.selection = append([]NodeID(nil), nodes...)
	return nil
}

// ScrollIntoView moves the viewport to the bounding box of nodes
func (d *Document) ScrollIntoView(nodes []NodeID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(nodes) == 0 {
		return nil
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, id := range nodes {
		node, ok := d.nodes[id]
		if !ok {
			return fmt.Errorf("node %s not found", id)
		}
		b := d.absoluteBounds(node)
		minX = math.Min(minX, b.X)
		minY = math.Min(minY, b.Y)
		maxX = math.Max(maxX, b.X+b.Width)
		maxY = math.Max(maxY, b.Y+b.Height)
	}

	d.viewport = &Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
	return nil
}

func (d *Document) SetViewMode(mode ViewMode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.viewMode = mode
	return nil
}

// absoluteBounds resolves a node's bounds against its ancestors
func (d *Document) absoluteBounds(node *Node) Rect {
	b := node.Bounds
	for parent := node.Parent; parent != ""; {
		p, ok := d.nodes[parent]
		if !ok {
			break
		}
		b.X += p.Bounds.X
		b.Y += p.Bounds.Y
		parent = p.Parent
	}
	return b
}

// Node returns a copy of the node with the given id
func (d *Document) Node(id NodeID) (Node, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	node, ok := d.nodes[id]
	if !ok {
		return Node{}, false
	}
	out := *node
	out.Children = append([]NodeID(nil), node.Children...)
	return out, true
}

// Image returns the content stored under an image hash
func (d *Document) Image(hash string) ([]byte, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	data, ok := d.images[hash]
	return data, ok
}

// Snapshot exports the document state without image content
func (d *Document) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snap := Snapshot{
		Page:      append([]NodeID{}, d.page...),
		Nodes:     make([]Node, 0, len(d.order)),
		Selection: append([]NodeID{}, d.selection...),
		ViewMode:  d.viewMode,
		Images:    make(map[string]int, len(d.images)),
	}
	for _, id := range d.order {
		node := *d.nodes[id]
		node.Children = append([]NodeID(nil), node.Children...)
		snap.Nodes = append(snap.Nodes, node)
	}
	if d.viewport != nil {
		vp := *d.viewport
		snap.Viewport = &vp
	}
	for hash, data := range d.images {
		snap.Images[hash] = len(data)
	}
	return snap
}

// MarshalJSON encodes the document snapshot
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Snapshot())
}
