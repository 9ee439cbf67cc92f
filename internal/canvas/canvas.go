// Package canvas defines the operations the importers need from a visual
// document and provides an in-memory document implementing them.
package canvas

// NodeID references a node created on a canvas
type NodeID string

// ScaleMode controls how an image fills its region
type ScaleMode string

const (
	ScaleFit  ScaleMode = "FIT"
	ScaleFill ScaleMode = "FILL"
)

// ViewMode is the presentation view of a slide deck
type ViewMode string

const (
	ViewSingle ViewMode = "single"
	ViewGrid   ViewMode = "grid"
)

// Default slide dimensions used when a sink does not size its slides
const (
	DefaultSlideWidth  = 1920
	DefaultSlideHeight = 1080
)

// Rect is a position and size in canvas coordinates
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ImageRegion describes a rectangle filled with image content
type ImageRegion struct {
	Name      string
	Bounds    Rect
	Image     []byte
	ScaleMode ScaleMode
}

// Note describes a text-bearing card
type Note struct {
	Text string
	X    float64
	Y    float64
}

// Slide is a newly created slide-like container
type Slide struct {
	ID     NodeID
	Width  float64
	Height float64
}

// Sink is the visual document the importers place content on.
// Created nodes are detached until appended to the page or a container.
type Sink interface {
	CreateImageRegion(region ImageRegion) (NodeID, error)
	CreateNote(note Note) (NodeID, error)
	CreateSlide() (Slide, error)
	WrapInComponent(child NodeID, name string) (NodeID, error)
	Append(node NodeID) error
	AppendTo(parent, child NodeID) error
	Remove(node NodeID) error
	Select(nodes []NodeID) error
	ScrollIntoView(nodes []NodeID) error
	SetViewMode(mode ViewMode) error
}
