package importer

import (
	"github.com/brauni/drive-canvas-importer/internal/canvas"
	"github.com/brauni/drive-canvas-importer/internal/drive"
)

const (
	cardColumnWidth = 200
	cardRowWrap     = 1000
	cardRowHeight   = 250
	cardImageSize   = 150
	cardImageOffset = 170
)

// CardPlacer creates a note carrying the file name with a preview image
// above it. Rows wrap once the running x passes cardRowWrap.
type CardPlacer struct{}

func (CardPlacer) Variant() Variant {
	return VariantCard
}

func (CardPlacer) NodesPerItem() int {
	return 2
}

// CardPosition returns the note anchor of the index-th card
func CardPosition(index int) (x, y float64) {
	perRow := cardRowWrap/cardColumnWidth + 1
	return float64(index%perRow) * cardColumnWidth, float64(index/perRow) * cardRowHeight
}

func (CardPlacer) Place(sink canvas.Sink, index int, record drive.FileRecord, data []byte, _ Settings) ([]canvas.NodeID, error) {
	x, y := CardPosition(index)

	note, err := sink.CreateNote(canvas.Note{Text: record.Name, X: x, Y: y})
	if err != nil {
		return nil, err
	}

	preview, err := sink.CreateImageRegion(canvas.ImageRegion{
		Name:      record.Name,
		Bounds:    canvas.Rect{X: x, Y: y - cardImageOffset, Width: cardImageSize, Height: cardImageSize},
		Image:     data,
		ScaleMode: canvas.ScaleFill,
	})
	if err != nil {
		return nil, discard(sink, err, note)
	}

	for _, node := range []canvas.NodeID{note, preview} {
		if err := sink.Append(node); err != nil {
			return nil, discard(sink, err, note, preview)
		}
	}
	return []canvas.NodeID{note, preview}, nil
}

func (CardPlacer) Finish(sink canvas.Sink, nodes []canvas.NodeID) error {
	if err := sink.Select(nodes); err != nil {
		return err
	}
	return sink.ScrollIntoView(nodes)
}
