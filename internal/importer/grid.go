package importer

import (
	"github.com/brauni/drive-canvas-importer/internal/canvas"
	"github.com/brauni/drive-canvas-importer/internal/drive"
)

// GridPlacer lays images out left to right, then top to bottom, as square
// regions of Settings.ImageSize
type GridPlacer struct{}

func (GridPlacer) Variant() Variant {
	return VariantGrid
}

func (GridPlacer) NodesPerItem() int {
	return 1
}

// GridPosition returns the top-left corner of the index-th grid cell
func GridPosition(index int, settings Settings) (x, y float64) {
	step := float64(settings.ImageSize + settings.Spacing)
	col := index % settings.ImagesPerRow
	row := index / settings.ImagesPerRow
	return float64(col) * step, float64(row) * step
}

func (GridPlacer) Place(sink canvas.Sink, index int, record drive.FileRecord, data []byte, settings Settings) ([]canvas.NodeID, error) {
	x, y := GridPosition(index, settings)
	size := float64(settings.ImageSize)

	scaleMode := canvas.ScaleFill
	if settings.PreserveAspectRatio {
		scaleMode = canvas.ScaleFit
	}

	node, err := sink.CreateImageRegion(canvas.ImageRegion{
		Name:      record.Name,
		Bounds:    canvas.Rect{X: x, Y: y, Width: size, Height: size},
		Image:     data,
		ScaleMode: scaleMode,
	})
	if err != nil {
		return nil, err
	}

	if settings.CreateComponents {
		component, err := sink.WrapInComponent(node, record.Name)
		if err != nil {
			return nil, discard(sink, err, node)
		}
		node = component
	}

	if err := sink.Append(node); err != nil {
		return nil, discard(sink, err, node)
	}
	return []canvas.NodeID{node}, nil
}

func (GridPlacer) Finish(sink canvas.Sink, nodes []canvas.NodeID) error {
	if err := sink.Select(nodes); err != nil {
		return err
	}
	return sink.ScrollIntoView(nodes)
}
