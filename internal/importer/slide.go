package importer

import (
	"math"

	"github.com/brauni/drive-canvas-importer/internal/canvas"
	"github.com/brauni/drive-canvas-importer/internal/drive"
)

const (
	slideImageMaxWidth  = 800
	slideImageMaxHeight = 600
	slideImageMaxRatio  = 0.8
)

// SlidePlacer puts each image centered on a new slide
type SlidePlacer struct{}

func (SlidePlacer) Variant() Variant {
	return VariantSlide
}

func (SlidePlacer) NodesPerItem() int {
	return 1
}

// SlideImageBounds returns the centered region for an image of the given
// pixel size on a slide. Unknown pixel sizes (zero) fill the whole box.
func SlideImageBounds(slideWidth, slideHeight float64, imageWidth, imageHeight int) canvas.Rect {
	if slideWidth <= 0 || slideHeight <= 0 {
		slideWidth, slideHeight = canvas.DefaultSlideWidth, canvas.DefaultSlideHeight
	}

	boxW := math.Min(slideImageMaxWidth, slideWidth*slideImageMaxRatio)
	boxH := math.Min(slideImageMaxHeight, slideHeight*slideImageMaxRatio)

	w, h := boxW, boxH
	if imageWidth > 0 && imageHeight > 0 {
		scale := math.Min(1, math.Min(boxW/float64(imageWidth), boxH/float64(imageHeight)))
		w = float64(imageWidth) * scale
		h = float64(imageHeight) * scale
	}

	return canvas.Rect{
		X:      (slideWidth - w) / 2,
		Y:      (slideHeight - h) / 2,
		Width:  w,
		Height: h,
	}
}

func (SlidePlacer) Place(sink canvas.Sink, _ int, record drive.FileRecord, data []byte, _ Settings) ([]canvas.NodeID, error) {
	slide, err := sink.CreateSlide()
	if err != nil {
		return nil, err
	}

	imageWidth, imageHeight, _ := ImageDimensions(data)
	bounds := SlideImageBounds(slide.Width, slide.Height, imageWidth, imageHeight)

	region, err := sink.CreateImageRegion(canvas.ImageRegion{
		Name:      record.Name,
		Bounds:    bounds,
		Image:     data,
		ScaleMode: canvas.ScaleFit,
	})
	if err != nil {
		return nil, discard(sink, err, slide.ID)
	}

	if err := sink.AppendTo(slide.ID, region); err != nil {
		return nil, discard(sink, err, region, slide.ID)
	}

	// the slide only joins the deck once it holds its image
	if err := sink.Append(slide.ID); err != nil {
		return nil, discard(sink, err, slide.ID)
	}
	return []canvas.NodeID{slide.ID}, nil
}

func (SlidePlacer) Finish(sink canvas.Sink, nodes []canvas.NodeID) error {
	if err := sink.SetViewMode(canvas.ViewGrid); err != nil {
		return err
	}
	if err := sink.Select(nodes); err != nil {
		return err
	}
	return sink.ScrollIntoView(nodes)
}
