package importer

import (
	"bytes"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ImageDimensions decodes data and returns its pixel size after EXIF
// orientation is applied. ok is false for formats that cannot be decoded,
// such as SVG.
func ImageDimensions(data []byte) (width, height int, ok bool) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return 0, 0, false
	}
	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy(), true
}
