package imaging

import (
	"bytes"
	"encoding/base64"
	"image"

	"github.com/disintegration/imaging"
	Logger "github.com/hasibdev/portfeed/utils/log"
)

const (
	// Largest dimension kept for the full-size encoding. Sources already
	// within bounds are never upscaled.
	MaxFullWidth  = 1200
	MaxFullHeight = 1200
	fullQuality   = 86

	// The thumbnail frame is fixed. Sources are center-cropped to this aspect
	// ratio first, then scaled to exactly this size.
	ThumbWidth   = 320
	ThumbHeight  = 240
	thumbQuality = 82
)

// Processed holds the two derived artifacts produced for an upload, both
// encoded as JPEG data URLs ready to be stored inline on the post record.
// Both are empty when no image was supplied or the upload is undecodable.
type Processed struct {
	Image string
	Thumb string
}

// Pipeline turns raw uploaded image bytes into the bounded full-size encoding
// and the fixed-frame thumbnail. Both outputs are pure functions of the input
// bytes and the package constants.
type Pipeline struct{}

func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Process decodes raw and derives both artifacts. A missing or undecodable
// upload degrades to empty outputs rather than failing the write that
// triggered it.
func (p *Pipeline) Process(raw []byte) Processed {
	if len(raw) == 0 {
		return Processed{}
	}

	src, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		Logger.Log.Warn("cannot decode uploaded image, storing post without image: ", err)
		return Processed{}
	}

	return Processed{
		Image: encodeDataURL(boundFull(src), fullQuality),
		Thumb: encodeDataURL(coverThumb(src), thumbQuality),
	}
}

// boundFull scales src down uniformly so neither dimension exceeds the full
// bounds. A source already within bounds passes through at scale 1.
func boundFull(src image.Image) image.Image {
	b := src.Bounds()
	if b.Dx() <= MaxFullWidth && b.Dy() <= MaxFullHeight {
		return src
	}
	return imaging.Fit(src, MaxFullWidth, MaxFullHeight, imaging.Lanczos)
}

// coverThumb center-crops src to the thumbnail aspect ratio and scales the
// crop to exactly ThumbWidth x ThumbHeight.
func coverThumb(src image.Image) image.Image {
	b := src.Bounds()
	crop := imaging.Crop(src, coverRect(b.Dx(), b.Dy(), ThumbWidth, ThumbHeight))
	return imaging.Resize(crop, ThumbWidth, ThumbHeight, imaging.Lanczos)
}

// coverRect computes the centered source region whose aspect ratio matches
// dstW:dstH. A source relatively wider than the target is cropped
// symmetrically left and right at full height; a relatively taller one is
// cropped symmetrically top and bottom at full width.
func coverRect(srcW, srcH, dstW, dstH int) image.Rectangle {
	sw, sh := srcW, srcH
	if srcW*dstH > dstW*srcH {
		// wider than target ratio
		sw = srcH * dstW / dstH
	} else {
		sh = srcW * dstH / dstW
	}
	sx := (srcW - sw) / 2
	sy := (srcH - sh) / 2
	return image.Rect(sx, sy, sx+sw, sy+sh)
}

func encodeDataURL(img image.Image, quality int) string {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		Logger.Log.Warn("cannot encode derived image: ", err)
		return ""
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
