package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"fileforge/internal/services"
)

// ImageConverter re-encodes raster images in process. Formats without a
// decoder or encoder in the imaging stack (svg, webp) yield a conversion
// failure.
type ImageConverter struct{}

func NewImageConverter() *ImageConverter {
	return &ImageConverter{}
}

func (i *ImageConverter) Name() string { return "image" }

var imagingFormats = map[string]imaging.Format{
	"jpg":  imaging.JPEG,
	"jpeg": imaging.JPEG,
	"png":  imaging.PNG,
	"gif":  imaging.GIF,
	"bmp":  imaging.BMP,
	"tiff": imaging.TIFF,
}

func (i *ImageConverter) Convert(ctx context.Context, req Request) ([]Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	format, ok := imagingFormats[req.OutputFormat]
	if !ok {
		return nil, services.Wrap(services.ErrConversion, "image", "convert",
			"no encoder for output format "+req.OutputFormat, nil)
	}

	img, err := imaging.Open(req.InputPath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, services.Wrap(services.ErrConversion, "image", "decode",
			"decode "+req.InputFormat+" input", err)
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	outputPath := filepath.Join(req.OutputDir, OutputName(req.OutputFormat))

	var opts []imaging.EncodeOption
	if format == imaging.JPEG {
		quality := req.Profile.QualityPercent
		if quality <= 0 || quality > 100 {
			quality = 75
		}
		opts = append(opts, imaging.JPEGQuality(quality))
	}
	if err := imaging.Save(img, outputPath, opts...); err != nil {
		return nil, services.Wrap(services.ErrConversion, "image", "encode",
			"encode "+req.OutputFormat+" output", err)
	}
	return collectSingle(outputPath, req.OutputFormat)
}
