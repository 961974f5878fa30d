package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// Artifact is the terminal output of a run: the final image on disk with its
// exact pixel dimensions and stamped density.
type Artifact struct {
	Path   string
	Width  int
	Height int
	DPI    int
}

// ResizeToFile resamples the image at inputPath to exactly width x height
// using a Catmull-Rom kernel, encodes it as JPEG at the given quality with
// dpi stamped into the JFIF density fields, and writes it to outputPath.
func ResizeToFile(inputPath, outputPath string, width, height, dpi, quality int) (Artifact, error) {
	if width <= 0 || height <= 0 {
		return Artifact{}, fmt.Errorf("target dimensions must be positive, got %dx%d", width, height)
	}

	file, err := os.Open(inputPath)
	if err != nil {
		return Artifact{}, fmt.Errorf("open image: %w", err)
	}
	src, _, err := image.Decode(file)
	file.Close()
	if err != nil {
		return Artifact{}, fmt.Errorf("decode image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return Artifact{}, fmt.Errorf("encode jpeg: %w", err)
	}

	stamped, err := StampDensity(buf.Bytes(), dpi)
	if err != nil {
		return Artifact{}, err
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Artifact{}, fmt.Errorf("ensure output directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, stamped, 0o644); err != nil {
		return Artifact{}, fmt.Errorf("write final image: %w", err)
	}

	return Artifact{Path: outputPath, Width: width, Height: height, DPI: dpi}, nil
}
