package convert_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"fileforge/internal/convert"
	"fileforge/internal/services"
)

func writeTestPNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create png: %v", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
}

func TestImageConverterReencodes(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.png")
	writeTestPNG(t, inputPath)

	converter := convert.NewImageConverter()
	artifacts, err := converter.Convert(context.Background(), convert.Request{
		InputPath:    inputPath,
		OutputDir:    filepath.Join(dir, "out"),
		InputFormat:  "png",
		OutputFormat: "jpg",
		Profile:      mustProfile(t, "premium"),
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(artifacts) != 1 {
		t.Fatalf("got %d artifacts, want 1", len(artifacts))
	}
	if artifacts[0].Name != "converted.jpg" {
		t.Fatalf("artifact name = %q", artifacts[0].Name)
	}
	if artifacts[0].Size <= 0 {
		t.Fatalf("artifact size = %d", artifacts[0].Size)
	}
}

func TestImageConverterRejectsUnsupportedOutput(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.png")
	writeTestPNG(t, inputPath)

	converter := convert.NewImageConverter()
	_, err := converter.Convert(context.Background(), convert.Request{
		InputPath:    inputPath,
		OutputDir:    filepath.Join(dir, "out"),
		InputFormat:  "png",
		OutputFormat: "svg",
		Profile:      mustProfile(t, "standard"),
	})
	if !errors.Is(err, services.ErrConversion) {
		t.Fatalf("expected conversion failure, got %v", err)
	}
}

func TestImageConverterRejectsCorruptInput(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.png")
	if err := os.WriteFile(inputPath, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	converter := convert.NewImageConverter()
	_, err := converter.Convert(context.Background(), convert.Request{
		InputPath:    inputPath,
		OutputDir:    filepath.Join(dir, "out"),
		InputFormat:  "png",
		OutputFormat: "jpg",
		Profile:      mustProfile(t, "economy"),
	})
	if !errors.Is(err, services.ErrConversion) {
		t.Fatalf("expected conversion failure, got %v", err)
	}
}
