package formats_test

import (
	"errors"
	"testing"

	"fileforge/internal/formats"
	"fileforge/internal/services"
)

func TestValidateConversionWithinCategory(t *testing.T) {
	registry := formats.NewRegistry()

	cases := []struct {
		input  string
		output string
	}{
		{"docx", "pdf"},
		{"png", "jpg"},
		{"wav", "mp3"},
		{"mkv", "mp4"},
		{"tar", "zip"},
		{"json", "csv"},
		{"obj", "stl"},
	}
	for _, tc := range cases {
		if err := registry.ValidateConversion(tc.input, tc.output); err != nil {
			t.Fatalf("ValidateConversion(%q, %q) returned error: %v", tc.input, tc.output, err)
		}
	}
}

func TestValidateConversionRejectsCrossCategory(t *testing.T) {
	registry := formats.NewRegistry()

	cases := []struct {
		input  string
		output string
	}{
		{"zip", "mp3"},
		{"json", "png"},
		{"mp4", "pdf"},
		{"docx", "stl"},
	}
	for _, tc := range cases {
		err := registry.ValidateConversion(tc.input, tc.output)
		if !errors.Is(err, services.ErrIncompatibleFormat) {
			t.Fatalf("ValidateConversion(%q, %q) = %v, want incompatible format", tc.input, tc.output, err)
		}
	}
}

func TestValidateConversionUnknownInput(t *testing.T) {
	registry := formats.NewRegistry()
	err := registry.ValidateConversion("xyz", "pdf")
	if !errors.Is(err, services.ErrUnknownFormat) {
		t.Fatalf("expected unknown format, got %v", err)
	}
}

func TestEveryFormatBelongsToOneCategory(t *testing.T) {
	registry := formats.NewRegistry()
	owner := map[string]string{}
	for _, category := range registry.Categories() {
		all := append(append([]string{}, category.Inputs...), category.Outputs...)
		for _, format := range all {
			if prev, ok := owner[format]; ok && prev != category.ID {
				t.Fatalf("format %q claimed by both %q and %q", format, prev, category.ID)
			}
			owner[format] = category.ID
		}
	}
	for _, format := range registry.Formats() {
		if _, ok := owner[format]; !ok {
			t.Fatalf("format %q listed but unowned", format)
		}
	}
}

func TestCategoryForNormalizesInput(t *testing.T) {
	registry := formats.NewRegistry()
	category, ok := registry.CategoryFor(".PDF")
	if !ok {
		t.Fatal("expected .PDF to resolve")
	}
	if category.ID != "document" {
		t.Fatalf("CategoryFor(.PDF) = %q, want document", category.ID)
	}
	if category.DisplayName != "Document" {
		t.Fatalf("display name = %q, want Document", category.DisplayName)
	}
}

func TestArchiveOutputsExcludeProprietary(t *testing.T) {
	registry := formats.NewRegistry()
	category, ok := registry.CategoryFor("rar")
	if !ok {
		t.Fatal("rar should be known")
	}
	if category.ProducesOutput("rar") || category.ProducesOutput("7z") {
		t.Fatal("archive category must not offer rar/7z as outputs")
	}
}
