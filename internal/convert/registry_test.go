package convert_test

import (
	"context"
	"errors"
	"testing"

	"fileforge/internal/convert"
	"fileforge/internal/services"
)

type staticConverter struct {
	name string
}

func (s staticConverter) Name() string { return s.name }

func (s staticConverter) Convert(context.Context, convert.Request) ([]convert.Artifact, error) {
	return []convert.Artifact{{Name: "converted.out", Size: 1}}, nil
}

func TestRegistryDispatch(t *testing.T) {
	registry := convert.NewRegistry()
	registry.Register(staticConverter{name: "data"})
	registry.Register(staticConverter{name: "image"})

	converter, err := registry.Get("data")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if converter.Name() != "data" {
		t.Fatalf("dispatched %q", converter.Name())
	}

	names := registry.Names()
	if len(names) != 2 || names[0] != "data" || names[1] != "image" {
		t.Fatalf("names = %v", names)
	}
}

func TestRegistryUnknownConverter(t *testing.T) {
	registry := convert.NewRegistry()
	_, err := registry.Get("holograms")
	if !errors.Is(err, services.ErrConversion) {
		t.Fatalf("expected conversion error, got %v", err)
	}
}

func TestOutputName(t *testing.T) {
	if got := convert.OutputName("pdf"); got != "converted.pdf" {
		t.Fatalf("OutputName = %q", got)
	}
}
