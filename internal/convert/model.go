package convert

import (
	"context"
	"path/filepath"

	"fileforge/internal/services/meshconv"
)

// ModelConverter delegates 3D and CAD mesh exchange to the assimp CLI.
type ModelConverter struct {
	client *meshconv.Client
}

func NewModelConverter(client *meshconv.Client) *ModelConverter {
	return &ModelConverter{client: client}
}

func (m *ModelConverter) Name() string { return "model" }

// HealthCheck verifies the assimp binary is resolvable.
func (m *ModelConverter) HealthCheck(_ context.Context) error {
	return lookupBinary(m.client.Binary())
}

func (m *ModelConverter) Convert(ctx context.Context, req Request) ([]Artifact, error) {
	outputPath := filepath.Join(req.OutputDir, OutputName(req.OutputFormat))
	if err := m.client.Export(ctx, req.InputPath, outputPath); err != nil {
		return nil, err
	}
	return collectSingle(outputPath, req.OutputFormat)
}
