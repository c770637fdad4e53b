package convert

import (
	"context"
	"os"
	"path/filepath"

	"fileforge/internal/fileutil"
	"fileforge/internal/services"
	"fileforge/internal/services/soffice"
)

// DocumentConverter delegates document rendering to headless LibreOffice.
// The core owns invocation, error capture, and artifact collection only.
type DocumentConverter struct {
	client *soffice.Client
}

func NewDocumentConverter(client *soffice.Client) *DocumentConverter {
	return &DocumentConverter{client: client}
}

func (d *DocumentConverter) Name() string { return "document" }

// HealthCheck verifies the soffice binary is resolvable.
func (d *DocumentConverter) HealthCheck(_ context.Context) error {
	return lookupBinary(d.client.Binary())
}

func (d *DocumentConverter) Convert(ctx context.Context, req Request) ([]Artifact, error) {
	produced, err := d.client.Convert(ctx, req.InputPath, req.OutputDir, req.OutputFormat)
	if err != nil {
		return nil, err
	}

	outputPath := filepath.Join(req.OutputDir, OutputName(req.OutputFormat))
	if produced != outputPath {
		if err := os.Rename(produced, outputPath); err != nil {
			// Cross-device staging directories fall back to a copy.
			if copyErr := fileutil.CopyFile(produced, outputPath); copyErr != nil {
				return nil, services.Wrap(services.ErrConversion, "document", "collect",
					"move produced document", copyErr)
			}
			_ = os.Remove(produced)
		}
	}
	return collectSingle(outputPath, req.OutputFormat)
}
