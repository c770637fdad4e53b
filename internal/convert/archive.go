package convert

import (
	"context"
	"os"
	"path/filepath"

	"fileforge/internal/services"
	"fileforge/internal/services/archiver"
)

// ArchiveConverter repacks archives by extracting the input and packing the
// extracted tree in the requested format. 7z and rar inputs have no
// configured extraction tool and fail within the category.
type ArchiveConverter struct {
	client *archiver.Client
}

func NewArchiveConverter(client *archiver.Client) *ArchiveConverter {
	return &ArchiveConverter{client: client}
}

func (a *ArchiveConverter) Name() string { return "archive" }

// HealthCheck verifies the archive binaries are resolvable.
func (a *ArchiveConverter) HealthCheck(_ context.Context) error {
	for _, binary := range a.client.Binaries() {
		if err := lookupBinary(binary); err != nil {
			return err
		}
	}
	return nil
}

func (a *ArchiveConverter) Convert(ctx context.Context, req Request) ([]Artifact, error) {
	extractDir, err := os.MkdirTemp("", "fileforge-extract-*")
	if err != nil {
		return nil, services.Wrap(services.ErrConversion, "archive", "extract", "create extraction dir", err)
	}
	defer os.RemoveAll(extractDir)

	if err := a.client.Unpack(ctx, req.InputPath, req.InputFormat, extractDir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConversion, "archive", "pack", "create output dir", err)
	}

	outputPath := filepath.Join(req.OutputDir, OutputName(req.OutputFormat))
	if err := a.client.Pack(ctx, extractDir, outputPath, req.OutputFormat); err != nil {
		return nil, err
	}
	return collectSingle(outputPath, req.OutputFormat)
}
