package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"fileforge/internal/quality"
	"fileforge/internal/services/ffmpeg"
)

// MediaConverter covers the audio and video categories, delegating to
// ffmpeg with tier-driven encoding flags.
type MediaConverter struct {
	client *ffmpeg.Client
}

func NewMediaConverter(client *ffmpeg.Client) *MediaConverter {
	return &MediaConverter{client: client}
}

func (m *MediaConverter) Name() string { return "media" }

// HealthCheck verifies the ffmpeg binary is resolvable.
func (m *MediaConverter) HealthCheck(_ context.Context) error {
	return lookupBinary(m.client.Binary())
}

func (m *MediaConverter) Convert(ctx context.Context, req Request) ([]Artifact, error) {
	outputPath := filepath.Join(req.OutputDir, OutputName(req.OutputFormat))
	args := encodeArgs(req.OutputFormat, req.Profile)
	if err := m.client.Transcode(ctx, req.InputPath, outputPath, args); err != nil {
		return nil, err
	}
	return collectSingle(outputPath, req.OutputFormat)
}

var audioOutputs = map[string]bool{
	"mp3": true, "wav": true, "flac": true, "aac": true, "ogg": true, "m4a": true,
}

// encodeArgs maps a quality profile onto ffmpeg flags. Audio gets a bitrate
// ladder, video a CRF ladder; lossless outputs skip the rate controls.
func encodeArgs(outputFormat string, profile quality.Profile) []string {
	if audioOutputs[outputFormat] {
		switch outputFormat {
		case "wav", "flac":
			return nil
		}
		bitrate := 96 + profile.QualityPercent*2
		return []string{"-b:a", fmt.Sprintf("%dk", bitrate)}
	}

	// video: lower CRF means higher fidelity
	crf := 36 - profile.QualityPercent/4
	if crf < 14 {
		crf = 14
	}
	args := []string{"-crf", strconv.Itoa(crf)}
	if profile.Priority == quality.PrioritySpeed {
		args = append(args, "-preset", "fast")
	}
	return args
}
