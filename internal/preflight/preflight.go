// Package preflight verifies the daemon's runtime environment before jobs
// are accepted: external converter binaries, directory writability, and
// free disk space.
package preflight

import (
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"fileforge/internal/config"
)

// Requirement defines an external tool a converter relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the configured external tools.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "LibreOffice", Command: cfg.Tools.Soffice, Description: "document conversion"},
		{Name: "FFmpeg", Command: cfg.Tools.FFmpeg, Description: "audio and video conversion"},
		{Name: "zip", Command: cfg.Tools.Zip, Description: "archive packing"},
		{Name: "unzip", Command: cfg.Tools.Unzip, Description: "archive extraction"},
		{Name: "tar", Command: cfg.Tools.Tar, Description: "tar archive handling"},
		{Name: "Assimp", Command: cfg.Tools.Assimp, Description: "3D and CAD mesh export", Optional: true},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// CheckWritable verifies the process can write into dir.
func CheckWritable(dir string) error {
	if err := unix.Access(dir, unix.W_OK); err != nil {
		return fmt.Errorf("directory %s is not writable: %w", dir, err)
	}
	return nil
}

// FreeSpace reports the available bytes on the filesystem holding path.
func FreeSpace(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// MinFreeSpaceBytes is the floor below which the daemon refuses new work.
const MinFreeSpaceBytes = 256 << 20

// CheckDirectories verifies the staging and output directories are writable
// and the staging filesystem has room to accept uploads.
func CheckDirectories(cfg *config.Config) error {
	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		if err := CheckWritable(dir); err != nil {
			return err
		}
	}
	free, err := FreeSpace(cfg.Paths.StagingDir)
	if err != nil {
		return err
	}
	if free < MinFreeSpaceBytes {
		return fmt.Errorf("staging filesystem has %d bytes free, need at least %d", free, uint64(MinFreeSpaceBytes))
	}
	return nil
}
