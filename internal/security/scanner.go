package security

import (
	"bytes"
	"context"
	"io"
	"os"

	"fileforge/internal/services"
)

// ScanResult is the outcome of a pre-flight scan. Clean=false always means
// the submission is rejected before any job is created.
type ScanResult struct {
	Clean      bool
	Threats    []string
	Confidence float64
}

// Scanner gates submissions before they are queued. The detection logic is
// pluggable; the contract is only that a non-clean result blocks the job.
type Scanner interface {
	Scan(ctx context.Context, path, declaredFormat string) (ScanResult, error)
}

// Config tunes the built-in signature scanner.
type Config struct {
	Enabled bool
	// FlagArchives marks executable signatures inside archive uploads too.
	// Off by default since archives legitimately carry executables.
	FlagArchives  bool
	MinConfidence float64
}

// signatureScanner flags known dangerous byte prefixes. Conservative on
// purpose: it reads only the head of the file.
type signatureScanner struct {
	cfg Config
}

// NewScanner returns the built-in signature scanner. A disabled scanner
// reports every file clean.
func NewScanner(cfg Config) Scanner {
	return &signatureScanner{cfg: cfg}
}

const headSize = 4096

var eicar = []byte(`X5O!P%@AP[4\PZX54(P^)7CC)7}$EICAR-STANDARD-ANTIVIRUS-TEST-FILE!$H+H*`)

type threatSignature struct {
	name         string
	prefix       []byte
	executable   bool
	anywhere     bool
}

var threatSignatures = []threatSignature{
	{name: "eicar-test-signature", prefix: eicar, anywhere: true},
	{name: "windows-executable", prefix: []byte("MZ"), executable: true},
	{name: "elf-executable", prefix: []byte{0x7F, 'E', 'L', 'F'}, executable: true},
	{name: "macho-executable", prefix: []byte{0xFE, 0xED, 0xFA, 0xCE}, executable: true},
	{name: "shell-script", prefix: []byte("#!"), executable: true},
}

var archiveFormats = map[string]bool{
	"zip": true, "tar": true, "gz": true, "7z": true, "rar": true,
}

func (s *signatureScanner) Scan(ctx context.Context, path, declaredFormat string) (ScanResult, error) {
	if !s.cfg.Enabled {
		return ScanResult{Clean: true, Confidence: 1.0}, nil
	}
	if err := ctx.Err(); err != nil {
		return ScanResult{}, services.Wrap(services.ErrTransient, "security", "scan", "scan interrupted", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return ScanResult{}, services.Wrap(services.ErrTransient, "security", "scan", "open staged file", err)
	}
	defer file.Close()

	head := make([]byte, headSize)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return ScanResult{}, services.Wrap(services.ErrTransient, "security", "scan", "read staged file", err)
	}
	head = head[:n]

	isArchive := archiveFormats[declaredFormat]
	var threats []string
	for _, sig := range threatSignatures {
		if sig.executable && isArchive && !s.cfg.FlagArchives {
			continue
		}
		matched := false
		if sig.anywhere {
			matched = bytes.Contains(head, sig.prefix)
		} else {
			matched = bytes.HasPrefix(head, sig.prefix)
		}
		if matched {
			threats = append(threats, sig.name)
		}
	}

	if len(threats) > 0 {
		return ScanResult{Clean: false, Threats: threats, Confidence: 0.95}, nil
	}
	return ScanResult{Clean: true, Confidence: 0.99}, nil
}
