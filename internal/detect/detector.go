package detect

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"fileforge/internal/formats"
	"fileforge/internal/services"
)

// Detector classifies raw bytes plus a declared filename into a format id
// from the registry catalog.
type Detector struct {
	registry *formats.Registry
}

func New(registry *formats.Registry) *Detector {
	return &Detector{registry: registry}
}

// Detect applies the detection strategies in order, each only when the
// previous one is inconclusive: extension, binary signature, declared
// content type, text heuristics. Identical inputs always yield the
// identical result.
func (d *Detector) Detect(data []byte, declaredName, contentType string) (string, error) {
	if format, ok := d.byExtension(declaredName); ok {
		return format, nil
	}
	if format, ok := bySignature(data); ok && d.registry.Known(format) {
		return format, nil
	}
	if format, ok := byContentType(contentType); ok && d.registry.Known(format) {
		return format, nil
	}
	if format, ok := byTextHeuristics(data); ok && d.registry.Known(format) {
		return format, nil
	}
	return "", services.Wrap(services.ErrUnknownFormat, "detect", "detect", "no strategy matched "+declaredName, nil)
}

func (d *Detector) byExtension(name string) (string, bool) {
	ext := formats.Normalize(filepath.Ext(name))
	if ext == "" {
		return "", false
	}
	if !d.registry.Known(ext) {
		return "", false
	}
	return ext, true
}

// signature is a fixed magic-number table entry. Offset is where the prefix
// must appear; Second, when set, must also appear at SecondOffset.
type signature struct {
	format       string
	offset       int
	prefix       []byte
	secondOffset int
	second       []byte
}

var signatures = []signature{
	{format: "pdf", prefix: []byte("%PDF")},
	{format: "png", prefix: []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}},
	{format: "jpg", prefix: []byte{0xFF, 0xD8, 0xFF}},
	{format: "gif", prefix: []byte("GIF87a")},
	{format: "gif", prefix: []byte("GIF89a")},
	{format: "webp", prefix: []byte("RIFF"), secondOffset: 8, second: []byte("WEBP")},
	{format: "wav", prefix: []byte("RIFF"), secondOffset: 8, second: []byte("WAVE")},
	{format: "avi", prefix: []byte("RIFF"), secondOffset: 8, second: []byte("AVI ")},
	{format: "bmp", prefix: []byte("BM")},
	{format: "tiff", prefix: []byte{'I', 'I', 0x2A, 0x00}},
	{format: "tiff", prefix: []byte{'M', 'M', 0x00, 0x2A}},
	{format: "mp3", prefix: []byte("ID3")},
	{format: "mp3", prefix: []byte{0xFF, 0xFB}},
	{format: "flac", prefix: []byte("fLaC")},
	{format: "ogg", prefix: []byte("OggS")},
	{format: "mp4", offset: 4, prefix: []byte("ftyp")},
	{format: "mkv", prefix: []byte{0x1A, 0x45, 0xDF, 0xA3}},
	{format: "flv", prefix: []byte("FLV")},
	{format: "zip", prefix: []byte{'P', 'K', 0x03, 0x04}},
	{format: "gz", prefix: []byte{0x1F, 0x8B}},
	{format: "7z", prefix: []byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}},
	{format: "rar", prefix: []byte("Rar!")},
	{format: "xml", prefix: []byte("<?xml")},
}

func bySignature(data []byte) (string, bool) {
	for _, sig := range signatures {
		if !matchAt(data, sig.offset, sig.prefix) {
			continue
		}
		if len(sig.second) > 0 && !matchAt(data, sig.secondOffset, sig.second) {
			continue
		}
		return sig.format, true
	}
	return "", false
}

func matchAt(data []byte, offset int, want []byte) bool {
	if len(data) < offset+len(want) {
		return false
	}
	return bytes.Equal(data[offset:offset+len(want)], want)
}

var contentTypes = map[string]string{
	"application/pdf":  "pdf",
	"application/json": "json",
	"application/xml":  "xml",
	"text/xml":         "xml",
	"text/csv":         "csv",
	"text/html":        "html",
	"text/markdown":    "md",
	"text/plain":       "txt",
	"application/zip":  "zip",
	"application/gzip": "gz",
	"application/x-tar": "tar",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       "xlsx",
	"image/jpeg":    "jpg",
	"image/png":     "png",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/bmp":     "bmp",
	"image/tiff":    "tiff",
	"image/svg+xml": "svg",
	"audio/mpeg":    "mp3",
	"audio/wav":     "wav",
	"audio/flac":    "flac",
	"audio/ogg":     "ogg",
	"audio/aac":     "aac",
	"audio/mp4":     "m4a",
	"video/mp4":     "mp4",
	"video/webm":    "webm",
	"video/x-msvideo": "avi",
	"video/quicktime": "mov",
	"video/x-matroska": "mkv",
	"application/x-yaml": "yaml",
	"text/yaml":          "yaml",
}

func byContentType(contentType string) (string, bool) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType == "" {
		return "", false
	}
	if idx := strings.IndexByte(contentType, ';'); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	format, ok := contentTypes[contentType]
	return format, ok
}

// byTextHeuristics classifies ambiguous text payloads. Checked in a fixed
// order so identical bytes always classify identically.
func byTextHeuristics(data []byte) (string, bool) {
	if len(data) == 0 || !utf8.Valid(data) {
		return "", false
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", false
	}

	if looksLikeJSON(text) {
		return "json", true
	}
	if looksLikeXML(text) {
		return "xml", true
	}
	if looksLikeCSV(text) {
		return "csv", true
	}
	if looksLikeMarkdown(text) {
		return "md", true
	}
	if looksLikeHTML(text) {
		return "html", true
	}
	return "txt", true
}

func looksLikeJSON(text string) bool {
	if !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "[") {
		return false
	}
	return json.Valid([]byte(text))
}

func looksLikeXML(text string) bool {
	if strings.HasPrefix(text, "<?xml") {
		return true
	}
	if !strings.HasPrefix(text, "<") || !strings.HasSuffix(text, ">") {
		return false
	}
	open := strings.TrimLeft(text, "<")
	if open == "" || strings.HasPrefix(open, "!") {
		return false
	}
	// HTML payloads also open with a tag; leave those to the HTML check.
	return !looksLikeHTML(text)
}

var htmlMarkers = []string{"<!doctype html", "<html", "<head", "<body", "<div", "<p>", "<br"}

func looksLikeHTML(text string) bool {
	lowered := strings.ToLower(text)
	for _, marker := range htmlMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// looksLikeCSV requires at least two lines with the same nonzero comma count.
func looksLikeCSV(text string) bool {
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return false
	}
	want := -1
	counted := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		commas := strings.Count(line, ",")
		if commas == 0 {
			return false
		}
		if want == -1 {
			want = commas
		} else if commas != want {
			return false
		}
		counted++
	}
	return counted >= 2
}

func looksLikeMarkdown(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "# "),
			strings.HasPrefix(trimmed, "## "),
			strings.HasPrefix(trimmed, "- "),
			strings.HasPrefix(trimmed, "* "),
			strings.HasPrefix(trimmed, "```"):
			return true
		}
	}
	return false
}
