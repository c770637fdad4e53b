package detect_test

import (
	"errors"
	"testing"

	"fileforge/internal/detect"
	"fileforge/internal/formats"
	"fileforge/internal/services"
)

func newDetector() *detect.Detector {
	return detect.New(formats.NewRegistry())
}

func TestDetectByExtension(t *testing.T) {
	detector := newDetector()

	cases := []struct {
		name string
		want string
	}{
		{"report.docx", "docx"},
		{"photo.PNG", "png"},
		{"song.mp3", "mp3"},
		{"data.json", "json"},
		{"mesh.stl", "stl"},
	}
	for _, tc := range cases {
		got, err := detector.Detect([]byte("irrelevant"), tc.name, "")
		if err != nil {
			t.Fatalf("Detect(%q) returned error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("Detect(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestDetectBySignature(t *testing.T) {
	detector := newDetector()

	cases := []struct {
		data []byte
		want string
	}{
		{[]byte("%PDF-1.7 stuff"), "pdf"},
		{[]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, "png"},
		{[]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, "jpg"},
		{[]byte{'P', 'K', 0x03, 0x04, 0x00}, "zip"},
		{[]byte{0x1F, 0x8B, 0x08}, "gz"},
		{append([]byte("RIFF\x00\x00\x00\x00"), []byte("WAVE")...), "wav"},
		{append([]byte{0, 0, 0, 0x18}, []byte("ftypisom")...), "mp4"},
		{[]byte{0x1A, 0x45, 0xDF, 0xA3, 0x01}, "mkv"},
		{[]byte("fLaC\x00"), "flac"},
	}
	for _, tc := range cases {
		got, err := detector.Detect(tc.data, "upload.bin", "")
		if err != nil {
			t.Fatalf("signature detect for %q failed: %v", tc.want, err)
		}
		if got != tc.want {
			t.Fatalf("signature detect = %q, want %q", got, tc.want)
		}
	}
}

func TestDetectExtensionWinsOverSignature(t *testing.T) {
	detector := newDetector()
	got, err := detector.Detect([]byte("%PDF-1.7"), "notes.txt", "")
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if got != "txt" {
		t.Fatalf("Detect = %q, want txt (extension strategy runs first)", got)
	}
}

func TestDetectByContentType(t *testing.T) {
	detector := newDetector()
	got, err := detector.Detect([]byte{0x00, 0x01}, "upload", "application/pdf; charset=binary")
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if got != "pdf" {
		t.Fatalf("Detect = %q, want pdf", got)
	}
}

func TestDetectByTextHeuristics(t *testing.T) {
	detector := newDetector()

	cases := []struct {
		payload string
		want    string
	}{
		{`[{"a":1},{"a":2}]`, "json"},
		{"<?xml version=\"1.0\"?><root/>", "xml"},
		{"name,age\nalice,30\nbob,41", "csv"},
		{"# Title\n\nsome prose", "md"},
		{"<!DOCTYPE html><html><body>hi</body></html>", "html"},
		{"just a plain sentence without structure", "txt"},
	}
	for _, tc := range cases {
		got, err := detector.Detect([]byte(tc.payload), "upload", "")
		if err != nil {
			t.Fatalf("heuristic detect for %q failed: %v", tc.want, err)
		}
		if got != tc.want {
			t.Fatalf("heuristic detect = %q, want %q (payload %q)", got, tc.want, tc.payload)
		}
	}
}

func TestDetectUnknown(t *testing.T) {
	detector := newDetector()
	_, err := detector.Detect([]byte{0x00, 0x01, 0x02, 0xFE}, "mystery.qqq", "")
	if !errors.Is(err, services.ErrUnknownFormat) {
		t.Fatalf("expected unknown format, got %v", err)
	}
}

func TestDetectDeterministic(t *testing.T) {
	detector := newDetector()
	payload := []byte("name,score\nx,1\ny,2")
	first, err := detector.Detect(payload, "upload", "")
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	for i := 0; i < 50; i++ {
		got, err := detector.Detect(payload, "upload", "")
		if err != nil || got != first {
			t.Fatalf("iteration %d: Detect = (%q, %v), want (%q, nil)", i, got, err, first)
		}
	}
}
