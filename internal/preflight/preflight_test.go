package preflight_test

import (
	"testing"

	"fileforge/internal/preflight"
)

func TestCheckBinariesReportsMissing(t *testing.T) {
	statuses := preflight.CheckBinaries([]preflight.Requirement{
		{Name: "missing", Command: "definitely-not-a-real-binary-1234"},
		{Name: "unconfigured", Command: ""},
	})
	if len(statuses) != 2 {
		t.Fatalf("got %d statuses", len(statuses))
	}
	for _, status := range statuses {
		if status.Available {
			t.Fatalf("%s should be unavailable", status.Name)
		}
		if status.Detail == "" {
			t.Fatalf("%s should carry a detail", status.Name)
		}
	}
}

func TestCheckWritableTempDir(t *testing.T) {
	if err := preflight.CheckWritable(t.TempDir()); err != nil {
		t.Fatalf("temp dir should be writable: %v", err)
	}
}

func TestFreeSpaceNonZero(t *testing.T) {
	free, err := preflight.FreeSpace(t.TempDir())
	if err != nil {
		t.Fatalf("free space: %v", err)
	}
	if free == 0 {
		t.Fatal("free space reported zero")
	}
}
