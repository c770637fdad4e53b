package security_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fileforge/internal/security"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestScanCleanFile(t *testing.T) {
	scanner := security.NewScanner(security.Config{Enabled: true})
	path := writeFile(t, "notes.txt", []byte("ordinary text content"))

	result, err := scanner.Scan(context.Background(), path, "txt")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if !result.Clean {
		t.Fatalf("expected clean, got threats %v", result.Threats)
	}
	if result.Confidence <= 0 || result.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", result.Confidence)
	}
}

func TestScanFlagsEicar(t *testing.T) {
	scanner := security.NewScanner(security.Config{Enabled: true})
	payload := []byte(`X5O!P%@AP[4\PZX54(P^)7CC)7}$EICAR-STANDARD-ANTIVIRUS-TEST-FILE!$H+H*`)
	path := writeFile(t, "sample.txt", payload)

	result, err := scanner.Scan(context.Background(), path, "txt")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if result.Clean {
		t.Fatal("expected eicar payload to be flagged")
	}
	if len(result.Threats) == 0 || result.Threats[0] != "eicar-test-signature" {
		t.Fatalf("unexpected threats: %v", result.Threats)
	}
}

func TestScanFlagsExecutablePrefix(t *testing.T) {
	scanner := security.NewScanner(security.Config{Enabled: true})
	path := writeFile(t, "payload.docx", append([]byte("MZ"), make([]byte, 64)...))

	result, err := scanner.Scan(context.Background(), path, "docx")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if result.Clean {
		t.Fatal("expected MZ prefix on a document upload to be flagged")
	}
}

func TestScanSkipsExecutableCheckInsideArchives(t *testing.T) {
	scanner := security.NewScanner(security.Config{Enabled: true, FlagArchives: false})
	path := writeFile(t, "bundle.zip", append([]byte{0x7F, 'E', 'L', 'F'}, make([]byte, 16)...))

	result, err := scanner.Scan(context.Background(), path, "zip")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if !result.Clean {
		t.Fatalf("archive upload should pass without FlagArchives, got %v", result.Threats)
	}

	strict := security.NewScanner(security.Config{Enabled: true, FlagArchives: true})
	result, err = strict.Scan(context.Background(), path, "zip")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if result.Clean {
		t.Fatal("FlagArchives should flag executable signatures in archives")
	}
}

func TestScanDisabledAlwaysClean(t *testing.T) {
	scanner := security.NewScanner(security.Config{Enabled: false})
	path := writeFile(t, "anything.bin", []byte("MZ executable bytes"))

	result, err := scanner.Scan(context.Background(), path, "docx")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if !result.Clean {
		t.Fatal("disabled scanner must report clean")
	}
}
