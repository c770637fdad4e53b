package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fileforge/internal/api"
	"fileforge/internal/logging"
	"fileforge/internal/testsupport"
)

func startTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	d, err := Bootstrap(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := d.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(d.Stop)
	return d
}

func postConvert(t *testing.T, baseURL, filename, outputFormat string, payload []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.WriteField("output_format", outputFormat); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	resp, err := http.Post(baseURL+"/api/convert", writer.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("post convert: %v", err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestConvertEndpointRunsJobEndToEnd(t *testing.T) {
	d := startTestDaemon(t)
	baseURL := "http://" + d.APIAddr()

	resp := postConvert(t, baseURL, "cities.json", "csv", []byte(`[{"city":"bergen","rain":true}]`))
	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("convert status = %d, body %s", resp.StatusCode, body)
	}
	var submission api.Submission
	decodeJSON(t, resp, &submission)
	if submission.DetectedInputFormat != "json" {
		t.Fatalf("detected format = %q", submission.DetectedInputFormat)
	}
	if submission.StatusReference != "/api/jobs/"+submission.JobKey {
		t.Fatalf("status reference = %q", submission.StatusReference)
	}

	var job api.Job
	deadline := time.Now().Add(15 * time.Second)
	for {
		statusResp, err := http.Get(baseURL + submission.StatusReference)
		if err != nil {
			t.Fatalf("get job: %v", err)
		}
		if statusResp.StatusCode != http.StatusOK {
			statusResp.Body.Close()
			t.Fatalf("job status code = %d", statusResp.StatusCode)
		}
		var wrapped api.JobResponse
		decodeJSON(t, statusResp, &wrapped)
		job = wrapped.Job
		if job.Status == "completed" {
			break
		}
		if job.Status == "failed" {
			t.Fatalf("job failed: %s", job.ErrorMessage)
		}
		if time.Now().After(deadline) {
			t.Fatalf("job stuck at %s", job.Status)
		}
		time.Sleep(25 * time.Millisecond)
	}

	if len(job.Artifacts) != 1 {
		t.Fatalf("artifacts = %+v", job.Artifacts)
	}
	downloadResp, err := http.Get(baseURL + job.Artifacts[0].DownloadPath)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer downloadResp.Body.Close()
	if downloadResp.StatusCode != http.StatusOK {
		t.Fatalf("download status = %d", downloadResp.StatusCode)
	}
	content, err := io.ReadAll(downloadResp.Body)
	if err != nil {
		t.Fatalf("read download: %v", err)
	}
	if !strings.Contains(string(content), "bergen") {
		t.Fatalf("downloaded artifact %q missing converted row", content)
	}
}

func TestConvertEndpointRejectsIncompatiblePair(t *testing.T) {
	d := startTestDaemon(t)
	baseURL := "http://" + d.APIAddr()

	resp := postConvert(t, baseURL, "bundle.zip", "mp3", []byte("PK\x03\x04fake archive"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var payload map[string]string
	decodeJSON(t, resp, &payload)
	if payload["error"] == "" {
		t.Fatal("expected error message in body")
	}
}

func TestConvertEndpointRejectsFlaggedUpload(t *testing.T) {
	d := startTestDaemon(t)
	baseURL := "http://" + d.APIAddr()

	eicar := []byte(`X5O!P%@AP[4\PZX54(P^)7CC)7}$EICAR-STANDARD-ANTIVIRUS-TEST-FILE!$H+H*`)
	resp := postConvert(t, baseURL, "invoice.txt", "pdf", eicar)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}

func TestJobEndpointUnknownKey(t *testing.T) {
	d := startTestDaemon(t)

	resp, err := http.Get("http://" + d.APIAddr() + "/api/jobs/no-such-job")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestDownloadHandlerRejectsTraversal(t *testing.T) {
	d := startTestDaemon(t)

	// Hand-built request so path cleaning cannot mask the traversal.
	req := httptest.NewRequest(http.MethodGet, "http://unit.test/", nil)
	req.URL.Path = "/api/download/some-job/../../etc/passwd"
	w := httptest.NewRecorder()
	d.apiSrv.handleDownload(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestFormatsAndQualityEndpoints(t *testing.T) {
	d := startTestDaemon(t)
	baseURL := "http://" + d.APIAddr()

	resp, err := http.Get(baseURL + "/api/formats")
	if err != nil {
		t.Fatalf("get formats: %v", err)
	}
	var catalog api.FormatsResponse
	decodeJSON(t, resp, &catalog)
	if len(catalog.Categories) != 7 {
		t.Fatalf("categories = %d, want 7", len(catalog.Categories))
	}

	resp, err = http.Get(baseURL + "/api/quality")
	if err != nil {
		t.Fatalf("get quality: %v", err)
	}
	var tiers api.QualityResponse
	decodeJSON(t, resp, &tiers)
	if len(tiers.Tiers) != 4 || tiers.Default != "standard" {
		t.Fatalf("quality response = %+v", tiers)
	}
}

func TestAuditEndpointPages(t *testing.T) {
	d := startTestDaemon(t)
	baseURL := "http://" + d.APIAddr()

	for i := 0; i < 3; i++ {
		resp := postConvert(t, baseURL, fmt.Sprintf("audit-%d.json", i), "csv", []byte(`{"n":1}`))
		resp.Body.Close()
		if resp.StatusCode != http.StatusAccepted {
			t.Fatalf("convert status = %d", resp.StatusCode)
		}
	}

	resp, err := http.Get(baseURL + "/api/audit?page=1&page_size=4")
	if err != nil {
		t.Fatalf("get audit: %v", err)
	}
	var page api.AuditPageResponse
	decodeJSON(t, resp, &page)
	if len(page.Entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(page.Entries))
	}
	// Each submission writes a submitted and a scan event.
	if page.Total < 6 {
		t.Fatalf("total = %d, want at least 6", page.Total)
	}
}

func TestEventsEndpointReturnsCursor(t *testing.T) {
	d := startTestDaemon(t)
	baseURL := "http://" + d.APIAddr()

	resp := postConvert(t, baseURL, "events.json", "csv", []byte(`{"n":1}`))
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("convert status = %d", resp.StatusCode)
	}

	eventsResp, err := http.Get(baseURL + "/api/events?since=0")
	if err != nil {
		t.Fatalf("get events: %v", err)
	}
	var stream api.EventStreamResponse
	decodeJSON(t, eventsResp, &stream)
	if len(stream.Events) == 0 {
		t.Fatal("expected at least the queued event")
	}
	if stream.Next == 0 {
		t.Fatal("expected a non-zero cursor")
	}
}
