package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

var apiHTTPClient = &http.Client{Timeout: 60 * time.Second}

// uploadFile posts a local file to the daemon convert endpoint and decodes
// the response payload into out.
func uploadFile(baseURL, path, outputFormat, tier string, out any) error {
	source, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input file: %w", err)
	}
	defer source.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	if _, err := io.Copy(part, source); err != nil {
		return fmt.Errorf("read input file: %w", err)
	}
	if err := writer.WriteField("output_format", outputFormat); err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	if tier != "" {
		if err := writer.WriteField("quality_tier", tier); err != nil {
			return fmt.Errorf("build upload request: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finish upload request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/convert", body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := apiHTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit conversion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("submit conversion: %s", apiErrorMessage(resp))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// downloadArtifact streams one artifact to destPath and returns bytes written.
func downloadArtifact(baseURL, jobKey, artifactName, destPath string) (int64, error) {
	url := fmt.Sprintf("%s/api/download/%s/%s", baseURL, jobKey, artifactName)
	resp, err := apiHTTPClient.Get(url)
	if err != nil {
		return 0, fmt.Errorf("download artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download artifact: %s", apiErrorMessage(resp))
	}

	dest, err := os.Create(destPath)
	if err != nil {
		return 0, fmt.Errorf("create destination file: %w", err)
	}
	defer dest.Close()

	written, err := io.Copy(dest, resp.Body)
	if err != nil {
		return 0, fmt.Errorf("write destination file: %w", err)
	}
	return written, nil
}

func apiErrorMessage(resp *http.Response) string {
	var payload struct {
		Error string `json:"error"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return resp.Status
}
