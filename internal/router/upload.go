package router

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// Uploader posts suspicious batches to the external ingest endpoint as
// a bearer-authorised multipart upload.
type Uploader struct {
	BaseURL string
	Tokens  *TokenSource
	Client  *http.Client
}

// Upload sends path's contents as the multipart field "file". A
// non-2xx response is returned as an error so the caller (§7,
// UploadFailed) leaves the batch in place for the next loop iteration.
func (u *Uploader) Upload(path string) error {
	client := u.Client
	if client == nil {
		client = http.DefaultClient
	}

	token, err := u.Tokens.Token()
	if err != nil {
		return fmt.Errorf("acquire upload token: %w", err)
	}

	body, contentType, err := buildMultipartFile(path)
	if err != nil {
		return err
	}

	endpoint, err := url.JoinPath(u.BaseURL, "ingest", "suspicious")
	if err != nil {
		return fmt.Errorf("build upload endpoint: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("upload endpoint returned %s", resp.Status)
	}
	return nil
}

func buildMultipartFile(path string) (*bytes.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open suspicious batch: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("create multipart field: %w", err)
	}
	if _, err := part.ReadFrom(f); err != nil {
		return nil, "", fmt.Errorf("read suspicious batch: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
