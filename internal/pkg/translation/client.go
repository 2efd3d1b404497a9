package translation

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/litera-app/litera/internal/pkg/env"
)

// HTTPEngine calls an external translation API. The document is posted as
// multipart form data; the response body is the translated document.
type HTTPEngine struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPEngineFromEnv creates an engine from TRANSLATION_API_URL and
// TRANSLATION_API_KEY.
func NewHTTPEngineFromEnv() *HTTPEngine {
	return &HTTPEngine{
		baseURL: env.GetEnv("TRANSLATION_API_URL", "http://localhost:9000"),
		apiKey:  env.GetEnv("TRANSLATION_API_KEY", ""),
		httpClient: &http.Client{
			// Whole-document translation is slow, but the timeout must stay
			// below the queue's 10 minute stuck-job threshold so an in-flight
			// request can never outlive its queue entry.
			Timeout: 8 * time.Minute,
		},
	}
}

// Translate posts the document and streams back the translated result.
func (e *HTTPEngine) Translate(ctx context.Context, sourcePath, sourceLanguage, targetLanguage string) (io.ReadCloser, error) {
	f, err := os.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source document: %w", err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("document", filepath.Base(sourcePath))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			pw.CloseWithError(err)
			return
		}
		_ = writer.WriteField("source_language", sourceLanguage)
		_ = writer.WriteField("target_language", targetLanguage)
		pw.CloseWithError(writer.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/translate/document", pr)
	if err != nil {
		return nil, fmt.Errorf("failed to create translate request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("translate request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("translation API returned status %d: %s", resp.StatusCode, string(body))
	}

	return resp.Body, nil
}
