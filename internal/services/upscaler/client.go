package upscaler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"upscale/internal/services"
)

// Client defines the remote upscaling operations the pass executor needs.
type Client interface {
	Submit(ctx context.Context, localPath, clientID string, scale int, faceEnhance bool) error
	List(ctx context.Context, clientID string) (Listing, error)
	Download(ctx context.Context, resultURL string) ([]byte, error)
}

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// HTTPClient implements Client against the upscaling service's HTTP API.
type HTTPClient struct {
	baseURL string
	client  HTTPDoer
}

// Option customizes an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPDoer overrides the HTTP backend, typically with a test double.
func WithHTTPDoer(doer HTTPDoer) Option {
	return func(c *HTTPClient) {
		if doer != nil {
			c.client = doer
		}
	}
}

// NewHTTPClient constructs a client for the service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...Option) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit uploads the image at localPath and starts a remote magnification
// job for clientID. The service returns no job handle; completion is
// discovered by polling List.
func (c *HTTPClient) Submit(ctx context.Context, localPath, clientID string, scale int, faceEnhance bool) error {
	file, err := os.Open(localPath)
	if err != nil {
		return services.Wrap(services.ErrIO, "upscaler", "submit", "Could not open image for upload", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filepath.Base(localPath))
	if err != nil {
		return services.Wrap(services.ErrIO, "upscaler", "submit", "Could not build upload form", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return services.Wrap(services.ErrIO, "upscaler", "submit", "Could not read image for upload", err)
	}
	fields := map[string]string{
		"client_id":        clientID,
		"scale":            strconv.Itoa(scale),
		"use_face_enhance": strconv.FormatBool(faceEnhance),
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return services.Wrap(services.ErrIO, "upscaler", "submit", "Could not build upload form", err)
		}
	}
	if err := writer.Close(); err != nil {
		return services.Wrap(services.ErrIO, "upscaler", "submit", "Could not finalize upload form", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/", &body)
	if err != nil {
		return fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrUpstream, "upscaler", "submit", "Upload request failed", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return services.Wrap(services.ErrUpstream, "upscaler", "submit",
			fmt.Sprintf("Upload rejected with status %d", resp.StatusCode), nil)
	}
	return nil
}

// List fetches the job listing for clientID.
func (c *HTTPClient) List(ctx context.Context, clientID string) (Listing, error) {
	endpoint := c.baseURL + "/get_uploaded/?client_id=" + url.QueryEscape(clientID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Listing{}, fmt.Errorf("build list request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Listing{}, services.Wrap(services.ErrUpstream, "upscaler", "list", "Listing request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Listing{}, services.Wrap(services.ErrUpstream, "upscaler", "list",
			fmt.Sprintf("Listing rejected with status %d", resp.StatusCode), nil)
	}

	var listing Listing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return Listing{}, services.Wrap(services.ErrUpstream, "upscaler", "list", "Malformed listing response", err)
	}
	return listing, nil
}

// Download fetches the final image bytes at resultURL.
func (c *HTTPClient) Download(ctx context.Context, resultURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resultURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, "upscaler", "download", "Download request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, services.Wrap(services.ErrUpstream, "upscaler", "download",
			fmt.Sprintf("Download rejected with status %d", resp.StatusCode), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, "upscaler", "download", "Download body truncated", err)
	}
	return data, nil
}
