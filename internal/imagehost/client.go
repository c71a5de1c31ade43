// Package imagehost talks to the external image-hosting service (Imgur).
// Recipe photos are uploaded here at create/update time; the returned URL is
// persisted on the recipe and the delete hash is kept so superseded photos
// can be removed later by the background cleanup consumer.
package imagehost

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.imgur.com/3"

// Image is the durable reference returned by a successful upload.
type Image struct {
	URL       string // public link to the stored image
	DeleteRef string // opaque reference accepted by Delete
}

// Client is a thin HTTP client for the Imgur image API.
type Client struct {
	clientID string
	baseURL  string
	http     *http.Client
}

// NewClient returns a Client authenticated with the given Imgur client id.
func NewClient(clientID string) *Client {
	return &Client{
		clientID: clientID,
		baseURL:  defaultBaseURL,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithBaseURL is like NewClient but targets a custom endpoint.
// Used by tests to point the client at a local server.
func NewClientWithBaseURL(clientID, baseURL string) *Client {
	c := NewClient(clientID)
	c.baseURL = baseURL
	return c
}

type imgurResponse struct {
	Data struct {
		ID         string `json:"id"`
		Link       string `json:"link"`
		DeleteHash string `json:"deletehash"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

// Upload stores raw image bytes on the host and returns the public URL plus
// a deletable reference. The image travels base64-encoded inside a
// multipart form, which is the format the API expects.
func (c *Client) Upload(ctx context.Context, data []byte) (Image, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("image", base64.StdEncoding.EncodeToString(data)); err != nil {
		return Image{}, fmt.Errorf("imagehost: build request: %w", err)
	}
	if err := w.WriteField("type", "base64"); err != nil {
		return Image{}, fmt.Errorf("imagehost: build request: %w", err)
	}
	if err := w.Close(); err != nil {
		return Image{}, fmt.Errorf("imagehost: build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/image", &body)
	if err != nil {
		return Image{}, fmt.Errorf("imagehost: build request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.clientID)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("imagehost: upload: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Image{}, fmt.Errorf("imagehost: read response: %w", err)
	}
	var parsed imgurResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Image{}, fmt.Errorf("imagehost: parse response: %w", err)
	}
	if !parsed.Success || parsed.Data.Link == "" {
		return Image{}, fmt.Errorf("imagehost: upload rejected: status %d", parsed.Status)
	}
	return Image{URL: parsed.Data.Link, DeleteRef: parsed.Data.DeleteHash}, nil
}

// Delete removes a previously uploaded image by its delete reference.
func (c *Client) Delete(ctx context.Context, deleteRef string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/image/"+deleteRef, nil)
	if err != nil {
		return fmt.Errorf("imagehost: build request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.clientID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("imagehost: delete: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("imagehost: delete rejected: status %d", resp.StatusCode)
	}
	return nil
}
