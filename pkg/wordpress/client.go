// Package wordpress talks to a site's WordPress REST API: media upload and
// post creation over HTTP Basic auth.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/yuin/goldmark"
)

// Client publishes to one WordPress site.
type Client struct {
	Host     string
	Login    string
	Password string
	HTTP     *http.Client

	// BaseURL overrides the https://{Host} default; used by tests.
	BaseURL string

	// RenderMarkdown converts the post body from markdown to HTML before
	// submission. Off by default: generated articles are plain text.
	RenderMarkdown bool
}

// Post is the payload for the posts endpoint.
type Post struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	Status        string `json:"status"`
	FeaturedMedia int64  `json:"featured_media,omitempty"`
}

type mediaResponse struct {
	ID int64 `json:"id"`
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 60 * time.Second}
}

func (c *Client) base() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return "https://" + c.Host
}

// UploadMedia posts the image binary to the media endpoint and returns the
// created media id.
func (c *Client) UploadMedia(ctx context.Context, imagePath string) (int64, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read image: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base()+"/wp-json/wp/v2/media", bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s", filepath.Base(imagePath)))
	req.SetBasicAuth(c.Login, c.Password)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return 0, fmt.Errorf("media upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("media upload rejected: status %d: %s", resp.StatusCode, truncate(body))
	}

	var media mediaResponse
	if err := json.NewDecoder(resp.Body).Decode(&media); err != nil {
		return 0, fmt.Errorf("failed to parse media response: %w", err)
	}
	if media.ID == 0 {
		return 0, fmt.Errorf("media upload returned no id")
	}
	return media.ID, nil
}

// CreatePost submits the post, rendering markdown first when enabled.
// Any non-201 response is an error; the caller decides whether to record
// the publish.
func (c *Client) CreatePost(ctx context.Context, post Post) error {
	if c.RenderMarkdown {
		html, err := renderMarkdown(post.Content)
		if err != nil {
			return fmt.Errorf("failed to render markdown: %w", err)
		}
		post.Content = html
	}

	payload, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("failed to encode post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base()+"/wp-json/wp/v2/posts", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.Login, c.Password)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("post request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("post rejected: status %d: %s", resp.StatusCode, truncate(body))
	}
	return nil
}

func renderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// truncate keeps error bodies log-sized.
func truncate(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
