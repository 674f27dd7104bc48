package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"kelasku/server/internal/models"
)

// HistoryPage is one backward page of conversation history. Messages arrive
// newest-first within the page.
type HistoryPage struct {
	Messages   []models.Message `json:"messages"`
	NextCursor string           `json:"nextCursor"`
	HasMore    bool             `json:"hasMore"`
}

// FileInfo is the upload endpoint's response, sufficient to construct a
// FILE-type draft.
type FileInfo struct {
	FileID       string `json:"fileId"`
	FileName     string `json:"fileName"`
	FileMimeType string `json:"fileMimeType"`
	FileSize     int64  `json:"fileSize"`
}

// APIClient is the request/response client for the conversation's
// collaborator endpoints: history, fallback send, upload, roster, and
// signed file URLs.
type APIClient struct {
	baseURL        string
	token          string
	conversationID string
	http           *http.Client
}

// NewAPIClient builds a client scoped to one conversation.
func NewAPIClient(baseURL, token, conversationID string) *APIClient {
	return &APIClient{
		baseURL:        baseURL,
		token:          token,
		conversationID: conversationID,
		http:           &http.Client{Timeout: 15 * time.Second},
	}
}

// envelope is the server's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *APIClient) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		if env.Error != "" {
			return fmt.Errorf("server: %s", env.Error)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding payload: %w", err)
		}
	}
	return nil
}

// History fetches the page before cursor; an empty cursor means the newest
// page.
func (c *APIClient) History(ctx context.Context, cursor string) (*HistoryPage, error) {
	path := fmt.Sprintf("/api/v1/conversations/%s/messages", c.conversationID)
	if cursor != "" {
		path += "?cursor=" + url.QueryEscape(cursor)
	}

	var page HistoryPage
	if err := c.do(ctx, http.MethodGet, path, nil, "", &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Send posts a draft on the durable fallback path and returns the
// authoritative, server-assigned message.
func (c *APIClient) Send(ctx context.Context, draft models.Draft) (*models.Message, error) {
	body, err := json.Marshal(draft)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/api/v1/conversations/%s/messages", c.conversationID)
	var msg models.Message
	if err := c.do(ctx, http.MethodPost, path, bytes.NewReader(body), "application/json", &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Roster fetches the conversation's participant list.
func (c *APIClient) Roster(ctx context.Context) ([]models.Member, error) {
	path := fmt.Sprintf("/api/v1/conversations/%s/members", c.conversationID)
	var data struct {
		Members []models.Member `json:"members"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, "", &data); err != nil {
		return nil, err
	}
	return data.Members, nil
}

// FileURL exchanges a file id for a short-lived signed URL. disposition is
// "view" or "download".
func (c *APIClient) FileURL(ctx context.Context, fileID, disposition string) (string, error) {
	path := fmt.Sprintf("/api/v1/files/%s/url?disposition=%s", fileID, url.QueryEscape(disposition))
	var data struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, "", &data); err != nil {
		return "", err
	}
	return c.baseURL + data.URL, nil
}

// Upload streams a file as multipart/form-data, reporting progress 0-100
// through onProgress as bytes are consumed.
func (c *APIClient) Upload(ctx context.Context, name, mimeType string, size int64, r io.Reader, onProgress func(int)) (*FileInfo, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		defer pw.Close()

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
		header.Set("Content-Type", mimeType)

		part, err := writer.CreatePart(header)
		if err != nil {
			pw.CloseWithError(err)
			return
		}

		src := io.Reader(r)
		if onProgress != nil && size > 0 {
			src = &progressReader{r: r, total: size, report: onProgress}
		}

		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	var info FileInfo
	if err := c.do(ctx, http.MethodPost, "/api/v1/files/", pr, writer.FormDataContentType(), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// progressReader reports cumulative percentage as it is read through.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	last   int
	report func(int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)

	pct := int(p.read * 100 / p.total)
	if pct > 100 {
		pct = 100
	}
	if pct != p.last {
		p.last = pct
		p.report(pct)
	}
	return n, err
}
