package trellis

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// UploadFile uploads a file into a source for ingestion and returns its
// metadata. The content is sent as a multipart form under the "file" field.
func (c *Client) UploadFile(ctx context.Context, sourceID, filename string, content io.Reader) (*File, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("trellis: build upload form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("trellis: read upload content: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("trellis: finalize upload form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/v1/sources/"+sourceID+"/files", form.FormDataContentType(), &body)
	if err != nil {
		return nil, err
	}
	var file File
	if err := c.do(req, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// ListFiles returns the files uploaded into a source.
func (c *Client) ListFiles(ctx context.Context, sourceID string) ([]File, error) {
	var files []File
	if err := c.doJSON(ctx, http.MethodGet, "/v1/sources/"+sourceID+"/files", nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// DeleteFile removes an uploaded file and the content derived from it.
func (c *Client) DeleteFile(ctx context.Context, sourceID, fileID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/sources/"+sourceID+"/files/"+fileID, nil, nil)
}
