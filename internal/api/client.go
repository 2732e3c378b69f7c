// Package api is the HTTP client for the catalog REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"catalogconsole/internal/errs"
	"catalogconsole/internal/models"

	"go.uber.org/zap"
)

const (
	pathList   = "/products/getAllProducts"
	pathGet    = "/products/getOneProduct/%d"
	pathCreate = "/products/createProduct"
	pathUpdate = "/products/updateProduct/%d"
	pathDelete = "/products/deleteProduct/%d"
	pathUpload = "/products/uploadProductImage"
	pathLogin  = "/auth/login"

	// UploadField is the multipart field the backend reads the image from.
	UploadField = "image"

	maxErrorBody = 512
)

type envelope[T any] struct {
	Data T `json:"data"`
}

// LoginResponse is the backend's reply to a login attempt.
type LoginResponse struct {
	StatusCode int `json:"statusCode"`
	Data       struct {
		Token string `json:"token"`
	} `json:"data"`
}

type Client struct {
	baseURL string
	token   string
	client  *http.Client
	log     *zap.Logger
}

// New returns a client for baseURL. A non-empty serviceToken is sent as a
// bearer credential on every request except login.
func New(baseURL, serviceToken string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   serviceToken,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out envelope[envelope[[]models.Product]]
	if err := c.do(ctx, "list", http.MethodGet, pathList, nil, "", true, &out); err != nil {
		return nil, err
	}
	if out.Data.Data == nil {
		return []models.Product{}, nil
	}
	return out.Data.Data, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	var out envelope[models.Product]
	err := c.do(ctx, "get", http.MethodGet, fmt.Sprintf(pathGet, id), nil, "", true, &out)
	return out.Data, err
}

func (c *Client) CreateProduct(ctx context.Context, d models.Draft) error {
	return c.sendJSON(ctx, "create", http.MethodPost, pathCreate, d, true, nil)
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, p models.Patch) error {
	return c.sendJSON(ctx, "update", http.MethodPatch, fmt.Sprintf(pathUpdate, id), p, true, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, "delete", http.MethodDelete, fmt.Sprintf(pathDelete, id), nil, "", true, nil)
}

// UploadImage posts r as a multipart file and returns the URI the backend stored it under.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(UploadField, filename)
	if err != nil {
		return "", errs.Wrap(err, errs.KindTransport, "upload")
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", errs.Wrap(err, errs.KindTransport, "upload")
	}
	if err := mw.Close(); err != nil {
		return "", errs.Wrap(err, errs.KindTransport, "upload")
	}

	var out envelope[string]
	if err := c.do(ctx, "upload", http.MethodPost, pathUpload, &buf, mw.FormDataContentType(), true, &out); err != nil {
		return "", err
	}
	if out.Data == "" {
		return "", errs.New(errs.KindDecode, "upload", "empty image uri")
	}
	return out.Data, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var out LoginResponse
	body := map[string]string{"email": email, "password": password}
	err := c.sendJSON(ctx, "login", http.MethodPost, pathLogin, body, false, &out)
	return out, err
}

func (c *Client) sendJSON(ctx context.Context, op, method, path string, body any, bearer bool, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return errs.Wrap(err, errs.KindDecode, op)
	}
	return c.do(ctx, op, method, path, bytes.NewReader(b), "application/json", bearer, out)
}

func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, bearer bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errs.Wrap(err, errs.KindTransport, op)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if bearer && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return errs.Wrap(err, errs.KindTransport, op)
	}
	defer resp.Body.Close()

	c.log.Debug("catalog api call",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &errs.Error{
			Kind:    errs.KindTransport,
			Op:      op,
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(excerpt)),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.Wrap(err, errs.KindDecode, op)
	}
	return nil
}
