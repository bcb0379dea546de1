// Package api is the client side wrapper around the /api/users endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/geocoder89/usershub/internal/domain/user"
)

// ResponseError is a non-2xx answer from the server.
type ResponseError struct {
	Status  int
	Code    string
	Message string
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return fmt.Sprintf("request failed with status code %d", e.Status)
}

// TransportError is a request that never produced a usable response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Message is the text a person should see for err: the server's message
// when it sent one, otherwise the error itself.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var re *ResponseError

	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}

	return err.Error()
}

// Payload is the body of create and update. Age stays a number on the wire.
type Payload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
	City  string `json:"city"`
}

type Client struct {
	base string
	http *http.Client
}

// New points a client at the users collection, e.g.
// http://localhost:5000/api/users.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)

	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", baseURL)
	}

	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}, nil
}

type listBody struct {
	Data []user.User `json:"data"`
}

type recordBody struct {
	Data user.User `json:"data"`
}

func (c *Client) List(ctx context.Context) ([]user.User, error) {
	var out listBody

	err := c.do(ctx, http.MethodGet, c.base, nil, &out)

	if err != nil {
		return nil, err
	}

	if out.Data == nil {
		out.Data = []user.User{}
	}

	return out.Data, nil
}

func (c *Client) Get(ctx context.Context, id string) (user.User, error) {
	var out recordBody

	err := c.do(ctx, http.MethodGet, c.itemURL(id), nil, &out)

	return out.Data, err
}

func (c *Client) Create(ctx context.Context, p Payload) (user.User, error) {
	var out recordBody

	err := c.do(ctx, http.MethodPost, c.base, p, &out)

	return out.Data, err
}

func (c *Client) Update(ctx context.Context, id string, p Payload) (user.User, error) {
	var out recordBody

	err := c.do(ctx, http.MethodPut, c.itemURL(id), p, &out)

	return out.Data, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.itemURL(id), nil, nil)
}

func (c *Client) itemURL(id string) string {
	return c.base + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, target string, in, out any) error {
	op := method + " " + target

	var body io.Reader

	if in != nil {
		b, err := json.Marshal(in)

		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}

		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)

	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	req.Header.Set("Accept", "application/json")

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)

	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))

	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}

	err = json.Unmarshal(raw, out)

	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	return nil
}

type errorBody struct {
	Message string `json:"message"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(status int, raw []byte) error {
	re := &ResponseError{Status: status}

	var body errorBody

	if json.Unmarshal(raw, &body) == nil {
		re.Code = body.Error.Code
		re.Message = body.Message

		if re.Message == "" {
			re.Message = body.Error.Message
		}
	}

	return re
}
