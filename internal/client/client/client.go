package client

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

	"github.com/gorilla/websocket"
)

const requestTimeout = 15 * time.Second

type HTTPClient struct {
	baseURL    *url.URL
	http       *http.Client
	dialer     *websocket.Dialer
	cookieName string
	credential string
}

// New validates serverURL and returns a client for it.
func New(serverURL, cookieName string) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", serverURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: missing host", serverURL)
	}
	return &HTTPClient{
		baseURL:    u,
		http:       &http.Client{Timeout: requestTimeout},
		dialer:     &websocket.Dialer{HandshakeTimeout: requestTimeout},
		cookieName: cookieName,
	}, nil
}

// Credential returns the credential obtained by the last successful Login.
func (c *HTTPClient) Credential() string {
	return c.credential
}

type loginRequest struct {
	UserName string `json:"username"`
	Pin      string `json:"pin"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Login exchanges username and PIN for a credential, taken from the
// Set-Cookie header of the response.
func (c *HTTPClient) Login(ctx context.Context, userName, pin string) error {
	body, err := json.Marshal(loginRequest{UserName: userName, Pin: pin})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("http", "/auth/pin"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.mapError(resp)
	}

	for _, ck := range resp.Cookies() {
		if ck.Name == c.cookieName && ck.Value != "" {
			c.credential = ck.Value
			return nil
		}
	}
	return ErrNoCredential
}

// Subscribe opens the family socket, or the chat socket when chatID is set.
func (c *HTTPClient) Subscribe(ctx context.Context, familyID, chatID string) (*websocket.Conn, error) {
	path := "/families/" + url.PathEscape(familyID) + "/ws"
	if chatID != "" {
		path = "/families/" + url.PathEscape(familyID) + "/chats/" + url.PathEscape(chatID) + "/ws"
	}

	h := http.Header{}
	if c.credential != "" {
		h.Set("Authorization", "Bearer "+c.credential)
	}

	conn, resp, err := c.dialer.DialContext(ctx, c.endpoint("ws", path), h)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			if mapped := c.mapError(resp); mapped != nil {
				return nil, mapped
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return conn, nil
}

type addGalleryItemRequest struct {
	MediaType string  `json:"media_type"`
	Caption   *string `json:"caption,omitempty"`
}

// GalleryUpload is the server's answer to a new gallery item: its id and
// the presigned URL the bytes must be PUT to.
type GalleryUpload struct {
	Item struct {
		ID string `json:"id"`
	} `json:"item"`
	UploadURL string `json:"upload_url"`
}

// AddGalleryItem registers a gallery item and returns where to upload it.
func (c *HTTPClient) AddGalleryItem(ctx context.Context, familyID, mediaType, caption string) (*GalleryUpload, error) {
	in := addGalleryItemRequest{MediaType: mediaType}
	if caption != "" {
		in.Caption = &caption
	}
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}

	path := "/families/" + url.PathEscape(familyID) + "/gallery"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("http", path), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.credential != "" {
		req.Header.Set("Authorization", "Bearer "+c.credential)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, c.mapError(resp)
	}

	var out GalleryUpload
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode gallery response: %w", err)
	}
	return &out, nil
}

// HTTP returns the underlying HTTP client, for direct object-storage uploads.
func (c *HTTPClient) HTTP() *http.Client {
	return c.http
}

// endpoint builds an absolute URL for path, switching to ws/wss when kind is "ws".
func (c *HTTPClient) endpoint(kind, path string) string {
	u := *c.baseURL
	if kind == "ws" {
		if u.Scheme == "https" {
			u.Scheme = "wss"
		} else {
			u.Scheme = "ws"
		}
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String()
}

// mapError converts a non-success response into a sentinel error,
// keeping the server's message when one was sent.
func (c *HTTPClient) mapError(resp *http.Response) error {
	var er errorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(data, &er); err != nil || er.Error == "" {
		er.Error = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", ErrUnavailable, er.Error)
	default:
		return errors.New(er.Error)
	}
}
