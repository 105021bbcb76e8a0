// Package rest issues requests against the backend API. Results come back as
// either a decoded success value or an APIError, never a panic. At most one
// request is in flight per logical key (method + endpoint + body), issuing a
// newer one cancels the older, which then reports REQUEST_ABORTED.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"chatapp-client/internal/models"
	"chatapp-client/internal/schemas"

	"go.uber.org/zap"
)

type Client struct {
	sugar      *zap.SugaredLogger
	httpClient *http.Client
	baseURL    string
	token      string

	mu       sync.Mutex
	inflight map[string]*inflightRequest
}

type inflightRequest struct {
	cancel context.CancelFunc
}

func NewClient(sugar *zap.SugaredLogger, baseURL string, token string) *Client {
	return &Client{
		sugar:      sugar,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		inflight:   make(map[string]*inflightRequest),
	}
}

func requestKey(method string, endpoint string, body []byte) string {
	h := fnv.New64a()
	h.Write(body)
	return fmt.Sprintf("%s %s %x", method, endpoint, h.Sum64())
}

// begin registers the request under its key, cancelling any older request
// still holding the same key.
func (c *Client) begin(ctx context.Context, key string) (context.Context, *inflightRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, exists := c.inflight[key]; exists {
		c.sugar.Debugf("Superseding in-flight request [%s]", key)
		prev.cancel()
	}

	reqCtx, cancel := context.WithCancel(ctx)
	req := &inflightRequest{cancel: cancel}
	c.inflight[key] = req
	return reqCtx, req
}

func (c *Client) end(key string, req *inflightRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight[key] == req {
		delete(c.inflight, key)
	}
	req.cancel()
}

func (c *Client) do(ctx context.Context, method string, endpoint string, body any, out any) *APIError {
	var payload []byte
	if body != nil {
		if err := schemas.Validate(body); err != nil {
			return &APIError{Code: CodeParseError, Cause: "Invalid request body", Message: err.Error()}
		}

		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &APIError{Code: CodeParseError, Cause: "Failed to encode request body", Message: err.Error()}
		}
	}

	key := requestKey(method, endpoint, payload)
	reqCtx, inflight := c.begin(ctx, key)
	defer c.end(key, inflight)

	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+"/"+endpoint, bytes.NewReader(payload))
	if err != nil {
		return &APIError{Code: CodeNetworkError, Cause: "Failed to build request", Message: err.Error()}
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(&http.Cookie{Name: "session", Value: c.token})

	res, err := c.httpClient.Do(req)
	if err != nil {
		if reqCtx.Err() == context.Canceled && ctx.Err() == nil {
			return &APIError{Code: CodeRequestAborted, Cause: "Request superseded", Message: err.Error()}
		}
		return &APIError{Code: CodeNetworkError, Cause: "Network request failed", Message: err.Error()}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		if reqCtx.Err() == context.Canceled && ctx.Err() == nil {
			return &APIError{Code: CodeRequestAborted, Cause: "Request superseded", Message: err.Error()}
		}
		return &APIError{Status: res.StatusCode, Code: CodeNetworkError, Cause: "Failed to read response", Message: err.Error()}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := APIError{Status: res.StatusCode, Code: CodeAPIError}
		if err := json.Unmarshal(data, &apiErr); err != nil || apiErr.Code == "" {
			apiErr.Code = CodeAPIError
		}
		if apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("HTTP %d", res.StatusCode)
		}
		apiErr.Status = res.StatusCode
		return &apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return &APIError{Status: res.StatusCode, Code: CodeParseError, Cause: "Failed to parse response", Message: "Invalid JSON response"}
		}
	}

	return nil
}

// Setup fetches the bootstrap payload: current user, friends and the joined
// servers without their detail lists.
func (c *Client) Setup(ctx context.Context) (*models.Setup, *APIError) {
	var setup models.Setup
	if err := c.do(ctx, http.MethodGet, "users/setup", nil, &setup); err != nil {
		return nil, err
	}
	return &setup, nil
}

// ServerInformations fetches the roles/members/invites detail of a server.
func (c *Client) ServerInformations(ctx context.Context, serverID string) (*models.ServerInformations, *APIError) {
	var info models.ServerInformations
	if err := c.do(ctx, http.MethodGet, "servers/"+url.PathEscape(serverID), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// MessagesQuery carries at most one pagination cursor. An empty query asks
// for the newest page.
type MessagesQuery struct {
	BeforeMessageID string
	AfterMessageID  string
}

// Messages fetches a page of a channel's history. An empty list signals the
// end of history for the queried direction.
func (c *Client) Messages(ctx context.Context, serverID string, channelID string, q MessagesQuery) ([]models.Message, *APIError) {
	values := url.Values{}
	values.Set("server_id", serverID)
	if q.BeforeMessageID != "" {
		values.Set("before", q.BeforeMessageID)
	}
	if q.AfterMessageID != "" {
		values.Set("after", q.AfterMessageID)
	}

	endpoint := fmt.Sprintf("messages/%s?%s", url.PathEscape(channelID), values.Encode())

	messages := []models.Message{}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *Client) CreateMessage(ctx context.Context, body schemas.CreateMessage) *APIError {
	return c.do(ctx, http.MethodPost, "messages", body, nil)
}

func (c *Client) EditMessage(ctx context.Context, messageID string, body schemas.EditMessage) *APIError {
	return c.do(ctx, http.MethodPatch, "messages/"+url.PathEscape(messageID), body, nil)
}

func (c *Client) DeleteMessage(ctx context.Context, messageID string, body schemas.DeleteMessage) *APIError {
	return c.do(ctx, http.MethodDelete, "messages/"+url.PathEscape(messageID), body, nil)
}

func (c *Client) CreateCategory(ctx context.Context, body schemas.CreateCategory) (*models.Category, *APIError) {
	var category models.Category
	if err := c.do(ctx, http.MethodPost, "channels/category", body, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *Client) CreateChannel(ctx context.Context, body schemas.CreateChannel) (*models.Channel, *APIError) {
	var channel models.Channel
	if err := c.do(ctx, http.MethodPost, "channels", body, &channel); err != nil {
		return nil, err
	}
	return &channel, nil
}

func (c *Client) EditChannel(ctx context.Context, channelID string, body schemas.EditChannel) *APIError {
	return c.do(ctx, http.MethodPatch, "channels/"+url.PathEscape(channelID), body, nil)
}

func (c *Client) CreateOrUpdateRole(ctx context.Context, serverID string, body schemas.UpsertRole) *APIError {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("servers/%s/roles", url.PathEscape(serverID)), body, nil)
}

func (c *Client) EditServer(ctx context.Context, serverID string, body schemas.EditServer) *APIError {
	return c.do(ctx, http.MethodPatch, "servers/"+url.PathEscape(serverID), body, nil)
}

func (c *Client) LeaveServer(ctx context.Context, serverID string) *APIError {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("servers/%s/leave", url.PathEscape(serverID)), nil, nil)
}
