package updraft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/quorik/updraft/types"
)

const defaultAPIEndpoint = "https://api.telegram.org"

// Client is a minimal Bot API client: just enough surface for the
// transports and examples. The full per-method binding set is out of scope.
type Client struct {
	token      string
	endpoint   string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithEndpoint overrides the Bot API endpoint, e.g. for a local server.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

// NewClient creates a Bot API client for the given bot token.
func NewClient(token string, opts ...ClientOption) (*Client, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	c := &Client{
		token:      token,
		endpoint:   defaultAPIEndpoint,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// APIError is a structured error response from the Bot API.
type APIError struct {
	Code        int
	Description string
	// RetryAfter is the server-supplied backoff hint, zero when absent.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("updraft: api error %d: %s", e.Code, e.Description)
}

type apiResponse struct {
	OK          bool               `json:"ok"`
	Result      json.RawMessage    `json:"result,omitempty"`
	Description string             `json:"description,omitempty"`
	ErrorCode   int                `json:"error_code,omitempty"`
	Parameters  *responseParameter `json:"parameters,omitempty"`
}

type responseParameter struct {
	RetryAfter int `json:"retry_after,omitempty"`
}

// Execute performs one API method call, marshalling payload as the JSON
// request body and unmarshalling the result into out when out is non-nil.
func (c *Client) Execute(ctx context.Context, method string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "encode %s payload", method)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.endpoint, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "build %s request", method)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s request failed", method)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "read %s response", method)
	}

	var parsed apiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return errors.Wrapf(err, "decode %s response", method)
	}
	if !parsed.OK {
		apiErr := &APIError{Code: parsed.ErrorCode, Description: parsed.Description}
		if parsed.Parameters != nil && parsed.Parameters.RetryAfter > 0 {
			apiErr.RetryAfter = time.Duration(parsed.Parameters.RetryAfter) * time.Second
		}
		return apiErr
	}
	if out != nil {
		if err := json.Unmarshal(parsed.Result, out); err != nil {
			return errors.Wrapf(err, "decode %s result", method)
		}
	}
	return nil
}

// GetUpdatesRequest is the getUpdates method payload.
type GetUpdatesRequest struct {
	Offset         int64                 `json:"offset,omitempty"`
	Limit          int                   `json:"limit,omitempty"`
	Timeout        int                   `json:"timeout,omitempty"`
	AllowedUpdates []types.AllowedUpdate `json:"allowed_updates,omitempty"`
}

// GetUpdates pulls a batch of updates via long polling.
// The returned batch may be empty.
func (c *Client) GetUpdates(ctx context.Context, req GetUpdatesRequest) ([]types.Update, error) {
	var updates []types.Update
	if err := c.Execute(ctx, "getUpdates", req, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessageRequest is the sendMessage method payload.
type SendMessageRequest struct {
	ChatID           int64  `json:"chat_id"`
	Text             string `json:"text"`
	ReplyToMessageID int64  `json:"reply_to_message_id,omitempty"`
}

// SendMessage sends a text message.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*types.Message, error) {
	var msg types.Message
	if err := c.Execute(ctx, "sendMessage", req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// AnswerCallbackQueryRequest is the answerCallbackQuery method payload.
type AnswerCallbackQueryRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
	ShowAlert       bool   `json:"show_alert,omitempty"`
}

// AnswerCallbackQuery acknowledges a callback query.
func (c *Client) AnswerCallbackQuery(ctx context.Context, req AnswerCallbackQueryRequest) error {
	return c.Execute(ctx, "answerCallbackQuery", req, nil)
}
