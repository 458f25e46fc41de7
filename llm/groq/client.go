package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nachoal/visionari-go/llm"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llava-v1.5-7b-4096-preview"

	defaultTimeout = 2 * time.Minute // vision requests upload the whole image
)

// APIError is returned when Groq answers with a non-200 status
type APIError struct {
	StatusCode int
	Type       string
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("Groq API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("Groq API error (status %d): %s", e.StatusCode, e.Message)
}

// Client implements the LLM client interface for Groq
type Client struct {
	options    llm.ClientOptions
	httpClient *http.Client
}

// NewClient creates a new Groq client
func NewClient(opts ...llm.ClientOption) (*Client, error) {
	options := llm.ClientOptions{
		BaseURL:      DefaultBaseURL,
		Timeout:      defaultTimeout,
		DefaultModel: DefaultModel,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.APIKey == "" {
		return nil, fmt.Errorf("Groq API key not provided")
	}

	return &Client{
		options: options,
		httpClient: &http.Client{
			Timeout: options.Timeout,
		},
	}, nil
}

// Model returns the model used when a request leaves it empty
func (c *Client) Model() string {
	return c.options.DefaultModel
}

// Chat sends a chat request to Groq. Failures are returned as-is; nothing is retried.
func (c *Client) Chat(ctx context.Context, request *llm.ChatRequest) (*llm.ChatResponse, error) {
	if request.Model == "" {
		request.Model = c.options.DefaultModel
	}
	request.Stream = false

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.options.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseAPIError(resp.StatusCode, respBody)
	}

	response := &llm.ChatResponse{}
	if err := json.Unmarshal(respBody, response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if response.Error != nil {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Type:       response.Error.Type,
			Code:       response.Error.CodeString(),
			Message:    response.Error.Message,
		}
	}

	return response, nil
}

// Close cleans up resources
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// setHeaders sets common headers for requests
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.options.APIKey)
	req.Header.Set("User-Agent", "visionari-go/1.0")
}

func parseAPIError(status int, body []byte) error {
	var errResp struct {
		Error llm.ErrorResponse `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return &APIError{
			StatusCode: status,
			Type:       errResp.Error.Type,
			Code:       errResp.Error.CodeString(),
			Message:    errResp.Error.Message,
		}
	}
	return &APIError{StatusCode: status, Message: string(bytes.TrimSpace(body))}
}
