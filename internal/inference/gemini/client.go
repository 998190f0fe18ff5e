package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/at-ishikawa/qamus/internal/inference"
	"resty.dev/v3"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.5-flash-preview-05-20"
	DefaultTimeout = 30 * time.Second

	generateContentPath = "/models/{model}:generateContent"
	logPrefixLength     = 500
)

type Client struct {
	httpClient *resty.Client
	apiKey     string
	model      string
}

var _ inference.Client = (*Client)(nil)

// NewClient creates a client for the generateContent endpoint.
// A zero timeout falls back to DefaultTimeout; the outbound call is always bounded.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(baseURL)
	httpClient.SetHeader("Content-Type", "application/json")
	httpClient.SetTimeout(timeout)

	client := &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		model:      model,
	}
	httpClient.SetLogger(restyLogger{redact: client.redactString})
	return client
}

func (client Client) Close() error {
	return client.httpClient.Close()
}

// GetModel returns the model name configured for this client
func (client Client) GetModel() string {
	return client.model
}

func (client *Client) getRequestBody(params inference.GenerateEntryRequest) GenerateContentRequest {
	body := GenerateContentRequest{
		Contents: []Content{
			{Parts: []Part{{Text: params.Prompt}}},
		},
		GenerationConfig: GenerationConfig{
			ResponseMimeType: mimeTypeJSON,
			ResponseSchema:   params.Schema,
			MaxOutputTokens:  params.MaxOutputTokens,
		},
	}
	if params.SystemInstruction != "" {
		body.SystemInstruction = &Content{
			Parts: []Part{{Text: params.SystemInstruction}},
		}
	}
	return body
}

// GenerateEntry implements the inference.Client interface.
// It issues exactly one request; failures are returned as *inference.Error.
func (client *Client) GenerateEntry(
	ctx context.Context,
	params inference.GenerateEntryRequest,
) (inference.GenerateEntryResponse, error) {
	requestBody := client.getRequestBody(params)

	slog.Default().Info("calling generative API",
		"model", client.model,
		"schema", params.Schema != nil,
	)
	start := time.Now()
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetPathParam("model", client.model).
		SetQueryParam("key", client.apiKey).
		SetBody(requestBody).
		Post(generateContentPath)
	if err != nil {
		return inference.GenerateEntryResponse{}, inference.NewError(inference.KindUpstream,
			fmt.Errorf("httpClient.Post > %w", client.redactError(err)))
	}
	slog.Default().Info("generative API call finished",
		"model", client.model,
		"status", response.StatusCode(),
		"duration", time.Since(start),
	)
	if response.IsError() {
		return inference.GenerateEntryResponse{}, inference.NewError(inference.KindUpstream,
			fmt.Errorf("response error %d: %s", response.StatusCode(), client.redactString(response.String())))
	}

	return decodeResponse(response.Bytes())
}

func decodeResponse(body []byte) (inference.GenerateEntryResponse, error) {
	var envelope GenerateContentResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return inference.GenerateEntryResponse{}, inference.NewError(inference.KindUpstream,
			fmt.Errorf("json.Unmarshal(envelope) > %w", err))
	}
	if len(envelope.Candidates) == 0 {
		blockReason := ""
		if envelope.PromptFeedback != nil {
			blockReason = envelope.PromptFeedback.BlockReason
		}
		slog.Default().Error("generative API returned no candidates",
			"blockReason", blockReason,
			"response", truncate(string(body), logPrefixLength),
		)
		return inference.GenerateEntryResponse{}, inference.NewError(inference.KindNoCandidates,
			fmt.Errorf("empty candidates, block reason %q", blockReason))
	}

	content, err := embeddedText(envelope.Candidates[0])
	if err != nil {
		return inference.GenerateEntryResponse{}, inference.NewError(inference.KindDecode, err)
	}
	slog.Default().Debug("generative API raw content",
		"prefix", truncate(content, logPrefixLength),
	)

	entry, err := decodeEntry(content)
	if err != nil {
		return inference.GenerateEntryResponse{}, inference.NewError(inference.KindDecode,
			fmt.Errorf("decodeEntry(%s) > %w", truncate(content, logPrefixLength), err))
	}
	return inference.GenerateEntryResponse{
		Entry: entry,
		Raw:   json.RawMessage(content),
	}, nil
}

func embeddedText(candidate Candidate) (string, error) {
	if candidate.Content == nil {
		return "", errors.New("candidate has no content")
	}
	if len(candidate.Content.Parts) == 0 {
		return "", errors.New("candidate content has no parts")
	}
	text := candidate.Content.Parts[0].Text
	if text == nil {
		return "", errors.New("first part has no text")
	}
	return *text, nil
}

// decodeEntry decodes a single JSON object, keeping numbers as written.
func decodeEntry(content string) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader([]byte(content)))
	decoder.UseNumber()

	var entry map[string]any
	if err := decoder.Decode(&entry); err != nil {
		return nil, fmt.Errorf("decoder.Decode > %w", err)
	}
	if entry == nil {
		return nil, errors.New("embedded JSON is not an object")
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after embedded JSON object")
	}
	return entry, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
