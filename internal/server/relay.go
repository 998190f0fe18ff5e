package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/at-ishikawa/qamus/internal/inference"
)

const (
	messageMissingAPIKey   = "API key not found in environment variables."
	messageBodyNotJSON     = "Request body must be JSON."
	messageMissingPrompt   = "Missing 'prompt' in request body."
	messageUpstreamFailure = "Failed to connect to the Gemini API due to a network or rate limit error."
	messageNoContent       = "Gemini API did not return content. Check the key and try a simpler word."
	messageMalformedJSON   = "The Gemini API returned malformed JSON. Retrying may fix the issue."
	messageMethodNotPOST   = "Method not allowed. Use POST."
)

type dataRequest struct {
	Prompt string `validate:"required"`
}

// handleData relays one prompt to the upstream and writes the decoded entry
func (h *Handler) handleData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, messageMethodNotPOST)
		return
	}
	ctx := r.Context()

	if h.cfg.Gemini.APIKey == "" {
		h.logger.ErrorContext(ctx, "the API key is not configured")
		writeError(w, http.StatusInternalServerError, messageMissingAPIKey)
		return
	}

	prompt, message := h.readPrompt(w, r)
	if message != "" {
		writeError(w, http.StatusBadRequest, message)
		return
	}
	h.logger.DebugContext(ctx, "relaying a prompt", slog.String("prompt", prompt))

	response, err := h.client.GenerateEntry(ctx, h.options.NewRequest(prompt))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate an entry",
			slog.String("kind", inference.KindOf(err).String()),
			slog.Any("error", err),
		)
		writeError(w, http.StatusInternalServerError, upstreamErrorMessage(err))
		return
	}
	if err := h.options.Check(response.Raw); err != nil {
		h.logger.ErrorContext(ctx, "the generated entry does not match the schema", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, messageMalformedJSON)
		return
	}

	writeJSON(w, http.StatusOK, response.Entry)
}

// readPrompt returns the prompt of the request body, or the message of a validation error.
// The prompt is forwarded as received; whitespace only counts as missing.
func (h *Handler) readPrompt(w http.ResponseWriter, r *http.Request) (string, string) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.cfg.Server.MaxBodyBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.logger.InfoContext(r.Context(), "the request body is too large", slog.Int64("limit", maxBytesErr.Limit))
		}
		return "", messageBodyNotJSON
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return "", messageBodyNotJSON
	}

	rawPrompt, ok := fields["prompt"]
	if !ok {
		return "", messageMissingPrompt
	}
	var prompt string
	if err := json.Unmarshal(rawPrompt, &prompt); err != nil {
		return "", messageMissingPrompt
	}
	if err := h.validate.Struct(dataRequest{Prompt: strings.TrimSpace(prompt)}); err != nil {
		return "", messageMissingPrompt
	}
	return prompt, ""
}

func upstreamErrorMessage(err error) string {
	switch inference.KindOf(err) {
	case inference.KindNoCandidates:
		return messageNoContent
	case inference.KindDecode:
		return messageMalformedJSON
	default:
		return messageUpstreamFailure
	}
}

