package gemini

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

const redactedKey = "REDACTED"

// redactedError reports the message of err with the credential removed.
// Unwrap keeps errors.Is and errors.As working on the original chain.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string {
	return e.msg
}

func (e *redactedError) Unwrap() error {
	return e.err
}

func (client *Client) redactString(s string) string {
	if client.apiKey == "" {
		return s
	}
	return strings.ReplaceAll(s, client.apiKey, redactedKey)
}

// redactError drops the query, which carries the credential, from a failed request URL
func (client *Client) redactError(err error) error {
	if err == nil {
		return nil
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = withoutQuery(urlErr.URL)
	}
	msg := err.Error()
	redacted := client.redactString(msg)
	if redacted == msg {
		return err
	}
	return &redactedError{msg: redacted, err: err}
}

func withoutQuery(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	parsed.RawQuery = ""
	return parsed.String()
}

// restyLogger sends the HTTP client's own log lines to slog without the credential
type restyLogger struct {
	redact func(string) string
}

func (l restyLogger) Errorf(format string, v ...any) {
	slog.Default().Error(l.redact(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Warnf(format string, v ...any) {
	slog.Default().Warn(l.redact(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Debugf(format string, v ...any) {
	slog.Default().Debug(l.redact(fmt.Sprintf(format, v...)))
}
