package store

import (
	"net/url"
	"strings"
)

// ConnectHint suggests a fix for a failed connection attempt.
// It returns "" when the failure is not recognised.
func ConnectHint(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "econnrefused"):
		return "connection refused: the URI likely points at a host with no running server (for example 127.0.0.1); use the hosted cluster connection string"
	case strings.Contains(msg, "authentication failed"), strings.Contains(msg, "auth error"), strings.Contains(msg, "password authentication"):
		return "authentication failed: check the username and password in the connection string"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"), strings.Contains(msg, "deadline exceeded"):
		return "timed out: check that the server allows connections from this network"
	case strings.Contains(msg, "no such host"):
		return "unknown host: check the cluster address in the connection string"
	}
	return ""
}

// RedactURI hides the password in a connection string.
func RedactURI(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		if _, hasPassword := parsed.User.Password(); hasPassword {
			parsed.User = url.UserPassword(parsed.User.Username(), "redacted")
		}
	}

	return parsed.String()
}

// Redact replaces every occurrence of secret in msg with its redacted form.
func Redact(msg string, secrets ...string) string {
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		msg = strings.ReplaceAll(msg, secret, RedactURI(secret))
	}
	return msg
}
