// Package keycodec encodes and decodes the opaque API key literal.
//
// A key is "mmc_" followed by the standard base64 encoding of
// "<tenant>_<agent>_<token>_<version>", where token is 16 lowercase hex
// characters. The encoding is reversible by anyone holding the string, so a
// successful Decode says nothing about whether the key was ever issued.
package keycodec

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// Prefix tags every key literal.
	Prefix = "mmc_"
	// Delimiter separates the fields of the decoded payload.
	Delimiter = "_"
	// CurrentVersion is stamped into newly generated keys.
	CurrentVersion = "v1"

	tokenBytes = 8 // 16 hex chars
	minFields  = 4
)

var (
	// ErrInvalidFormat is returned by Decode for any input that is not a
	// well-formed key literal.
	ErrInvalidFormat = errors.New("invalid key format")
	// ErrDelimiter is returned by Encode when an identifier contains the
	// field delimiter and so could not be decoded back unambiguously.
	ErrDelimiter = errors.New("identifier contains key delimiter")
	// ErrEmptyField is returned by Encode when a required field is empty.
	ErrEmptyField = errors.New("empty key field")
)

// Parts is the decoded content of a key literal.
type Parts struct {
	TenantID    string `json:"tenant_id"`
	AgentID     string `json:"agent_id"`
	RandomToken string `json:"random_token"`
	Version     string `json:"version"`
}

// Generate encodes a new key for tenantID/agentID at the current version.
func Generate(tenantID, agentID string) (string, error) {
	return Encode(tenantID, agentID, CurrentVersion)
}

// Encode builds a key literal for tenantID/agentID with a fresh random token.
func Encode(tenantID, agentID, version string) (string, error) {
	token, err := randomToken()
	if err != nil {
		return "", err
	}
	return encodeWithToken(tenantID, agentID, token, version)
}

func encodeWithToken(tenantID, agentID, token, version string) (string, error) {
	for name, v := range map[string]string{"tenant id": tenantID, "agent id": agentID, "version": version} {
		if v == "" {
			return "", fmt.Errorf("%s: %w", name, ErrEmptyField)
		}
	}
	if strings.Contains(tenantID, Delimiter) {
		return "", fmt.Errorf("tenant id %q: %w", tenantID, ErrDelimiter)
	}
	if strings.Contains(agentID, Delimiter) {
		return "", fmt.Errorf("agent id %q: %w", agentID, ErrDelimiter)
	}

	payload := strings.Join([]string{tenantID, agentID, token, version}, Delimiter)
	return Prefix + base64.StdEncoding.EncodeToString([]byte(payload)), nil
}

// Decode parses a key literal. Any malformed input yields ErrInvalidFormat.
// Fields beyond the fourth are ignored so later versions may append data.
func Decode(key string) (Parts, error) {
	encoded, ok := strings.CutPrefix(key, Prefix)
	if !ok {
		return Parts{}, fmt.Errorf("missing prefix: %w", ErrInvalidFormat)
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Parts{}, fmt.Errorf("decode payload: %w", ErrInvalidFormat)
	}
	if !utf8.Valid(raw) {
		return Parts{}, fmt.Errorf("payload not utf-8: %w", ErrInvalidFormat)
	}

	fields := strings.Split(string(raw), Delimiter)
	if len(fields) < minFields {
		return Parts{}, fmt.Errorf("payload has %d fields: %w", len(fields), ErrInvalidFormat)
	}

	return Parts{
		TenantID:    fields[0],
		AgentID:     fields[1],
		RandomToken: fields[2],
		Version:     fields[3],
	}, nil
}

func randomToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate key token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
