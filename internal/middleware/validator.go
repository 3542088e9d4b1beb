package middleware

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Input validation and sanitization utilities

const maxFileNameLen = 255

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// CleanFileName keeps only the base name of an uploaded file and strips control
// characters. The name is echoed into prompts and reports, never used as a path.
func CleanFileName(name string) (string, error) {
	name = SanitizeString(strings.ReplaceAll(name, "\n", " "))
	if name == "" {
		return "", nil
	}
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == ".." {
		return "", nil
	}
	if utf8.RuneCountInString(name) > maxFileNameLen {
		return "", fmt.Errorf("file name longer than %d characters", maxFileNameLen)
	}
	return name, nil
}

// DecodeImage decodes standard base64, optionally wrapped in a data URI. The
// media type from a data URI is returned so callers can use it when none was declared.
func DecodeImage(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	mime := ""
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 {
			return nil, "", fmt.Errorf("malformed data URI")
		}
		meta := s[len("data:"):comma]
		if !strings.HasSuffix(meta, ";base64") {
			return nil, "", fmt.Errorf("data URI must be base64 encoded")
		}
		mime = strings.TrimSuffix(meta, ";base64")
		s = s[comma+1:]
	}
	if s == "" {
		return nil, mime, nil
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		// some clients drop padding
		if data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "=")); err != nil {
			return nil, "", fmt.Errorf("invalid base64 image: %w", err)
		}
	}
	return data, mime, nil
}
