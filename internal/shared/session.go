// Saved browser session handling for the catalogue site.
//
// The request backend authenticates with cookies lifted from a logged-in
// browser. `starsync setup session` accepts a "Copy as cURL" command from
// DevTools and persists the cookie header and user agent as session.json.
package shared

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Session holds the saved catalogue session credentials.
type Session struct {
	Cookie    string `json:"cookie"`
	UserAgent string `json:"user_agent,omitempty"`
}

// LoadSession reads a session file written by SaveSession.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read session file: %v", ErrMissingCredentials, err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: failed to parse session file: %v", ErrMissingCredentials, err)
	}
	if s.Cookie == "" {
		return nil, fmt.Errorf("%w: session file has no cookie", ErrMissingCredentials)
	}

	return &s, nil
}

// SaveSession writes the session to path with owner-only permissions.
func (s *Session) SaveSession(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

var (
	curlHeaderRe = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	curlCookieRe = regexp.MustCompile(`-b\s+'([^']+)'|-b\s+"([^"]+)"`)
)

// ParseCurlSession extracts a Session from a browser "Copy as cURL" command.
func ParseCurlSession(data []byte) (*Session, error) {
	curlCmd := strings.ReplaceAll(string(data), "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	s := &Session{}

	for _, match := range curlHeaderRe.FindAllStringSubmatch(curlCmd, -1) {
		headerLine := match[1]
		if headerLine == "" {
			headerLine = match[2]
		}

		parts := strings.SplitN(headerLine, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])

		switch key {
		case "cookie":
			s.Cookie = value
		case "user-agent":
			s.UserAgent = value
		}
	}

	if m := curlCookieRe.FindStringSubmatch(curlCmd); len(m) > 1 {
		if m[1] != "" {
			s.Cookie = m[1]
		} else if m[2] != "" {
			s.Cookie = m[2]
		}
	}

	if s.Cookie == "" {
		return nil, fmt.Errorf("%w: no cookie found in curl command", ErrMissingCredentials)
	}

	return s, nil
}

// ParseCurlSessionFile reads a .sh file containing a cURL command and extracts the session.
func ParseCurlSessionFile(path string) (*Session, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}
	return ParseCurlSession(content)
}
