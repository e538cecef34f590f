// Utilities for importing a browser session from a copied cURL command.
package shared

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
)

// BrowserSession represents headers and cookies extracted from a cURL command.
//
// The backend authenticates with session cookies, so signing in through the
// web app and copying any authenticated request as cURL is enough to drive
// the CLI with the same session.
type BrowserSession struct {
	Headers map[string]string
	Cookies []*http.Cookie
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts the session.
func ParseCurlFile(path string) (*BrowserSession, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(content)
}

var curlHeaderRegex = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"|-b\s+'([^']+)'|-b\s+"([^"]+)"`)

// ParseCurlCommand parses a cURL command string and extracts headers and cookies.
//
// Handles both -H 'Cookie: ...' and -b '...' forms.
func ParseCurlCommand(data []byte) (*BrowserSession, error) {
	curlCmd := strings.ReplaceAll(string(data), "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	session := &BrowserSession{Headers: make(map[string]string)}

	for _, match := range curlHeaderRegex.FindAllStringSubmatch(curlCmd, -1) {
		switch {
		case match[1] != "" || match[2] != "":
			headerLine := match[1]
			if headerLine == "" {
				headerLine = match[2]
			}
			parts := strings.SplitN(headerLine, ":", 2)
			if len(parts) != 2 {
				continue
			}
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			if strings.EqualFold(key, "cookie") {
				session.Cookies = append(session.Cookies, parseCookieHeader(value)...)
			} else {
				session.Headers[key] = value
			}
		case match[3] != "" || match[4] != "":
			cookieLine := match[3]
			if cookieLine == "" {
				cookieLine = match[4]
			}
			session.Cookies = append(session.Cookies, parseCookieHeader(cookieLine)...)
		}
	}

	if len(session.Cookies) == 0 {
		return nil, fmt.Errorf("%w: no cookies found in cURL command", ErrMissingCredentials)
	}

	return session, nil
}

// parseCookieHeader splits a Cookie header value into individual cookies.
func parseCookieHeader(value string) []*http.Cookie {
	var cookies []*http.Cookie
	for _, pair := range strings.Split(value, ";") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: parts[0], Value: parts[1]})
	}
	return cookies
}
