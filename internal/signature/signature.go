// Package signature reduces an HTTP response to a stable fingerprint string.
// Two fingerprints from the same algorithm version are comparable: a change in
// the fingerprint means the target's observable state changed. Known-volatile
// page elements (scripts, styles, comments, timestamps) are excluded so that
// pages with live clocks do not appear to change on every poll.
package signature

import (
	"bytes"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Descriptor carries the response facts that feed the fingerprint. No
// timestamp or random input may appear here: the fingerprint must be a pure
// function of the response.
type Descriptor struct {
	StatusCode    int
	ContentLength int
	ContentType   string
	LastModified  string
	ETag          string
	Body          []byte
}

const datePlaceholder = "[DATE]"

var (
	whitespacePattern = regexp.MustCompile(`\s+`)

	// Date-like substrings are replaced before hashing so embedded clocks and
	// "last updated" stamps do not churn the fingerprint.
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`), // DD/MM/YYYY
		regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),     // YYYY-MM-DD
		regexp.MustCompile(`\d{1,2}:\d{2}:\d{2}`),   // HH:MM:SS
	}
)

// Build produces the fingerprint for a response descriptor. It never fails:
// if HTML normalization breaks down the raw body hash is used instead.
func Build(d Descriptor) string {
	components := []string{
		strconv.Itoa(d.StatusCode),
		strconv.Itoa(d.ContentLength),
		d.ContentType,
		d.LastModified,
		d.ETag,
		contentHash(d),
	}

	sum := sha256.Sum256([]byte(strings.Join(components, "|")))
	return hex.EncodeToString(sum[:])
}

func contentHash(d Descriptor) string {
	if isHTML(d.ContentType) {
		if normalized, err := NormalizeHTML(d.Body); err == nil {
			return md5Hex([]byte(normalized))
		}
	}
	return md5Hex(d.Body)
}

func isHTML(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "text/html")
}

func md5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// NormalizeHTML extracts the visible text of an HTML document: script and
// style elements and comments are dropped, whitespace runs collapse to a
// single space, and date-like substrings become a fixed placeholder.
func NormalizeHTML(body []byte) (string, error) {
	z := html.NewTokenizer(bytes.NewReader(body))

	var sb strings.Builder
	var skipTag string

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return normalizeText(sb.String()), nil
			}
			return "", z.Err()

		case html.StartTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipTag == "" && (tag == "script" || tag == "style") {
				skipTag = tag
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if skipTag != "" && string(name) == skipTag {
				skipTag = ""
			}

		case html.TextToken:
			if skipTag == "" {
				if text := strings.TrimSpace(string(z.Text())); text != "" {
					sb.WriteString(text)
					sb.WriteByte(' ')
				}
			}

		case html.CommentToken, html.DoctypeToken:
			// ignored: comments and doctypes are volatile noise
		}
	}
}

func normalizeText(text string) string {
	text = whitespacePattern.ReplaceAllString(text, " ")
	for _, p := range datePatterns {
		text = p.ReplaceAllString(text, datePlaceholder)
	}
	return strings.TrimSpace(text)
}
