// Package mailtext extracts the scoreable text of a raw RFC 5322 message.
package mailtext

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"golang.org/x/net/html"
)

// Message is the part of an email the scanner cares about.
type Message struct {
	Subject string
	From    string
	Text    string
}

// Extract parses a message and returns its body as plain text. A text/plain
// part wins over text/html; html-only messages are rendered to text.
// Attachments are skipped.
func Extract(r io.Reader) (*Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && (mr == nil || !message.IsUnknownCharset(err)) {
		return nil, fmt.Errorf("parsing message: %w", err)
	}
	defer mr.Close()

	msg := &Message{}
	msg.Subject, _ = mr.Header.Subject()
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		msg.From = from[0].Address
	}

	var plain, rich []string
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if message.IsUnknownCharset(err) {
				continue
			}
			return nil, fmt.Errorf("reading message part: %w", err)
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := h.ContentType()
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		switch {
		case contentType == "" || strings.HasPrefix(contentType, "text/plain"):
			plain = append(plain, string(body))
		case strings.HasPrefix(contentType, "text/html"):
			rich = append(rich, HTMLToText(string(body)))
		}
	}

	if len(plain) > 0 {
		msg.Text = strings.TrimSpace(strings.Join(plain, "\n\n"))
	} else {
		msg.Text = strings.TrimSpace(strings.Join(rich, "\n\n"))
	}

	return msg, nil
}

// blockElements end a line of text when rendered.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"table": true, "ul": true, "ol": true, "blockquote": true,
}

// HTMLToText renders the visible text of an HTML fragment. Script, style
// and head content is dropped.
func HTMLToText(content string) string {
	var b strings.Builder
	skip := 0

	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapse(b.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" || tag == "head" {
				skip++
			}
			if blockElements[tag] {
				b.WriteString("\n")
			}
		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			if blockElements[string(name)] {
				b.WriteString("\n")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if (tag == "script" || tag == "style" || tag == "head") && skip > 0 {
				skip--
			}
			if blockElements[tag] {
				b.WriteString("\n")
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
				b.WriteString(" ")
			}
		}
	}
}

// collapse squeezes runs of spaces within lines and drops empty lines.
func collapse(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
