package mailtext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crlf(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}

func TestExtractPlain(t *testing.T) {
	raw := crlf(`From: Promo Team <deals@example.com>
To: someone@example.org
Subject: You won!
Content-Type: text/plain; charset=utf-8

Claim your free prize today.
`)

	msg, err := Extract(strings.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, "You won!", msg.Subject)
	assert.Equal(t, "deals@example.com", msg.From)
	assert.Equal(t, "Claim your free prize today.", msg.Text)
}

func TestExtractPrefersPlainOverHTML(t *testing.T) {
	raw := crlf(`From: a@example.com
Subject: Report
MIME-Version: 1.0
Content-Type: multipart/alternative; boundary=XYZ

--XYZ
Content-Type: text/plain; charset=utf-8

Quarterly report attached.
--XYZ
Content-Type: text/html; charset=utf-8

<p>Quarterly <b>report</b> attached.</p>
--XYZ--
`)

	msg, err := Extract(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Quarterly report attached.", msg.Text)
}

func TestExtractHTMLOnlySkipsAttachments(t *testing.T) {
	raw := crlf(`From: a@example.com
Subject: Deal
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary=B

--B
Content-Type: text/html; charset=utf-8

<html><head><title>x</title><style>p{color:red}</style></head><body><p>Buy now &amp; save</p><script>track()</script><div>Limited offer</div></body></html>
--B
Content-Type: application/pdf
Content-Disposition: attachment; filename="terms.pdf"

JVBERi0xLjQK
--B--
`)

	msg, err := Extract(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Buy now & save\nLimited offer", msg.Text)
}

func TestHTMLToText(t *testing.T) {
	assert.Equal(t, "", HTMLToText(""))
	assert.Equal(t, "Hello world", HTMLToText("Hello   <i>world</i>"))
	assert.Equal(t, "one\ntwo", HTMLToText("<ul><li>one</li><li>two</li></ul>"))
	assert.Equal(t, "a\nb", HTMLToText("a<br/>b"))
}
