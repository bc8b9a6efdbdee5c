package filter

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseMessage(t *testing.T, raw string) *mail.Message {
	t.Helper()
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	require.NoError(t, err)
	return msg
}

func TestExtractTextPlainMessage(t *testing.T) {
	raw := "From: sender@example.com\r\n" +
		"Subject: Hello\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Just a plain message.\r\n"

	msg := parseMessage(t, raw)
	text, err := extractTextFromMessage(msg)
	require.NoError(t, err)
	assert.Contains(t, text, "Just a plain message.")
}

func TestExtractTextMultipartPrefersPlain(t *testing.T) {
	raw := "From: sender@example.com\r\n" +
		"Subject: Hello\r\n" +
		"Content-Type: multipart/alternative; boundary=BOUNDARY\r\n" +
		"\r\n" +
		"--BOUNDARY\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Plain body here.\r\n" +
		"--BOUNDARY\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<html><body><p>HTML body here.</p></body></html>\r\n" +
		"--BOUNDARY--\r\n"

	msg := parseMessage(t, raw)
	text, err := extractTextFromMessage(msg)
	require.NoError(t, err)
	assert.Contains(t, text, "Plain body here.")
	assert.NotContains(t, text, "HTML body here.")
}

func TestExtractTextMultipartFallsBackToHTML(t *testing.T) {
	raw := "From: sender@example.com\r\n" +
		"Subject: Hello\r\n" +
		"Content-Type: multipart/alternative; boundary=BOUNDARY\r\n" +
		"\r\n" +
		"--BOUNDARY\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<html><head><style>p{color:red}</style></head>" +
		"<body><p>Click here to verify your account</p><script>alert(1)</script></body></html>\r\n" +
		"--BOUNDARY--\r\n"

	msg := parseMessage(t, raw)
	text, err := extractTextFromMessage(msg)
	require.NoError(t, err)
	assert.Contains(t, text, "Click here to verify your account")
	assert.NotContains(t, text, "alert(1)")
	assert.NotContains(t, text, "color:red")
}

func TestExtractTextQuotedPrintable(t *testing.T) {
	raw := "From: sender@example.com\r\n" +
		"Subject: Hello\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		"Urgent=3A verify now\r\n"

	msg := parseMessage(t, raw)
	text, err := extractTextFromMessage(msg)
	require.NoError(t, err)
	assert.Contains(t, text, "Urgent: verify now")
}

func TestExtractTextBase64(t *testing.T) {
	// "Act now to claim your prize" in base64
	raw := "From: sender@example.com\r\n" +
		"Subject: Hello\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		"QWN0IG5vdyB0byBjbGFpbSB5b3VyIHByaXpl\r\n"

	msg := parseMessage(t, raw)
	text, err := extractTextFromMessage(msg)
	require.NoError(t, err)
	assert.Contains(t, text, "Act now to claim your prize")
}

func TestExtractTextNoTextParts(t *testing.T) {
	raw := "From: sender@example.com\r\n" +
		"Subject: Hello\r\n" +
		"Content-Type: multipart/mixed; boundary=BOUNDARY\r\n" +
		"\r\n" +
		"--BOUNDARY\r\n" +
		"Content-Type: application/octet-stream\r\n" +
		"\r\n" +
		"binarybytes\r\n" +
		"--BOUNDARY--\r\n"

	msg := parseMessage(t, raw)
	text, err := extractTextFromMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, "[No text content found in multipart message]", text)
}

func TestHTMLToTextCollapsesWhitespace(t *testing.T) {
	html := "<div>\n  <p>Dear   customer,</p>\n  <p>verify now</p>\n</div>"
	text := htmlToText(html)
	assert.Equal(t, "Dear customer, verify now", text)
}

func TestDecodeEncodedHeader(t *testing.T) {
	decoded, err := decodeEncodedHeader("=?utf-8?Q?Urgent=3A_Verify?=")
	require.NoError(t, err)
	assert.Equal(t, "Urgent: Verify", decoded)
}

func TestDecodeEncodedHeaderPassthrough(t *testing.T) {
	decoded, err := decodeEncodedHeader("Plain subject")
	require.NoError(t, err)
	assert.Equal(t, "Plain subject", decoded)
}
