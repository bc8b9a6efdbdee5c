package filter

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/htmlindex"
)

// extractTextFromMessage extracts the text content from an email message.
// For multipart messages it prefers text/plain parts and falls back to
// stripped text/html parts.
func extractTextFromMessage(msg *mail.Message) (string, error) {
	contentType := msg.Header.Get("Content-Type")

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return extractTextFromPart(msg.Body, contentType, msg.Header.Get("Content-Transfer-Encoding"))
	}

	boundary, ok := params["boundary"]
	if !ok {
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", err
		}
		return string(bodyBytes), nil
	}

	mr := multipart.NewReader(msg.Body, boundary)

	var plainContent bytes.Buffer
	var htmlContent bytes.Buffer

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Return whatever we collected before the malformed part
			break
		}

		partContentType := part.Header.Get("Content-Type")
		partEncoding := part.Header.Get("Content-Transfer-Encoding")
		lowerType := strings.ToLower(partContentType)

		switch {
		case strings.Contains(lowerType, "text/plain"):
			text, err := extractTextFromPart(part, partContentType, partEncoding)
			if err != nil {
				continue
			}
			plainContent.WriteString(text)
			plainContent.WriteString("\n")
		case strings.Contains(lowerType, "text/html"):
			text, err := extractTextFromPart(part, partContentType, partEncoding)
			if err != nil {
				continue
			}
			htmlContent.WriteString(text)
			htmlContent.WriteString("\n")
		}
		// Skip other parts (attachments, nested multiparts, etc.)
	}

	if plainContent.Len() > 0 {
		return plainContent.String(), nil
	}
	if htmlContent.Len() > 0 {
		return htmlToText(htmlContent.String()), nil
	}

	return "[No text content found in multipart message]", nil
}

// extractTextFromPart decodes a single MIME part: transfer encoding first,
// then charset, then HTML stripping when the part is text/html
func extractTextFromPart(r io.Reader, contentType, transferEncoding string) (string, error) {
	decoded := decodeTransferEncoding(r, transferEncoding)

	raw, err := io.ReadAll(decoded)
	if err != nil {
		return "", err
	}

	text := decodeCharset(raw, contentType)

	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return htmlToText(text), nil
	}
	return text, nil
}

// decodeTransferEncoding wraps the reader to decode base64 or
// quoted-printable bodies
func decodeTransferEncoding(r io.Reader, transferEncoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(transferEncoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

// decodeCharset converts the bytes to UTF-8 using the charset declared in the
// Content-Type header. Unknown charsets fall through unchanged.
func decodeCharset(raw []byte, contentType string) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(raw)
	}

	charset, ok := params["charset"]
	if !ok {
		return string(raw)
	}

	charset = strings.ToLower(charset)
	if charset == "utf-8" || charset == "us-ascii" {
		return string(raw)
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return string(raw)
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

// htmlToText strips markup from an HTML body, keeping the visible text
func htmlToText(htmlBody string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return htmlBody
	}

	doc.Find("script, style").Remove()

	text := doc.Text()

	// Collapse runs of whitespace left behind by removed tags
	fields := strings.Fields(text)
	return strings.Join(fields, " ")
}

// decodeEncodedHeader decodes RFC 2047 encoded-word headers
func decodeEncodedHeader(header string) (string, error) {
	dec := &mime.WordDecoder{
		CharsetReader: func(charset string, input io.Reader) (io.Reader, error) {
			enc, err := htmlindex.Get(charset)
			if err != nil {
				return nil, err
			}
			return enc.NewDecoder().Reader(input), nil
		},
	}
	return dec.DecodeHeader(header)
}
