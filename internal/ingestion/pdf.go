// Package ingestion turns uploaded resumes into plain text.
package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxResumeChars caps the text kept per resume.
const MaxResumeChars = 20000

var ErrNoText = errors.New("resume contains no extractable text")

// ExtractPDFText returns the whitespace-normalised text of a PDF document.
func ExtractPDFText(data []byte) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}

	text = strings.Join(strings.Fields(string(raw)), " ")
	if text == "" {
		return "", ErrNoText
	}
	if len(text) > MaxResumeChars {
		text = truncate(text, MaxResumeChars)
	}
	return text, nil
}

// truncate cuts at a rune boundary.
func truncate(s string, n int) string {
	for n > 0 && n < len(s) && (s[n]&0xC0) == 0x80 {
		n--
	}
	return s[:n]
}
