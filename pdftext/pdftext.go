// Package pdftext extracts plain text from PDF documents. Extraction is
// best-effort: malformed files produce an error the caller can treat as
// "no text available" rather than a failure.
package pdftext

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// Extract reads a PDF from r and returns its plain text, truncated to
// maxChars when maxChars is positive
func Extract(r io.Reader, maxChars int) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf data: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse pdf: %w", err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if maxChars > 0 {
		_, err = io.CopyN(&buf, textReader, int64(maxChars))
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("failed to read pdf text: %w", err)
		}
	} else {
		if _, err := io.Copy(&buf, textReader); err != nil {
			return "", fmt.Errorf("failed to read pdf text: %w", err)
		}
	}

	return buf.String(), nil
}
