// Package knowledge loads the optional system instruction a chat session is
// seeded with. A knowledge file is plain text (.txt, .md) or a PDF whose text
// is extracted on load.
//
// Information Hiding: callers receive a trimmed string and never learn which
// extraction path produced it.
package knowledge

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Load reads the file at path and returns its text content. The extension
// decides the extraction path; anything other than .txt, .md, or .pdf is
// rejected. The returned text is whitespace-trimmed and may be empty.
func Load(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read knowledge file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	case ".pdf":
		text, err := readPDF(path)
		if err != nil {
			return "", fmt.Errorf("failed to read knowledge pdf: %w", err)
		}
		return strings.TrimSpace(text), nil
	default:
		return "", fmt.Errorf("unsupported knowledge file type %q (want .txt, .md, or .pdf)", ext)
	}
}

func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
