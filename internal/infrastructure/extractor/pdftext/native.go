package pdftext

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// nativeText reads the PDF with the pure-Go reader. Encrypted or
// malformed files fail here and fall through to the raw scrape.
func nativeText(pdfPath string) (text string, err error) {
	defer func() {
		// The reader panics on some malformed xref tables.
		if r := recover(); r != nil {
			err = fmt.Errorf("native pdf reader: %v", r)
		}
	}()

	f, reader, err := pdf.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read plain text: %w", err)
	}
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("buffer plain text: %w", err)
	}
	return buf.String(), nil
}
