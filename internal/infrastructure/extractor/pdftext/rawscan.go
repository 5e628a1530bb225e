package pdftext

import (
	"bytes"
	"regexp"
	"strings"
)

// rawScrapeCap bounds the generic scrape so a single filing cannot blow
// out the downstream prompt.
const rawScrapeCap = 16 * 1024

var (
	streamToken    = []byte("stream")
	endStreamToken = []byte("endstream")

	compensationKeywords = []string{"compensation", "month", "quarterly", "retainer"}

	noisePatterns = []*regexp.Regexp{
		regexp.MustCompile(`<<[^>]*>>`),
		regexp.MustCompile(`/[A-Za-z][A-Za-z0-9]*`),
		regexp.MustCompile(`\b\d+ 0 (?:obj|R)\b`),
		regexp.MustCompile(`\b(?:obj|endobj|xref|trailer|startxref|BT|ET|Tj|TJ|Tf|Td|TD|Tm)\b`),
	}
)

// scrapeStreams treats the PDF as an opaque binary: it takes the bytes
// between each stream/endstream pair, strips dictionary and operator
// noise, collapses to printable ASCII, and caps the result.
func scrapeStreams(raw []byte) string {
	var b strings.Builder
	for _, segment := range streamSegments(raw) {
		cleaned := cleanSegment(segment)
		if cleaned == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(cleaned)
		if b.Len() >= rawScrapeCap {
			break
		}
	}
	out := b.String()
	if len(out) > rawScrapeCap {
		out = out[:rawScrapeCap]
	}
	return strings.TrimSpace(out)
}

// scanCompensationPages independently recovers page-like segments that
// mention compensation terms, so figures beyond the generic byte cap are
// not lost.
func scanCompensationPages(raw []byte) string {
	var b strings.Builder
	for _, segment := range streamSegments(raw) {
		cleaned := cleanSegment(segment)
		if cleaned == "" || !mentionsCompensation(cleaned) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(cleaned)
	}
	return b.String()
}

// streamSegments returns the bytes inside each stream/endstream pair.
// Splitting on the end token first matters: "endstream" contains
// "stream", so splitting on the open token would shred the close tokens
// and let xref tables and trailers between streams leak into segments.
func streamSegments(raw []byte) [][]byte {
	parts := bytes.Split(raw, endStreamToken)
	if len(parts) < 2 {
		return nil
	}
	segments := make([][]byte, 0, len(parts)-1)
	for _, part := range parts[:len(parts)-1] {
		start := bytes.LastIndex(part, streamToken)
		if start < 0 {
			continue
		}
		segments = append(segments, part[start+len(streamToken):])
	}
	return segments
}

func cleanSegment(segment []byte) string {
	text := printableASCII(segment)
	for _, pattern := range noisePatterns {
		text = pattern.ReplaceAllString(text, " ")
	}
	return strings.Join(strings.Fields(text), " ")
}

func printableASCII(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range raw {
		if c >= 0x20 && c < 0x7f {
			b.WriteByte(c)
		} else if c == '\n' || c == '\r' || c == '\t' {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func mentionsCompensation(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range compensationKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
