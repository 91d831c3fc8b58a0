package service

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/periferia-labs/perxia-be/types"
)

// TextExtractor turns raw uploaded bytes into plain text plus page structure.
// Implementations wrap whatever extraction backend is available; the
// ingestion pipeline only depends on this interface.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, filename string) (*types.Extraction, error)
	SupportedExtensions() []string
}

var pdfinfoPagesPattern = regexp.MustCompile(`Pages:\s+(\d+)`)

// LocalExtractor extracts text with local tooling: poppler's pdftotext and
// pdfinfo for PDFs, a direct read for plain-text formats.
type LocalExtractor struct {
	tempDir string
}

func NewLocalExtractor(tempDir string) *LocalExtractor {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &LocalExtractor{tempDir: tempDir}
}

func (e *LocalExtractor) SupportedExtensions() []string {
	return []string{".pdf", ".txt", ".md"}
}

func (e *LocalExtractor) Extract(ctx context.Context, data []byte, filename string) (*types.Extraction, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return e.extractPDF(ctx, data)
	case ".txt", ".md":
		text := cleanExtractedText(string(data))
		return &types.Extraction{
			Text:      text,
			PageCount: 1,
			Pages:     []types.Page{{PageNumber: 1, Text: text}},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
}

// extractPDF writes the upload to a temp file and walks it page by page with
// pdftotext. A page that fails to extract is skipped with a warning rather
// than failing the document.
func (e *LocalExtractor) extractPDF(ctx context.Context, data []byte) (*types.Extraction, error) {
	tempFile, err := os.CreateTemp(e.tempDir, "extract-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	tempFile.Close()

	totalPages, err := pageCount(ctx, tempFile.Name())
	if err != nil {
		return nil, err
	}

	var pages []types.Page
	var fullText strings.Builder
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		text, err := extractPage(ctx, tempFile.Name(), pageNum)
		if err != nil {
			log.Printf("Warning: failed to extract text from page %d: %v", pageNum, err)
			continue
		}
		text = cleanExtractedText(text)
		if text == "" {
			continue
		}
		pages = append(pages, types.Page{PageNumber: pageNum, Text: text})
		if fullText.Len() > 0 {
			fullText.WriteString("\n\n")
		}
		fullText.WriteString(text)
	}

	return &types.Extraction{
		Text:      fullText.String(),
		PageCount: totalPages,
		Pages:     pages,
	}, nil
}

// extractPage runs pdftotext for a single page.
func extractPage(ctx context.Context, path string, pageNumber int) (string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext",
		"-f", strconv.Itoa(pageNumber),
		"-l", strconv.Itoa(pageNumber),
		"-enc", "UTF-8", "-nopgbrk",
		path, "-")
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed for page %d: %w", pageNumber, err)
	}
	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", fmt.Errorf("got nothing at page %d", pageNumber)
	}
	return text, nil
}

// pageCount uses pdfinfo to get the total number of pages.
func pageCount(ctx context.Context, path string) (int, error) {
	cmd := exec.CommandContext(ctx, "pdfinfo", path)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("error running pdfinfo: %v", err)
	}

	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		if matches := pdfinfoPagesPattern.FindStringSubmatch(scanner.Text()); len(matches) == 2 {
			return strconv.Atoi(matches[1])
		}
	}
	return 0, fmt.Errorf("unable to determine page count from pdfinfo")
}

// cleanExtractedText strips control characters and normalizes whitespace
// artifacts common in extracted PDF text.
func cleanExtractedText(text string) string {
	replacements := [][2]string{
		{"\u0000", ""}, // null character
		{"\ufffd", ""}, // replacement character
		{"\u001b", ""}, // escape character
		{"\r", ""},
		{"\f", "\n"}, // form feed to newline
	}
	cleaned := text
	for _, r := range replacements {
		cleaned = strings.ReplaceAll(cleaned, r[0], r[1])
	}
	for strings.Contains(cleaned, "  ") {
		cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	}
	return strings.TrimSpace(cleaned)
}
