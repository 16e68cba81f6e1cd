package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/akolanti/DocAssist/internal/domain/commonModels"
	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/akolanti/DocAssist/pkg/logger_i"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

const defaultPageTimeout = 10 * time.Second

var (
	errPageTimeout = errors.New("page extraction timed out")
	errNullPage    = errors.New("page has no content dictionary")
)

// Extractor turns raw document bytes into normalized text.
type Extractor struct {
	pageTimeout time.Duration
	logger      *logger_i.Logger
}

func New() *Extractor {
	return &Extractor{
		pageTimeout: defaultPageTimeout,
		logger:      logger_i.NewLogger("extract"),
	}
}

// Extract picks a reader from the declared content type, falling back to the
// file name's extension. Empty input is empty text whatever its type. Unknown
// and image formats fail with ErrUnsupportedFormat, unreadable files with
// ErrCorruptFile.
func (e *Extractor) Extract(ctx context.Context, data []byte, contentType, fileName string) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	docType := commonModels.DetectDocType(contentType, fileName)
	switch docType {
	case commonModels.ERR, commonModels.IMAGE:
		return "", errorModel.Extraction("extract "+fileName,
			fmt.Errorf("%w: %s (%s)", errorModel.ErrUnsupportedFormat, fileName, contentType))
	}

	var (
		raw string
		err error
	)
	switch docType {
	case commonModels.PDF:
		raw, err = e.pdfText(ctx, data)
	case commonModels.DOCX, commonModels.ODT, commonModels.RTF:
		raw, err = officeText(data)
	default:
		raw = string(data)
	}
	if err != nil && ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		e.logger.FromContext(ctx).Warn("extraction failed", "file", fileName, "type", docType, "error", err)
		return "", errorModel.Extraction("extract "+fileName, fmt.Errorf("%w: %v", errorModel.ErrCorruptFile, err))
	}
	return Normalize(raw), nil
}

func (e *Extractor) pdfText(ctx context.Context, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panicked: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	return e.collectPages(ctx, reader.NumPage(), func(ctx context.Context, i int) (string, error) {
		page := reader.Page(i)
		if page.V.IsNull() {
			return "", errNullPage
		}
		return e.protectExtract(ctx, page)
	})
}

// collectPages joins the text of pages 1..numPages. A page that fails is
// skipped, but a document where no page could be read is an error.
func (e *Extractor) collectPages(ctx context.Context, numPages int, pageText func(ctx context.Context, i int) (string, error)) (string, error) {
	var sb strings.Builder
	read := 0
	var lastErr error
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		content, err := pageText(ctx, i)
		if err != nil {
			lastErr = err
			e.logger.FromContext(ctx).Warn("skipping pdf page", "page", i, "error", err)
			continue
		}
		read++
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	if numPages > 0 && read == 0 {
		return "", fmt.Errorf("none of %d pages could be read: %w", numPages, lastErr)
	}
	return sb.String(), nil
}

func (e *Extractor) protectExtract(ctx context.Context, page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{err: fmt.Errorf("page panicked: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()

	timer := time.NewTimer(e.pageTimeout)
	defer timer.Stop()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-timer.C:
		return "", errPageTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func officeText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("document reader panicked: %v", r)
		}
	}()
	return cat.FromBytes(data)
}

// Normalize drops invalid UTF-8 and control characters other than newline and
// tab, converts CRLF and CR to LF and trims surrounding whitespace.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		if r == utf8.RuneError && size == 1 {
			continue
		}
		if r == '\n' || r == '\t' {
			sb.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) || r == '\uFEFF' {
			continue
		}
		sb.WriteRune(r)
	}
	return strings.TrimSpace(sb.String())
}
