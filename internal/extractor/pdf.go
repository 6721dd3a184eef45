package extractor

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pageSource is the page-level view of a parsed PDF.
type pageSource interface {
	NumPage() int
	PageText(num int) (string, error)
}

// PDF extracts text page by page. A page that fails to decode contributes an
// empty string instead of failing the document.
type PDF struct {
	logger *slog.Logger
	open   func(data []byte) (pageSource, error)
}

// NewPDF creates the PDF format. A nil logger means slog.Default().
func NewPDF(logger *slog.Logger) *PDF {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDF{logger: logger, open: openPDF}
}

// Extensions implements Format.
func (p *PDF) Extensions() []string {
	return []string{".pdf"}
}

// Extract concatenates the plain text of every page in page order.
func (p *PDF) Extract(filename string, data []byte) (string, error) {
	src, err := p.open(data)
	if err != nil {
		return "", &ExtractionError{Filename: filename, Reason: "malformed PDF", Err: err}
	}

	var sb strings.Builder
	for i := 1; i <= src.NumPage(); i++ {
		txt, err := src.PageText(i)
		if err != nil {
			p.logger.Debug("pdf_page_skipped", "filename", filename, "page", i, "error", err.Error())
			continue
		}
		sb.WriteString(txt)
	}
	return sb.String(), nil
}

// ledongthucSource adapts github.com/ledongthuc/pdf to pageSource.
type ledongthucSource struct {
	r *pdf.Reader
}

// openPDF parses data; the parser panics on some malformed inputs, which is
// reported as an error.
func openPDF(data []byte) (src pageSource, err error) {
	defer func() {
		if r := recover(); r != nil {
			src, err = nil, fmt.Errorf("parse pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return ledongthucSource{r: r}, nil
}

func (s ledongthucSource) NumPage() (n int) {
	defer func() {
		if r := recover(); r != nil {
			n = 0
		}
	}()
	return s.r.NumPage()
}

func (s ledongthucSource) PageText(num int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("page %d: %v", num, r)
		}
	}()
	page := s.r.Page(num)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
