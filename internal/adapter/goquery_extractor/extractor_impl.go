package goquery_extractor

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/user/catalog-webhook/internal/entity"
	"github.com/user/catalog-webhook/internal/repository"
	"github.com/user/catalog-webhook/pkg/utils"
)

// Selectors are the structural markers of the catalog's results page.
type Selectors struct {
	Row     string // one result row
	Link    string // title link inside a row; first match wins
	Analyst string // paragraph holding the analyst links
}

// DefaultSelectors match the catalog's simple-search results page.
var DefaultSelectors = Selectors{
	Row:     "div.searchResultRow",
	Link:    ".search-result",
	Analyst: "p.results-analyst",
}

// Extractor implements repository.ResultExtractor with CSS selectors.
type Extractor struct {
	sel    Selectors
	logger *zap.Logger
}

// NewExtractor creates an extractor. Empty selector fields take their default.
func NewExtractor(sel Selectors, logger *zap.Logger) *Extractor {
	if sel.Row == "" {
		sel.Row = DefaultSelectors.Row
	}
	if sel.Link == "" {
		sel.Link = DefaultSelectors.Link
	}
	if sel.Analyst == "" {
		sel.Analyst = DefaultSelectors.Analyst
	}
	return &Extractor{sel: sel, logger: logger}
}

// Extract parses the results page and returns up to limit records.
func (e *Extractor) Extract(base *url.URL, r io.Reader, limit int) (*entity.Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	out := &entity.Extraction{Records: []entity.ResultRecord{}}
	doc.Find(e.sel.Row).EachWithBreak(func(i int, row *goquery.Selection) bool {
		out.Examined++
		rec, err := e.extractRow(base, row)
		if err != nil {
			out.Skipped++
			e.logger.Debug("skipping result row", zap.Int("row", i), zap.Error(err))
			return true
		}
		out.Records = append(out.Records, rec)
		return limit <= 0 || len(out.Records) < limit
	})

	return out, nil
}

func (e *Extractor) extractRow(base *url.URL, row *goquery.Selection) (entity.ResultRecord, error) {
	link := row.Find(e.sel.Link).First()
	if link.Length() == 0 {
		return entity.ResultRecord{}, fmt.Errorf("%w: no %q element", entity.ErrExtractionMismatch, e.sel.Link)
	}
	href, ok := link.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return entity.ResultRecord{}, fmt.Errorf("%w: link has no href", entity.ErrExtractionMismatch)
	}
	title := strings.TrimSpace(link.Text())
	if title == "" {
		return entity.ResultRecord{}, fmt.Errorf("%w: link has no title text", entity.ErrExtractionMismatch)
	}
	abs, err := utils.ToAbsoluteURL(base, strings.TrimSpace(href))
	if err != nil {
		return entity.ResultRecord{}, fmt.Errorf("%w: bad href %q: %w", entity.ErrExtractionMismatch, href, err)
	}

	block := row.Find(e.sel.Analyst).First()
	if block.Length() == 0 {
		return entity.ResultRecord{}, fmt.Errorf("%w: no %q element", entity.ErrExtractionMismatch, e.sel.Analyst)
	}
	analysts := []string{}
	block.Find("a").Each(func(_ int, a *goquery.Selection) {
		if name := strings.TrimSpace(a.Text()); name != "" {
			analysts = append(analysts, name)
		}
	})

	return entity.ResultRecord{Title: title, URL: abs, Analysts: analysts}, nil
}

var _ repository.ResultExtractor = (*Extractor)(nil)
