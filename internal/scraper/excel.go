package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"bestseller-aggregator/internal/config"
	"bestseller-aggregator/internal/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// colUnset marks a column role the header search could not place.
const colUnset = -1

// URL templates used when the export carries a product code but no cover or
// link column.
const (
	coverURLTemplate = "https://contents.kyobobook.co.kr/sih/fit-in/300x0/filters:format(webp)/pdt/%s.jpg"
	detailURLPrefix  = "https://product.kyobobook.co.kr/detail/"
)

// SpreadsheetClient downloads a bestseller export workbook over HTTP and
// parses it into a top-10 list.
type SpreadsheetClient struct {
	client *http.Client
	cfg    config.ScrapeConfig
	cols   config.ColumnFallbacks
	log    zerolog.Logger
}

func NewSpreadsheetClient(cfg config.Config, log zerolog.Logger) *SpreadsheetClient {
	return &SpreadsheetClient{
		client: &http.Client{Timeout: cfg.Scrape.Timeout()},
		cfg:    cfg.Scrape,
		cols:   cfg.Columns,
		log:    log,
	}
}

// FetchTopTen downloads the workbook at url and parses it.
func (c *SpreadsheetClient) FetchTopTen(ctx context.Context, url string) ([]models.BestsellerItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", xlsxContentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &models.NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &models.NetworkError{URL: url, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(c.cfg.SizeLimitBytes)))
	if err != nil {
		return nil, &models.NetworkError{URL: url, Err: err}
	}
	if len(body) == 0 {
		return nil, &models.EmptyResponseError{URL: url}
	}

	c.log.Debug().Str("url", url).Int("bytes", len(body)).Msg("workbook downloaded")
	return ParseWorkbook(body, c.cols)
}

// columnMap maps logical field roles to zero-based column indices.
type columnMap struct {
	title         int
	author        int
	publisher     int
	isbn13        int
	isbn          int
	productCode   int
	saleProductID int
	cover         int
	link          int
}

// ParseWorkbook reads the first sheet of an xlsx export and returns up to ten
// items in file order. Column roles are detected from the header row by fuzzy
// name matching, with positional fallbacks for roles that stay unresolved.
func ParseWorkbook(data []byte, fallbacks config.ColumnFallbacks) ([]models.BestsellerItem, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &models.ParseError{Step: "open workbook", Err: err}
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, &models.ParseError{Step: "locate sheet", Err: fmt.Errorf("workbook has no sheets")}
	}

	// GetRows renders cells with their display format applied, which keeps
	// leading zeros in product codes and ISBNs.
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, &models.ParseError{Step: "read rows", Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := mapColumns(rows[0], fallbacks)

	var results []models.BestsellerItem
	for _, row := range rows[1:] {
		if len(results) >= maxItems {
			break
		}

		title := cellValue(row, cols.title)
		if title == "" {
			continue
		}

		author := cellValue(row, cols.author)
		publisher := cellValue(row, cols.publisher)
		isbn := cellValue(row, cols.isbn13)
		if isbn == "" {
			isbn = cellValue(row, cols.isbn)
		}
		productCode := cellValue(row, cols.productCode)
		saleProductID := cellValue(row, cols.saleProductID)
		if isbn == "" {
			isbn = productCode
		}

		cover := cellValue(row, cols.cover)
		if cover == "" {
			coverCode := productCode
			if coverCode == "" {
				coverCode = isbn
			}
			if coverCode != "" {
				cover = fmt.Sprintf(coverURLTemplate, coverCode)
			}
		}

		link := cellValue(row, cols.link)
		if link == "" && saleProductID != "" {
			link = detailURLPrefix + saleProductID
		}

		results = append(results, models.BestsellerItem{
			Title:     title,
			Author:    author,
			Publisher: publisher,
			ISBN13:    isbn,
			Cover:     cover,
			Link:      link,
		})
	}
	return results, nil
}

// mapColumns builds the role map from the header row. Matching is
// case-insensitive substring search on whitespace-stripped header text.
func mapColumns(header []string, fallbacks config.ColumnFallbacks) columnMap {
	cols := columnMap{
		title:         colUnset,
		author:        colUnset,
		publisher:     colUnset,
		isbn13:        colUnset,
		isbn:          colUnset,
		productCode:   colUnset,
		saleProductID: colUnset,
		cover:         colUnset,
		link:          colUnset,
	}

	for idx, cell := range header {
		value := normalizeHeader(cell)
		if value == "" {
			continue
		}
		switch {
		case strings.Contains(value, "상품명"):
			cols.title = idx
		case strings.Contains(value, "인물"):
			cols.author = idx
		case strings.Contains(value, "출판사"):
			cols.publisher = idx
		case strings.Contains(value, "isbn13"):
			cols.isbn13 = idx
		case strings.Contains(value, "isbn"):
			cols.isbn = idx
		case strings.Contains(value, "상품코드"):
			cols.productCode = idx
		case strings.Contains(value, "판매상품id"):
			cols.saleProductID = idx
		case strings.Contains(value, "컴버"), strings.Contains(value, "표지"):
			cols.cover = idx
		case strings.Contains(value, "상품url"), strings.Contains(value, "상품링크"), strings.Contains(value, "링크"):
			cols.link = idx
		}
	}

	// Positional fallbacks track one observed export layout; see config.
	if cols.productCode == colUnset {
		cols.productCode = fallbacks.ProductCode
	}
	if cols.saleProductID == colUnset {
		cols.saleProductID = fallbacks.SaleProductID
	}
	if cols.author == colUnset {
		cols.author = fallbacks.Author
	}
	if cols.publisher == colUnset {
		cols.publisher = fallbacks.Publisher
	}
	if cols.title == colUnset {
		cols.title = fallbacks.Title
	}
	return cols
}

func normalizeHeader(value string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
	return strings.ToLower(stripped)
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
