package reader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/xhad/shopsearch/internal/models"
	"golang.org/x/time/rate"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

type ReaderConfig struct {
	// TableSelector picks the HTML table to read. The first match wins.
	TableSelector string
	Timeout       time.Duration
	RateLimit     float64 // remote fetches per second
}

// Reader loads record tables from CSV or HTML files, local or remote.
type Reader struct {
	config  ReaderConfig
	client  *http.Client
	limiter *rate.Limiter
}

func NewWithConfig(config ReaderConfig) *Reader {
	if config.TableSelector == "" {
		config.TableSelector = "table"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2
	}

	return &Reader{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}
}

func New() *Reader {
	return NewWithConfig(ReaderConfig{})
}

// Read loads source, which is a file path or an http(s) URL.
func (r *Reader) Read(ctx context.Context, source string) (*models.Table, error) {
	var (
		data   []byte
		format string
		err    error
	)

	if isRemote(source) {
		data, format, err = r.fetch(ctx, source)
	} else {
		data, err = os.ReadFile(source)
		format = formatFromPath(source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}

	var table *models.Table
	switch format {
	case "csv":
		table, err = ParseCSV(bytes.NewReader(data))
	case "html":
		table, err = r.ParseHTML(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", source, err)
	}

	table.Source = source
	return table, nil
}

func (r *Reader) fetch(ctx context.Context, source string) ([]byte, string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, source)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	format := formatFromContentType(resp.Header.Get("Content-Type"))
	if format == "" {
		u, _ := url.Parse(source)
		format = formatFromPath(u.Path)
	}
	return data, format, nil
}

// ParseCSV reads a header row followed by records.
func ParseCSV(in io.Reader) (*models.Table, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	headers, err := cr.Read()
	if err == io.EOF {
		return &models.Table{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	table := &models.Table{Headers: headers}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if isBlank(rec) {
			continue
		}
		table.Rows = append(table.Rows, toRow(headers, rec))
	}
	return table, nil
}

// ParseHTML reads the first table matching the configured selector. Header
// cells come from th elements, or from the first row when there are none.
func (r *Reader) ParseHTML(in io.Reader) (*models.Table, error) {
	doc, err := goquery.NewDocumentFromReader(in)
	if err != nil {
		return nil, err
	}

	sel := doc.Find(r.config.TableSelector).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("no table matching %q", r.config.TableSelector)
	}

	var headers []string
	sel.Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, cleanContent(th.Text()))
	})

	table := &models.Table{}
	sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return
		}
		var rec []string
		cells.Each(func(_ int, td *goquery.Selection) {
			rec = append(rec, cleanContent(td.Text()))
		})
		if headers == nil {
			headers = rec
			return
		}
		if !isBlank(rec) {
			table.Rows = append(table.Rows, toRow(headers, rec))
		}
	})
	table.Headers = headers
	return table, nil
}

func toRow(headers, rec []string) models.Row {
	row := make(models.Row, len(headers))
	for i, h := range headers {
		if i < len(rec) {
			row[h] = rec[i]
		}
	}
	return row
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func cleanContent(content string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(content), " "))
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func formatFromPath(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".csv":
		return "csv"
	case ".html", ".htm":
		return "html"
	}
	return ""
}

func formatFromContentType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	switch mt {
	case "text/csv", "application/csv":
		return "csv"
	case "text/html":
		return "html"
	}
	return ""
}
