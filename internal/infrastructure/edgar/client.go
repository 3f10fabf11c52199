// Package edgar fetches 13F filing data from SEC EDGAR.
package edgar

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/fundtrack/fundtrack-core/internal/domain/entities"
)

const (
	// DefaultBaseURL is the SEC EDGAR archive root.
	DefaultBaseURL = "https://www.sec.gov"
	// formType is the holdings report form this client cares about.
	// Amended filings (13F-HR/A) are excluded: the quarterly index would
	// otherwise yield two rows per (filer, quarter).
	formType = "13F-HR"

	requestTimeout = 30 * time.Second
)

// Client fetches the quarterly form index and filing documents. It
// implements ports.FilingIndexProvider and ports.HoldingsExtractor.
//
// EDGAR's fair access policy requires a User-Agent identifying the caller;
// identity must be of the form "app-name contact-email".
type Client struct {
	http     *http.Client
	baseURL  string
	identity string
}

// NewClient creates an EDGAR client with the given identity header.
func NewClient(identity string) *Client {
	return &Client{
		http:     &http.Client{Timeout: requestTimeout},
		baseURL:  DefaultBaseURL,
		identity: identity,
	}
}

// NewClientWithBaseURL creates a client against a non-default archive root,
// used in tests.
func NewClientWithBaseURL(identity, baseURL string) *Client {
	c := NewClient(identity)
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

// FilingIndex fetches the quarter's form index and returns one ref per
// 13F-HR filing.
func (c *Client) FilingIndex(ctx context.Context, quarter entities.Quarter) ([]entities.FilingRef, error) {
	url := fmt.Sprintf("%s/Archives/edgar/full-index/%d/QTR%d/form.idx", c.baseURL, quarter.Year, quarter.Q)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching form index for %s: %w", quarter, err)
	}
	defer body.Close()

	refs, err := parseFormIndex(body)
	if err != nil {
		return nil, fmt.Errorf("parsing form index for %s: %w", quarter, err)
	}

	log.WithFields(log.Fields{
		"Quarter": quarter.String(),
		"Filings": len(refs),
	}).Info("fetched 13F-HR form index")

	return refs, nil
}

func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", c.identity)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	return resp.Body, nil
}

// parseFormIndex reads EDGAR's form.idx format: a preamble, a dashed
// separator, then one row per filing with whitespace-separated columns
// Form Type / Company Name / CIK / Date Filed / File Name. Company names
// contain spaces, so rows are split from the right.
func parseFormIndex(r io.Reader) ([]entities.FilingRef, error) {
	var refs []entities.FilingRef

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	inBody := false
	for scanner.Scan() {
		line := scanner.Text()
		if !inBody {
			if strings.HasPrefix(line, "---") {
				inBody = true
			}
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 || fields[0] != formType {
			continue
		}

		path := fields[len(fields)-1]
		dateStr := fields[len(fields)-2]
		cikStr := fields[len(fields)-3]
		company := strings.Join(fields[1:len(fields)-3], " ")

		cik, err := strconv.ParseInt(cikStr, 10, 64)
		if err != nil {
			log.WithFields(log.Fields{
				"Line": line,
			}).Warn("skipping form index row with malformed CIK")
			continue
		}

		filedOn, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			log.WithFields(log.Fields{
				"Line": line,
			}).Warn("skipping form index row with malformed date")
			continue
		}

		refs = append(refs, entities.FilingRef{
			Company: company,
			CIK:     cik,
			FiledOn: filedOn,
			Path:    path,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading form index: %w", err)
	}

	return refs, nil
}
