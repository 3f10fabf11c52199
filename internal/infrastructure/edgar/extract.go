package edgar

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/fundtrack/fundtrack-core/internal/domain/entities"
)

// informationTable mirrors the 13F information table XML embedded in the
// full submission file. Namespace prefixes vary by filer and are matched by
// local name.
type informationTable struct {
	Entries []infoTableEntry `xml:"infoTable"`
}

type infoTableEntry struct {
	NameOfIssuer string `xml:"nameOfIssuer"`
	TitleOfClass string `xml:"titleOfClass"`
	Cusip        string `xml:"cusip"`
	Value        int64  `xml:"value"`
	ShrsOrPrnAmt struct {
		Amount int64  `xml:"sshPrnamt"`
		Type   string `xml:"sshPrnamtType"`
	} `xml:"shrsOrPrnAmt"`
}

// Holdings fetches the filing's full submission and extracts its holdings.
// Share positions only ("SH"); principal-amount rows are skipped. A filing
// whose information table cannot be located or parsed yields an empty
// slice with a logged warning, never an error: one malformed document must
// not abort the run.
func (c *Client) Holdings(ctx context.Context, ref entities.FilingRef) ([]entities.ExtractedHolding, error) {
	url := fmt.Sprintf("%s/Archives/%s", c.baseURL, strings.TrimPrefix(ref.Path, "/"))

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching filing %s: %w", ref.Path, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading filing %s: %w", ref.Path, err)
	}

	holdings, err := extractHoldings(raw)
	if err != nil {
		log.WithFields(log.Fields{
			"Company": ref.Company,
			"Path":    ref.Path,
			"Error":   err,
		}).Warn("could not extract holdings from filing")
		return nil, nil
	}

	for i := range holdings {
		holdings[i].CIK = ref.CIK
		holdings[i].FiledOn = ref.FiledOn
	}
	return holdings, nil
}

// extractHoldings locates the information table XML inside the SGML
// submission wrapper and decodes it. The wrapper is not valid XML as a
// whole; only the content between <XML> markers is.
func extractHoldings(raw []byte) ([]entities.ExtractedHolding, error) {
	doc := string(raw)

	var table *informationTable
	rest := doc
	for {
		start := strings.Index(rest, "<XML>")
		if start < 0 {
			break
		}
		rest = rest[start+len("<XML>"):]
		end := strings.Index(rest, "</XML>")
		if end < 0 {
			break
		}
		block := rest[:end]
		rest = rest[end+len("</XML>"):]

		if !strings.Contains(block, "informationTable") {
			continue
		}

		var t informationTable
		if err := xml.Unmarshal([]byte(strings.TrimSpace(block)), &t); err != nil {
			return nil, fmt.Errorf("decoding information table: %w", err)
		}
		table = &t
		break
	}
	if table == nil {
		return nil, fmt.Errorf("no information table found")
	}

	holdings := make([]entities.ExtractedHolding, 0, len(table.Entries))
	for _, e := range table.Entries {
		if !strings.EqualFold(strings.TrimSpace(e.ShrsOrPrnAmt.Type), "SH") {
			continue
		}
		holdings = append(holdings, entities.ExtractedHolding{
			Cusip:      strings.TrimSpace(e.Cusip),
			Name:       strings.TrimSpace(e.NameOfIssuer),
			ClassTitle: strings.TrimSpace(e.TitleOfClass),
			Shares:     e.ShrsOrPrnAmt.Amount,
			Value:      e.Value,
		})
	}
	return holdings, nil
}
