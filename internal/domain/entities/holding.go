package entities

import "time"

// Security is a tradable instrument keyed by CUSIP. Ticker may be empty
// when the filing does not disclose one.
type Security struct {
	Cusip  string `json:"cusip"`
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
}

// MergeSecurity combines two renderings of the same security. The first
// seen name is kept unless it is empty, and a known ticker is never
// replaced by an empty one.
func MergeSecurity(old, incoming Security) Security {
	merged := old
	if merged.Name == "" {
		merged.Name = incoming.Name
	}
	if merged.Ticker == "" {
		merged.Ticker = incoming.Ticker
	}
	return merged
}

// Filing is one fund's disclosure for one quarter.
type Filing struct {
	FundCIK int64     `json:"cik"`
	FiledOn time.Time `json:"filed_on"`
}

// ExtractedHolding is one position as pulled out of a filing document,
// before consolidation. CIK and FiledOn are stamped on by the pipeline
// after extraction.
type ExtractedHolding struct {
	Cusip      string    `json:"cusip"`
	Name       string    `json:"name"`
	Ticker     string    `json:"ticker"`
	ClassTitle string    `json:"class_title"`
	Shares     int64     `json:"shares"`
	Value      int64     `json:"value"`
	CIK        int64     `json:"cik"`
	FiledOn    time.Time `json:"filing_date"`
}

// HoldingRow is one consolidated holding ready for insertion: the natural
// keys of its filing and security plus the reported amounts.
type HoldingRow struct {
	FundCIK int64
	Cusip   string
	Shares  int64
	Value   int64
}

// ConsolidationBatch is the full set of rows one consolidation call writes
// as a single transaction.
type ConsolidationBatch struct {
	Quarter    Quarter
	Funds      []Fund
	Securities []Security
	Filings    []Filing
	Holdings   []HoldingRow
}

// ConsolidationResult reports how many rows of each kind the batch touched.
type ConsolidationResult struct {
	Funds            int
	Securities       int
	Filings          int
	HoldingsInserted int
}
