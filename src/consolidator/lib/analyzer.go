package consolidator

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	SUMMARY_FIELD_DELIMITER = ';'
	CURRENCY_SUFFIX         = "$"
)

// ProductLine is one product row copied through from the product
// summary. Fields stay verbatim as serialized ("14.97$", "3 units",
// "2$"); the analyzer trusts the already-merged summary and does not
// re-aggregate.
type ProductLine struct {
	Product       string
	TotalProfit   string
	TotalQuantity string
	TotalSold     string
}

// AnalysisReport is the final per-date report: retailer-wide profit,
// the store extremes and the per-product breakdown.
type AnalysisReport struct {
	Date                 string
	TotalProfit          decimal.Decimal
	MostProfitableStore  string
	LeastProfitableStore string
	PerProduct           []ProductLine
}

func NewAnalysisReport(date string) *AnalysisReport {
	return &AnalysisReport{
		Date:        date,
		TotalProfit: decimal.Zero,
		PerProduct:  []ProductLine{},
	}
}

// AnalyzeStores folds the serialized store summary into the report:
// the profit sum plus the most and least profitable stores. Extremes
// use strict comparisons, so the first store reaching a value wins
// ties and a store only becomes most profitable with a profit above
// zero.
func (r *AnalysisReport) AnalyzeStores(data []byte) error {
	records, err := parseSummaryRecords(data)
	if err != nil {
		return fmt.Errorf("failed reading store summary: %w", err)
	}

	maxProfit := decimal.Zero
	minProfit := decimal.Zero
	hasMin := false

	for _, record := range records {
		if len(record) < 2 {
			return fmt.Errorf("malformed store summary row: %v", record)
		}
		store := record[0]
		profit, err := decimal.NewFromString(strings.TrimSuffix(record[1], CURRENCY_SUFFIX))
		if err != nil {
			return fmt.Errorf("invalid store profit %q: %w", record[1], err)
		}

		r.TotalProfit = r.TotalProfit.Add(profit)

		if profit.GreaterThan(maxProfit) {
			maxProfit = profit
			r.MostProfitableStore = store
		}
		if !hasMin || profit.LessThan(minProfit) {
			hasMin = true
			minProfit = profit
			r.LeastProfitableStore = store
		}
	}

	return nil
}

// AnalyzeProducts copies the product summary rows into the report.
func (r *AnalysisReport) AnalyzeProducts(data []byte) error {
	records, err := parseSummaryRecords(data)
	if err != nil {
		return fmt.Errorf("failed reading product summary: %w", err)
	}

	for _, record := range records {
		if len(record) < 4 {
			return fmt.Errorf("malformed product summary row: %v", record)
		}
		r.PerProduct = append(r.PerProduct, ProductLine{
			Product:       record[0],
			TotalProfit:   record[1],
			TotalQuantity: record[2],
			TotalSold:     record[3],
		})
	}

	return nil
}

// parseSummaryRecords decodes a summary body, skipping the header row.
func parseSummaryRecords(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = SUMMARY_FIELD_DELIMITER
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return [][]string{}, nil
	}
	return records[1:], nil
}
