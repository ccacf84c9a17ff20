package consolidator

import (
	"fmt"
	"strings"
)

// Format renders the report in its persisted text format. outputName
// is the path the report is written to; it appears in the title line
// as with existing report files.
func (r *AnalysisReport) Format(outputName string) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "\tData Analysis Results: %s:\n", outputName)
	fmt.Fprintf(&builder, "\tTotal Retailer's Profit: %s%s\n", r.TotalProfit.StringFixed(2), CURRENCY_SUFFIX)
	fmt.Fprintf(&builder, "\tMost Profitable Store: %s\n", r.MostProfitableStore)
	fmt.Fprintf(&builder, "\tLeast Profitable Store: %s\n", r.LeastProfitableStore)

	for _, product := range r.PerProduct {
		fmt.Fprintf(&builder, "\tProduct: %s \tTotal Quantity: %s\tTotal Sold: %s\tTotal Profit: %s\n",
			product.Product, product.TotalQuantity, product.TotalSold, product.TotalProfit)
	}

	return builder.String()
}
