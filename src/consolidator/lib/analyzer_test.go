package consolidator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	consolidator "retail-sales-analysis/src/consolidator/lib"
)

func storeSummaryBody(rows ...string) []byte {
	body := "Store;Total_Profit;\n"
	for _, row := range rows {
		body += row + "\n"
	}
	return []byte(body)
}

func TestAnalyzeStoresTotalsAndExtremes(t *testing.T) {
	report := consolidator.NewAnalysisReport("10-01-2024")
	err := report.AnalyzeStores(storeSummaryBody(
		"S1;19.98$;",
		"S2;9.99$;",
	))
	require.NoError(t, err)

	require.Equal(t, "29.97", report.TotalProfit.StringFixed(2))
	require.Equal(t, "S1", report.MostProfitableStore)
	require.Equal(t, "S2", report.LeastProfitableStore)
}

func TestAnalyzeStoresFirstOccurrenceWinsTies(t *testing.T) {
	report := consolidator.NewAnalysisReport("10-01-2024")
	err := report.AnalyzeStores(storeSummaryBody(
		"A;10.00$;",
		"B;20.00$;",
		"C;20.00$;",
		"D;5.00$;",
	))
	require.NoError(t, err)

	require.Equal(t, "B", report.MostProfitableStore,
		"Expected the first store reaching the maximum to win the tie")
	require.Equal(t, "D", report.LeastProfitableStore)
	require.Equal(t, "55.00", report.TotalProfit.StringFixed(2))
}

func TestAnalyzeStoresAllZeroProfits(t *testing.T) {
	report := consolidator.NewAnalysisReport("10-01-2024")
	err := report.AnalyzeStores(storeSummaryBody(
		"A;0.00$;",
		"B;0.00$;",
	))
	require.NoError(t, err)

	require.Empty(t, report.MostProfitableStore,
		"Expected no store to reach a strict maximum above zero")
	require.Equal(t, "A", report.LeastProfitableStore)
	require.Equal(t, "0.00", report.TotalProfit.StringFixed(2))
}

func TestAnalyzeStoresNegativeProfits(t *testing.T) {
	report := consolidator.NewAnalysisReport("10-01-2024")
	err := report.AnalyzeStores(storeSummaryBody(
		"A;-5.00$;",
		"B;-1.00$;",
	))
	require.NoError(t, err)

	require.Empty(t, report.MostProfitableStore)
	require.Equal(t, "A", report.LeastProfitableStore)
	require.Equal(t, "-6.00", report.TotalProfit.StringFixed(2))
}

func TestAnalyzeStoresMalformedProfit(t *testing.T) {
	report := consolidator.NewAnalysisReport("10-01-2024")
	err := report.AnalyzeStores(storeSummaryBody("A;junk$;"))
	require.Error(t, err)
}

func TestAnalyzeProductsCopiesRowsVerbatim(t *testing.T) {
	body := "Product;Total_Profit;Total_Quantity;Total_Sold\n" +
		"Widget;14.97$;3 units;\"2$\";\n" +
		"Gadget;5.50$;1 units;\"1$\";\n"

	report := consolidator.NewAnalysisReport("10-01-2024")
	require.NoError(t, report.AnalyzeProducts([]byte(body)))

	require.Len(t, report.PerProduct, 2)
	require.Equal(t, consolidator.ProductLine{
		Product:       "Widget",
		TotalProfit:   "14.97$",
		TotalQuantity: "3 units",
		TotalSold:     "2$",
	}, report.PerProduct[0])
	require.Equal(t, "Gadget", report.PerProduct[1].Product)
}

func TestFormatReport(t *testing.T) {
	report := consolidator.NewAnalysisReport("10-01-2024")
	require.NoError(t, report.AnalyzeStores(storeSummaryBody(
		"S1;19.98$;",
		"S2;9.99$;",
	)))
	require.NoError(t, report.AnalyzeProducts([]byte(
		"Product;Total_Profit;Total_Quantity;Total_Sold\n"+
			"Widget;14.97$;3 units;\"2$\";\n")))

	expected := "\tData Analysis Results: out/10-01-2024-analysisResults.txt:\n" +
		"\tTotal Retailer's Profit: 29.97$\n" +
		"\tMost Profitable Store: S1\n" +
		"\tLeast Profitable Store: S2\n" +
		"\tProduct: Widget \tTotal Quantity: 3 units\tTotal Sold: 2$\tTotal Profit: 14.97$\n"
	require.Equal(t, expected, report.Format("out/10-01-2024-analysisResults.txt"))
}
