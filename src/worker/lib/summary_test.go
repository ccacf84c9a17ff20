package worker_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	worker "retail-sales-analysis/src/worker/lib"
)

func mustParseBatch(t *testing.T, lines []string) []worker.Sale {
	t.Helper()
	sales, err := worker.ParseSales(salesBody(append([]string{salesHeader}, lines...)))
	require.NoError(t, err)
	return sales
}

func TestMergeAccumulatesStorePrice(t *testing.T) {
	aggregate := worker.NewDateAggregate("10-01-2024")
	aggregate.Merge(mustParseBatch(t, []string{
		"10-01-2024;S1;Widget;2;9.99;5.00;4.99;19.98",
		"10-01-2024;S2;Widget;1;9.99;5.00;4.99;9.99",
	}))

	// Store totals accumulate the unit price of each row, not
	// profit-per-unit times quantity.
	require.Equal(t, "9.99", aggregate.Stores.Get("S1").StringFixed(2))
	require.Equal(t, "9.99", aggregate.Stores.Get("S2").StringFixed(2))
}

func TestMergeSoldCountIsRowCount(t *testing.T) {
	aggregate := worker.NewDateAggregate("10-01-2024")
	aggregate.Merge(mustParseBatch(t, []string{
		"10-01-2024;S1;Widget;2;9.99;5.00;1.00;19.98",
		"10-01-2024;S2;Widget;5;9.99;5.00;1.00;49.95",
		"10-01-2024;S1;Widget;1;9.99;5.00;1.00;9.99",
	}))

	stat := aggregate.Products.Get("Widget")
	require.Equal(t, 8, stat.TotalQuantity)
	require.Equal(t, 3, stat.TotalSoldCount, "Expected sold count to be the number of rows, not quantities")
	require.Equal(t, "8.00", stat.TotalProfit.StringFixed(2))
}

func TestMergeCommutativity(t *testing.T) {
	rows := []string{
		"10-01-2024;S1;Widget;2;9.99;5.00;4.99;19.98",
		"10-01-2024;S2;Widget;1;9.99;5.00;4.99;9.99",
		"10-01-2024;S1;Gadget;3;15.50;10.00;5.50;46.50",
		"10-01-2024;S3;Widget;4;9.99;5.00;4.99;39.96",
		"10-01-2024;S2;Gadget;1;15.50;10.00;5.50;15.50",
	}

	onePass := worker.NewDateAggregate("10-01-2024")
	onePass.Merge(mustParseBatch(t, rows))

	partitioned := worker.NewDateAggregate("10-01-2024")
	partitioned.Merge(mustParseBatch(t, rows[:2]))
	partitioned.Merge(mustParseBatch(t, rows[2:]))

	for _, store := range onePass.Stores.Stores() {
		require.True(t, onePass.Stores.Get(store).Equal(partitioned.Stores.Get(store)),
			"Expected store %s totals to be independent of batch partitioning", store)
	}
	for _, product := range onePass.Products.Products() {
		require.Equal(t, onePass.Products.Get(product), partitioned.Products.Get(product),
			"Expected product %s totals to be independent of batch partitioning", product)
	}
}

func TestSerializeStoreTotalsFormat(t *testing.T) {
	totals := worker.NewStoreTotals()
	totals.Add("S1", decimal.RequireFromString("19.98"))
	totals.Add("S2", decimal.RequireFromString("9.99"))

	expected := "Store;Total_Profit;\n" +
		"S1;19.98$;\n" +
		"S2;9.99$;\n"
	require.Equal(t, expected, string(totals.Serialize()))
}

func TestSerializeProductTotalsFormat(t *testing.T) {
	aggregate := worker.NewDateAggregate("10-01-2024")
	aggregate.Merge(mustParseBatch(t, []string{
		"10-01-2024;S1;Widget;2;9.99;5.00;4.99;19.98",
		"10-01-2024;S2;Widget;1;9.99;5.00;4.99;9.99",
	}))

	expected := "Product;Total_Profit;Total_Quantity;Total_Sold\n" +
		"Widget;14.97$;3 units;\"2$\";\n"
	require.Equal(t, expected, string(aggregate.Products.Serialize()))
}

func TestProductTotalsRoundTrip(t *testing.T) {
	totals := worker.NewProductTotals()
	totals.Fold("Widget", 3, decimal.RequireFromString("4.99"))
	totals.Fold("Gadget", 1, decimal.RequireFromString("5.50"))
	totals.Fold("Widget", 2, decimal.RequireFromString("4.99"))

	recovered, err := worker.DeserializeProductTotals(totals.Serialize())
	require.NoError(t, err)

	require.Equal(t, totals.Products(), recovered.Products())
	for _, product := range totals.Products() {
		expected := totals.Get(product)
		got := recovered.Get(product)
		require.True(t, expected.TotalProfit.Equal(got.TotalProfit))
		require.Equal(t, expected.TotalQuantity, got.TotalQuantity)
		require.Equal(t, expected.TotalSoldCount, got.TotalSoldCount)
	}
}

func TestDeserializeProductTotalsEmptyInput(t *testing.T) {
	totals, err := worker.DeserializeProductTotals([]byte{})
	require.NoError(t, err)
	require.Equal(t, 0, totals.Len(), "Expected an absent prior file to mean zero totals")
}

func TestDeserializeProductTotalsMalformedLine(t *testing.T) {
	body := "Product;Total_Profit;Total_Quantity;Total_Sold\n" +
		"Widget;14.97$\n"

	_, err := worker.DeserializeProductTotals([]byte(body))
	require.Error(t, err)
}

func TestDeserializeStoreTotalsSkipsUnreadableLines(t *testing.T) {
	body := "Store;Total_Profit;\n" +
		"S1;19.98$;\n" +
		"garbage-line\n" +
		"S2;not-a-number$;\n" +
		"S3;5.00$;\n"

	totals := worker.DeserializeStoreTotals([]byte(body))
	require.Equal(t, []string{"S1", "S3"}, totals.Stores(),
		"Expected unreadable lines to be skipped, keeping whatever totals could be derived")
	require.Equal(t, "19.98", totals.Get("S1").StringFixed(2))
}

func TestAggregateStore(t *testing.T) {
	store := worker.NewAggregateStore()

	_, exists := store.Get("10-01-2024")
	require.False(t, exists)

	aggregate := worker.NewDateAggregate("10-01-2024")
	store.Put(aggregate)

	got, exists := store.Get("10-01-2024")
	require.True(t, exists)
	require.Same(t, aggregate, got)
	require.Equal(t, 1, store.Len())
}
