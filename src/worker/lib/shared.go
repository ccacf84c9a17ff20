package worker

const (
	SINGLE_ITEM_BUFFER_LEN = 1

	SALES_OBJECT_FOLDER   = "data/"
	SUMMARY_OBJECT_FOLDER = "summary/"

	STORE_SUMMARY_SUFFIX   = "summaryByStore.csv"
	PRODUCT_SUMMARY_SUFFIX = "summaryByProduct.csv"
)

// StoreSummaryKey returns the object key of a date's store summary.
func StoreSummaryKey(date string) string {
	return SUMMARY_OBJECT_FOLDER + date + "-" + STORE_SUMMARY_SUFFIX
}

// ProductSummaryKey returns the object key of a date's product summary.
func ProductSummaryKey(date string) string {
	return SUMMARY_OBJECT_FOLDER + date + "-" + PRODUCT_SUMMARY_SUFFIX
}
