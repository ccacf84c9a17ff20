package worker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"retail-sales-analysis/src/common/logger"
)

const (
	STORE_SUMMARY_HEADER   = "Store;Total_Profit;"
	PRODUCT_SUMMARY_HEADER = "Product;Total_Profit;Total_Quantity;Total_Sold"

	CURRENCY_SUFFIX = "$"
	QUANTITY_SUFFIX = " units"
)

var summary_logger = logger.GetLoggerWithPrefix("[SUMMARY]")

// StoreTotals maps store name to its cumulative profit for one date.
// The accumulated amount is the unit price of each sale, which is the
// aggregation rule the summary files have always carried.
type StoreTotals struct {
	order  []string
	totals map[string]decimal.Decimal
}

func NewStoreTotals() *StoreTotals {
	return &StoreTotals{
		order:  []string{},
		totals: make(map[string]decimal.Decimal),
	}
}

func (s *StoreTotals) Add(store string, amount decimal.Decimal) {
	current, exists := s.totals[store]
	if !exists {
		s.order = append(s.order, store)
		current = decimal.Zero
	}
	s.totals[store] = current.Add(amount)
}

func (s *StoreTotals) Get(store string) decimal.Decimal {
	return s.totals[store]
}

// Stores returns store names in first-seen order. That order is what
// serialized rows follow; consumers must not rely on it.
func (s *StoreTotals) Stores() []string {
	return s.order
}

func (s *StoreTotals) Len() int {
	return len(s.order)
}

// ProductStat holds the running totals of one product for one date.
// TotalSoldCount counts sale rows, not units or revenue, even though
// the serialized field renders it with a currency suffix.
type ProductStat struct {
	TotalProfit    decimal.Decimal
	TotalQuantity  int
	TotalSoldCount int
}

func addProductStats(stat1, stat2 ProductStat) ProductStat {
	return ProductStat{
		TotalProfit:    stat1.TotalProfit.Add(stat2.TotalProfit),
		TotalQuantity:  stat1.TotalQuantity + stat2.TotalQuantity,
		TotalSoldCount: stat1.TotalSoldCount + stat2.TotalSoldCount,
	}
}

// ProductTotals maps product name to its running ProductStat.
type ProductTotals struct {
	order  []string
	totals map[string]ProductStat
}

func NewProductTotals() *ProductTotals {
	return &ProductTotals{
		order:  []string{},
		totals: make(map[string]ProductStat),
	}
}

func (p *ProductTotals) add(product string, stat ProductStat) {
	existing, exists := p.totals[product]
	if exists {
		stat = addProductStats(existing, stat)
	} else {
		p.order = append(p.order, product)
	}
	p.totals[product] = stat
}

// Fold merges one sale row into the product's totals: profit grows by
// quantity x unit profit, quantity by the row's quantity, sold count
// by one row.
func (p *ProductTotals) Fold(product string, quantity int, unitProfit decimal.Decimal) {
	p.add(product, ProductStat{
		TotalProfit:    unitProfit.Mul(decimal.NewFromInt(int64(quantity))),
		TotalQuantity:  quantity,
		TotalSoldCount: 1,
	})
}

func (p *ProductTotals) Get(product string) ProductStat {
	return p.totals[product]
}

func (p *ProductTotals) Products() []string {
	return p.order
}

func (p *ProductTotals) Len() int {
	return len(p.order)
}

// DateAggregate is the running store/product totals pair for one
// calendar date. It is built from zero or more sale batches merged in
// over time.
type DateAggregate struct {
	Date     string
	Stores   *StoreTotals
	Products *ProductTotals
}

func NewDateAggregate(date string) *DateAggregate {
	return &DateAggregate{
		Date:     date,
		Stores:   NewStoreTotals(),
		Products: NewProductTotals(),
	}
}

// Merge folds a batch of sales into the aggregate. Per-key updates are
// additive, so the final totals do not depend on batch order or on how
// rows are partitioned across batches.
func (a *DateAggregate) Merge(batch []Sale) {
	for _, sale := range batch {
		a.Stores.Add(sale.Store, sale.UnitPrice)
		a.Products.Fold(sale.Product, sale.Quantity, sale.UnitProfit)
	}
}

// Serialize renders the store summary in its durable format:
//
//	Store;Total_Profit;
//	{store};{profit}$;
func (s *StoreTotals) Serialize() []byte {
	var builder strings.Builder
	builder.WriteString(STORE_SUMMARY_HEADER + "\n")
	for _, store := range s.order {
		fmt.Fprintf(&builder, "%s;%s%s;\n", store, s.totals[store].StringFixed(2), CURRENCY_SUFFIX)
	}
	return []byte(builder.String())
}

// DeserializeStoreTotals recovers store totals from a serialized
// summary. This path is deliberately forgiving: a line that does not
// parse is logged and skipped, and whatever totals could be derived
// are returned.
func DeserializeStoreTotals(data []byte) *StoreTotals {
	totals := NewStoreTotals()

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Store;") {
			continue
		}

		fields := strings.Split(line, ";")
		if len(fields) < 2 {
			summary_logger.Warningf("Skipping unreadable store summary line: %q", line)
			continue
		}

		profit, err := decimal.NewFromString(strings.TrimSuffix(fields[1], CURRENCY_SUFFIX))
		if err != nil {
			summary_logger.Warningf("Skipping store summary line with bad profit %q: %v", fields[1], err)
			continue
		}

		totals.Add(fields[0], profit)
	}

	return totals
}

// Serialize renders the product summary in its durable format:
//
//	Product;Total_Profit;Total_Quantity;Total_Sold
//	{product};{profit}$;{quantity} units;"{soldCount}$";
//
// The quoted sold-count field keeps its currency suffix even though it
// is a row count; existing files carry it that way.
func (p *ProductTotals) Serialize() []byte {
	var builder strings.Builder
	builder.WriteString(PRODUCT_SUMMARY_HEADER + "\n")
	for _, product := range p.order {
		stat := p.totals[product]
		fmt.Fprintf(&builder, "%s;%s%s;%d%s;\"%d%s\";\n",
			product,
			stat.TotalProfit.StringFixed(2), CURRENCY_SUFFIX,
			stat.TotalQuantity, QUANTITY_SUFFIX,
			stat.TotalSoldCount, CURRENCY_SUFFIX,
		)
	}
	return []byte(builder.String())
}

// DeserializeProductTotals is the inverse of Serialize, used to recover
// prior totals before merging a new batch. An empty body yields zero
// totals for every product; a malformed line is an error.
func DeserializeProductTotals(data []byte) (*ProductTotals, error) {
	totals := NewProductTotals()

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Product;") {
			continue
		}

		fields := strings.Split(line, ";")
		if len(fields) < 4 {
			return nil, fmt.Errorf("malformed product summary line: %q", line)
		}

		profit, err := decimal.NewFromString(strings.TrimSuffix(fields[1], CURRENCY_SUFFIX))
		if err != nil {
			return nil, fmt.Errorf("invalid product profit %q: %w", fields[1], err)
		}

		quantity, err := strconv.Atoi(strings.TrimSuffix(fields[2], QUANTITY_SUFFIX))
		if err != nil {
			return nil, fmt.Errorf("invalid product quantity %q: %w", fields[2], err)
		}

		soldField := strings.Trim(fields[3], "\"")
		soldCount, err := strconv.Atoi(strings.TrimSuffix(soldField, CURRENCY_SUFFIX))
		if err != nil {
			return nil, fmt.Errorf("invalid product sold count %q: %w", fields[3], err)
		}

		totals.add(fields[0], ProductStat{
			TotalProfit:    profit,
			TotalQuantity:  quantity,
			TotalSoldCount: soldCount,
		})
	}

	return totals, nil
}
