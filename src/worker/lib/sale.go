package worker

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
)

const (
	SALES_FIELD_DELIMITER = ';'
	SALES_COLUMN_COUNT    = 8

	// Date_Time;Store;Product;Quantity;Unit_Price;Unit_Cost;Unit_Profit;Total_Price
	COLUMN_STORE       = 1
	COLUMN_PRODUCT     = 2
	COLUMN_QUANTITY    = 3
	COLUMN_UNIT_PRICE  = 4
	COLUMN_UNIT_PROFIT = 6
)

// Sale is one transaction line item from a daily sales file.
type Sale struct {
	Store      string
	Product    string
	Quantity   int
	UnitPrice  decimal.Decimal
	UnitProfit decimal.Decimal
}

// ParseSales decodes a sales file body into its Sale rows. The header
// row is skipped. A parse failure on any row fails the whole batch:
// no partial results are returned.
func ParseSales(data []byte) ([]Sale, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = SALES_FIELD_DELIMITER
	reader.FieldsPerRecord = -1

	// Skip header
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return []Sale{}, nil
		}
		return nil, fmt.Errorf("failed reading sales header: %w", err)
	}

	sales := []Sale{}
	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("failed reading sales row %d: %w", row, err)
		}

		sale, err := parseSale(record)
		if err != nil {
			return nil, fmt.Errorf("malformed sales row %d: %w", row, err)
		}
		sales = append(sales, sale)
	}

	return sales, nil
}

func parseSale(record []string) (Sale, error) {
	if len(record) < SALES_COLUMN_COUNT {
		return Sale{}, fmt.Errorf("expected %d columns, got %d", SALES_COLUMN_COUNT, len(record))
	}

	quantity, err := strconv.Atoi(record[COLUMN_QUANTITY])
	if err != nil {
		return Sale{}, fmt.Errorf("invalid quantity %q: %w", record[COLUMN_QUANTITY], err)
	}

	unitPrice, err := decimal.NewFromString(record[COLUMN_UNIT_PRICE])
	if err != nil {
		return Sale{}, fmt.Errorf("invalid unit price %q: %w", record[COLUMN_UNIT_PRICE], err)
	}

	unitProfit, err := decimal.NewFromString(record[COLUMN_UNIT_PROFIT])
	if err != nil {
		return Sale{}, fmt.Errorf("invalid unit profit %q: %w", record[COLUMN_UNIT_PROFIT], err)
	}

	return Sale{
		Store:      record[COLUMN_STORE],
		Product:    record[COLUMN_PRODUCT],
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		UnitProfit: unitProfit,
	}, nil
}
