package models

import "fmt"

// FieldMap describes where each logical field lives in a broker worksheet:
// sheet index, header/data rows and 0-based column positions. A column index
// of -1 means the field is not present in the layout; dependent features
// degrade by deriving from the buy/sell amounts instead.
type FieldMap struct {
	Broker       BrokerType
	SheetIndex   int
	HeaderRow    int  // 0-based
	DataStartRow int  // 0-based, first transaction row
	DataEndRow   *int // nil = read until end of sheet

	TradeDateCol   int
	SymbolCol      int
	BuyAmountCol   int
	SellAmountCol  int
	SellDateCol    int
	DaysHeldCol    int
	STCGCol        int
	SpeculationCol int

	// Optional columns
	QuantityCol int
	PriceCol    int
	ISINCol     int
}

// NewFieldMap returns a FieldMap with every column marked absent.
func NewFieldMap(broker BrokerType) *FieldMap {
	return &FieldMap{
		Broker:         broker,
		SheetIndex:     0,
		HeaderRow:      0,
		DataStartRow:   1,
		TradeDateCol:   -1,
		SymbolCol:      -1,
		BuyAmountCol:   -1,
		SellAmountCol:  -1,
		SellDateCol:    -1,
		DaysHeldCol:    -1,
		STCGCol:        -1,
		SpeculationCol: -1,
		QuantityCol:    -1,
		PriceCol:       -1,
		ISINCol:        -1,
	}
}

// Usable reports whether the mapping can drive a classification run.
// Buy and sell amount columns are the only hard requirements.
func (m *FieldMap) Usable() bool {
	return m.BuyAmountCol >= 0 && m.SellAmountCol >= 0
}

func (m *FieldMap) String() string {
	end := "eof"
	if m.DataEndRow != nil {
		end = fmt.Sprintf("%d", *m.DataEndRow)
	}
	return fmt.Sprintf("FieldMap{broker=%s sheet=%d header=%d data=%d..%s buy=%d sell=%d}",
		m.Broker, m.SheetIndex, m.HeaderRow, m.DataStartRow, end, m.BuyAmountCol, m.SellAmountCol)
}

// UpstoxTemplate is the hard-coded layout of an Upstox contract note export.
func UpstoxTemplate() *FieldMap {
	m := NewFieldMap(BrokerUpstox)
	m.SheetIndex = 1
	m.HeaderRow = 25
	m.DataStartRow = 26
	m.BuyAmountCol = 8    // "Buy Amt"
	m.SellAmountCol = 11  // "Sell Amt"
	m.SellDateCol = 9     // "Sell Date"
	m.DaysHeldCol = 12    // "Days"
	m.STCGCol = 14        // "Short Term" profit
	m.SpeculationCol = 16 // "Speculation" profit
	return m
}

// ZerodhaTemplate is the hard-coded layout of a Zerodha tradewise P&L export.
// Data starts at column B; column A is a spacer.
func ZerodhaTemplate() *FieldMap {
	m := NewFieldMap(BrokerZerodha)
	m.SheetIndex = 0 // "Tradewise Exits from ..."
	m.HeaderRow = 23
	m.DataStartRow = 24
	m.SymbolCol = 1       // Symbol
	m.TradeDateCol = 3    // Entry Date
	m.SellDateCol = 4     // Exit Date
	m.QuantityCol = 5     // Quantity
	m.BuyAmountCol = 6    // Buy Value
	m.SellAmountCol = 7   // Sell Value
	m.STCGCol = 8         // Profit
	m.DaysHeldCol = 9     // Period of Holding
	m.SpeculationCol = 12 // Turnover (intraday)
	return m
}

// GenericTemplate assumes headers on the first row and data right below.
func GenericTemplate() *FieldMap {
	m := NewFieldMap(BrokerGeneric)
	m.SheetIndex = 0
	m.HeaderRow = 0
	m.DataStartRow = 1
	return m
}
