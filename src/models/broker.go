package models

// BrokerType identifies the broker whose export layout a workbook follows.
// Each broker ships a different worksheet structure.
type BrokerType string

const (
	BrokerUpstox   BrokerType = "UPSTOX"
	BrokerZerodha  BrokerType = "ZERODHA"
	BrokerICICI    BrokerType = "ICICI_DIRECT"
	BrokerGroww    BrokerType = "GROWW"
	BrokerAngelOne BrokerType = "ANGEL_ONE"
	BrokerHDFC     BrokerType = "HDFC_SECURITIES"
	BrokerGeneric  BrokerType = "GENERIC"
	BrokerUnknown  BrokerType = "UNKNOWN"
)

// DisplayName returns the human-readable broker name used in messages.
func (b BrokerType) DisplayName() string {
	switch b {
	case BrokerUpstox:
		return "Upstox"
	case BrokerZerodha:
		return "Zerodha"
	case BrokerICICI:
		return "ICICI Direct"
	case BrokerGroww:
		return "Groww"
	case BrokerAngelOne:
		return "Angel One"
	case BrokerHDFC:
		return "HDFC Securities"
	case BrokerGeneric:
		return "Generic"
	default:
		return "Unknown"
	}
}
