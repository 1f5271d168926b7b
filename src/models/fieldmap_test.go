package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFieldMapMarksColumnsAbsent(t *testing.T) {
	m := NewFieldMap(BrokerGeneric)

	assert.False(t, m.Usable())
	assert.Equal(t, -1, m.BuyAmountCol)
	assert.Equal(t, -1, m.SellAmountCol)
	assert.Equal(t, -1, m.STCGCol)
	assert.Nil(t, m.DataEndRow)

	m.BuyAmountCol = 3
	assert.False(t, m.Usable())
	m.SellAmountCol = 4
	assert.True(t, m.Usable())
}

func TestBrokerTemplatesAreUsable(t *testing.T) {
	for _, m := range []*FieldMap{UpstoxTemplate(), ZerodhaTemplate()} {
		assert.True(t, m.Usable(), m.Broker)
		assert.GreaterOrEqual(t, m.DataStartRow, m.HeaderRow)
		assert.GreaterOrEqual(t, m.DaysHeldCol, 0, m.Broker)
		assert.GreaterOrEqual(t, m.SellDateCol, 0, m.Broker)
	}
}

func TestDisplayColor(t *testing.T) {
	assert.Equal(t, "green", DisplayColor(0))
	assert.Equal(t, "green", DisplayColor(1250.5))
	assert.Equal(t, "red", DisplayColor(-0.01))
}

func TestBrokerDisplayName(t *testing.T) {
	assert.Equal(t, "Zerodha", BrokerZerodha.DisplayName())
	assert.Equal(t, "Angel One", BrokerAngelOne.DisplayName())
	assert.Equal(t, "Unknown", BrokerUnknown.DisplayName())
}
