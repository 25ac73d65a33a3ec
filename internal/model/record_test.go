package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecord_Str(t *testing.T) {
	r := Record{
		"CompanyName": "  Acme Inc  ",
		"DesignNum":   float64(5001),
		"Price":       12.5,
		"Missing":     nil,
	}
	assert.Equal(t, "Acme Inc", r.Str("CompanyName"))
	assert.Equal(t, "5001", r.Str("DesignNum"))
	assert.Equal(t, "12.5", r.Str("Price"))
	assert.Equal(t, "", r.Str("Missing"))
	assert.Equal(t, "", r.Str("Absent"))
}

func TestRecord_Int(t *testing.T) {
	r := Record{
		"A": float64(42),
		"B": "17",
		"C": "not a number",
		"D": nil,
	}
	assert.Equal(t, 42, r.Int("A"))
	assert.Equal(t, 17, r.Int("B"))
	assert.Equal(t, 0, r.Int("C"))
	assert.Equal(t, 0, r.Int("D"))
	assert.Equal(t, 0, r.Int("E"))
}

func TestSafeInt(t *testing.T) {
	assert.Equal(t, 100, SafeInt("100"))
	assert.Equal(t, 100, SafeInt(" 100.0 "))
	assert.Equal(t, 0, SafeInt(""))
	assert.Equal(t, 0, SafeInt("abc"))
	assert.Equal(t, -3, SafeInt("-3"))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, "abcde", Clamp("abcdefgh", 5))
	assert.Equal(t, "abc", Clamp("abc", 5))
	assert.Equal(t, "abc", Clamp("abc", 0))
}

func TestDesignRow_FieldAccess(t *testing.T) {
	row := DesignRowFromRecord(Record{
		"PK_ID":        float64(1),
		"DesignNumber": float64(5001),
		"CompanyName":  "Acme Inc",
		"ID_Customer":  nil,
		"StitchCount":  float64(8000),
	})
	assert.Equal(t, 5001, row.NaturalKey())
	assert.Equal(t, 0, row.CustomerID())
	assert.Equal(t, "Acme Inc", row.Field("CompanyName"))
	assert.Equal(t, "8000", row.Field("StitchCount"))
	assert.Equal(t, "", row.Field("NoSuchColumn"))
}

func TestOrderRow_ParsesDate(t *testing.T) {
	row := OrderRowFromRecord(Record{
		"ID_Order":           float64(900),
		"id_Customer":        float64(11824),
		"CustomerServiceRep": "Taylar",
		"cur_Subtotal":       154.20,
		"date_OrderPlaced":   "2026-02-14T09:30:00",
	})
	assert.Equal(t, 900, row.IDOrder)
	assert.Equal(t, 11824, row.IDCustomer)
	assert.InDelta(t, 154.20, row.Subtotal, 0.001)
	assert.Equal(t, time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC), row.Placed)
}

func TestOrderRow_BadDateLeavesZero(t *testing.T) {
	row := OrderRowFromRecord(Record{"date_OrderPlaced": "02/14/2026"})
	assert.True(t, row.Placed.IsZero())
}

func TestDedupeOrders(t *testing.T) {
	orders := []OrderRow{
		{IDOrder: 1, Subtotal: 10},
		{IDOrder: 2},
		{IDOrder: 1, Subtotal: 99}, // duplicate from an overlapping chunk
	}
	out := DedupeOrders(orders)
	assert.Len(t, out, 2)
	assert.InDelta(t, 10, out[0].Subtotal, 0.001)
}
