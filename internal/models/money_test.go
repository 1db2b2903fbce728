package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyMulRateRoundsHalfUp(t *testing.T) {
	cases := []struct {
		total string
		rate  string
		want  string
	}{
		{"100.00", "0.5", "50.00"},
		{"100.00", "1", "100.00"},
		{"100.00", "0", "0.00"},
		{"10.01", "0.5", "5.01"}, // 5.005 -> 5.01
		{"0.03", "0.5", "0.02"},  // 0.015 -> 0.02
		{"33.33", "0.3333", "11.11"},
	}
	for _, tc := range cases {
		got := MustMoney(tc.total).MulRate(decimal.RequireFromString(tc.rate))
		if got.String() != tc.want {
			t.Fatalf("%s x %s: want %s got %s", tc.total, tc.rate, tc.want, got.String())
		}
	}
}

func TestMoneyLineTotal(t *testing.T) {
	detail := OrderDetail{Quantity: 3, UnitPrice: MustMoney("19.99")}
	if detail.LineTotal().String() != "59.97" {
		t.Fatalf("unexpected line total: %s", detail.LineTotal().String())
	}
}

func TestMoneyJSONAcceptsStringAndNumber(t *testing.T) {
	var fromString, fromNumber Money
	if err := json.Unmarshal([]byte(`"12.345"`), &fromString); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	if err := json.Unmarshal([]byte(`12.5`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	if fromString.String() != "12.35" || fromNumber.String() != "12.50" {
		t.Fatalf("unexpected values: %s %s", fromString.String(), fromNumber.String())
	}
	raw, err := json.Marshal(fromNumber)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(raw) != `"12.50"` {
		t.Fatalf("unexpected json: %s", raw)
	}
}
