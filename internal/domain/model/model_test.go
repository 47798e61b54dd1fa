package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestOrderStatusTerminal(t *testing.T) {
	cases := []struct {
		status   OrderStatus
		terminal bool
	}{
		{OrderStatusPending, false},
		{OrderStatusAccepted, false},
		{OrderStatusDelivered, false},
		{OrderStatusContested, false},
		{OrderStatusCompleted, true},
		{OrderStatusRefused, true},
		{OrderStatusCancelled, true},
		{OrderStatusAutoCancelled, true},
		{OrderStatusAutoCompleted, true},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			if tc.status.Terminal() != tc.terminal {
				t.Fatalf("expected Terminal()=%v for %s", tc.terminal, tc.status)
			}
		})
	}
}

func TestOrderStatusCaptured(t *testing.T) {
	if !OrderStatusCompleted.Captured() || !OrderStatusAutoCompleted.Captured() {
		t.Fatal("completed statuses must imply capture")
	}
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusRefused, OrderStatusCancelled, OrderStatusAutoCancelled} {
		if s.Captured() {
			t.Fatalf("status %s must not imply capture", s)
		}
	}
}

func TestSplitAmountConservesTotal(t *testing.T) {
	cases := []struct {
		total string
		rate  string
		net   string
	}{
		{"100", "10", "90"},
		{"100", "0", "100"},
		{"99.99", "15", "84.99"},
		{"0.01", "10", "0.01"},
		{"250.50", "12.5", "219.19"},
	}

	for _, tc := range cases {
		total := decimal.RequireFromString(tc.total)
		rate := decimal.RequireFromString(tc.rate)
		net := SplitAmount(total, rate)
		if net.String() != decimal.RequireFromString(tc.net).String() {
			t.Fatalf("split %s at %s%%: expected net %s, got %s", tc.total, tc.rate, tc.net, net)
		}
		order := Order{TotalAmount: total, CommissionRate: rate, NetAmount: net}
		if !order.NetAmount.Add(order.PlatformFee()).Equal(total) {
			t.Fatalf("net %s + fee %s != total %s", order.NetAmount, order.PlatformFee(), total)
		}
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []Role{RoleMerchant, RoleInfluencer, RoleAdmin} {
		if !ValidRole(r) {
			t.Fatalf("expected %s to be assignable", r)
		}
	}
	if ValidRole(RoleSystem) || ValidRole("buyer") {
		t.Fatal("system and unknown roles must not be assignable")
	}
}
