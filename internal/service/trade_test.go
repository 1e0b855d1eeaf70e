package service

import (
	"math"
	"testing"

	"hk-quant-toolkit/internal/model"
)

func TestFeesForMinimumBrackets(t *testing.T) {
	// 小额订单触发佣金与交收费的最低档
	fees := feesFor(1000)
	if fees.Commission != 5 {
		t.Errorf("commission = %f, want the 5 HKD minimum", fees.Commission)
	}
	if fees.SettlementFee != 2 {
		t.Errorf("settlement fee = %f, want the 2 HKD minimum", fees.SettlementFee)
	}
	// 印花税 0.1% 向上取整：1000 * 0.001 = 1
	if fees.StampDuty != 1 {
		t.Errorf("stamp duty = %f, want 1", fees.StampDuty)
	}
}

func TestFeesForProportionalBrackets(t *testing.T) {
	fees := feesFor(1_000_000)
	if fees.Commission != 250 { // 0.025%
		t.Errorf("commission = %f, want 250", fees.Commission)
	}
	if fees.StampDuty != 1000 { // 0.1%
		t.Errorf("stamp duty = %f, want 1000", fees.StampDuty)
	}
	if fees.SettlementFee != 20 { // 0.002%
		t.Errorf("settlement fee = %f, want 20", fees.SettlementFee)
	}
	// 交收费上限100：金额1000万时 0.002% = 200 → 封顶
	if capped := feesFor(10_000_000); capped.SettlementFee != 100 {
		t.Errorf("settlement fee cap lost: %f", capped.SettlementFee)
	}
}

func TestStampDutyRoundsUp(t *testing.T) {
	// 1234.5 * 0.001 = 1.2345 → 2
	if fees := feesFor(1234.5); fees.StampDuty != 2 {
		t.Errorf("stamp duty = %f, want rounded up to 2", fees.StampDuty)
	}
}

func TestBreakEvenCoversBuyCost(t *testing.T) {
	qty := 1000.0
	buyAmount := 100.0 * qty
	buyCost := buyAmount + feesFor(buyAmount).TotalFees

	be := breakEvenPrice(buyCost, qty)
	if be <= 100 {
		t.Fatalf("break-even %f must exceed the raw buy price", be)
	}

	// 以保本价卖出后净收益应接近0（最低费档近似带来的误差在1港元内）
	sellAmount := be * qty
	sellProceed := sellAmount - feesFor(sellAmount).TotalFees
	if diff := math.Abs(sellProceed - buyCost); diff > 2.0 {
		t.Errorf("selling at break-even leaves a gap of %f HKD", diff)
	}
}

func TestTradeRequestValidation(t *testing.T) {
	_, err := SimulateTrade(t.Context(), &model.TradeSimulateRequest{
		StockCode: "00700", BuyPrice: 0, SellPrice: 100, Quantity: 100,
	})
	if err == nil {
		t.Error("zero buy price must be rejected")
	}

	_, err = SimulateTrade(t.Context(), &model.TradeSimulateRequest{
		StockCode: "600519", BuyPrice: 10, SellPrice: 11, Quantity: 100,
	})
	if err == nil {
		t.Error("non-HK code must be rejected")
	}
}
