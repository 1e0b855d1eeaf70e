package service

import (
	"context"
	"fmt"
	"math"

	"hk-quant-toolkit/internal/marketdata"
	"hk-quant-toolkit/internal/model"
)

// 港股交易费率。佣金按常见券商档位，印花税买卖双边并向上取整到1港元。
const (
	CommissionRate = 0.00025 // 佣金 0.025%，最低5港元
	MinCommission  = 5.0

	StampDutyRate = 0.001 // 印花税 0.1%，双边

	TradingFeeRate = 0.0000565 // 联交所交易费 0.00565%
	SFCLevyRate    = 0.000027  // 证监会交易征费 0.0027%
	FRCLevyRate    = 0.0000015 // 财汇局交易征费 0.00015%

	SettlementFeeRate = 0.00002 // 中央结算交收费 0.002%，最低2最高100港元
	MinSettlementFee  = 2.0
	MaxSettlementFee  = 100.0
)

// SimulateTrade 模拟一次买入+卖出的全部交易成本
func SimulateTrade(ctx context.Context, req *model.TradeSimulateRequest) (*model.TradeSimulateResponse, error) {
	if req.Quantity <= 0 || req.BuyPrice <= 0 || req.SellPrice <= 0 {
		return nil, fmt.Errorf("价格与数量必须为正数")
	}

	code, err := marketdata.NormalizeCode(req.StockCode)
	if err != nil {
		return nil, err
	}

	// 名称查询失败不影响计算
	stockName := "未知股票"
	if kline, err := marketdata.GetKline(ctx, code); err == nil && kline.Name != "" {
		stockName = kline.Name
	}

	qty := float64(req.Quantity)
	buyAmount := req.BuyPrice * qty
	sellAmount := req.SellPrice * qty

	buyFees := feesFor(buyAmount)
	sellFees := feesFor(sellAmount)

	buyCost := buyAmount + buyFees.TotalFees
	sellProceed := sellAmount - sellFees.TotalFees
	netProfit := sellProceed - buyCost

	resp := &model.TradeSimulateResponse{
		StockCode:   code,
		StockName:   stockName,
		BuyPrice:    req.BuyPrice,
		SellPrice:   req.SellPrice,
		Quantity:    req.Quantity,
		BuyCost:     round2(buyCost),
		SellProceed: round2(sellProceed),
		BuyFees:     buyFees,
		SellFees:    sellFees,
		NetProfit:   round2(netProfit),
		BreakEven:   breakEvenPrice(buyCost, qty),
	}
	if buyCost > 0 {
		resp.ProfitRate = round2(netProfit / buyCost * 100)
	}
	return resp, nil
}

// feesFor 单边交易费用明细
func feesFor(amount float64) model.TradeFees {
	commission := amount * CommissionRate
	if commission < MinCommission {
		commission = MinCommission
	}

	stampDuty := math.Ceil(amount * StampDutyRate)
	tradingFee := amount * TradingFeeRate
	levy := amount * (SFCLevyRate + FRCLevyRate)

	settlementFee := amount * SettlementFeeRate
	if settlementFee < MinSettlementFee {
		settlementFee = MinSettlementFee
	} else if settlementFee > MaxSettlementFee {
		settlementFee = MaxSettlementFee
	}

	total := commission + stampDuty + tradingFee + levy + settlementFee
	return model.TradeFees{
		Commission:    round2(commission),
		StampDuty:     round2(stampDuty),
		TradingFee:    round2(tradingFee),
		SettlementFee: round2(settlementFee),
		Levy:          round2(levy),
		TotalFees:     round2(total),
	}
}

// breakEvenPrice 保本卖出价。卖出侧按比例费率近似，忽略最低费档位。
func breakEvenPrice(buyCost, qty float64) float64 {
	sellRate := CommissionRate + StampDutyRate + TradingFeeRate + SFCLevyRate + FRCLevyRate + SettlementFeeRate
	if qty <= 0 {
		return 0
	}
	return round3(buyCost / (qty * (1 - sellRate)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
