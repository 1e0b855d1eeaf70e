package model

// TradeSimulateRequest 港股交易成本模拟请求
type TradeSimulateRequest struct {
	StockCode string  `json:"stock_code" binding:"required"`
	BuyPrice  float64 `json:"buy_price" binding:"required,gt=0"`
	SellPrice float64 `json:"sell_price" binding:"required,gt=0"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
}

// TradeFees 交易费用明细
type TradeFees struct {
	Commission    float64 `json:"commission"`     // 佣金
	StampDuty     float64 `json:"stamp_duty"`     // 印花税
	TradingFee    float64 `json:"trading_fee"`    // 联交所交易费
	SettlementFee float64 `json:"settlement_fee"` // 结算交收费
	Levy          float64 `json:"levy"`           // 证监会征费+财汇局征费
	TotalFees     float64 `json:"total_fees"`
}

// TradeSimulateResponse 交易成本模拟结果
type TradeSimulateResponse struct {
	StockCode   string    `json:"stock_code"`
	StockName   string    `json:"stock_name"`
	BuyPrice    float64   `json:"buy_price"`
	SellPrice   float64   `json:"sell_price"`
	Quantity    int       `json:"quantity"`
	BuyCost     float64   `json:"buy_cost"`     // 买入总成本(含费用)
	SellProceed float64   `json:"sell_proceed"` // 卖出净所得(扣费用)
	BuyFees     TradeFees `json:"buy_fees"`
	SellFees    TradeFees `json:"sell_fees"`
	NetProfit   float64   `json:"net_profit"`
	ProfitRate  float64   `json:"profit_rate"` // 净收益率(%)
	BreakEven   float64   `json:"break_even"`  // 保本卖出价
}
