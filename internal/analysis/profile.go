package analysis

import (
	"fmt"
	"math"
	"strings"
)

// AssetClass 资产类别，决定TAV评分的权重与阈值
type AssetClass int

const (
	AssetStock AssetClass = iota
	AssetCrypto
	AssetGold
	AssetIndex
)

// String 类别的接口表示
func (c AssetClass) String() string {
	switch c {
	case AssetCrypto:
		return "crypto"
	case AssetGold:
		return "gold"
	case AssetIndex:
		return "index"
	}
	return "stock"
}

// AssetProfile 资产画像：TAV三因子权重、共振阈值及子指标参数
type AssetProfile struct {
	Class AssetClass

	// 三因子权重，和必须为1
	TrendWeight    float64
	MomentumWeight float64
	VolumeWeight   float64

	// 共振阈值，递减
	StrongThreshold float64
	MediumThreshold float64
	WeakThreshold   float64

	// 趋势因子取用的均线周期（升序）
	MAPeriods []int

	// 动量因子参数
	RSIOversold   float64
	RSIOverbought float64

	// 量能因子参数
	SurgeWeak   float64
	SurgeMedium float64
	SurgeStrong float64
	Shrink      float64
}

// 内置画像表。加密货币基线波动更高，阈值整体上移。
var profiles = map[AssetClass]AssetProfile{
	AssetStock: {
		Class:       AssetStock,
		TrendWeight: 0.40, MomentumWeight: 0.35, VolumeWeight: 0.25,
		StrongThreshold: 75, MediumThreshold: 50, WeakThreshold: 25,
		MAPeriods:   []int{20, 50, 200},
		RSIOversold: 30, RSIOverbought: 70,
		SurgeWeak: 1.2, SurgeMedium: 1.5, SurgeStrong: 2.0, Shrink: 0.8,
	},
	AssetCrypto: {
		Class:       AssetCrypto,
		TrendWeight: 0.35, MomentumWeight: 0.35, VolumeWeight: 0.30,
		StrongThreshold: 80, MediumThreshold: 55, WeakThreshold: 30,
		MAPeriods:   []int{10, 20, 50},
		RSIOversold: 25, RSIOverbought: 75,
		SurgeWeak: 1.3, SurgeMedium: 1.8, SurgeStrong: 2.5, Shrink: 0.7,
	},
	AssetGold: {
		Class:       AssetGold,
		TrendWeight: 0.45, MomentumWeight: 0.35, VolumeWeight: 0.20,
		StrongThreshold: 75, MediumThreshold: 50, WeakThreshold: 25,
		MAPeriods:   []int{20, 50, 200},
		RSIOversold: 30, RSIOverbought: 70,
		SurgeWeak: 1.2, SurgeMedium: 1.5, SurgeStrong: 2.0, Shrink: 0.8,
	},
	AssetIndex: {
		Class:       AssetIndex,
		TrendWeight: 0.50, MomentumWeight: 0.30, VolumeWeight: 0.20,
		StrongThreshold: 70, MediumThreshold: 45, WeakThreshold: 25,
		MAPeriods:   []int{20, 50, 200},
		RSIOversold: 30, RSIOverbought: 70,
		SurgeWeak: 1.2, SurgeMedium: 1.5, SurgeStrong: 2.0, Shrink: 0.8,
	},
}

// ProfileFor 取类别对应的内置画像
func ProfileFor(class AssetClass) AssetProfile {
	return profiles[class]
}

// 符号特征子串，全部按大写匹配
var (
	cryptoTokens = []string{"BTC", "ETH", "SOL", "USDT", "USDC", "BNB", "DOGE"}
	goldTokens   = []string{"XAU", "GOLD", "GLD", "AU9999"}
	indexTokens  = []string{"HSI", "HSCEI", "HSTECH", "SPX", "NDX", "IXIC", "000001.SH", "399001"}
)

// DetectAssetClass 按符号子串推断资产类别，无法识别时按个股处理
func DetectAssetClass(symbol string) AssetClass {
	s := strings.ToUpper(symbol)
	for _, tok := range cryptoTokens {
		if strings.Contains(s, tok) {
			return AssetCrypto
		}
	}
	for _, tok := range goldTokens {
		if strings.Contains(s, tok) {
			return AssetGold
		}
	}
	for _, tok := range indexTokens {
		if strings.Contains(s, tok) {
			return AssetIndex
		}
	}
	return AssetStock
}

// ProfileForSymbol 按符号选画像
func ProfileForSymbol(symbol string) AssetProfile {
	return ProfileFor(DetectAssetClass(symbol))
}

// Validate 校验画像参数的基本约束
func (p AssetProfile) Validate() error {
	sum := p.TrendWeight + p.MomentumWeight + p.VolumeWeight
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("画像 %s 的三因子权重之和为 %.4f，必须为1", p.Class, sum)
	}
	if !(p.StrongThreshold > p.MediumThreshold && p.MediumThreshold > p.WeakThreshold) {
		return fmt.Errorf("画像 %s 的共振阈值必须严格递减", p.Class)
	}
	if len(p.MAPeriods) < 2 {
		return fmt.Errorf("画像 %s 至少需要2个均线周期", p.Class)
	}
	for i := 1; i < len(p.MAPeriods); i++ {
		if p.MAPeriods[i] <= p.MAPeriods[i-1] {
			return fmt.Errorf("画像 %s 的均线周期必须升序", p.Class)
		}
	}
	return nil
}
