// Package report 盘后日报的HTML拼装
package report

import (
	"fmt"
	"strings"

	"hk-quant-toolkit/internal/recorder"
	"hk-quant-toolkit/internal/service"
)

var statusLabels = map[string]string{
	"strong": "强共振",
	"medium": "中共振",
	"weak":   "弱共振",
	"none":   "无共振",
}

var recommendationLabels = map[string]string{
	"strong_buy":  "强烈买入",
	"buy":         "买入",
	"hold":        "持有",
	"sell":        "卖出",
	"strong_sell": "强烈卖出",
}

// BuildDaily 生成日报的主题与HTML正文
func BuildDaily(date string, items []service.BatchItem, signals []recorder.SignalRecord) (subject, body string) {
	subject = fmt.Sprintf("【港股量化日报】%s", date)

	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 720px; margin: 0 auto; padding: 20px;">`)
	b.WriteString(fmt.Sprintf(`<h2 style="color: #10b981;">港股量化日报 · %s</h2>`, date))

	// 评分总览
	b.WriteString(`<h3>评分总览</h3>`)
	b.WriteString(`<table border="1" cellpadding="6" cellspacing="0" style="border-collapse: collapse; width: 100%;">`)
	b.WriteString(`<tr style="background: #1e293b; color: #fff;"><th>代码</th><th>名称</th><th>收盘</th><th>TAV</th><th>共振</th><th>健康度</th><th>建议</th></tr>`)
	for _, item := range items {
		if item.Result == nil {
			b.WriteString(fmt.Sprintf(`<tr><td>%s</td><td colspan="6" style="color: #dc2626;">%s</td></tr>`,
				item.Code, item.Error))
			continue
		}
		r := item.Result
		b.WriteString(fmt.Sprintf(
			`<tr><td>%s</td><td>%s</td><td>%.2f</td><td>%.1f</td><td>%s</td><td>%.1f</td><td>%s</td></tr>`,
			r.Code, r.Name, r.Close, r.TAV.Composite,
			label(statusLabels, r.TAV.Status),
			r.Health.Score,
			label(recommendationLabels, r.Health.Recommendation)))
	}
	b.WriteString(`</table>`)

	// 当日信号
	b.WriteString(`<h3>当日信号</h3>`)
	if len(signals) == 0 {
		b.WriteString(`<p style="color: #64748b;">今日无新信号。</p>`)
	} else {
		b.WriteString(`<table border="1" cellpadding="6" cellspacing="0" style="border-collapse: collapse; width: 100%;">`)
		b.WriteString(`<tr style="background: #1e293b; color: #fff;"><th>代码</th><th>方向</th><th>依据</th><th>量能确认</th></tr>`)
		for _, s := range signals {
			color := "#10b981"
			kindLabel := "买入"
			if s.Kind == "sell" {
				color = "#dc2626"
				kindLabel = "卖出"
			}
			b.WriteString(fmt.Sprintf(
				`<tr><td>%s</td><td style="color: %s;">%s</td><td>%s</td><td>%s</td></tr>`,
				s.Code, color, kindLabel, s.Reasons, s.Tier))
		}
		b.WriteString(`</table>`)
	}

	b.WriteString(`<p style="color: #64748b; font-size: 12px; margin-top: 20px;">此邮件由系统自动发送，请勿回复。数据仅供研究参考，不构成投资建议。</p>`)
	b.WriteString(`</div>`)
	return subject, b.String()
}

func label(m map[string]string, key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return key
}
