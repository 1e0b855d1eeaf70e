// 生成确定性的合成K线JSON，用于离线联调与前端开发
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"hk-quant-toolkit/internal/model"
	"hk-quant-toolkit/pkg/seriesgen"
)

func main() {
	var (
		scenario = flag.String("scenario", "trend", "序列形态: flat/trend/vshape")
		n        = flag.Int("n", 250, "K线根数")
		base     = flag.Float64("base", 100, "起始价格")
		step     = flag.Float64("step", 0.3, "每日变动(trend)或上涨步长(vshape)")
		volume   = flag.Float64("volume", 10000, "每日成交量")
		out      = flag.String("out", "", "输出文件，留空写stdout")
	)
	flag.Parse()

	var bars []model.KlineBar
	switch *scenario {
	case "flat":
		bars = seriesgen.Flat(*n, *base, *volume)
	case "trend":
		bars = seriesgen.Trend(*n, *base, *step, *volume)
	case "vshape":
		bars = seriesgen.VShape(*n/2, *n-*n/2, *base, *step, *step*2, *volume)
	default:
		log.Fatalf("未知形态: %s", *scenario)
	}

	resp := model.KlineResponse{
		Code:   "SAMPLE",
		Name:   fmt.Sprintf("合成序列(%s)", *scenario),
		Period: "daily",
		Data:   bars,
	}

	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		log.Fatalf("序列化失败: %v", err)
	}

	if *out == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("写入 %s 失败: %v", *out, err)
	}
	log.Printf("已写入 %s: %d 根K线", *out, len(bars))
}
