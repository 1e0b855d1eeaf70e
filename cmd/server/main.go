package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"hk-quant-toolkit/internal/cache"
	"hk-quant-toolkit/internal/calendar"
	"hk-quant-toolkit/internal/config"
	"hk-quant-toolkit/internal/handler"
	"hk-quant-toolkit/internal/mail"
	"hk-quant-toolkit/internal/marketdata"
	"hk-quant-toolkit/internal/metrics"
	"hk-quant-toolkit/internal/recorder"
	"hk-quant-toolkit/internal/scheduler"
	"hk-quant-toolkit/internal/service"
)

func main() {
	// .env不存在时直接用系统环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	if err := calendar.LoadCustomHolidays(cfg.Market.HolidayFile); err != nil {
		log.Printf("加载休市日配置失败: %v", err)
	}

	// Redis可用则作为K线缓存，否则退化为进程内缓存
	if cfg.Redis.Enabled {
		if err := cache.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
			log.Printf("Redis不可用，使用进程内缓存: %v", err)
		} else {
			marketdata.SetCacheProvider(cache.Provider{})
			defer cache.Close()
		}
	}
	marketdata.KlineCacheTTL = cfg.Market.KlineTTL.Std()

	rec, err := recorder.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("打开数据库失败: %v", err)
	}
	defer rec.Close()

	analyzer := service.NewAnalyzer(rec, cfg.Market.Benchmark, cfg.Market.RatePerSec, cfg.Market.MaxParallel)

	var sender *mail.Sender
	if cfg.Mail.Enabled {
		sender = mail.NewSender(cfg.Mail.SMTPServer, cfg.Mail.SMTPPort, cfg.Mail.From, cfg.Mail.Password)
	}

	if cfg.Scheduler.Enabled {
		sched := scheduler.New(analyzer, cfg, sender)
		if err := sched.Start(); err != nil {
			log.Fatalf("启动定时任务失败: %v", err)
		}
		defer sched.Stop()
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()

	// 配置 CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	handler.New(analyzer).RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	log.Printf("服务启动在 %s", cfg.Server.Addr)
	if err := r.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}
