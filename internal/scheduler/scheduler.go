// Package scheduler 盘后定时任务：批量分析与日报邮件
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/robfig/cron/v3"

	"hk-quant-toolkit/internal/calendar"
	"hk-quant-toolkit/internal/config"
	"hk-quant-toolkit/internal/mail"
	"hk-quant-toolkit/internal/recorder"
	"hk-quant-toolkit/internal/report"
	"hk-quant-toolkit/internal/service"
)

// Scheduler cron驱动的盘后任务编排
type Scheduler struct {
	cron     *cron.Cron
	analyzer *service.Analyzer
	cfg      *config.Config
	sender   *mail.Sender // 可为nil，此时跳过日报邮件
}

// New sender可为nil
func New(analyzer *service.Analyzer, cfg *config.Config, sender *mail.Sender) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		analyzer: analyzer,
		cfg:      cfg,
		sender:   sender,
	}
}

// Start 注册并启动全部定时任务
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Scheduler.PostMarketCron, s.runPostMarket); err != nil {
		return fmt.Errorf("注册盘后分析任务失败: %w", err)
	}
	if _, err := s.cron.AddFunc(s.cfg.Scheduler.DailyReportCron, s.runDailyReport); err != nil {
		return fmt.Errorf("注册日报任务失败: %w", err)
	}

	s.cron.Start()
	log.Printf("定时任务已启动: 盘后分析=%q 日报=%q",
		s.cfg.Scheduler.PostMarketCron, s.cfg.Scheduler.DailyReportCron)
	return nil
}

// Stop 停止调度并等待运行中的任务结束
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// runPostMarket 收盘后对股票池做一轮批量分析，结果落库
func (s *Scheduler) runPostMarket() {
	if !calendar.IsTradingDayNow() {
		log.Println("今日休市，跳过盘后分析")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	log.Printf("盘后分析开始，股票池 %d 只", len(s.cfg.Market.Watchlist))
	items := s.analyzer.AnalyzeBatch(ctx, s.cfg.Market.Watchlist)

	okCount := 0
	for _, item := range items {
		if item.Error == "" {
			okCount++
		} else {
			log.Printf("盘后分析 %s 失败: %s", item.Code, item.Error)
		}
	}
	log.Printf("盘后分析完成: 成功 %d/%d", okCount, len(items))
}

// runDailyReport 汇总当日结果并发送日报邮件，发送失败按指数退避重试
func (s *Scheduler) runDailyReport() {
	if s.sender == nil || !s.cfg.Mail.Enabled {
		return
	}
	if !calendar.IsTradingDayNow() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	items := s.analyzer.AnalyzeBatch(ctx, s.cfg.Market.Watchlist)

	date := ""
	for _, item := range items {
		if item.Result != nil {
			date = item.Result.Date
			break
		}
	}
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	daySignals, err := s.daySignals(ctx, date)
	if err != nil {
		log.Printf("查询当日信号失败: %v", err)
	}

	subject, body := report.BuildDaily(date, items, daySignals)

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	err = backoff.Retry(func() error {
		return s.sender.SendToAll(s.cfg.Mail.Recipients, subject, body)
	}, policy)
	if err != nil {
		log.Printf("日报邮件发送失败: %v", err)
		return
	}
	log.Printf("日报邮件已发送: %s", subject)
}

func (s *Scheduler) daySignals(ctx context.Context, date string) ([]recorder.SignalRecord, error) {
	rec := s.analyzer.Recorder()
	if rec == nil {
		return nil, nil
	}
	return rec.SignalsOn(ctx, date)
}
