package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration 可从YAML字符串（如"30m"）解析的时长
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("非法的时长 %q: %w", node.Value, err)
	}
	*d = Duration(v)
	return nil
}

// Std 转为标准库时长
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config 全局配置，来源优先级：环境变量 > YAML文件 > 内置默认值
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
		Mode string `yaml:"mode"` // gin运行模式 debug/release
	} `yaml:"server"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Database struct {
		Path string `yaml:"path"` // SQLite文件路径
	} `yaml:"database"`

	Market struct {
		Benchmark    string        `yaml:"benchmark"`     // 相对强弱基准指数
		Watchlist    []string      `yaml:"watchlist"`     // 盘后批量分析的股票池
		KlineTTL     Duration      `yaml:"kline_ttl"`     // K线缓存时长
		HolidayFile  string        `yaml:"holiday_file"`  // 自定义休市日JSON
		RatePerSec   float64       `yaml:"rate_per_sec"`  // 外部行情接口限速
		MaxParallel  int           `yaml:"max_parallel"`  // 批量分析并发上限
	} `yaml:"market"`

	Scheduler struct {
		Enabled          bool   `yaml:"enabled"`
		PostMarketCron   string `yaml:"post_market_cron"`   // 收盘后批量分析
		DailyReportCron  string `yaml:"daily_report_cron"`  // 日报邮件
	} `yaml:"scheduler"`

	Mail struct {
		Enabled    bool     `yaml:"enabled"`
		SMTPServer string   `yaml:"smtp_server"`
		SMTPPort   string   `yaml:"smtp_port"`
		From       string   `yaml:"from"`
		Password   string   `yaml:"password"`
		Recipients []string `yaml:"recipients"`
	} `yaml:"mail"`
}

// Default 内置默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Server.Mode = "release"

	cfg.Redis.Enabled = false
	cfg.Redis.Addr = "localhost:6379"

	cfg.Database.Path = "data/quant.db"

	cfg.Market.Benchmark = "HSI"
	cfg.Market.Watchlist = []string{"00700", "09988", "03690", "01810", "00005"}
	cfg.Market.KlineTTL = Duration(30 * time.Minute)
	cfg.Market.RatePerSec = 5
	cfg.Market.MaxParallel = 4

	cfg.Scheduler.Enabled = true
	cfg.Scheduler.PostMarketCron = "0 30 16 * * 1-5" // 收盘后16:30
	cfg.Scheduler.DailyReportCron = "0 0 18 * * 1-5"

	cfg.Mail.SMTPPort = "465"
	return cfg
}

// Load 读取配置文件并套用环境变量覆盖。path为空或文件不存在时只用默认值+环境变量。
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("读取配置文件失败: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Addr = getEnvString("SERVER_ADDR", c.Server.Addr)
	c.Server.Mode = getEnvString("GIN_MODE", c.Server.Mode)

	c.Redis.Enabled = getEnvBool("REDIS_ENABLED", c.Redis.Enabled)
	c.Redis.Addr = getEnvString("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnvString("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)

	c.Database.Path = getEnvString("DATABASE_PATH", c.Database.Path)

	c.Market.Benchmark = getEnvString("MARKET_BENCHMARK", c.Market.Benchmark)
	if v := os.Getenv("MARKET_WATCHLIST"); v != "" {
		var list []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				list = append(list, s)
			}
		}
		if len(list) > 0 {
			c.Market.Watchlist = list
		}
	}
	c.Market.KlineTTL = Duration(getEnvDuration("MARKET_KLINE_TTL", c.Market.KlineTTL.Std()))
	c.Market.HolidayFile = getEnvString("MARKET_HOLIDAY_FILE", c.Market.HolidayFile)
	c.Market.MaxParallel = getEnvInt("MARKET_MAX_PARALLEL", c.Market.MaxParallel)

	c.Scheduler.Enabled = getEnvBool("SCHEDULER_ENABLED", c.Scheduler.Enabled)
	c.Scheduler.PostMarketCron = getEnvString("POST_MARKET_CRON", c.Scheduler.PostMarketCron)
	c.Scheduler.DailyReportCron = getEnvString("DAILY_REPORT_CRON", c.Scheduler.DailyReportCron)

	c.Mail.Enabled = getEnvBool("MAIL_ENABLED", c.Mail.Enabled)
	c.Mail.SMTPServer = getEnvString("SMTP_SERVER", c.Mail.SMTPServer)
	c.Mail.SMTPPort = getEnvString("SMTP_PORT", c.Mail.SMTPPort)
	c.Mail.From = getEnvString("MAIL_FROM", c.Mail.From)
	c.Mail.Password = getEnvString("MAIL_PASSWORD", c.Mail.Password)
	if v := os.Getenv("MAIL_RECIPIENTS"); v != "" {
		var list []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				list = append(list, s)
			}
		}
		c.Mail.Recipients = list
	}
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr 不能为空")
	}
	if c.Market.MaxParallel <= 0 {
		return fmt.Errorf("market.max_parallel 必须大于0")
	}
	if c.Market.RatePerSec <= 0 {
		return fmt.Errorf("market.rate_per_sec 必须大于0")
	}
	if c.Mail.Enabled {
		if c.Mail.SMTPServer == "" || c.Mail.From == "" || len(c.Mail.Recipients) == 0 {
			return fmt.Errorf("启用邮件时 smtp_server/from/recipients 均不能为空")
		}
	}
	return nil
}

// 辅助函数
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
