// Package recorder 把每次分析产出的信号事件与评分快照落入SQLite，
// 供历史查询与日报汇总使用。
package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Recorder SQLite持久化
type Recorder struct {
	db *sql.DB
}

// SignalRecord 一条落库的信号事件
type SignalRecord struct {
	ID        int64   `json:"id"`
	Code      string  `json:"code"`
	Date      string  `json:"date"`
	Kind      string  `json:"kind"`
	Reasons   string  `json:"reasons"`
	Tier      string  `json:"tier"`
	CreatedAt string  `json:"created_at"`
}

// SnapshotRecord 一条落库的评分快照
type SnapshotRecord struct {
	ID             int64   `json:"id"`
	Code           string  `json:"code"`
	Date           string  `json:"date"`
	Composite      float64 `json:"composite"`
	TrendScore     float64 `json:"trend_score"`
	MomentumScore  float64 `json:"momentum_score"`
	VolumeScore    float64 `json:"volume_score"`
	Status         string  `json:"status"`
	HealthScore    float64 `json:"health_score"`
	Recommendation string  `json:"recommendation"`
	CreatedAt      string  `json:"created_at"`
}

// Open 打开（必要时创建）数据库并执行迁移
func Open(path string) (*Recorder, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("创建数据目录失败: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("设置PRAGMA失败: %w", err)
	}

	r := &Recorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Recorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signal_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			code       TEXT NOT NULL,
			date       TEXT NOT NULL,
			kind       TEXT NOT NULL,
			reasons    TEXT NOT NULL,
			tier       TEXT NOT NULL,
			created_at TEXT NOT NULL,
			UNIQUE(code, date, kind)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signal_events_code_date ON signal_events(code, date)`,
		`CREATE TABLE IF NOT EXISTS score_snapshots (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			code           TEXT NOT NULL,
			date           TEXT NOT NULL,
			composite      REAL NOT NULL,
			trend_score    REAL NOT NULL,
			momentum_score REAL NOT NULL,
			volume_score   REAL NOT NULL,
			status         TEXT NOT NULL,
			health_score   REAL NOT NULL,
			recommendation TEXT NOT NULL,
			created_at     TEXT NOT NULL,
			UNIQUE(code, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_score_snapshots_code_date ON score_snapshots(code, date)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("建表失败: %w", err)
		}
	}
	return nil
}

// SaveSignal 落库一条信号事件，同一(code,date,kind)重复写入时覆盖
func (r *Recorder) SaveSignal(ctx context.Context, code, date, kind string, reasons []string, tier string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO signal_events(code, date, kind, reasons, tier, created_at)
		 VALUES(?, ?, ?, ?, ?, ?)
		 ON CONFLICT(code, date, kind) DO UPDATE SET reasons=excluded.reasons, tier=excluded.tier`,
		code, date, kind, strings.Join(reasons, "；"), tier, time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("写入信号事件失败: %w", err)
	}
	return nil
}

// SaveSnapshot 落库一条评分快照，同一(code,date)重复写入时覆盖
func (r *Recorder) SaveSnapshot(ctx context.Context, s SnapshotRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO score_snapshots(code, date, composite, trend_score, momentum_score,
			volume_score, status, health_score, recommendation, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(code, date) DO UPDATE SET
			composite=excluded.composite, trend_score=excluded.trend_score,
			momentum_score=excluded.momentum_score, volume_score=excluded.volume_score,
			status=excluded.status, health_score=excluded.health_score,
			recommendation=excluded.recommendation`,
		s.Code, s.Date, s.Composite, s.TrendScore, s.MomentumScore,
		s.VolumeScore, s.Status, s.HealthScore, s.Recommendation,
		time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("写入评分快照失败: %w", err)
	}
	return nil
}

// Signals 查询某只股票最近limit条信号事件，按日期倒序
func (r *Recorder) Signals(ctx context.Context, code string, limit int) ([]SignalRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, code, date, kind, reasons, tier, created_at
		 FROM signal_events WHERE code = ? ORDER BY date DESC, id DESC LIMIT ?`,
		code, limit)
	if err != nil {
		return nil, fmt.Errorf("查询信号事件失败: %w", err)
	}
	defer rows.Close()

	var out []SignalRecord
	for rows.Next() {
		var rec SignalRecord
		if err := rows.Scan(&rec.ID, &rec.Code, &rec.Date, &rec.Kind, &rec.Reasons, &rec.Tier, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Snapshots 查询某只股票最近limit条评分快照，按日期倒序
func (r *Recorder) Snapshots(ctx context.Context, code string, limit int) ([]SnapshotRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, code, date, composite, trend_score, momentum_score,
			volume_score, status, health_score, recommendation, created_at
		 FROM score_snapshots WHERE code = ? ORDER BY date DESC, id DESC LIMIT ?`,
		code, limit)
	if err != nil {
		return nil, fmt.Errorf("查询评分快照失败: %w", err)
	}
	defer rows.Close()

	var out []SnapshotRecord
	for rows.Next() {
		var rec SnapshotRecord
		if err := rows.Scan(&rec.ID, &rec.Code, &rec.Date, &rec.Composite, &rec.TrendScore,
			&rec.MomentumScore, &rec.VolumeScore, &rec.Status, &rec.HealthScore,
			&rec.Recommendation, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SignalsOn 查询某个交易日全部信号事件，供日报汇总
func (r *Recorder) SignalsOn(ctx context.Context, date string) ([]SignalRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, code, date, kind, reasons, tier, created_at
		 FROM signal_events WHERE date = ? ORDER BY code, kind`,
		date)
	if err != nil {
		return nil, fmt.Errorf("查询当日信号失败: %w", err)
	}
	defer rows.Close()

	var out []SignalRecord
	for rows.Next() {
		var rec SignalRecord
		if err := rows.Scan(&rec.ID, &rec.Code, &rec.Date, &rec.Kind, &rec.Reasons, &rec.Tier, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close 关闭数据库
func (r *Recorder) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}
