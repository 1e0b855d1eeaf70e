package recorder

import (
	"context"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) *Recorder {
	t.Helper()
	r, err := Open(filepath.Join(t.TempDir(), "quant.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSaveAndQuerySignals(t *testing.T) {
	r := openTemp(t)
	ctx := context.Background()

	if err := r.SaveSignal(ctx, "00700", "2026-08-25", "buy", []string{"MA20上穿MA50(量能确认:弱)"}, "weak"); err != nil {
		t.Fatal(err)
	}
	if err := r.SaveSignal(ctx, "00700", "2026-08-24", "sell", []string{"MACD死叉(量能确认:中)"}, "medium"); err != nil {
		t.Fatal(err)
	}

	got, err := r.Signals(ctx, "00700", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Date != "2026-08-25" {
		t.Errorf("records should be date-descending, first = %s", got[0].Date)
	}
	if got[0].Tier != "weak" || got[0].Kind != "buy" {
		t.Errorf("unexpected first record: %+v", got[0])
	}
}

func TestSignalUpsert(t *testing.T) {
	r := openTemp(t)
	ctx := context.Background()

	if err := r.SaveSignal(ctx, "00700", "2026-08-25", "buy", []string{"MACD金叉"}, "none"); err != nil {
		t.Fatal(err)
	}
	if err := r.SaveSignal(ctx, "00700", "2026-08-25", "buy", []string{"MACD金叉(量能确认:强)"}, "strong"); err != nil {
		t.Fatal(err)
	}

	got, err := r.Signals(ctx, "00700", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("duplicate (code,date,kind) must upsert, got %d rows", len(got))
	}
	if got[0].Tier != "strong" {
		t.Errorf("upsert should keep the latest tier, got %s", got[0].Tier)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	r := openTemp(t)
	ctx := context.Background()

	snap := SnapshotRecord{
		Code: "09988", Date: "2026-08-25",
		Composite: 68.5, TrendScore: 80, MomentumScore: 62, VolumeScore: 55,
		Status: "medium", HealthScore: 71.2, Recommendation: "buy",
	}
	if err := r.SaveSnapshot(ctx, snap); err != nil {
		t.Fatal(err)
	}

	got, err := r.Snapshots(ctx, "09988", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(got))
	}
	if got[0].Composite != 68.5 || got[0].Recommendation != "buy" {
		t.Errorf("snapshot fields lost: %+v", got[0])
	}
}

func TestSignalsOn(t *testing.T) {
	r := openTemp(t)
	ctx := context.Background()

	_ = r.SaveSignal(ctx, "00700", "2026-08-25", "buy", []string{"MACD金叉"}, "weak")
	_ = r.SaveSignal(ctx, "09988", "2026-08-25", "sell", []string{"MACD死叉"}, "none")
	_ = r.SaveSignal(ctx, "00700", "2026-08-24", "buy", []string{"下轨回归"}, "medium")

	got, err := r.SignalsOn(ctx, "2026-08-25")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records for the day, want 2", len(got))
	}
}
