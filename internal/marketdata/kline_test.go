package marketdata

import (
	"testing"
	"time"
)

func TestNormalizeCode(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"00700", "00700", false},
		{"700", "00700", false},
		{"0700", "00700", false},
		{"hk00700", "00700", false},
		{"HK9988", "09988", false},
		{"", "", true},
		{"600519X", "", true},
		{"600519", "", true},
	}
	for _, c := range cases {
		got, err := NormalizeCode(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("NormalizeCode(%q) should fail", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeCode(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("NormalizeCode(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestInMemoryCacheExpiry(t *testing.T) {
	p := NewInMemoryCacheProvider()
	if err := p.Set("k", map[string]int{"a": 1}, 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	var got map[string]int
	if err := p.Get("k", &got); err != nil || got["a"] != 1 {
		t.Fatalf("fresh entry should hit: %v %v", got, err)
	}

	time.Sleep(20 * time.Millisecond)
	if err := p.Get("k", &got); err == nil {
		t.Error("expired entry should miss")
	}
}
