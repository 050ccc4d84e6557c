package codec

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"jizhang/internal/core"
)

var taipei = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		panic(err)
	}
	return loc
}()

func sampleRecord() core.Record {
	created := time.Date(2024, 3, 1, 2, 30, 15, 0, time.UTC)
	return core.Record{
		ID:          7,
		DisplayTime: created.In(taipei).Format(core.DisplayLayout),
		CreatedUTC:  created,
		MemberName:  "媽媽",
		MemberID:    "U1234567890abcdef",
		Category:    "餐飲",
		Shop:        "早餐店",
		Amount:      core.Money{Cents: 12050},
	}
}

func TestRoundTrip(t *testing.T) {
	r := sampleRecord()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	row := EncodeRow(r)
	got, err := DecodeRow(row, DefaultColumns(), taipei, now)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TimeFellBack {
		t.Fatal("round trip must not fall back on time")
	}
	d := got.Draft
	if d.Category != r.Category || d.Shop != r.Shop || d.MemberID != r.MemberID || d.MemberName != r.MemberName {
		t.Fatalf("round trip mismatch: %+v", d)
	}
	if d.Amount.Cents != r.Amount.Cents {
		t.Fatalf("amount: got %d, want %d", d.Amount.Cents, r.Amount.Cents)
	}
	if diff := d.CreatedUTC.Sub(r.CreatedUTC); diff > time.Second || diff < -time.Second {
		t.Fatalf("timestamp drift %v exceeds 1s", diff)
	}
}

func TestDecodeRow_DisplayTimeFallback(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	row := []string{"2024/03/01 10:30:15", "", "媽媽", "U1", "餐飲", "", "180", ""}

	got, err := DecodeRow(row, DefaultColumns(), taipei, now)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TimeFellBack {
		t.Fatal("display time parse must not count as fallback")
	}
	want := time.Date(2024, 3, 1, 2, 30, 15, 0, time.UTC)
	if !got.Draft.CreatedUTC.Equal(want) {
		t.Fatalf("created = %v, want %v", got.Draft.CreatedUTC, want)
	}
}

func TestDecodeRow_SubstitutesNow(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	row := []string{"garbage", "also-garbage", "媽媽", "U1", "餐飲", "", "180", ""}

	got, err := DecodeRow(row, DefaultColumns(), taipei, now)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.TimeFellBack {
		t.Fatal("expected time fallback")
	}
	if !got.Draft.CreatedUTC.Equal(now) {
		t.Fatalf("created = %v, want now", got.Draft.CreatedUTC)
	}
	// The garbage display string must not survive the substitution.
	want := now.In(taipei).Format(core.DisplayLayout)
	if got.Draft.DisplayTime != want {
		t.Fatalf("display = %q, want re-rendered %q", got.Draft.DisplayTime, want)
	}
}

func TestDecodeRow_BadAmount(t *testing.T) {
	now := time.Now()
	for _, amount := range []string{"", "abc", "0", "-5"} {
		row := []string{"", "2024-03-01T02:30:15Z", "媽媽", "U1", "餐飲", "", amount, ""}
		if _, err := DecodeRow(row, DefaultColumns(), taipei, now); err == nil {
			t.Errorf("amount %q should fail the row", amount)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{"餐飲", "食"},
		{"晚餐", "食"},
		{"咖啡", "食"},
		{"服飾", "衣"},
		{"房租", "住"},
		{"捷運", "行"},
		{"電影", "樂"},
		{"醫療", "其他"},
		{"", "其他"},
	}
	for _, tt := range tests {
		if got := Classify(tt.category); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.category, got, tt.want)
		}
	}
}

func TestEncodeRow_BucketRecomputed(t *testing.T) {
	r := sampleRecord()
	row := EncodeRow(r)
	if row[len(row)-1] != "食" {
		t.Fatalf("bucket = %q, want 食", row[len(row)-1])
	}
}

func TestWriteRead_WholeFile(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	first := sampleRecord()
	second := sampleRecord()
	second.ID = 8
	second.CreatedUTC = first.CreatedUTC.Add(time.Hour)
	second.Category = "交通"
	second.Shop = ""

	var buf bytes.Buffer
	// Store order is most-recent-first
	if err := Write(&buf, []core.Record{second, first}); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := Read(&buf, taipei, now)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(res.Rows) != 2 || res.Skipped != 0 || res.Fallbacks != 0 {
		t.Fatalf("read result = %+v", res)
	}
	// File is oldest-first
	if res.Rows[0].Draft.Category != "餐飲" || res.Rows[1].Draft.Category != "交通" {
		t.Fatalf("file order wrong: %q then %q", res.Rows[0].Draft.Category, res.Rows[1].Draft.Category)
	}
}

func TestRead_SkipsMalformedRows(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	csvText := strings.Join([]string{
		"display_time,created_utc,member_name,member_id,category,shop,amount,bucket",
		",2024-03-01T02:30:15Z,媽媽,U1,餐飲,早餐店,120.5,食",
		",2024-03-01T03:30:15Z,媽媽,U1,餐飲,,not-a-number,食",
		",bad-time,媽媽,U1,飲料,,55,食",
	}, "\n")

	res, err := Read(strings.NewReader(csvText), taipei, now)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(res.Rows))
	}
	if res.Skipped != 1 {
		t.Fatalf("skipped = %d, want 1", res.Skipped)
	}
	if res.Fallbacks != 1 {
		t.Fatalf("fallbacks = %d, want 1", res.Fallbacks)
	}
}

func TestRead_HeaderlessStream(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	csvText := ",2024-03-01T02:30:15Z,媽媽,U1,餐飲,早餐店,180,食\n"

	res, err := Read(strings.NewReader(csvText), taipei, now)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(res.Rows) != 1 || res.Skipped != 0 {
		t.Fatalf("read result = %+v", res)
	}
}
