package format

import (
	"strings"
	"testing"
	"time"

	"jizhang/internal/aggregate"
	"jizhang/internal/core"
	"jizhang/internal/engine"
)

var taipei = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		panic(err)
	}
	return loc
}()

func rec(created time.Time, category, shop string, cents int64, name string) core.Record {
	return core.Record{
		DisplayTime: created.In(taipei).Format(core.DisplayLayout),
		CreatedUTC:  created,
		MemberName:  name,
		Category:    category,
		Shop:        shop,
		Amount:      core.Money{Cents: cents},
	}
}

func TestRender_Entry(t *testing.T) {
	created := time.Date(2024, 3, 10, 4, 0, 0, 0, time.UTC)
	r := engine.Result{
		Kind:   engine.ResultEntry,
		Record: rec(created, "餐飲", "早餐店", 12050, "媽媽"),
	}
	got := Render(r, taipei)
	want := "已記帳：餐飲 早餐店 121元（媽媽）"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	r.Record.Shop = ""
	if got := Render(r, taipei); got != "已記帳：餐飲 121元（媽媽）" {
		t.Fatalf("no-shop rendering = %q", got)
	}
}

func TestRender_Recent(t *testing.T) {
	r := engine.Result{
		Kind: engine.ResultRecent,
		Records: []core.Record{
			rec(time.Date(2024, 3, 10, 4, 0, 0, 0, time.UTC), "餐飲", "", 18000, "媽媽"),
			rec(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), "交通", "", 3500, "爸爸"),
		},
	}
	got := Render(r, taipei)
	if !strings.Contains(got, "最近 2 筆") {
		t.Fatalf("missing count line: %q", got)
	}
	if !strings.Contains(got, "03/10 餐飲 180元（媽媽）") {
		t.Fatalf("missing record line: %q", got)
	}

	if got := Render(engine.Result{Kind: engine.ResultRecent}, taipei); got != "目前沒有任何記錄" {
		t.Fatalf("empty rendering = %q", got)
	}
}

func TestRender_RecentDateFromCanonicalInstant(t *testing.T) {
	// An imported record can carry a display string in a foreign layout;
	// the listing date must come from the canonical instant, localized.
	imported := rec(time.Date(2024, 2, 29, 16, 30, 0, 0, time.UTC), "餐飲", "", 18000, "媽媽")
	imported.DisplayTime = "三月一日 上午"

	got := Render(engine.Result{Kind: engine.ResultRecent, Records: []core.Record{imported}}, taipei)
	// 2024-02-29 16:30 UTC is 2024-03-01 00:30 in Taipei.
	if !strings.Contains(got, "03/01 餐飲 180元（媽媽）") {
		t.Fatalf("record line = %q", got)
	}
	if strings.Contains(got, "三月") {
		t.Fatalf("foreign display string leaked into listing: %q", got)
	}
}

func TestRender_MonthAndWeek(t *testing.T) {
	r := engine.Result{
		Kind:      engine.ResultMonth,
		Month:     aggregate.Summary{TotalCents: 50050, Count: 3},
		MonthTime: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	if got := Render(r, taipei); got != "3月全家總計 501元（3筆）" {
		t.Fatalf("month = %q", got)
	}

	w := engine.Result{
		Kind:       engine.ResultWeek,
		MemberName: "媽媽",
		Week: aggregate.WeekSummary{
			Summary:        aggregate.Summary{TotalCents: 18000, Count: 1},
			RemainingCents: 182000,
		},
	}
	if got := Render(w, taipei); got != "媽媽 本週已花 180元（1筆），剩餘 1820元" {
		t.Fatalf("week = %q", got)
	}
}

func TestRender_HelpAndError(t *testing.T) {
	if got := Render(engine.Result{Kind: engine.ResultHelp}, taipei); !strings.Contains(got, "記帳格式") {
		t.Fatalf("help = %q", got)
	}
	if got := Render(engine.Result{Kind: engine.ResultError, Message: "稍後再試"}, taipei); got != "稍後再試" {
		t.Fatalf("error = %q", got)
	}
	if got := Render(engine.Result{Kind: engine.ResultReset}, taipei); got != "帳本已清空" {
		t.Fatalf("reset = %q", got)
	}
	if got := Render(engine.Result{Kind: engine.ResultIdentity, MemberName: "媽媽"}, taipei); got != "你是 媽媽" {
		t.Fatalf("identity = %q", got)
	}
}
