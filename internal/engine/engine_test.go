package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"jizhang/internal/ledger"
	"jizhang/internal/member"
	"jizhang/internal/storage/memory"
)

var taipei = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		panic(err)
	}
	return loc
}()

type stubPublisher struct {
	published []int64
	err       error
}

func (p *stubPublisher) PublishRecordSync(_ context.Context, id int64) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, id)
	return nil
}

func newTestEngine(t *testing.T, repo *memory.Store, pub Publisher, now time.Time) *Engine {
	t.Helper()
	l := ledger.New(repo, 100)
	if err := l.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	r := member.NewResolver(map[string]string{"UA": "媽媽", "UB": "爸爸"})
	e := New(l, r, pub, taipei, time.Saturday, 200000) // weekly budget 2000元
	return e.WithClock(func() time.Time { return now })
}

func TestEngine_EndToEnd(t *testing.T) {
	ctx := context.Background()
	// Sunday 2024-03-10 12:00 Taipei
	now := time.Date(2024, 3, 10, 4, 0, 0, 0, time.UTC)
	repo := memory.New()
	pub := &stubPublisher{}
	e := newTestEngine(t, repo, pub, now)

	// Entry for member A
	res := e.Handle(ctx, Event{Text: "餐飲 180", MemberID: "UA"})
	if res.Kind != ResultEntry {
		t.Fatalf("entry result kind = %v", res.Kind)
	}
	if res.Record.Amount.Cents != 18000 || res.Record.MemberName != "媽媽" {
		t.Fatalf("entry record = %+v", res.Record)
	}
	if len(pub.published) != 1 || pub.published[0] != res.Record.ID {
		t.Fatalf("sync message not published: %v", pub.published)
	}

	// Recent listing shows it
	res = e.Handle(ctx, Event{Text: "查帳", MemberID: "UA"})
	if res.Kind != ResultRecent || len(res.Records) != 1 {
		t.Fatalf("recent = %+v", res)
	}
	if res.Records[0].Amount.WholeUnits() != 180 {
		t.Fatalf("recent amount = %d", res.Records[0].Amount.WholeUnits())
	}

	// A record dated last month is excluded from the monthly total
	e2 := e.WithClock(func() time.Time { return now.AddDate(0, -1, 0) })
	if r := e2.Handle(ctx, Event{Text: "舊帳 500", MemberID: "UA"}); r.Kind != ResultEntry {
		t.Fatalf("backdated entry: %+v", r)
	}
	e.WithClock(func() time.Time { return now })

	res = e.Handle(ctx, Event{Text: "本月", MemberID: "UA"})
	if res.Kind != ResultMonth {
		t.Fatalf("month kind = %v", res.Kind)
	}
	if res.Month.TotalCents != 18000 {
		t.Fatalf("month total = %d, want 18000 (last month excluded)", res.Month.TotalCents)
	}

	// Member B at the same instant: in household month, out of A's week
	if r := e.Handle(ctx, Event{Text: "餐飲 320", MemberID: "UB"}); r.Kind != ResultEntry {
		t.Fatalf("member B entry: %+v", r)
	}

	res = e.Handle(ctx, Event{Text: "本月", MemberID: "UA"})
	if res.Month.TotalCents != 18000+32000 {
		t.Fatalf("household month total = %d", res.Month.TotalCents)
	}

	res = e.Handle(ctx, Event{Text: "本週", MemberID: "UA"})
	if res.Kind != ResultWeek {
		t.Fatalf("week kind = %v", res.Kind)
	}
	if res.Week.TotalCents != 18000 {
		t.Fatalf("personal week total = %d, want 18000", res.Week.TotalCents)
	}
	if res.Week.RemainingCents != 200000-18000 {
		t.Fatalf("remaining = %d", res.Week.RemainingCents)
	}

	// Clear, then listing reports zero records
	if r := e.Handle(ctx, Event{Text: "清空", MemberID: "UA"}); r.Kind != ResultReset {
		t.Fatalf("reset: %+v", r)
	}
	res = e.Handle(ctx, Event{Text: "查帳", MemberID: "UA"})
	if len(res.Records) != 0 {
		t.Fatalf("records after clear = %d", len(res.Records))
	}
}

func TestEngine_Identity(t *testing.T) {
	now := time.Date(2024, 3, 10, 4, 0, 0, 0, time.UTC)
	e := newTestEngine(t, memory.New(), nil, now)

	res := e.Handle(context.Background(), Event{Text: "我是誰", MemberID: "UA"})
	if res.Kind != ResultIdentity || res.MemberName != "媽媽" {
		t.Fatalf("identity = %+v", res)
	}

	res = e.Handle(context.Background(), Event{Text: "我是誰", MemberID: "Ustranger12345678"})
	if res.MemberName != "成員12345678" {
		t.Fatalf("fallback name = %q", res.MemberName)
	}
}

func TestEngine_UnrecognizedYieldsHelp(t *testing.T) {
	now := time.Date(2024, 3, 10, 4, 0, 0, 0, time.UTC)
	e := newTestEngine(t, memory.New(), nil, now)

	for _, text := range []string{"嗨", "餐飲 abc", "餐飲 0", ""} {
		if res := e.Handle(context.Background(), Event{Text: text, MemberID: "UA"}); res.Kind != ResultHelp {
			t.Errorf("Handle(%q).Kind = %v, want ResultHelp", text, res.Kind)
		}
	}
}

func TestEngine_StoreFailureSurfacesRetry(t *testing.T) {
	now := time.Date(2024, 3, 10, 4, 0, 0, 0, time.UTC)
	repo := memory.New()
	e := newTestEngine(t, repo, nil, now)

	repo.FailNext = true
	res := e.Handle(context.Background(), Event{Text: "餐飲 180", MemberID: "UA"})
	if res.Kind != ResultError || res.Message == "" {
		t.Fatalf("store failure result = %+v", res)
	}

	// Nothing became visible
	if r := e.Handle(context.Background(), Event{Text: "查帳", MemberID: "UA"}); len(r.Records) != 0 {
		t.Fatalf("failed insert leaked into cache: %d records", len(r.Records))
	}
}

func TestEngine_PublishFailureDoesNotFailEntry(t *testing.T) {
	now := time.Date(2024, 3, 10, 4, 0, 0, 0, time.UTC)
	pub := &stubPublisher{err: errors.New("broker down")}
	e := newTestEngine(t, memory.New(), pub, now)

	res := e.Handle(context.Background(), Event{Text: "餐飲 180", MemberID: "UA"})
	if res.Kind != ResultEntry {
		t.Fatalf("entry must succeed despite publish failure: %+v", res)
	}
}
