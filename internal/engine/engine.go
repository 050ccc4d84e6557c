// Package engine wires the parser, ledger and aggregation into one
// request/response surface: an inbound chat event goes in, a structured
// result comes out. Rendering to reply text lives in internal/format so
// presentation can change independently.
package engine

import (
	"context"
	"log/slog"
	"time"

	"jizhang/internal/aggregate"
	"jizhang/internal/command"
	"jizhang/internal/core"
	"jizhang/internal/ledger"
	"jizhang/internal/member"
)

// Publisher mirrors newly inserted records to the async export pipeline.
// Best-effort: a publish failure never fails the user's command.
type Publisher interface {
	PublishRecordSync(ctx context.Context, id int64) error
}

// Event is the inbound chat event as handed over by the transport layer.
type Event struct {
	Text     string
	MemberID string
}

type ResultKind int

const (
	ResultHelp ResultKind = iota
	ResultIdentity
	ResultEntry
	ResultRecent
	ResultMonth
	ResultWeek
	ResultReset
	ResultError
)

// Result is the structured outcome of one event. Which fields are set
// depends on Kind; consumers render it themselves (see internal/format).
type Result struct {
	Kind ResultKind

	MemberID   string
	MemberName string

	Record  core.Record   // ResultEntry
	Records []core.Record // ResultRecent

	Month     aggregate.Summary // ResultMonth
	MonthTime time.Time         // local "now" the month window was taken at

	Week aggregate.WeekSummary // ResultWeek

	// ResultError: short user-facing explanation; the internal error is
	// logged, never shown.
	Message string
}

type Engine struct {
	ledger    *ledger.Ledger
	resolver  *member.Resolver
	publisher Publisher

	loc         *time.Location
	anchor      time.Weekday
	budgetCents int64

	now func() time.Time // injectable for tests
}

func New(l *ledger.Ledger, r *member.Resolver, pub Publisher, loc *time.Location, anchor time.Weekday, budgetCents int64) *Engine {
	return &Engine{
		ledger:      l,
		resolver:    r,
		publisher:   pub,
		loc:         loc,
		anchor:      anchor,
		budgetCents: budgetCents,
		now:         time.Now,
	}
}

// WithClock overrides the wall clock. Test hook.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

const retryMessage = "資料庫暫時無法使用，請稍後再試"

// Handle classifies the event text and executes the command. "now" is
// resolved exactly once per call so a window cannot move mid-aggregation.
// Store failures come back as a ResultError, never as a panic or a lost
// record.
func (e *Engine) Handle(ctx context.Context, ev Event) Result {
	now := e.now()
	cmd := command.Parse(ev.Text)

	switch cmd.Kind {
	case command.KindIdentity:
		return Result{
			Kind:       ResultIdentity,
			MemberID:   ev.MemberID,
			MemberName: e.resolver.Resolve(ev.MemberID),
		}

	case command.KindListRecent:
		return Result{
			Kind:    ResultRecent,
			Records: aggregate.Recent(e.ledger.Snapshot(), 10),
		}

	case command.KindMonthTotal:
		return Result{
			Kind:      ResultMonth,
			Month:     aggregate.Month(e.ledger.Snapshot(), now, e.loc),
			MonthTime: now.In(e.loc),
		}

	case command.KindWeekTotal:
		return Result{
			Kind:       ResultWeek,
			MemberID:   ev.MemberID,
			MemberName: e.resolver.Resolve(ev.MemberID),
			Week:       aggregate.Week(e.ledger.Snapshot(), now, e.loc, e.anchor, ev.MemberID, e.budgetCents),
		}

	case command.KindReset:
		if err := e.ledger.ClearAll(ctx); err != nil {
			slog.ErrorContext(ctx, "Ledger clear failed", "error", err)
			return Result{Kind: ResultError, Message: retryMessage}
		}
		return Result{Kind: ResultReset}

	case command.KindEntry:
		return e.handleEntry(ctx, ev, cmd, now)

	default:
		return Result{Kind: ResultHelp}
	}
}

func (e *Engine) handleEntry(ctx context.Context, ev Event, cmd command.Command, now time.Time) Result {
	name := e.resolver.Resolve(ev.MemberID)
	draft := core.NewDraft(now, e.loc, ev.MemberID, name, cmd.Category, cmd.Shop, core.Money{Cents: cmd.AmountCents})

	rec, err := e.ledger.Insert(ctx, draft)
	if err != nil {
		slog.ErrorContext(ctx, "Record insert failed",
			"error", err,
			"member", ev.MemberID,
			"category", cmd.Category)
		return Result{Kind: ResultError, Message: retryMessage}
	}

	if e.publisher != nil {
		if err := e.publisher.PublishRecordSync(ctx, rec.ID); err != nil {
			slog.ErrorContext(ctx, "Record sync publish failed", "id", rec.ID, "error", err)
			// Record is durable; the export worker catches up later
		}
	}

	return Result{
		Kind:       ResultEntry,
		MemberID:   ev.MemberID,
		MemberName: name,
		Record:     rec,
	}
}
