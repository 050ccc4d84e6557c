// Package format renders structured engine results into zh-TW reply text.
// Amounts are rounded to whole currency units here and nowhere else.
package format

import (
	"fmt"
	"strings"
	"time"

	"jizhang/internal/core"
	"jizhang/internal/engine"
)

const helpText = `記帳格式：分類 [店家] 金額
例如「餐飲 早餐店 120」或「交通 35」
指令：查帳 / 明細（最近10筆）、本月（全家月總計）、本週（個人週支出）、我是誰、清空`

// Render turns a result into the short reply the chat transport sends
// back, with dates localized to loc. Every result kind has a rendering;
// unknown kinds fall back to the help text.
func Render(r engine.Result, loc *time.Location) string {
	switch r.Kind {
	case engine.ResultIdentity:
		return fmt.Sprintf("你是 %s", r.MemberName)

	case engine.ResultEntry:
		rec := r.Record
		if rec.Shop != "" {
			return fmt.Sprintf("已記帳：%s %s %d元（%s）", rec.Category, rec.Shop, rec.Amount.WholeUnits(), rec.MemberName)
		}
		return fmt.Sprintf("已記帳：%s %d元（%s）", rec.Category, rec.Amount.WholeUnits(), rec.MemberName)

	case engine.ResultRecent:
		if len(r.Records) == 0 {
			return "目前沒有任何記錄"
		}
		lines := make([]string, 0, len(r.Records)+1)
		lines = append(lines, fmt.Sprintf("最近 %d 筆：", len(r.Records)))
		for _, rec := range r.Records {
			lines = append(lines, recordLine(rec, loc))
		}
		return strings.Join(lines, "\n")

	case engine.ResultMonth:
		total := core.Money{Cents: r.Month.TotalCents}
		return fmt.Sprintf("%d月全家總計 %d元（%d筆）", int(r.MonthTime.Month()), total.WholeUnits(), r.Month.Count)

	case engine.ResultWeek:
		spent := core.Money{Cents: r.Week.TotalCents}
		remaining := core.Money{Cents: r.Week.RemainingCents}
		return fmt.Sprintf("%s 本週已花 %d元（%d筆），剩餘 %d元",
			r.MemberName, spent.WholeUnits(), r.Week.Count, remaining.WholeUnits())

	case engine.ResultReset:
		return "帳本已清空"

	case engine.ResultError:
		return r.Message

	default:
		return helpText
	}
}

// recordLine renders one listing line. The date comes from the canonical
// instant, not the stored display string, which imported records may
// carry in a foreign layout.
func recordLine(rec core.Record, loc *time.Location) string {
	local := rec.CreatedUTC.In(loc)
	date := fmt.Sprintf("%02d/%02d", int(local.Month()), local.Day())
	if rec.Shop != "" {
		return fmt.Sprintf("%s %s %s %d元（%s）", date, rec.Category, rec.Shop, rec.Amount.WholeUnits(), rec.MemberName)
	}
	return fmt.Sprintf("%s %s %d元（%s）", date, rec.Category, rec.Amount.WholeUnits(), rec.MemberName)
}
