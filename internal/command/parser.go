// Package command classifies inbound chat text into ledger commands.
package command

import (
	"strings"

	"jizhang/internal/core"
)

type Kind int

const (
	KindUnrecognized Kind = iota
	KindIdentity
	KindListRecent
	KindMonthTotal
	KindWeekTotal
	KindReset
	KindEntry
)

// Command is the parse result. Category, Shop and AmountCents are only
// meaningful when Kind is KindEntry.
type Command struct {
	Kind        Kind
	Category    string
	Shop        string
	AmountCents int64
}

// Trigger phrases are exact, case-sensitive matches and take priority
// over the entry fallback parse, so a phrase ending in a number can never
// be misread as a spending entry.
var triggers = map[string]Kind{
	"我是誰": KindIdentity,
	"查帳":  KindListRecent,
	"明細":  KindListRecent,
	"本月":  KindMonthTotal,
	"月結":  KindMonthTotal,
	"本週":  KindWeekTotal,
	"週結":  KindWeekTotal,
	"清空":  KindReset,
	"重置":  KindReset,
}

// TriggerPhrases returns the recognized phrases per command kind, for
// help/menu rendering. Order within a kind follows the observed bot menu.
func TriggerPhrases() map[Kind][]string {
	out := make(map[Kind][]string)
	for _, p := range []string{"我是誰", "查帳", "明細", "本月", "月結", "本週", "週結", "清空", "重置"} {
		k := triggers[p]
		out[k] = append(out[k], p)
	}
	return out
}

// Parse classifies raw text. Unknown text falls through to the entry
// parse: "category [shop...] amount" split on whitespace, with the
// trailing token as a strictly positive decimal amount. Anything else is
// Unrecognized.
func Parse(raw string) Command {
	text := strings.TrimSpace(raw)
	if kind, ok := triggers[text]; ok {
		return Command{Kind: kind}
	}

	tokens := strings.Fields(text)
	if len(tokens) < 2 {
		return Command{Kind: KindUnrecognized}
	}
	cents, err := core.ParseDecimalToCents(tokens[len(tokens)-1])
	if err != nil {
		return Command{Kind: KindUnrecognized}
	}
	shop := ""
	if len(tokens) > 2 {
		shop = strings.Join(tokens[1:len(tokens)-1], " ")
	}
	return Command{
		Kind:        KindEntry,
		Category:    tokens[0],
		Shop:        shop,
		AmountCents: cents,
	}
}
