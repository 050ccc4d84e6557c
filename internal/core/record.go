package core

import (
	"errors"
	"strings"
	"time"
)

// DisplayLayout is the zh-TW style layout used for the human-readable
// timestamp stored alongside every record.
const DisplayLayout = "2006/01/02 15:04:05"

type (
	Money struct {
		Cents int64
	}

	// Record is a persisted spending entry. Records are immutable once
	// inserted; the only destructive operation on the ledger is a bulk clear.
	Record struct {
		ID          int64
		DisplayTime string    // localized creation time, DisplayLayout in the deployment timezone
		CreatedUTC  time.Time // canonical instant, used for all sorting and windowing
		MemberName  string    // resolved at creation time, never recomputed
		MemberID    string
		Category    string
		Shop        string // empty when the entry had no middle tokens
		Amount      Money
	}

	// Draft is a record candidate that has not been assigned durable identity.
	Draft struct {
		DisplayTime string
		CreatedUTC  time.Time
		MemberName  string
		MemberID    string
		Category    string
		Shop        string
		Amount      Money
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptyMemberID = errors.New("empty member id")
)

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (d Draft) Validate() error {
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(d.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(d.MemberID) == "" {
		return ErrEmptyMemberID
	}
	if d.CreatedUTC.IsZero() {
		return errors.New("zero timestamp")
	}
	return nil
}

// NewDraft stamps a draft with the given creation instant, rendering the
// display form in loc.
func NewDraft(now time.Time, loc *time.Location, memberID, memberName, category, shop string, amount Money) Draft {
	return Draft{
		DisplayTime: now.In(loc).Format(DisplayLayout),
		CreatedUTC:  now.UTC(),
		MemberName:  memberName,
		MemberID:    memberID,
		Category:    category,
		Shop:        shop,
		Amount:      amount,
	}
}
