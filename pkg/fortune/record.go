package fortune

import (
	"encoding/json"
	"fmt"
	"time"
)

// Persisted record shapes. Field names are fixed by the historical store:
// records written by earlier deployments must keep decoding, including the
// pre-migration shape that kept {date, idx} directly at the user level.
type recordDTO struct {
	CardDay    *cardDTO   `json:"card_day,omitempty"`
	MiniSpread *spreadDTO `json:"mini_spread,omitempty"`
	MiniIntro  *introDTO  `json:"mini_intro,omitempty"`
	Compat     *compatDTO `json:"compat,omitempty"`
	YesNo      *yesNoDTO  `json:"yesno,omitempty"`

	Birthday      string `json:"birthday,omitempty"`
	OracleCredits int    `json:"oracle_credits,omitempty"`

	// Legacy daily-card shape: the whole record was {date, idx}. Read-only;
	// never written back.
	LegacyDate string `json:"date,omitempty"`
	LegacyIdx  *int   `json:"idx,omitempty"`
}

type cardDTO struct {
	DT  string `json:"dt"`
	Idx int    `json:"idx"`
}

type spreadDTO struct {
	DT   string `json:"dt"`
	Text string `json:"text"`
}

type introDTO struct {
	Date string `json:"date"`
}

type compatDTO struct {
	Date   string `json:"date"`
	Primed bool   `json:"primed"`
	Text   string `json:"text,omitempty"`
}

type yesNoDTO struct {
	Date   string `json:"date"`
	Primed bool   `json:"primed,omitempty"`
	Count  int    `json:"count"`
}

// timestampLayouts lists the formats historical records used for grant
// timestamps: RFC3339, and naive local time with second or minute precision.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// parseTimestamp parses a stored grant timestamp. Naive values are
// interpreted in the reference timezone.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, refLoc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// MarshalRecord encodes a record in the canonical persisted shape. Legacy
// fields are never written; any record that passed through a migration is
// rewritten in canonical form on its next save.
func MarshalRecord(rec *UserRecord) ([]byte, error) {
	dto := recordDTO{
		Birthday:      rec.Birthday,
		OracleCredits: rec.OracleCredits,
	}
	if rec.DailyCard != nil {
		dto.CardDay = &cardDTO{
			DT:  rec.DailyCard.IssuedAt.In(refLoc).Format(time.RFC3339),
			Idx: rec.DailyCard.Index,
		}
	}
	if rec.MiniSpread != nil {
		dto.MiniSpread = &spreadDTO{
			DT:   rec.MiniSpread.IssuedAt.In(refLoc).Format(time.RFC3339),
			Text: rec.MiniSpread.Text,
		}
	}
	if rec.MiniSpreadIntroDay != "" {
		dto.MiniIntro = &introDTO{Date: rec.MiniSpreadIntroDay}
	}
	if rec.Compat != nil {
		dto.Compat = &compatDTO{Date: rec.Compat.Day, Primed: rec.Compat.Primed, Text: rec.Compat.Text}
	}
	if rec.YesNo != nil {
		dto.YesNo = &yesNoDTO{Date: rec.YesNo.Day, Primed: rec.YesNo.Primed, Count: rec.YesNo.Used}
	}
	return json.Marshal(&dto)
}

// UnmarshalRecord decodes a persisted record, migrating legacy shapes to the
// canonical one. Individually corrupt sub-records (bad timestamps, wrong
// types) are dropped rather than failing the whole record: a missing
// sub-state only makes the user eligible again, which is the accepted
// fail-open direction. An error is returned only when the document itself is
// not valid JSON.
func UnmarshalRecord(data []byte) (*UserRecord, error) {
	var dto recordDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("decode user record: %w", err)
	}

	rec := &UserRecord{
		Birthday:      dto.Birthday,
		OracleCredits: dto.OracleCredits,
	}

	switch {
	case dto.CardDay != nil:
		if issued, err := parseTimestamp(dto.CardDay.DT); err == nil {
			rec.DailyCard = &CardState{IssuedAt: issued, Index: dto.CardDay.Idx}
		}
	case dto.LegacyDate != "" && dto.LegacyIdx != nil:
		// The legacy shape stored only a calendar date; treat the grant as
		// having happened at the cutoff hour of that date so the anchor
		// comparison stays exact. An unparseable date means no prior grant.
		if day, err := time.ParseInLocation(dayKeyLayout, dto.LegacyDate, refLoc); err == nil {
			issued := time.Date(day.Year(), day.Month(), day.Day(), cutoffHour, 0, 0, 0, refLoc)
			rec.DailyCard = &CardState{IssuedAt: issued, Index: *dto.LegacyIdx}
			rec.migrated = true
		}
	}

	if dto.MiniSpread != nil {
		if issued, err := parseTimestamp(dto.MiniSpread.DT); err == nil {
			rec.MiniSpread = &SpreadState{IssuedAt: issued, Text: dto.MiniSpread.Text}
		}
	}
	if dto.MiniIntro != nil {
		rec.MiniSpreadIntroDay = dto.MiniIntro.Date
	}
	if dto.Compat != nil && dto.Compat.Date != "" {
		rec.Compat = &CompatState{Day: dto.Compat.Date, Primed: dto.Compat.Primed, Text: dto.Compat.Text}
	}
	if dto.YesNo != nil && dto.YesNo.Date != "" {
		used := dto.YesNo.Count
		if used < 0 {
			used = 0
		}
		rec.YesNo = &YesNoState{Day: dto.YesNo.Date, Primed: dto.YesNo.Primed, Used: used}
	}

	return rec, nil
}

// Migrated reports whether this record was converted from a legacy shape at
// decode time and has not yet been rewritten canonically.
func (r *UserRecord) Migrated() bool { return r.migrated }
