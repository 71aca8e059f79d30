// Package recurrence expands a repeating event into its dated occurrences.
package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/bayworx/event-management-system-sub001/internal/model"
)

// MaxOccurrences caps a single expansion, the parent included.
const MaxOccurrences = 366

var (
	ErrUnknownPattern  = errors.New("unknown recurrence pattern")
	ErrInvalidInterval = errors.New("recurrence interval must be at least 1")
	ErrUnbounded       = errors.New("recurrence needs an end date or an occurrence count")
)

type Rule struct {
	Pattern  string
	Interval int
	// EndDate is inclusive: an occurrence starting on or before it is kept.
	EndDate *time.Time
	// Occurrences counts the parent as the first occurrence.
	Occurrences *int
}

type Occurrence struct {
	Start time.Time
	End   time.Time
}

func RuleFor(e *model.Event) Rule {
	r := Rule{Interval: 1, EndDate: e.RecurrenceEndDate, Occurrences: e.RecurrenceOccurrences}
	if e.RecurrencePattern != nil {
		r.Pattern = *e.RecurrencePattern
	}
	if e.RecurrenceInterval != nil {
		r.Interval = *e.RecurrenceInterval
	}
	return r
}

func (r Rule) Validate() error {
	switch r.Pattern {
	case model.RecurrenceDaily, model.RecurrenceWeekly, model.RecurrenceMonthly, model.RecurrenceYearly:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPattern, r.Pattern)
	}
	if r.Interval < 1 {
		return ErrInvalidInterval
	}
	if r.EndDate == nil && (r.Occurrences == nil || *r.Occurrences < 1) {
		return ErrUnbounded
	}
	return nil
}

// step returns the n-th start counted from the original start, so month-end
// and leap-day starts do not drift across iterations.
func (r Rule) step(start time.Time, n int) time.Time {
	k := n * r.Interval
	switch r.Pattern {
	case model.RecurrenceDaily:
		return start.AddDate(0, 0, k)
	case model.RecurrenceWeekly:
		return start.AddDate(0, 0, 7*k)
	case model.RecurrenceMonthly:
		return start.AddDate(0, k, 0)
	default:
		return start.AddDate(k, 0, 0)
	}
}

// Expand returns the occurrences that follow the parent spanning [start, end].
// The parent itself is not part of the result.
func Expand(r Rule, start, end time.Time) ([]Occurrence, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	limit := MaxOccurrences
	if r.Occurrences != nil && *r.Occurrences < limit {
		limit = *r.Occurrences
	}
	duration := end.Sub(start)

	var out []Occurrence
	for n := 1; n < limit; n++ {
		s := r.step(start, n)
		if r.EndDate != nil && s.After(*r.EndDate) {
			break
		}
		out = append(out, Occurrence{Start: s, End: s.Add(duration)})
	}
	return out, nil
}

// Children builds the child events of parent, one per occurrence, ready to insert.
func Children(parent *model.Event, occurrences []Occurrence) []model.Event {
	children := make([]model.Event, 0, len(occurrences))
	for _, o := range occurrences {
		parentID := parent.ID
		children = append(children, model.Event{
			Title:         parent.Title,
			Description:   parent.Description,
			StartDate:     o.Start,
			EndDate:       o.End,
			Location:      parent.Location,
			Slug:          ChildSlug(parent.Slug, o.Start),
			IsActive:      parent.IsActive,
			MaxAttendees:  parent.MaxAttendees,
			BannerImage:   parent.BannerImage,
			ParentEventID: &parentID,
		})
	}
	return children
}

func ChildSlug(parentSlug string, start time.Time) string {
	return parentSlug + "-" + start.Format("20060102")
}
