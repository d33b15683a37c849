package ical

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	icalendar "github.com/emersion/go-ical"

	"github.com/tazhate/noxd/internal/domain"
	"github.com/tazhate/noxd/internal/sched"
)

// BYDAY codes indexed by the persisted weekday format (1=Sunday).
var bydayCodes = map[domain.Weekday]string{
	domain.Sunday:    "SU",
	domain.Monday:    "MO",
	domain.Tuesday:   "TU",
	domain.Wednesday: "WE",
	domain.Thursday:  "TH",
	domain.Friday:    "FR",
	domain.Saturday:  "SA",
}

// Export renders the alarm list as an iCalendar document: one VEVENT per
// alarm, with a weekly RRULE for repeating alarms. Disabled alarms are kept
// with STATUS:CANCELLED so subscribers see them grayed out rather than gone.
func Export(alarmList []domain.Alarm, now time.Time) ([]byte, error) {
	cal := icalendar.NewCalendar()
	cal.Props.SetText(icalendar.PropVersion, "2.0")
	cal.Props.SetText(icalendar.PropProductID, "-//Nox//Alarms//EN")

	for _, a := range alarmList {
		vevent := icalendar.NewEvent()
		vevent.Props.SetText(icalendar.PropUID, a.ID+"@noxd")
		vevent.Props.SetText(icalendar.PropSummary, summary(a))

		start, err := firstOccurrence(a, now)
		if err != nil {
			return nil, fmt.Errorf("alarm %s: %w", a.ID, err)
		}
		vevent.Props.SetDateTime(icalendar.PropDateTimeStart, start)
		vevent.Props.SetDateTime(icalendar.PropDateTimeEnd, start.Add(time.Minute))

		if !a.IsOneShot() {
			vevent.Props.SetText(icalendar.PropRecurrenceRule, rrule(a.Repeat))
		}
		if !a.Enabled {
			vevent.Props.SetText(icalendar.PropStatus, "CANCELLED")
		}
		vevent.Props.SetDateTime(icalendar.PropDateTimeStamp, now.UTC())

		cal.Children = append(cal.Children, vevent.Component)
	}

	var buf bytes.Buffer
	if err := icalendar.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

func summary(a domain.Alarm) string {
	if a.Label != "" {
		return a.Label
	}
	return fmt.Sprintf("Alarm %02d:%02d", a.Hour, a.Minute)
}

// firstOccurrence picks the DTSTART anchor: the next occurrence for
// one-shots, the next occurrence of the earliest repeat day otherwise.
func firstOccurrence(a domain.Alarm, now time.Time) (time.Time, error) {
	if a.IsOneShot() {
		return sched.NextOneShot(now, a.Hour, a.Minute), nil
	}
	var earliest time.Time
	for _, day := range a.Repeat {
		t, err := sched.NextWeekly(now, day, a.Hour, a.Minute)
		if err != nil {
			return time.Time{}, err
		}
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
	}
	return earliest, nil
}

func rrule(repeat []domain.Weekday) string {
	codes := make([]string, 0, len(repeat))
	for _, day := range repeat {
		codes = append(codes, bydayCodes[day])
	}
	return "FREQ=WEEKLY;BYDAY=" + strings.Join(codes, ",")
}
