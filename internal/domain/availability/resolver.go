package availability

import (
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
)

// stored shape of one availability slot; pointers distinguish a missing field from zero
type rawSlot struct {
	Day   *int        `json:"day" validate:"required,min=0,max=6"`
	Times []rawWindow `json:"times" validate:"required,min=1,dive"`
}

type rawWindow struct {
	StartTime *rawTime `json:"startTime" validate:"required"`
	EndTime   *rawTime `json:"endTime" validate:"required"`
}

type rawTime struct {
	Hours   *int `json:"hours" validate:"required,min=0,max=24"`
	Minutes *int `json:"minutes" validate:"required,min=0,max=59"`
}

func (t rawTime) minuteOfDay() int {
	return *t.Hours*60 + *t.Minutes
}

// Resolver turns a user's stored availability into a normalized Schedule.
type Resolver struct {
	validate *validator.Validate
	logger   *slog.Logger
}

func NewResolver(logger *slog.Logger) *Resolver {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateWindowOrder, rawWindow{})
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{validate: v, logger: logger}
}

// validateWindowOrder rejects empty or inverted windows and anything past 24:00.
func validateWindowOrder(sl validator.StructLevel) {
	w, ok := sl.Current().Interface().(rawWindow)
	if !ok || w.StartTime == nil || w.EndTime == nil || w.StartTime.Hours == nil ||
		w.StartTime.Minutes == nil || w.EndTime.Hours == nil || w.EndTime.Minutes == nil {
		return
	}
	start, end := w.StartTime.minuteOfDay(), w.EndTime.minuteOfDay()
	if end > minutesPerDay {
		sl.ReportError(w.EndTime, "EndTime", "endTime", "max_day", "")
	}
	if start >= end {
		sl.ReportError(w.StartTime, "StartTime", "startTime", "before_end", "")
	}
}

// Resolve never fails: malformed entries are dropped and an empty result falls back to
// DefaultSchedule.
func (r *Resolver) Resolve(raw []byte) Schedule {
	if len(raw) == 0 {
		return DefaultSchedule()
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		r.logger.Debug("availability is not a list, using default schedule", "error", err.Error())
		return DefaultSchedule()
	}

	byDay := make(map[time.Weekday][]Window)
	for i, entry := range entries {
		var slot rawSlot
		if err := json.Unmarshal(entry, &slot); err != nil {
			r.logger.Debug("dropping undecodable availability entry", "index", i, "error", err.Error())
			continue
		}
		if err := r.validate.Struct(slot); err != nil {
			r.logger.Debug("dropping invalid availability entry", "index", i, "error", err.Error())
			continue
		}
		day := time.Weekday(*slot.Day)
		for _, w := range slot.Times {
			byDay[day] = append(byDay[day], Window{
				Start: NewTimeOfDay(*w.StartTime.Hours, *w.StartTime.Minutes),
				End:   NewTimeOfDay(*w.EndTime.Hours, *w.EndTime.Minutes),
			})
		}
	}

	if len(byDay) == 0 {
		return DefaultSchedule()
	}

	schedule := make(Schedule, 0, len(byDay))
	for day, windows := range byDay {
		sort.Slice(windows, func(i, j int) bool {
			if windows[i].Start.MinuteOfDay() != windows[j].Start.MinuteOfDay() {
				return windows[i].Start.MinuteOfDay() < windows[j].Start.MinuteOfDay()
			}
			return windows[i].End.MinuteOfDay() < windows[j].End.MinuteOfDay()
		})
		schedule = append(schedule, Day{Day: day, Times: windows})
	}
	sort.Slice(schedule, func(i, j int) bool { return schedule[i].Day < schedule[j].Day })
	return schedule
}
