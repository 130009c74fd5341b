package service

import (
	"time"

	"github.com/niklvrr/reviewpulse/internal/domain"
)

const (
	DateLayout       = "2006-01-02"
	PeriodNameLayout = "Jan 02, 2006"

	defaultWeekLookbackDays = 31
	defaultLookbackDays     = 360
)

// DefaultMetricsWindow окно метрик по умолчанию для интервала.
// week: [сегодня-31д, завтра); month и quarter: от начала периода (конец-360д) до конца текущего периода.
func DefaultMetricsWindow(interval domain.Interval, now time.Time) (time.Time, time.Time) {
	today := startOfDay(now)

	switch interval {
	case domain.IntervalMonth:
		end := endOfMonth(today)
		return startOfMonth(end.AddDate(0, 0, -defaultLookbackDays)), end
	case domain.IntervalQuarter:
		end := endOfQuarter(today)
		return startOfQuarter(end.AddDate(0, 0, -defaultLookbackDays)), end
	default:
		return today.AddDate(0, 0, -defaultWeekLookbackDays), today.AddDate(0, 0, 1)
	}
}

// RevisionWindowStart нижняя граница modified_after для отчетов по ревизиям
func RevisionWindowStart(now time.Time, thresholdDays int, lastRun *time.Time) time.Time {
	if lastRun != nil && !lastRun.IsZero() {
		return *lastRun
	}
	return startOfDay(now.AddDate(0, 0, -thresholdDays))
}

// ParseDate разбирает дату формата YYYY-MM-DD
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, WrapError(ErrInvalidInput, err)
	}
	return t, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// Конец периода исключающий: первый день следующего месяца
func endOfMonth(t time.Time) time.Time {
	return startOfMonth(t).AddDate(0, 1, 0)
}

func startOfQuarter(t time.Time) time.Time {
	y, m, _ := t.Date()
	first := time.Month((int(m)-1)/3*3 + 1)
	return time.Date(y, first, 1, 0, 0, 0, 0, t.Location())
}

func endOfQuarter(t time.Time) time.Time {
	return startOfQuarter(t).AddDate(0, 3, 0)
}
