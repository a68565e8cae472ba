package model

import (
	"strings"
	"time"
)

// Period задаёт окно отчёта о продажах.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodTotal Period = "total"
)

// ParsePeriod разбирает период отчёта. Неизвестное значение означает весь срок.
func ParsePeriod(s string) Period {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodToday, PeriodWeek, PeriodMonth:
		return p
	default:
		return PeriodTotal
	}
}

// Since возвращает нижнюю границу периода для момента now в часовом поясе now.
// Для PeriodTotal граница отсутствует.
func (p Period) Since(now time.Time) (time.Time, bool) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch p {
	case PeriodToday:
		return startOfDay, true
	case PeriodWeek:
		// Неделя начинается с понедельника, воскресенье относится к прошедшей неделе.
		offset := int(now.Weekday()) - 1
		if now.Weekday() == time.Sunday {
			offset = 6
		}
		return startOfDay.AddDate(0, 0, -offset), true
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), true
	default:
		return time.Time{}, false
	}
}
