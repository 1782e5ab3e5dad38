// Package month реализует календарную арифметику по месяцам для сроков подписок.
package month

import "time"

// Add прибавляет к дате n календарных месяцев.
//
// Если день месяца не существует в целевом месяце, дата прижимается к
// последнему дню целевого месяца: 31.01.2024 + 1 = 29.02.2024,
// 31.01.2023 + 1 = 28.02.2023. Время суток и часовой пояс сохраняются.
func Add(t time.Time, n int) time.Time {
	year, mon, day := t.Date()
	first := time.Date(year, mon+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := DaysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	hour, minute, sec := t.Clock()
	return time.Date(first.Year(), first.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

// DaysIn возвращает количество дней в месяце.
func DaysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
