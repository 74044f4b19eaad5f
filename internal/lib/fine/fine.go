// Package fine содержит чистый расчет стоимости выдачи и штрафа за
// просрочку. Функции не обращаются к базе и ничего не изменяют:
// при одинаковых датах и одинаковом now результат всегда одинаков.
package fine

import (
	"math"
	"time"
)

const (
	// PricePerDay — стоимость одного дня выдачи.
	PricePerDay = 1.00
	// OverduePenalty — фиксированный штраф за факт просрочки,
	// не зависит от числа просроченных дней.
	OverduePenalty = 20.00
)

// Status — рассчитанное состояние выдачи на момент now.
type Status struct {
	IsOverdue   bool    // Книга просрочена (now позже срока возврата)
	BaseCost    float64 // Стоимость согласованного срока выдачи
	Fine        float64 // Итоговый штраф; 0, если просрочки нет
	DaysOverdue int     // Полных и неполных дней просрочки
	// Warning выставляется, когда borrowedAt >= dueAt. Такая пара дат
	// нарушает инварианты хранилища и должна попасть в лог оператора,
	// но клиенту расчет все равно возвращается: базовая стоимость
	// принимается за один день.
	Warning bool
}

// Compute рассчитывает статус просрочки и штраф по датам выдачи.
//
// baseCost = max(1, ceil(dueAt-borrowedAt в днях)) * PricePerDay.
// Если книга просрочена, fine = baseCost + OverduePenalty, а
// daysOverdue = ceil(now-dueAt в днях); иначе fine = 0.
func Compute(borrowedAt, dueAt, now time.Time) Status {
	var st Status
	st.IsOverdue = now.After(dueAt)

	if borrowedAt.Before(dueAt) {
		st.BaseCost = float64(max(1, ceilDays(dueAt.Sub(borrowedAt)))) * PricePerDay
	} else {
		st.BaseCost = PricePerDay
		st.Warning = true
	}

	if st.IsOverdue {
		st.DaysOverdue = ceilDays(now.Sub(dueAt))
		st.Fine = st.BaseCost + OverduePenalty
	}
	return st
}

// ceilDays округляет длительность вверх до целых дней.
func ceilDays(d time.Duration) int {
	return int(math.Ceil(d.Hours() / 24))
}
