package timerange

import "time"

// Range полуинтервал [Start, End) в абсолютном времени
type Range struct {
	Start time.Time
	End   time.Time
}

// Overlaps проверяет пересечение двух полуинтервалов.
// Интервалы, которые только касаются границами, НЕ пересекаются:
// [09:00, 10:00) и [10:00, 11:00) не конфликтуют.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Overlaps проверяет пересечение с другим интервалом (полуинтервальная семантика)
func (r Range) Overlaps(other Range) bool {
	return Overlaps(r.Start, r.End, other.Start, other.End)
}

// Duration возвращает длительность интервала
func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// IsValid проверяет, что конец строго позже начала
func (r Range) IsValid() bool {
	return r.End.After(r.Start)
}

// Expand расширяет интервал на before минут назад и after минут вперёд.
// Используется для применения буферов вокруг занятых диапазонов.
func (r Range) Expand(before, after time.Duration) Range {
	return Range{
		Start: r.Start.Add(-before),
		End:   r.End.Add(after),
	}
}

// GenerateSlots генерирует слоты длительностью duration внутри [rangeStart, rangeEnd]
// с шагом interval. Слот попадает в результат, только если целиком помещается
// в диапазон: slotStart + duration <= rangeEnd.
//
// Функция чистая: результат зависит только от аргументов.
// Если interval > duration, вызывающий обязан предварительно ограничить
// interval до duration - здесь это намеренно не исправляется.
func GenerateSlots(rangeStart, rangeEnd time.Time, duration, interval time.Duration) []Range {
	slots := make([]Range, 0)
	if duration <= 0 || interval <= 0 {
		return slots
	}

	for cur := rangeStart; !cur.Add(duration).After(rangeEnd); cur = cur.Add(interval) {
		slots = append(slots, Range{Start: cur, End: cur.Add(duration)})
	}

	return slots
}
