package get_available_slots

import (
	"sort"
	"time"

	"github.com/andmv/LDM-BookingService/internal/domain"
	"github.com/andmv/LDM-BookingService/internal/integrations/catalogservice"
	"github.com/andmv/LDM-BookingService/pkg/timerange"
)

// resolveDuration выбирает длительность слота: явное переопределение из запроса,
// затем длительность услуги, затем дефолт
func resolveDuration(override int, service *catalogservice.Service) int {
	if override > 0 {
		return override
	}
	if service.DurationMinutes > 0 {
		return service.DurationMinutes
	}
	return domain.DefaultDurationMinutes
}

// resolveInterval выбирает шаг генерации слотов. Шаг, превышающий длительность,
// ограничивается длительностью - иначе пропускались бы валидные времена начала.
func resolveInterval(configured, duration int) int {
	if configured <= 0 {
		return duration
	}
	if configured > duration {
		return duration
	}
	return configured
}

// clockRangesToAbsolute конвертирует диапазоны локального времени суток
// в абсолютные интервалы на конкретную дату в таймзоне листинга
func clockRangesToAbsolute(ranges []domain.ClockRange, date time.Time, loc *time.Location) ([]timerange.Range, error) {
	result := make([]timerange.Range, 0, len(ranges))

	for _, cr := range ranges {
		start, err := cr.Start.At(date, loc)
		if err != nil {
			return nil, err
		}
		end, err := cr.End.At(date, loc)
		if err != nil {
			return nil, err
		}
		rg := timerange.Range{Start: start, End: end}
		if !rg.IsValid() {
			// Некорректно заданный диапазон (конец не позже начала) пропускаем
			continue
		}
		result = append(result, rg)
	}

	return result, nil
}

// buildCandidateSlots генерирует кандидатов по всем рабочим диапазонам дня,
// исключает пересечения с перерывами, схлопывает дубликаты и сортирует.
//
// Дубликаты возможны при пересекающихся рабочих диапазонах в конфигурации
// (ошибка вендора при настройке) - одинаковые (start, end) выдаются один раз.
func buildCandidateSlots(hourRanges, breakRanges []timerange.Range, duration, interval time.Duration) []timerange.Range {
	candidates := make([]timerange.Range, 0)
	seen := make(map[int64]struct{})

	for _, hr := range hourRanges {
		for _, slot := range timerange.GenerateSlots(hr.Start, hr.End, duration, interval) {
			if overlapsAny(slot, breakRanges) {
				continue
			}
			key := slot.Start.UnixNano()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			candidates = append(candidates, slot)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Start.Before(candidates[j].Start)
	})

	return candidates
}

// applyBuffers расширяет занятые диапазоны буферами до и после
func applyBuffers(busy []timerange.Range, before, after time.Duration) []timerange.Range {
	if before == 0 && after == 0 {
		return busy
	}
	buffered := make([]timerange.Range, len(busy))
	for i, rg := range busy {
		buffered[i] = rg.Expand(before, after)
	}
	return buffered
}

// filterBusy убирает кандидатов, пересекающих занятые диапазоны
func filterBusy(slots, busy []timerange.Range) []timerange.Range {
	free := make([]timerange.Range, 0, len(slots))
	for _, slot := range slots {
		if overlapsAny(slot, busy) {
			continue
		}
		free = append(free, slot)
	}
	return free
}

func overlapsAny(slot timerange.Range, ranges []timerange.Range) bool {
	for _, rg := range ranges {
		if slot.Overlaps(rg) {
			return true
		}
	}
	return false
}

// toSlots конвертирует интервалы в отображаемые слоты с локальной меткой времени
func toSlots(ranges []timerange.Range, loc *time.Location) []domain.Slot {
	slots := make([]domain.Slot, len(ranges))
	for i, rg := range ranges {
		slots[i] = domain.Slot{
			Start: rg.Start,
			End:   rg.End,
			Label: rg.Start.In(loc).Format(domain.TimeFormat),
		}
	}
	return slots
}
