package find_available_slots

import (
	"time"

	"github.com/salonflow/scheduling-service/internal/domain"
	"github.com/salonflow/scheduling-service/pkg/timerange"
)

// enumerateSlots перебирает кандидатов в каждом свободном интервале [a,b)
// с шагом granularity от начала интервала.
//
// Кандидат t подходит, если полная зона услуги (буфер до + услуга + буфер
// после) помещается в интервал: t + required <= b. Видимый клиенту слот
// начинается на bufferBefore позже кандидата и длится ровно duration.
//
// Шаг отсчитывается от начала каждого интервала, а не от полуночи: два
// соседних интервала могут дать времена, не кратные granularity по общим
// часам. Это ожидаемое поведение.
func enumerateSlots(free []timerange.Range, service *domain.Service, granularityMinutes int) []Slot {
	required := time.Duration(service.RequiredMinutes()) * time.Minute
	duration := time.Duration(service.DurationMinutes) * time.Minute
	bufferBefore := time.Duration(service.BufferBeforeMinutes) * time.Minute
	step := time.Duration(granularityMinutes) * time.Minute

	slots := make([]Slot, 0)

	for _, r := range free {
		// Интервал короче полной зоны услуги не дает ни одного кандидата
		for t := r.Start; !t.Add(required).After(r.End); t = t.Add(step) {
			visibleStart := t.Add(bufferBefore)
			slots = append(slots, Slot{
				StartTime: visibleStart,
				EndTime:   visibleStart.Add(duration),
			})
		}
	}

	return dedupeSlots(slots)
}

// dedupeSlots убирает дубликаты по времени начала; вход уже отсортирован,
// так как свободные интервалы дизъюнктны и упорядочены
func dedupeSlots(slots []Slot) []Slot {
	result := make([]Slot, 0, len(slots))
	for i, s := range slots {
		if i > 0 && s.StartTime.Equal(slots[i-1].StartTime) {
			continue
		}
		result = append(result, s)
	}
	return result
}

// filterByNotice убирает слоты, начинающиеся раньше, чем now + minNotice
func filterByNotice(slots []Slot, now time.Time, minNoticeMinutes int) []Slot {
	threshold := now.Add(time.Duration(minNoticeMinutes) * time.Minute)

	result := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if s.StartTime.Before(threshold) {
			continue
		}
		result = append(result, s)
	}
	return result
}
