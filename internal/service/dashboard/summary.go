package dashboard

import (
	"github.com/samber/lo"

	"github.com/Alijeyrad/carwash_portal/internal/service/appointment"
)

// Summary is derived from an already fetched appointment list.
type Summary struct {
	Total    int                      `json:"total"`
	ByStatus map[string]int           `json:"by_status"`
	ByKind   map[appointment.Kind]int `json:"by_kind"`
	// Revenue counts completed appointments only.
	Revenue float64 `json:"revenue"`
}

func Summarize(list []appointment.Appointment) Summary {
	s := Summary{
		Total:    len(list),
		ByStatus: make(map[string]int, len(appointment.AllStatuses)),
		ByKind:   make(map[appointment.Kind]int, len(appointment.AllKinds)),
	}
	for _, st := range appointment.AllStatuses {
		s.ByStatus[st.String()] = 0
	}
	for _, k := range appointment.AllKinds {
		s.ByKind[k] = 0
	}

	for st, n := range lo.CountValuesBy(list, func(a appointment.Appointment) string { return a.Status.String() }) {
		s.ByStatus[st] = n
	}
	for k, n := range lo.CountValuesBy(list, func(a appointment.Appointment) appointment.Kind { return a.Kind }) {
		s.ByKind[k] = n
	}

	completed := lo.Filter(list, func(a appointment.Appointment, _ int) bool {
		return a.Status == appointment.StatusCompleted
	})
	s.Revenue = lo.SumBy(completed, func(a appointment.Appointment) float64 { return a.Price })
	return s
}

// AverageRating averages the ratings present in list. ok is false when no
// appointment has been rated.
func AverageRating(list []appointment.Appointment) (avg float64, ok bool) {
	rated := lo.FilterMap(list, func(a appointment.Appointment, _ int) (float64, bool) {
		if a.Rating == nil {
			return 0, false
		}
		return *a.Rating, true
	})
	if len(rated) == 0 {
		return 0, false
	}
	return lo.Sum(rated) / float64(len(rated)), true
}
