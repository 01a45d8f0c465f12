package appointment

import (
	"strings"

	"github.com/samber/lo"
)

// Filter narrows an already fetched list. Free text matches case-insensitively
// as a substring; enum fields match exactly. Zero fields match everything.
type Filter struct {
	Query    string
	Status   Status
	Kind     Kind
	CarType  CarType
	WashType WashType
}

// FilterFromQuery reads a filter from request query parameters.
func FilterFromQuery(get func(key string) string) (Filter, error) {
	f := Filter{Query: strings.TrimSpace(get("q"))}

	if v := get("status"); v != "" {
		s, err := ParseStatus(v)
		if err != nil {
			return Filter{}, err
		}
		f.Status = s
	}
	if v := get("kind"); v != "" {
		k, err := ParseKind(v)
		if err != nil {
			return Filter{}, err
		}
		f.Kind = k
	}
	if v := get("car_type"); v != "" {
		c, ok := ParseCarType(v)
		if !ok {
			c = CarType(v) // matches nothing
		}
		f.CarType = c
	}
	if v := get("wash_type"); v != "" {
		w, ok := ParseWashType(v)
		if !ok {
			w = WashType(v)
		}
		f.WashType = w
	}
	return f, nil
}

func (f Filter) IsZero() bool {
	return f == Filter{}
}

func (f Filter) Match(a Appointment) bool {
	if f.Status != 0 && a.Status != f.Status {
		return false
	}
	if f.Kind != "" && a.Kind != f.Kind {
		return false
	}
	if f.CarType != "" && a.Car.Type != f.CarType {
		return false
	}
	if f.WashType != "" && a.WashType != f.WashType {
		return false
	}
	if f.Query == "" {
		return true
	}

	q := strings.ToLower(f.Query)
	for _, field := range []string{a.Car.Name, string(a.Car.Type), a.Place, string(a.WashType)} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Apply returns the matching appointments in a new slice; list is untouched.
func (f Filter) Apply(list []Appointment) []Appointment {
	return lo.Filter(list, func(a Appointment, _ int) bool {
		return f.Match(a)
	})
}
