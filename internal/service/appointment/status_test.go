package appointment

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"Pending", StatusPending, false},
		{"In Progress", StatusInProgress, false},
		{"InProgress", StatusInProgress, false},
		{"in_progress", StatusInProgress, false},
		{"Completed", StatusCompleted, false},
		{"Deleted", StatusDeleted, false},
		{"Cancelled", StatusDeleted, false},
		{"canceled", StatusDeleted, false},
		{"archived", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownStatus) {
					t.Errorf("error = %v, want ErrUnknownStatus", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseStatus(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestStatus_JSON(t *testing.T) {
	raw, err := json.Marshal(StatusInProgress)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(raw) != `"In Progress"` {
		t.Errorf("Marshal() = %s", raw)
	}

	var s Status
	if err := json.Unmarshal([]byte(`"Cancelled"`), &s); err != nil || s != StatusDeleted {
		t.Errorf("Unmarshal(Cancelled) = %v, %v", s, err)
	}

	if _, err := json.Marshal(Status(0)); err == nil {
		t.Error("Expected error marshalling the zero status")
	}
}

func TestTransitions_Monotonic(t *testing.T) {
	rank := map[Status]int{StatusPending: 0, StatusInProgress: 1, StatusCompleted: 2}

	for _, from := range AllStatuses {
		for _, to := range NextStatuses(from) {
			if to == StatusDeleted {
				if from == StatusCompleted {
					t.Errorf("Completed must not reach Deleted")
				}
				continue
			}
			if rank[to] <= rank[from] {
				t.Errorf("transition %s -> %s moves backwards", from, to)
			}
		}
	}
}

func TestNextStatuses(t *testing.T) {
	tests := []struct {
		from Status
		want []Status
	}{
		{StatusPending, []Status{StatusInProgress, StatusDeleted}},
		{StatusInProgress, []Status{StatusCompleted, StatusDeleted}},
		{StatusCompleted, nil},
		{StatusDeleted, nil},
	}

	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			got := NextStatuses(tt.from)
			if len(got) != len(tt.want) {
				t.Fatalf("NextStatuses(%s) = %v, want %v", tt.from, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("NextStatuses(%s)[%d] = %s, want %s", tt.from, i, got[i], tt.want[i])
				}
			}
		})
	}

	t.Run("completed offers no way back", func(t *testing.T) {
		for _, s := range []Status{StatusPending, StatusInProgress} {
			if CanTransition(StatusCompleted, s) {
				t.Errorf("Completed -> %s must be illegal", s)
			}
		}
	})

	t.Run("result is a copy", func(t *testing.T) {
		got := NextStatuses(StatusPending)
		got[0] = StatusCompleted
		if NextStatuses(StatusPending)[0] != StatusInProgress {
			t.Error("NextStatuses exposed the transition table")
		}
	})
}

func TestPrice(t *testing.T) {
	tests := []struct {
		kind Kind
		car  CarType
		wash WashType
		want float64
	}{
		{KindDomicile, CarSUV, WashFull, 300},
		{KindLocation, CarSUV, WashFull, 240},
		{KindDomicile, CarCompact, WashInterior, 80},
		{KindLocation, CarCompact, WashInterior, 64},
		{KindDomicile, CarTruck, WashExterior, 200},
		{KindLocation, CarSedan, WashFull, 160},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+string(tt.car)+"/"+string(tt.wash), func(t *testing.T) {
			got, err := Price(tt.kind, tt.car, tt.wash)
			if err != nil {
				t.Fatalf("Price() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Price() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("schedules differ for every entry", func(t *testing.T) {
		for _, car := range AllCarTypes {
			for _, wash := range AllWashTypes {
				d, _ := Price(KindDomicile, car, wash)
				l, _ := Price(KindLocation, car, wash)
				if d == l {
					t.Errorf("%s/%s priced the same on both schedules", car, wash)
				}
			}
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		if _, err := Price("garage", CarSUV, WashFull); !errors.Is(err, ErrUnknownKind) {
			t.Errorf("error = %v, want ErrUnknownKind", err)
		}
	})
}

func TestNormalize(t *testing.T) {
	raw := rawAppointment{
		ID: 3, Time: "10:30", CarType: "suv", CarName: "X5", WashType: "FULL",
		Place: "1 Main St", Price: json.RawMessage(`"300.00"`), Status: "In Progress",
	}

	dom, err := raw.normalize(KindDomicile)
	if err != nil {
		t.Fatalf("normalize() error = %v", err)
	}
	if dom.Kind != KindDomicile || dom.Car.Type != CarSUV || dom.WashType != WashFull {
		t.Errorf("normalized = %+v", dom)
	}
	if dom.Price != 300 || dom.Status != StatusInProgress || dom.Place != "1 Main St" {
		t.Errorf("normalized = %+v", dom)
	}

	loc, err := raw.normalize(KindLocation)
	if err != nil {
		t.Fatalf("normalize() error = %v", err)
	}
	if loc.Place != "" {
		t.Errorf("location appointments carry no place, got %q", loc.Place)
	}

	raw.Status = "Archived"
	if _, err := raw.normalize(KindLocation); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("error = %v, want ErrUnknownStatus", err)
	}
}

func TestNewKey(t *testing.T) {
	k, err := NewKey("extern", "12")
	if err != nil || k != (Key{Kind: KindDomicile, ID: 12}) {
		t.Errorf("NewKey() = %v, %v", k, err)
	}
	if k.String() != "domicile:12" {
		t.Errorf("String() = %q", k.String())
	}
	if _, err := NewKey("location", "abc"); err == nil {
		t.Error("Expected error for non-numeric id")
	}
	if _, err := NewKey("garage", "1"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("error = %v, want ErrUnknownKind", err)
	}
}
