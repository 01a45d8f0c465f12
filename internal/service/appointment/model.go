package appointment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Kind
// ---------------------------------------------------------------------------

// Kind tags which backend collection an appointment came from. It is assigned
// by the Repository and never read from the backend payload.
type Kind string

const (
	KindLocation Kind = "location"
	KindDomicile Kind = "domicile"
)

var AllKinds = []Kind{KindLocation, KindDomicile}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "location", "intern":
		return KindLocation, nil
	case "domicile", "extern":
		return KindDomicile, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) Valid() bool {
	return k == KindLocation || k == KindDomicile
}

// ---------------------------------------------------------------------------
// Key
// ---------------------------------------------------------------------------

// Key identifies an appointment. Ids are only unique within a kind.
type Key struct {
	Kind Kind  `json:"kind"`
	ID   int64 `json:"id"`
}

func (k Key) String() string {
	return string(k.Kind) + ":" + strconv.FormatInt(k.ID, 10)
}

func NewKey(kind, id string) (Key, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return Key{}, err
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return Key{}, fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}
	return Key{Kind: k, ID: n}, nil
}

// ---------------------------------------------------------------------------
// Car / wash
// ---------------------------------------------------------------------------

type CarType string

const (
	CarSedan   CarType = "Sedan"
	CarSUV     CarType = "SUV"
	CarTruck   CarType = "Truck"
	CarCompact CarType = "Compact"
	CarMinivan CarType = "Minivan"
)

var AllCarTypes = []CarType{CarSedan, CarSUV, CarTruck, CarCompact, CarMinivan}

func ParseCarType(s string) (CarType, bool) {
	for _, c := range AllCarTypes {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, true
		}
	}
	return "", false
}

type WashType string

const (
	WashInterior WashType = "interior"
	WashExterior WashType = "exterior"
	WashFull     WashType = "full"
)

var AllWashTypes = []WashType{WashInterior, WashExterior, WashFull}

func ParseWashType(s string) (WashType, bool) {
	for _, w := range AllWashTypes {
		if strings.EqualFold(string(w), strings.TrimSpace(s)) {
			return w, true
		}
	}
	return "", false
}

type Car struct {
	Type CarType `json:"type"`
	Name string  `json:"name"`
}

// ClientInfo is the booking client as the backend denormalizes it onto
// appointments. Only staff views carry it.
type ClientInfo struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Age      int    `json:"age,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// ---------------------------------------------------------------------------
// Appointment
// ---------------------------------------------------------------------------

type Appointment struct {
	Kind      Kind        `json:"kind"`
	ID        int64       `json:"id"`
	Date      string      `json:"date,omitempty"`
	Time      string      `json:"time"`
	Car       Car         `json:"car"`
	WashType  WashType    `json:"wash_type"`
	Place     string      `json:"place,omitempty"`
	Price     float64     `json:"price"`
	Status    Status      `json:"status"`
	Rating    *float64    `json:"rating,omitempty"`
	Client    *ClientInfo `json:"client_info,omitempty"`
	ClaimedBy *int64      `json:"claimed_by,omitempty"`
}

func (a Appointment) Key() Key {
	return Key{Kind: a.Kind, ID: a.ID}
}

func (a Appointment) Claimed() bool {
	return a.ClaimedBy != nil
}

// rawAppointment is one record of a backend collection.
type rawAppointment struct {
	ID        int64           `json:"id"`
	Date      string          `json:"date"`
	Time      string          `json:"time"`
	CarType   string          `json:"car_type"`
	CarName   string          `json:"car_name"`
	WashType  string          `json:"wash_type"`
	Place     string          `json:"place"`
	Price     json.RawMessage `json:"price"`
	Status    string          `json:"status"`
	Rating    *float64        `json:"rating"`
	Client    *ClientInfo     `json:"client_info"`
	ClaimedBy *int64          `json:"claimed_by"`
}

// parsePrice accepts a JSON number or a decimal string ("300.00").
func parsePrice(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("price: %w", err)
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// normalize converts a raw record into the unified shape and tags it.
func (r rawAppointment) normalize(kind Kind) (Appointment, error) {
	status, err := ParseStatus(r.Status)
	if err != nil {
		return Appointment{}, err
	}
	price, err := parsePrice(r.Price)
	if err != nil {
		return Appointment{}, err
	}

	a := Appointment{
		Kind:     kind,
		ID:       r.ID,
		Date:     r.Date,
		Time:     r.Time,
		Car:      Car{Type: CarType(r.CarType), Name: r.CarName},
		WashType: WashType(strings.ToLower(r.WashType)),
		Price:    price,
		Status:   status,
		Rating:   r.Rating,
		Client:   r.Client,
	}
	if ct, ok := ParseCarType(r.CarType); ok {
		a.Car.Type = ct
	}
	if kind == KindDomicile {
		a.Place = r.Place
		a.ClaimedBy = r.ClaimedBy
	}
	return a, nil
}
