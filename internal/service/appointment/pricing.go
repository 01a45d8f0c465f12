package appointment

import "fmt"

type priceKey struct {
	car  CarType
	wash WashType
}

// Domicile prices; the location schedule is derived at 80%.
var domicilePrices = map[priceKey]float64{
	{CarCompact, WashInterior}: 80, {CarCompact, WashExterior}: 100, {CarCompact, WashFull}: 160,
	{CarSedan, WashInterior}: 100, {CarSedan, WashExterior}: 120, {CarSedan, WashFull}: 200,
	{CarSUV, WashInterior}: 150, {CarSUV, WashExterior}: 180, {CarSUV, WashFull}: 300,
	{CarMinivan, WashInterior}: 140, {CarMinivan, WashExterior}: 170, {CarMinivan, WashFull}: 280,
	{CarTruck, WashInterior}: 170, {CarTruck, WashExterior}: 200, {CarTruck, WashFull}: 340,
}

var locationPrices = func() map[priceKey]float64 {
	out := make(map[priceKey]float64, len(domicilePrices))
	for k, v := range domicilePrices {
		out[k] = v * 4 / 5
	}
	return out
}()

// Price looks up the creation-time price of a wash. Prices are never
// recomputed for existing appointments.
func Price(kind Kind, car CarType, wash WashType) (float64, error) {
	var table map[priceKey]float64
	switch kind {
	case KindDomicile:
		table = domicilePrices
	case KindLocation:
		table = locationPrices
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	p, ok := table[priceKey{car, wash}]
	if !ok {
		return 0, fmt.Errorf("no price for %s/%s", car, wash)
	}
	return p, nil
}
