package costmodel

import "github.com/meridianmobility/streetcore/internal/graph"

// PerceivedLengthSupplier is consulted once per edge, for WALK and BIKE
// only, to produce a length multiplier and a turn cost expressed in meters
// (converted to seconds by dividing by the mode's standard speed).
type PerceivedLengthSupplier interface {
	Multiplier(attrs WayAttributes) float64
	TurnCostMeters(attrs WayAttributes, movement MovementDirection) float64
}

// StandardWalkSpeedMPS and StandardBikeSpeedMPS are the speeds the
// production suppliers use to convert their meter-denominated turn costs
// into seconds, independent of a request's own configured speed.
const (
	StandardWalkSpeedMPS = 1.3
	StandardBikeSpeedMPS = 4.0
)

// WalkSupplier implements the production pedestrian perceived-length model.
type WalkSupplier struct{}

// Multiplier applies slope, unpaved/alley, and busy-road surcharges.
func (WalkSupplier) Multiplier(a WayAttributes) float64 {
	m := 1.0
	m += 0.99 * a.SlopePercent10Plus
	if a.UnpavedOrAlley {
		m += 0.51
	}
	if a.BusyRoad {
		m += 0.14
	}
	return m
}

// TurnCostMeters starts at a 54m base and adds a crosswalk-safety surcharge
// keyed by cross-traffic volume (STRAIGHT) or the louder of the way's own
// and any parallel street's volume (LEFT/RIGHT).
func (WalkSupplier) TurnCostMeters(a WayAttributes, movement MovementDirection) float64 {
	cost := 54.0

	volume := a.CrossTrafficAADT
	if movement != MovementStraight {
		volume = a.SelfAADT
		if a.ParallelAADT > volume {
			volume = a.ParallelAADT
		}
	}

	switch {
	case volume >= 13000 && a.CrosswalkType != CrosswalkSignalized:
		cost += 73
	case volume >= 10000 && a.CrosswalkType == CrosswalkNone:
		cost += 28
	}
	return cost
}

// BikeSupplier implements the production cyclist perceived-length model.
type BikeSupplier struct{}

// Multiplier applies bike-infrastructure discounts or self-AADT surcharges
// (mutually exclusive), then slope-band surcharges.
func (BikeSupplier) Multiplier(a WayAttributes) float64 {
	m := 1.0

	switch {
	case a.BikeInfra == BikeInfraBoulevard:
		m -= 0.108
	case a.BikeInfra == BikeInfraPath:
		m -= 0.16
	case a.SelfAADT > 30000:
		m += 7.157
	case a.SelfAADT > 20000:
		m += 1.4
	case a.SelfAADT > 10000:
		m += 0.368
	}

	m += 0.371*a.Slope2To4 + 1.23*a.Slope4To6 + 3.239*a.Slope6Plus
	return m
}

// TurnCostMeters adds control-type, turn-type, and AADT-ladder surcharges.
func (BikeSupplier) TurnCostMeters(a WayAttributes, movement MovementDirection) float64 {
	cost := 0.0

	switch a.Control {
	case ControlStop:
		cost += 6
	case ControlSignal:
		cost += 27
	}

	if movement != MovementStraight {
		cost += 54
	}

	switch movement {
	case MovementRight:
		if a.CrossTrafficAADT > 10000 {
			cost += 50
		}
	case MovementStraight, MovementLeft:
		switch {
		case a.CrossTrafficAADT > 20000:
			cost += 424
		case a.CrossTrafficAADT > 10000:
			cost += 81
		case a.CrossTrafficAADT > 5000:
			cost += 78
		}
		if movement == MovementLeft {
			switch {
			case a.ParallelAADT > 20000:
				cost += 297
			case a.ParallelAADT > 10000:
				cost += 117
			}
		}
	}
	return cost
}

// PerceivedTraversalSeconds converts a supplier's multiplier into a WALK or
// BIKE traversal time: length_m * multiplier / mode_speed.
func PerceivedTraversalSeconds(supplier PerceivedLengthSupplier, c graph.EdgeCursor, attrs WayAttributes, mode graph.Mode, req Request) float64 {
	lengthM := float64(c.LengthMM()) / 1000
	multiplier := supplier.Multiplier(attrs)

	speed := req.WalkSpeedMPS
	if mode == graph.ModeBike {
		speed = req.BikeSpeedMPS
	}
	if speed <= 0 {
		speed = 1
	}
	return lengthM * multiplier / speed
}

// PerceivedTurnSeconds converts a supplier's meter-denominated turn cost
// into whole seconds, truncating rather than rounding (141m at 4 m/s comes
// out to 35s, not 35.25s), using the mode's standard (not request-configured)
// speed.
func PerceivedTurnSeconds(supplier PerceivedLengthSupplier, attrs WayAttributes, movement MovementDirection, mode graph.Mode) float64 {
	meters := supplier.TurnCostMeters(attrs, movement)
	speed := StandardWalkSpeedMPS
	if mode == graph.ModeBike {
		speed = StandardBikeSpeedMPS
	}
	return float64(int(meters / speed))
}
