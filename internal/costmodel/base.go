package costmodel

import (
	"math"

	"github.com/meridianmobility/streetcore/internal/graph"
)

// DriveSide selects which side of the road traffic drives on, which
// determines the handedness of with-traffic vs against-traffic turns.
type DriveSide uint8

const (
	DriveOnRight DriveSide = iota
	DriveOnLeft
)

// TurnDirection classifies a relative turn angle into one of the buckets
// the base calculator keys its CAR turn costs on; the perceived-length
// suppliers use MovementDirection instead.
type TurnDirection uint8

const (
	TurnStraight TurnDirection = iota
	TurnWithTraffic
	TurnUTurn
	TurnAgainstTraffic
)

// rawAngleDeltaDegrees returns the raw relative turn angle in [0, 360)
// between the inbound edge's out-angle and the outbound edge's in-angle:
// delta is (inbound out-angle − outbound in-angle), increased by 360 when
// the first angle is smaller than the second.
func rawAngleDeltaDegrees(fromOutAngle, toInAngle int8) float64 {
	a := angleByteToDegrees(fromOutAngle)
	b := angleByteToDegrees(toInAngle)

	delta := a - b
	if delta < 0 {
		delta += 360
	}
	return delta
}

func angleByteToDegrees(b int8) float64 {
	return float64(uint8(b)) / 256 * 360
}

// ClassifyTurn buckets a relative turn angle into CAR turn-time boundaries.
// The boundaries themselves resolve to the bucket that follows them (27°
// is with-traffic, 153° is U-turn, 207° is against-traffic, 333° wraps back
// to straight). For drive-on-left the angle is mirrored (subtracted from
// 360) first, which swaps with-traffic and against-traffic handedness.
func ClassifyTurn(fromOutAngle, toInAngle int8, side DriveSide) TurnDirection {
	delta := rawAngleDeltaDegrees(fromOutAngle, toInAngle)
	if side == DriveOnLeft {
		delta = 360 - delta
	}
	switch {
	case delta < 27 || delta >= 333:
		return TurnStraight
	case delta < 153:
		return TurnWithTraffic
	case delta < 207:
		return TurnUTurn
	default:
		return TurnAgainstTraffic
	}
}

// MovementDirection classifies a turn for the WALK/BIKE perceived-length
// suppliers, which reason about LEFT/RIGHT/STRAIGHT road geometry rather
// than the CAR model's traffic-relative with/against/u-turn buckets.
// Unlike ClassifyTurn, this is not mirrored by drive side: a left turn is
// the same physical movement regardless of which side of the road is
// nearer.
type MovementDirection uint8

const (
	MovementStraight MovementDirection = iota
	MovementRight
	MovementLeft
)

// ClassifyMovement buckets the raw relative turn angle into STRAIGHT
// ([-27,27]), RIGHT ((27,180]) or LEFT ((180,333)).
func ClassifyMovement(fromOutAngle, toInAngle int8) MovementDirection {
	delta := rawAngleDeltaDegrees(fromOutAngle, toInAngle)
	switch {
	case delta <= 27 || delta >= 333:
		return MovementStraight
	case delta <= 180:
		return MovementRight
	default:
		return MovementLeft
	}
}

// Calculator computes traversal and turn costs for one edge/mode pair.
// Implementations compose (BaseCalculator wrapped by a MultistageCalculator)
// rather than branch internally.
type Calculator interface {
	TraversalTimeSeconds(c graph.EdgeCursor, mode graph.Mode, req Request) int
	TurnTimeSeconds(fromOutAngle, toInAngle int8, mode graph.Mode, req Request) int
}

// Request carries the per-query parameters the cost model needs: mode
// speeds and which side of the road traffic drives on.
type Request struct {
	WalkSpeedMPS float64
	BikeSpeedMPS float64
	DriveSide    DriveSide

	// FromTimeS is the query's nominal start time, in seconds since
	// midnight. ElapsedSeconds is the cumulative traversal time accrued so
	// far in the current search branch; the router refreshes it once per
	// expansion (see StreetRouter.expand) so a time-banded CostField can
	// estimate time-of-day at the moment an edge is actually reached.
	FromTimeS      float64
	ElapsedSeconds float64
}

// BaseCalculator implements the plain speed + turn-angle cost model with no
// perceived-length adjustment.
type BaseCalculator struct{}

// TraversalTimeSeconds returns ceil(length_m / speed_mps); CAR uses the
// edge's own speed, WALK/BIKE ignore it and use the request's mode speed.
func (BaseCalculator) TraversalTimeSeconds(c graph.EdgeCursor, mode graph.Mode, req Request) int {
	lengthM := float64(c.LengthMM()) / 1000
	var speed float64
	switch mode {
	case graph.ModeCar:
		speed = c.SpeedMPS()
	case graph.ModeBike:
		speed = req.BikeSpeedMPS
	default:
		speed = req.WalkSpeedMPS
	}
	if speed <= 0 {
		speed = 1
	}
	return int(math.Ceil(lengthM / speed))
}

// TurnTimeSeconds applies the CAR-only turn penalty ladder; all other
// modes always incur zero turn time at the base-calculator level.
func (BaseCalculator) TurnTimeSeconds(fromOutAngle, toInAngle int8, mode graph.Mode, req Request) int {
	if mode != graph.ModeCar {
		return 0
	}
	switch ClassifyTurn(fromOutAngle, toInAngle, req.DriveSide) {
	case TurnStraight:
		return 0
	case TurnWithTraffic:
		return 10
	case TurnUTurn:
		return 90
	case TurnAgainstTraffic:
		return 30
	default:
		return 0
	}
}
