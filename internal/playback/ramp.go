package playback

import "math"

// RampModelName is the JSON discriminator for Ramp.
const RampModelName = "ramp"

// Ramp changes rate linearly, at Accel when speeding up and Decel when
// slowing down.
//
// JSON discriminator: "model": "ramp"
type Ramp struct {
	Accel float64 `json:"accel"`    // rate per second
	Decel float64 `json:"decel"`    // rate per second, positive
	Max   float64 `json:"max_rate"` // cruise rate, 1 = authored speed
}

func (r Ramp) MaxRate() float64 { return r.Max }

func (r Ramp) StoppingSpan(rate, target float64) float64 {
	if rate <= target {
		return 0
	}
	if r.Decel <= 0 {
		return math.Inf(1)
	}
	return (rate*rate - target*target) / (2 * r.Decel)
}

func (r Ramp) RateAfterSpan(rate, span float64) float64 {
	if r.Decel <= 0 {
		return rate
	}
	return math.Sqrt(math.Max(0, rate*rate-2*r.Decel*span))
}

func (r Ramp) Step(rate, target, dt float64) (float64, float64) {
	a := r.Accel
	if target < rate {
		a = -r.Decel
	}
	if a == 0 || rate == target {
		return target * dt, target
	}
	// Time to reach target at constant a; cruise at target for the rest.
	tReach := (target - rate) / a
	if tReach <= dt {
		ramp := rate*tReach + 0.5*a*tReach*tReach
		return math.Max(0, ramp) + target*(dt-tReach), target
	}
	return math.Max(0, rate*dt+0.5*a*dt*dt), rate + a*dt
}
