// Package playback models how fast an entity advances along a rail.
//
// A rail is built at a single authored speed, so progress along it is
// measured in rail time (seconds of the authored traversal). A Profile maps
// simulation time onto rail time through a playback rate: 1.0 plays the rail
// at its authored speed, 0 holds still. Profiles shape how that rate ramps up
// when leaving and ramps down when arriving.
//
// Adding a profile means implementing Profile and registering it in the
// follower package's JSON discriminator; the engine never changes.
package playback

// Profile is the contract every playback rate model satisfies. Spans are in
// rail seconds, rates in rail seconds per simulation second, dt in
// simulation seconds.
type Profile interface {
	// MaxRate is the rate the follower cruises at.
	MaxRate() float64

	// StoppingSpan is the rail time consumed while slowing from rate to
	// target. Zero when rate <= target.
	StoppingSpan(rate, target float64) float64

	// RateAfterSpan is the rate left after slowing from rate over span
	// rail seconds at full braking.
	RateAfterSpan(rate, span float64) float64

	// Step moves rate toward target over dt, holding target once reached
	// mid-step. Returns the rail time covered and the new rate.
	Step(rate, target, dt float64) (span, newRate float64)
}
