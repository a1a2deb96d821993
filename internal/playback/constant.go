package playback

// ConstantModelName is the JSON discriminator for Constant.
const ConstantModelName = "constant"

// Constant plays the rail at a fixed rate with instant starts and stops.
//
// JSON discriminator: "model": "constant"
type Constant struct {
	Rate float64 `json:"rate"`
}

func (c Constant) MaxRate() float64 { return c.Rate }

func (c Constant) StoppingSpan(float64, float64) float64 { return 0 }

func (c Constant) RateAfterSpan(float64, float64) float64 { return 0 }

func (c Constant) Step(_, target, dt float64) (float64, float64) { return target * dt, target }
