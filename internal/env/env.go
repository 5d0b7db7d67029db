package env

// Environment generates the reward of the arm a player chose
type Environment interface {
	// Reveal returns the reward for arm. Adversarial environments advance
	// their round counter on every call.
	Reveal(arm int) float64

	// BestArm returns the best arm in hindsight
	BestArm() int
}
