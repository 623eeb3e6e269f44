package snake

// Speed is the difficulty tier derived from how much of the board the
// snake covers.
type Speed int

const (
	SpeedSlow Speed = iota
	SpeedMedium
	SpeedHard
	SpeedVeryHard
	SpeedGodMode
)

// SpeedFor buckets length/area into a tier at 0.2, 0.4, 0.6 and 0.8.
func SpeedFor(length, area int) Speed {
	// integer form of length/area < k/5
	switch {
	case 5*length < area:
		return SpeedSlow
	case 5*length < 2*area:
		return SpeedMedium
	case 5*length < 3*area:
		return SpeedHard
	case 5*length < 4*area:
		return SpeedVeryHard
	default:
		return SpeedGodMode
	}
}

// ScoreValue is the number of points an apple is worth at this tier.
func (s Speed) ScoreValue() int {
	switch s {
	case SpeedMedium:
		return 20
	case SpeedHard:
		return 50
	case SpeedVeryHard:
		return 100
	case SpeedGodMode:
		return 150
	default:
		return 10
	}
}

// TimeScale multiplies the base tick interval of interactive play.
func (s Speed) TimeScale() float64 {
	switch s {
	case SpeedMedium:
		return 0.9
	case SpeedHard:
		return 0.8
	case SpeedVeryHard:
		return 0.7
	case SpeedGodMode:
		return 0.5
	default:
		return 1.0
	}
}

// String returns the label shown to players.
func (s Speed) String() string {
	switch s {
	case SpeedSlow:
		return "Easy"
	case SpeedMedium:
		return "Medium"
	case SpeedHard:
		return "Hard"
	case SpeedVeryHard:
		return "Very Hard"
	case SpeedGodMode:
		return "GodLike"
	default:
		return "Unknown"
	}
}
