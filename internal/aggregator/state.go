package aggregator

// State is where a feature's reducer currently sits.
type State int

const (
	Idle State = iota
	InFeature
	InBackground
	InScenario
	InScenarioOutline
	InExample
	StepRunning
	FeatureClosed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case InFeature:
		return "InFeature"
	case InBackground:
		return "InBackground"
	case InScenario:
		return "InScenario"
	case InScenarioOutline:
		return "InScenarioOutline"
	case InExample:
		return "InExample"
	case StepRunning:
		return "StepRunning"
	case FeatureClosed:
		return "FeatureClosed"
	default:
		return "State(?)"
	}
}
