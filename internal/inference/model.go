package inference

// Output is what a risk model returns for one patient. A nil Risk or nil
// Contributions means that piece is unavailable and the caller should fall
// back to its own synthesis or heuristic.
type Output struct {
	Risk          *float64
	Contributions map[string]float64
	Loaded        bool
	Message       string
}

type Model interface {
	Predict(features map[string]float64) Output
	Explain(features map[string]float64) Output
	Status() string
}

// Stub stands in when no model artifact is configured. It reports
// unavailability for every call so the synthesis fallback runs.
type Stub struct{}

func NewStub() *Stub {
	return &Stub{}
}

func (s *Stub) Predict(map[string]float64) Output {
	return Output{Message: "stub"}
}

func (s *Stub) Explain(map[string]float64) Output {
	return Output{Message: "stub"}
}

func (s *Stub) Status() string {
	return "stub"
}
