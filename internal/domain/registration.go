package domain

import "strings"

// Step is a position in the onboarding sequence.
type Step int

const (
	NameStep Step = iota
	PhoneStep
	CityStep
	Complete
)

func (s Step) String() string {
	switch s {
	case NameStep:
		return "name"
	case PhoneStep:
		return "phone"
	case CityStep:
		return "city"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// User is the finalized record produced by a completed registration.
type User struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	City  string `json:"city"`
}

// RegistrationDraft holds the raw onboarding input of one session.
type RegistrationDraft struct {
	Name  string
	Phone string
	City  string
}

// RegistrationGate sequences NameStep -> PhoneStep -> CityStep -> Complete.
// Forward moves are validated, backward moves never are.
// A gate belongs to a single onboarding flow and is not safe for concurrent use.
type RegistrationGate struct {
	Draft RegistrationDraft
	step  Step
}

// NewRegistrationGate returns a gate positioned on NameStep.
func NewRegistrationGate() *RegistrationGate {
	return &RegistrationGate{step: NameStep}
}

// Step returns the current step.
func (g *RegistrationGate) Step() Step { return g.step }

// CanProceed reports whether the current step's field is acceptable.
func (g *RegistrationGate) CanProceed() bool {
	switch g.step {
	case NameStep:
		return strings.TrimSpace(g.Draft.Name) != ""
	case PhoneStep:
		return IsValidPhone(g.Draft.Phone)
	case CityStep:
		return IsValidCity(g.Draft.City)
	default:
		return false
	}
}

// Next advances one step, or returns ErrStepBlocked and stays put.
func (g *RegistrationGate) Next() error {
	if !g.CanProceed() {
		return ErrStepBlocked
	}
	g.step++
	return nil
}

// Back moves one step backward. It is a no-op on NameStep.
func (g *RegistrationGate) Back() {
	if g.step > NameStep {
		g.step--
	}
}

// User returns the finalized record once the gate reached Complete.
func (g *RegistrationGate) User() (User, error) {
	if g.step != Complete {
		return User{}, ErrRegistrationIncomplete
	}

	phone, ok := NormalizePhone(g.Draft.Phone)
	if !ok {
		phone = g.Draft.Phone
	}

	return User{
		Name:  g.Draft.Name,
		Phone: phone,
		City:  g.Draft.City,
	}, nil
}

// Register walks a fresh gate through every step with the given draft.
// On failure it returns the step that blocked.
func Register(draft RegistrationDraft) (User, Step, error) {
	g := NewRegistrationGate()
	g.Draft = draft
	for g.Step() != Complete {
		if err := g.Next(); err != nil {
			return User{}, g.Step(), err
		}
	}
	u, err := g.User()
	return u, Complete, err
}
