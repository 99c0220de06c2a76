package interview

import (
	"errors"
	"fmt"
)

// ErrPhaseOutOfRange is returned for phase lookups outside the catalog bounds.
var ErrPhaseOutOfRange = errors.New("phase number out of range")

// PhaseDefinition describes one fixed stage of the interview.
type PhaseDefinition struct {
	Number       int    `json:"phase_number"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	MaxQuestions int    `json:"max_questions"`
}

// Catalog is the static ordered list of interview phases. It is never
// mutated at runtime and may be shared freely across sessions.
type Catalog struct {
	phases []PhaseDefinition
}

// DefaultCatalog returns the four-phase interview structure.
func DefaultCatalog() *Catalog {
	return &Catalog{phases: []PhaseDefinition{
		{
			Number:       1,
			Name:         "Warm-up & Background",
			Description:  "Getting to know the candidate and their background",
			MaxQuestions: 3,
		},
		{
			Number:       2,
			Name:         "Technical Depth",
			Description:  "Deep dive into technical skills from the resume",
			MaxQuestions: 6,
		},
		{
			Number:       3,
			Name:         "Problem-Solving Scenario",
			Description:  "Real-world problem-solving and system design",
			MaxQuestions: 4,
		},
		{
			Number:       4,
			Name:         "Behavioral & Wrap-up",
			Description:  "Soft skills, behavioral questions, and conclusion",
			MaxQuestions: 3,
		},
	}}
}

// DefinitionFor returns the definition for the given phase number.
func (c *Catalog) DefinitionFor(number int) (PhaseDefinition, error) {
	if number < 1 || number > len(c.phases) {
		return PhaseDefinition{}, fmt.Errorf("%w: %d", ErrPhaseOutOfRange, number)
	}
	return c.phases[number-1], nil
}

// Phases returns a copy of the full ordered phase list.
func (c *Catalog) Phases() []PhaseDefinition {
	out := make([]PhaseDefinition, len(c.phases))
	copy(out, c.phases)
	return out
}

// Len returns the number of phases in the catalog.
func (c *Catalog) Len() int {
	return len(c.phases)
}
