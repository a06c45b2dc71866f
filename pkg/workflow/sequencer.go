package workflow

// Sequencer orders the wizard steps, drives forward/back navigation and
// tracks completion. Forward movement is gated by validating the active
// step's required fields against the live accumulator, read under its
// lock so asynchronously arriving updates (geolocation callbacks, upload
// completions) are always seen.
type Sequencer struct {
	steps     []Step
	current   int // 1-based step ID
	completed map[int]bool
	acc       *Accumulator

	lastErrors   []FieldError
	errsRevision uint64
}

// NewSequencer starts at step 1 of the given ordered steps.
func NewSequencer(steps []Step, acc *Accumulator) *Sequencer {
	return &Sequencer{
		steps:     steps,
		current:   1,
		completed: make(map[int]bool),
		acc:       acc,
	}
}

// Steps returns the ordered step definitions.
func (s *Sequencer) Steps() []Step {
	return s.steps
}

// CurrentStep returns the active step's 1-based ID.
func (s *Sequencer) CurrentStep() int {
	return s.current
}

// ActiveStep returns the active step definition.
func (s *Sequencer) ActiveStep() Step {
	return s.steps[s.current-1]
}

// IsStepCompleted reports whether a step has passed validation.
func (s *Sequencer) IsStepCompleted(id int) bool {
	return s.completed[id]
}

// Next validates the active step against the latest accumulated state.
// On success the step is marked completed and the sequencer advances
// (no-op past the last step). On failure state is unchanged and the
// ordered error list is returned.
func (s *Sequencer) Next() []FieldError {
	step := s.steps[s.current-1]

	var errs []FieldError
	var revision uint64
	s.acc.withLocked(func(fields map[string]interface{}) {
		errs = ValidateFields(fields, step.RequiredFields)
		revision = s.acc.revision
	})

	if len(errs) > 0 {
		s.lastErrors = errs
		s.errsRevision = revision
		return errs
	}

	s.lastErrors = nil
	s.completed[step.ID] = true
	if s.current < len(s.steps) {
		s.current++
	}
	return nil
}

// Previous moves back one step without re-validating (no-op at step 1).
func (s *Sequencer) Previous() {
	if s.current > 1 {
		s.current--
	}
}

// Errors returns the failures from the last Next attempt. Errors are
// cleared as soon as any field is updated afterwards.
func (s *Sequencer) Errors() []FieldError {
	if s.lastErrors == nil {
		return nil
	}
	if s.acc.Revision() != s.errsRevision {
		s.lastErrors = nil
		return nil
	}
	return s.lastErrors
}

// CompletedSteps returns the IDs of all completed steps in order.
func (s *Sequencer) CompletedSteps() []int {
	var ids []int
	for _, step := range s.steps {
		if s.completed[step.ID] {
			ids = append(ids, step.ID)
		}
	}
	return ids
}
