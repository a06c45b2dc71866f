package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"p9e.in/fieldops/models"
)

// Session is one technician's wizard run over a single report. The
// client may remount freely; all state lives here until the session is
// abandoned or the report is submitted.
type Session struct {
	ID           uuid.UUID
	TechnicianID uuid.UUID

	acc       *Accumulator
	seq       *Sequencer
	lifecycle *Lifecycle

	mu          sync.Mutex
	reportID    *uuid.UUID
	lastTouched time.Time
}

// SessionState is the wizard snapshot returned to the client.
type SessionState struct {
	SessionID      uuid.UUID              `json:"session_id"`
	ReportID       *uuid.UUID             `json:"report_id,omitempty"`
	CurrentStep    int                    `json:"current_step"`
	Steps          []Step                 `json:"steps"`
	CompletedSteps []int                  `json:"completed_steps,omitempty"`
	Errors         []FieldError           `json:"errors,omitempty"`
	Fields         map[string]interface{} `json:"fields"`
}

// Manager owns the in-memory session registry.
type Manager struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]*Session
	lifecycle *Lifecycle
	steps     []Step
	maxAge    time.Duration
	now       func() time.Time
}

// NewManager builds a session manager. Sessions idle past maxAge are
// pruned; pending work in them is abandoned without rollback.
func NewManager(lifecycle *Lifecycle, steps []Step, maxAge time.Duration) *Manager {
	if maxAge <= 0 {
		maxAge = 12 * time.Hour
	}
	return &Manager{
		sessions:  make(map[uuid.UUID]*Session),
		lifecycle: lifecycle,
		steps:     steps,
		maxAge:    maxAge,
		now:       time.Now,
	}
}

// StartNew opens a wizard session for a fresh report. The provisional
// complaint number and today's date are generated exactly once for the
// session, surviving client remounts.
func (m *Manager) StartNew(technicianID uuid.UUID) *Session {
	sess := m.newSession(technicianID, nil, nil)

	sess.acc.SetOnce(FieldComplaintNo, func() interface{} {
		return m.lifecycle.MintComplaintNo()
	})
	sess.acc.SetOnce(FieldDate, func() interface{} {
		return todayString(m.now())
	})

	return sess
}

// Resume opens a session hydrated from an existing draft. The draft's
// identifier and date already exist, so the one-time generators are
// short-circuited by the seeded values.
func (m *Manager) Resume(technicianID uuid.UUID, draft *models.ServiceReport) (*Session, error) {
	if draft.Status != models.StatusDraft {
		return nil, fmt.Errorf("report %s is not a draft", draft.ComplaintNo)
	}
	id := draft.ID
	sess := m.newSession(technicianID, FieldsFromReport(draft), &id)

	sess.acc.SetOnce(FieldComplaintNo, func() interface{} {
		return m.lifecycle.MintDraftNo(technicianID.String())
	})
	sess.acc.SetOnce(FieldDate, func() interface{} {
		return todayString(m.now())
	})

	return sess, nil
}

// Clone opens a session seeded from an existing report but behaving as
// new: record identity, signatures, approval fields and the complaint
// number are stripped and re-derived, never copied.
func (m *Manager) Clone(technicianID uuid.UUID, source *models.ServiceReport) *Session {
	seed := FieldsFromReport(source)
	delete(seed, FieldComplaintNo)
	delete(seed, FieldDate)
	delete(seed, FieldTechSignature)
	delete(seed, FieldTechEngineer)
	delete(seed, FieldTechMobile)

	sess := m.newSession(technicianID, seed, nil)

	sess.acc.SetOnce(FieldComplaintNo, func() interface{} {
		return m.lifecycle.MintComplaintNo()
	})
	sess.acc.SetOnce(FieldDate, func() interface{} {
		return todayString(m.now())
	})

	return sess
}

// Get returns a live session by ID.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if ok {
		sess.touch(m.now())
	}
	return sess, ok
}

// Close drops a session; pending uploads or lookups are abandoned.
func (m *Manager) Close(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *Manager) newSession(technicianID uuid.UUID, seed map[string]interface{}, reportID *uuid.UUID) *Session {
	acc := NewAccumulator(seed)
	sess := &Session{
		ID:           uuid.New(),
		TechnicianID: technicianID,
		acc:          acc,
		seq:          NewSequencer(m.steps, acc),
		lifecycle:    m.lifecycle,
		reportID:     reportID,
		lastTouched:  m.now(),
	}

	m.mu.Lock()
	m.pruneLocked()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	return sess
}

func (m *Manager) pruneLocked() {
	cutoff := m.now().Add(-m.maxAge)
	for id, sess := range m.sessions {
		if sess.lastIdle().Before(cutoff) {
			delete(m.sessions, id)
		}
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastTouched = now
	s.mu.Unlock()
}

func (s *Session) lastIdle() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTouched
}

// Accumulator exposes the session's field accumulator.
func (s *Session) Accumulator() *Accumulator {
	return s.acc
}

// UpdateFields merges a partial update from any step component,
// including ones not currently visible.
func (s *Session) UpdateFields(partial map[string]interface{}) {
	s.acc.Update(partial)
}

// Next advances the wizard; on validation failure it returns the error
// list and leaves the step unchanged.
func (s *Session) Next() []FieldError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.Next()
}

// Previous moves back one step without re-validating.
func (s *Session) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq.Previous()
}

// SaveDraft persists current progress as a draft. The first save assigns
// the record ID used by all later saves, keeping the draft identifier
// stable.
func (s *Session) SaveDraft(ctx context.Context) (*models.ServiceReport, error) {
	s.mu.Lock()
	existingID := s.reportID
	s.mu.Unlock()

	report, err := s.lifecycle.SaveDraft(ctx, s.acc, s.TechnicianID, existingID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	id := report.ID
	s.reportID = &id
	s.mu.Unlock()

	return report, nil
}

// Submit validates everything and persists the report as submitted.
func (s *Session) Submit(ctx context.Context) (*models.ServiceReport, error) {
	s.mu.Lock()
	existingID := s.reportID
	s.mu.Unlock()

	report, err := s.lifecycle.Submit(ctx, s.acc, s.TechnicianID, existingID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	id := report.ID
	s.reportID = &id
	s.mu.Unlock()

	return report, nil
}

// ApplyLocationDetail auto-fills the catalog-sourced location block for
// the selected RFP number. Catalog coordinates land in the read-only
// location_latitude/longitude pair, never the device pair.
func (s *Session) ApplyLocationDetail(detail *models.LocationDetail) {
	update := map[string]interface{}{
		FieldRfpNo:    detail.RfpNo,
		FieldLocation: detail.Location,
		FieldZone:     detail.Zone,
		FieldWardNo:   detail.WardNo,
		FieldPsLimits: detail.PsLimits,
		FieldPoleID:   detail.PoleID,
		FieldJbSlNo:   detail.JbSlNo,
	}
	if detail.Latitude != nil {
		update[FieldLocationLatitude] = *detail.Latitude
	}
	if detail.Longitude != nil {
		update[FieldLocationLongitude] = *detail.Longitude
	}
	s.acc.Update(update)
}

// SetDeviceLocation records the device GPS fix.
func (s *Session) SetDeviceLocation(lat, lon float64) {
	s.acc.Update(map[string]interface{}{
		FieldLatitude:  lat,
		FieldLongitude: lon,
	})
}

// DeviceLocation returns the current device fix, if acquired.
func (s *Session) DeviceLocation() (lat, lon float64, ok bool) {
	rawLat, okLat := s.acc.Get(FieldLatitude)
	rawLon, okLon := s.acc.Get(FieldLongitude)
	if !okLat || !okLon {
		return 0, 0, false
	}
	lat, okLat = toFloat(rawLat)
	lon, okLon = toFloat(rawLon)
	return lat, lon, okLat && okLon
}

// RawPowerImageCount returns how many raw-power-supply images are
// attached.
func (s *Session) RawPowerImageCount() int {
	v, ok := s.acc.Get(FieldRawPowerSupplyImages)
	if !ok {
		return 0
	}
	return len(asStringList(v))
}

// AppendRawPowerImage appends an uploaded image URL, enforcing the
// cardinality cap. Callers must check CanAddRawPowerImage before
// starting the upload so the 11th image is rejected without an upload
// call.
func (s *Session) AppendRawPowerImage(url string) error {
	s.acc.mu.Lock()
	defer s.acc.mu.Unlock()

	existing := asStringList(s.acc.fields[FieldRawPowerSupplyImages])
	if len(existing) >= models.MaxRawPowerSupplyImages {
		return fmt.Errorf("maximum of %d raw power supply images reached", models.MaxRawPowerSupplyImages)
	}
	s.acc.fields[FieldRawPowerSupplyImages] = append(existing, url)
	s.acc.revision++
	return nil
}

// CanAddRawPowerImage reports whether another raw-power image fits.
func (s *Session) CanAddRawPowerImage() bool {
	return s.RawPowerImageCount() < models.MaxRawPowerSupplyImages
}

// RemoveRawPowerImage removes an image by index on explicit request.
func (s *Session) RemoveRawPowerImage(index int) error {
	s.acc.mu.Lock()
	defer s.acc.mu.Unlock()

	existing := asStringList(s.acc.fields[FieldRawPowerSupplyImages])
	if index < 0 || index >= len(existing) {
		return fmt.Errorf("image index %d out of range", index)
	}
	s.acc.fields[FieldRawPowerSupplyImages] = append(existing[:index], existing[index+1:]...)
	s.acc.revision++
	return nil
}

// State returns the client-facing snapshot of the wizard.
func (s *Session) State() SessionState {
	s.mu.Lock()
	reportID := s.reportID
	current := s.seq.CurrentStep()
	completed := s.seq.CompletedSteps()
	errs := s.seq.Errors()
	s.mu.Unlock()

	return SessionState{
		SessionID:      s.ID,
		ReportID:       reportID,
		CurrentStep:    current,
		Steps:          s.seq.Steps(),
		CompletedSteps: completed,
		Errors:         errs,
		Fields:         s.acc.Snapshot(),
	}
}
