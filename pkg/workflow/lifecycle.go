package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"p9e.in/fieldops/models"
)

// RecordStore is the record-storage collaborator. Create and update are
// atomic per call; the engine needs no multi-record transactions.
type RecordStore interface {
	Create(ctx context.Context, report *models.ServiceReport) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, report *models.ServiceReport) error
	Get(ctx context.Context, id uuid.UUID) (*models.ServiceReport, error)
	Query(ctx context.Context, filters map[string]interface{}) ([]models.ServiceReport, error)
}

// AuditSink receives best-effort audit-trail entries.
type AuditSink interface {
	Append(ctx context.Context, entry *models.AuditLog) error
}

// ValidationError carries the ordered per-field failures of a blocked
// save or submit.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	return "validation failed: " + FormatErrors(e.Errors)
}

// Lifecycle decides the persisted identifier and status for drafts and
// submissions and performs the create-or-update call.
type Lifecycle struct {
	store  RecordStore
	audit  AuditSink
	schema models.ChecklistSchema
	steps  []Step
	log    *logrus.Logger
	now    func() time.Time
}

// NewLifecycle wires the lifecycle manager to its collaborators.
func NewLifecycle(store RecordStore, audit AuditSink, schema models.ChecklistSchema, steps []Step, log *logrus.Logger) *Lifecycle {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Lifecycle{
		store:  store,
		audit:  audit,
		schema: schema,
		steps:  steps,
		log:    log,
		now:    time.Now,
	}
}

// MintDraftNo builds a draft-shaped identifier for a technician.
func (l *Lifecycle) MintDraftNo(technicianID string) string {
	return fmt.Sprintf("%s%s-%d", models.DraftPrefix, technicianID, l.now().UnixMilli())
}

// MintComplaintNo builds a submission identifier.
func (l *Lifecycle) MintComplaintNo() string {
	return fmt.Sprintf("%s%d", models.ComplaintPrefix, l.now().UnixMilli())
}

// SaveDraft persists the accumulated fields with draft status. A new
// record gets a DRAFT-<technician>-<millis> identifier unless the current
// one is already draft-shaped, so repeated saves keep the same number.
// The approval block is cleared; drafts are never visible to approvers.
func (l *Lifecycle) SaveDraft(ctx context.Context, acc *Accumulator, technicianID uuid.UUID, existingID *uuid.UUID) (*models.ServiceReport, error) {
	complaintNo := acc.GetString(FieldComplaintNo)
	if !models.IsDraftIdentifier(complaintNo) {
		complaintNo = l.MintDraftNo(technicianID.String())
		acc.Set(FieldComplaintNo, complaintNo)
	}

	report, err := l.buildReport(acc, technicianID)
	if err != nil {
		return nil, err
	}
	report.Status = models.StatusDraft
	l.clearApprovalBlock(report)

	if err := l.persist(ctx, report, existingID); err != nil {
		return nil, err
	}

	action := "create"
	if existingID != nil {
		action = "update"
	}
	l.appendAudit(action, technicianID.String(), report)

	return report, nil
}

// Submit validates the full required-field superset across all steps,
// always mints a fresh COMP-<millis> identifier (a draft-shaped one is
// replaced, an existing COMP- one is re-minted), and persists with
// submitted status.
func (l *Lifecycle) Submit(ctx context.Context, acc *Accumulator, technicianID uuid.UUID, existingID *uuid.UUID) (*models.ServiceReport, error) {
	fields := acc.Snapshot()

	errs := ValidateFields(fields, RequiredFieldSuperset(l.steps))
	if problems := l.checklistProblems(fields); len(problems) > 0 {
		for _, p := range problems {
			errs = append(errs, FieldError{Field: FieldChecklistData, Message: p})
		}
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	complaintNo := l.MintComplaintNo()
	acc.Set(FieldComplaintNo, complaintNo)

	report, err := l.buildReport(acc, technicianID)
	if err != nil {
		return nil, err
	}
	report.Status = models.StatusSubmitted
	report.ApprovalStatus = models.ApprovalPending

	if err := l.persist(ctx, report, existingID); err != nil {
		return nil, err
	}

	l.appendAudit("submit", technicianID.String(), report)

	return report, nil
}

// buildReport converts the live fields into the typed record, defaults
// the date to today when empty and default-fills the checklist so every
// schema item carries a status.
func (l *Lifecycle) buildReport(acc *Accumulator, technicianID uuid.UUID) (*models.ServiceReport, error) {
	report, err := ReportFromFields(acc.Snapshot())
	if err != nil {
		return nil, err
	}
	if report.Date == "" {
		report.Date = todayString(l.now())
	}
	report.ChecklistData = models.NewChecklistData(l.schema, report.ChecklistData)
	if report.EquipmentRemarks == nil {
		report.EquipmentRemarks = models.RemarkMap{}
	}
	if report.RawPowerSupplyImages == nil {
		report.RawPowerSupplyImages = models.StringList{}
	}
	report.TechnicianID = &technicianID
	return report, nil
}

func (l *Lifecycle) clearApprovalBlock(report *models.ServiceReport) {
	report.TlName = ""
	report.TlMobile = ""
	report.TlSignature = ""
	report.ApprovalStatus = models.ApprovalPending
	report.RejectionRemarks = ""
	report.ApprovalNotes = ""
}

func (l *Lifecycle) checklistProblems(fields map[string]interface{}) []string {
	raw, ok := fields[FieldChecklistData]
	if !ok {
		return nil
	}
	data, err := asChecklistData(raw)
	if err != nil {
		return []string{err.Error()}
	}
	var remarks models.RemarkMap
	if rawRemarks, ok := fields[FieldEquipmentRemarks]; ok {
		remarks, _ = asRemarkMap(rawRemarks)
	}
	data = models.NewChecklistData(l.schema, data)
	return models.ValidateChecklist(l.schema, data, remarks)
}

// persist creates or updates in place. Failures are returned to the
// caller as-is; the accumulator is untouched so the user can retry.
// The record is rebuilt from the live fields on every save, so on
// update the stored creation time is carried over.
func (l *Lifecycle) persist(ctx context.Context, report *models.ServiceReport, existingID *uuid.UUID) error {
	if existingID != nil {
		report.ID = *existingID
		if existing, err := l.store.Get(ctx, *existingID); err == nil {
			report.CreatedAt = existing.CreatedAt
		}
		if err := l.store.Update(ctx, *existingID, report); err != nil {
			return fmt.Errorf("failed to update report: %w", err)
		}
		return nil
	}

	id, err := l.store.Create(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	report.ID = id
	return nil
}

// appendAudit writes the audit-trail entry without blocking or failing
// the enclosing persist.
func (l *Lifecycle) appendAudit(action, actorID string, report *models.ServiceReport) {
	if l.audit == nil {
		return
	}

	after, err := json.Marshal(report)
	if err != nil {
		l.log.WithError(err).Warn("audit: could not marshal report after-image")
		after = []byte("{}")
	}

	entry := &models.AuditLog{
		Action:   action,
		ActorID:  actorID,
		Table:    models.ServiceReport{}.TableName(),
		RecordID: report.ID.String(),
		NewData:  datatypes.JSON(after),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.audit.Append(ctx, entry); err != nil {
			l.log.WithError(err).WithField("record_id", entry.RecordID).Warn("audit append failed")
		}
	}()
}
