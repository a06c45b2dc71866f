package workflow

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"p9e.in/fieldops/models"
)

func newTestManager(store RecordStore) *Manager {
	lc := newTestLifecycle(store, nil)
	return NewManager(lc, DefaultSteps(), 0)
}

func TestStartNew_ProvisionalIdentifierSurvivesRemount(t *testing.T) {
	m := newTestManager(newMemStore())
	sess := m.StartNew(uuid.New())

	no := sess.Accumulator().GetString(FieldComplaintNo)
	if !strings.HasPrefix(no, models.ComplaintPrefix) {
		t.Fatalf("complaint_no = %q, expected a provisional COMP- identifier", no)
	}
	if sess.Accumulator().GetString(FieldDate) == "" {
		t.Error("date not defaulted at session start")
	}

	// A client remount re-runs initialization against the same session.
	again := sess.Accumulator().SetOnce(FieldComplaintNo, func() interface{} {
		return "COMP-should-not-run"
	})
	if again != no {
		t.Errorf("identifier changed to %v on remount, expected %q", again, no)
	}
}

func TestResume_RejectsSubmittedReport(t *testing.T) {
	m := newTestManager(newMemStore())
	_, err := m.Resume(uuid.New(), &models.ServiceReport{
		ComplaintNo: "COMP-1700000000000",
		Status:      models.StatusSubmitted,
	})
	if err == nil {
		t.Fatal("Resume accepted a submitted report")
	}
}

func TestResume_KeepsDraftIdentifierAndFields(t *testing.T) {
	store := newMemStore()
	m := newTestManager(store)
	techID := uuid.New()
	draft := &models.ServiceReport{
		ID:          uuid.New(),
		ComplaintNo: "DRAFT-" + techID.String() + "-1700000000000",
		Status:      models.StatusDraft,
		Zone:        "Central",
		Location:    "MG Road",
	}
	store.records[draft.ID] = *draft

	sess, err := m.Resume(techID, draft)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	acc := sess.Accumulator()
	if got := acc.GetString(FieldComplaintNo); got != draft.ComplaintNo {
		t.Errorf("complaint_no = %q, expected the draft identifier kept", got)
	}
	if got := acc.GetString(FieldZone); got != "Central" {
		t.Errorf("zone = %q, expected hydrated from the draft", got)
	}

	// Saving again updates the same record.
	report, err := sess.SaveDraft(context.Background())
	if err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if report.ComplaintNo != draft.ComplaintNo {
		t.Errorf("save re-minted %q, expected %q", report.ComplaintNo, draft.ComplaintNo)
	}
}

func TestClone_BehavesAsNewReport(t *testing.T) {
	m := newTestManager(newMemStore())
	source := &models.ServiceReport{
		ID:            uuid.New(),
		ComplaintNo:   "COMP-1111111111111",
		Status:        models.StatusSubmitted,
		Zone:          "Central",
		Location:      "MG Road",
		TechEngineer:  "A. Kumar",
		TechMobile:    "9876543210",
		TechSignature: "data:image/png;base64,sig",
	}

	sess := m.Clone(uuid.New(), source)
	acc := sess.Accumulator()

	no := acc.GetString(FieldComplaintNo)
	if no == source.ComplaintNo || !strings.HasPrefix(no, models.ComplaintPrefix) {
		t.Errorf("clone complaint_no = %q, expected a fresh identifier", no)
	}
	if got := acc.GetString(FieldTechSignature); got != "" {
		t.Errorf("clone carried the signature %q, expected stripped", got)
	}
	if got := acc.GetString(FieldZone); got != "Central" {
		t.Errorf("clone zone = %q, expected content fields copied", got)
	}

	// First save creates a new record rather than touching the source.
	store := newMemStore()
	m2 := newTestManager(store)
	sess2 := m2.Clone(uuid.New(), source)
	report, err := sess2.SaveDraft(context.Background())
	if err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if report.ID == source.ID {
		t.Error("clone save reused the source record's identity")
	}
	if store.creates != 1 {
		t.Errorf("store saw %d creates, expected 1", store.creates)
	}
}

func TestSession_RawPowerImageCap(t *testing.T) {
	m := newTestManager(newMemStore())
	sess := m.StartNew(uuid.New())

	for i := 0; i < models.MaxRawPowerSupplyImages; i++ {
		if !sess.CanAddRawPowerImage() {
			t.Fatalf("cap reported full at %d images", i)
		}
		if err := sess.AppendRawPowerImage(fmt.Sprintf("https://cdn.example.com/raw-%d.jpg", i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	if sess.CanAddRawPowerImage() {
		t.Error("CanAddRawPowerImage = true at the cap, the next upload must be refused before it starts")
	}
	if err := sess.AppendRawPowerImage("https://cdn.example.com/raw-11.jpg"); err == nil {
		t.Error("append past the cap succeeded")
	}
	if got := sess.RawPowerImageCount(); got != models.MaxRawPowerSupplyImages {
		t.Errorf("count = %d, expected %d", got, models.MaxRawPowerSupplyImages)
	}

	// Removing one frees a slot.
	if err := sess.RemoveRawPowerImage(3); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !sess.CanAddRawPowerImage() {
		t.Error("cap still reported full after a removal")
	}
	if err := sess.RemoveRawPowerImage(99); err == nil {
		t.Error("remove with an out-of-range index succeeded")
	}
}

func TestSession_DeviceLocation(t *testing.T) {
	m := newTestManager(newMemStore())
	sess := m.StartNew(uuid.New())

	if _, _, ok := sess.DeviceLocation(); ok {
		t.Error("DeviceLocation reported a fix before one was set")
	}
	sess.SetDeviceLocation(18.5209, 73.8567)
	lat, lon, ok := sess.DeviceLocation()
	if !ok || lat != 18.5209 || lon != 73.8567 {
		t.Errorf("DeviceLocation = (%v, %v, %v)", lat, lon, ok)
	}
}

func TestSession_ApplyLocationDetail(t *testing.T) {
	m := newTestManager(newMemStore())
	sess := m.StartNew(uuid.New())
	lat, lon := 18.5209, 73.8567

	sess.ApplyLocationDetail(&models.LocationDetail{
		RfpNo:     "RFP-001",
		Location:  "MG Road",
		Zone:      "Central",
		WardNo:    "W-12",
		Latitude:  &lat,
		Longitude: &lon,
	})

	acc := sess.Accumulator()
	if got := acc.GetString(FieldRfpNo); got != "RFP-001" {
		t.Errorf("rfp_no = %q", got)
	}
	if v, _ := acc.Get(FieldLocationLatitude); v != lat {
		t.Errorf("location_latitude = %v, expected the catalog value", v)
	}
	// The catalog never writes the device fix.
	if _, ok := acc.Get(FieldLatitude); ok {
		t.Error("catalog selection wrote the device latitude")
	}
}

func TestSession_FullWizardRun(t *testing.T) {
	store := newMemStore()
	m := newTestManager(store)
	sess := m.StartNew(uuid.New())
	schema := models.DefaultChecklistSchema()

	steps := []map[string]interface{}{
		{
			FieldComplaintType: "Camera Down",
			FieldSystemType:    "CCTV",
			FieldProjectPhase:  "Phase 2",
		},
		{
			FieldRfpNo:    "RFP-001",
			FieldLocation: "MG Road",
			FieldZone:     "Central",
		},
		{
			FieldNatureOfComplaint: "Camera feed lost after power fluctuation",
			FieldBeforeImageURL:    "https://cdn.example.com/before.jpg",
		},
		{
			FieldChecklistData:    models.NewChecklistData(schema, nil),
			FieldJbTemperature:    41.5,
			FieldEquipmentRemarks: upsAndBatteryValues(schema),
		},
		{
			FieldAfterImageURL:    "https://cdn.example.com/after.jpg",
			FieldFieldTeamRemarks: "Replaced the MCB and restored the feed",
		},
		{
			FieldTechEngineer:  "A. Kumar",
			FieldTechMobile:    "9876543210",
			FieldTechSignature: "data:image/png;base64,sig",
		},
	}

	for i, update := range steps {
		sess.UpdateFields(update)
		if i == 1 {
			sess.SetDeviceLocation(18.5209, 73.8567)
		}
		if errs := sess.Next(); errs != nil {
			t.Fatalf("step %d blocked: %v", i+1, errs)
		}
	}

	report, err := sess.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if report.Status != models.StatusSubmitted {
		t.Errorf("status = %q, expected submitted", report.Status)
	}
	if !strings.HasPrefix(report.ComplaintNo, models.ComplaintPrefix) {
		t.Errorf("complaint_no = %q", report.ComplaintNo)
	}
	if store.creates != 1 {
		t.Errorf("store saw %d creates, expected exactly one", store.creates)
	}

	state := sess.State()
	if state.ReportID == nil || *state.ReportID != report.ID {
		t.Error("session state does not carry the persisted report ID")
	}
	if len(state.CompletedSteps) != len(DefaultSteps()) {
		t.Errorf("completed steps = %v, expected all six", state.CompletedSteps)
	}
}

// upsAndBatteryValues fills the measured values the value-required
// sections demand.
func upsAndBatteryValues(schema models.ChecklistSchema) models.RemarkMap {
	remarks := models.RemarkMap{}
	for _, sec := range schema.Sections {
		if !sec.RequiresValue {
			continue
		}
		for _, item := range sec.Items {
			remarks[models.ValueKey(sec.Name, item)] = "230"
		}
	}
	return remarks
}

func TestManager_GetAndClose(t *testing.T) {
	m := newTestManager(newMemStore())
	sess := m.StartNew(uuid.New())

	if got, ok := m.Get(sess.ID); !ok || got != sess {
		t.Fatal("Get did not return the live session")
	}
	m.Close(sess.ID)
	if _, ok := m.Get(sess.ID); ok {
		t.Error("session still resolvable after Close")
	}
}

func TestManager_PrunesIdleSessions(t *testing.T) {
	m := newTestManager(newMemStore())
	current := time.Now()
	m.now = func() time.Time { return current }

	stale := m.StartNew(uuid.New())

	current = current.Add(13 * time.Hour) // past the 12h default
	fresh := m.StartNew(uuid.New())       // creation triggers the prune

	if _, ok := m.Get(stale.ID); ok {
		t.Error("idle session survived the prune")
	}
	if _, ok := m.Get(fresh.ID); !ok {
		t.Error("fresh session was pruned")
	}
}
