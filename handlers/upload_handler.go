package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"p9e.in/fieldops/config"
	"p9e.in/fieldops/pkg/workflow"
	"p9e.in/fieldops/utils"
)

const maxUploadBytes = 20 << 20

// imageFields maps the URL field segment to the accumulator field for
// single-image slots. Signatures are stored as-is, never watermarked.
var imageFields = map[string]struct {
	accField  string
	watermark bool
}{
	"before_image":     {workflow.FieldBeforeImageURL, true},
	"after_image":      {workflow.FieldAfterImageURL, true},
	"ups_input_image":  {workflow.FieldUpsInputImageURL, true},
	"ups_output_image": {workflow.FieldUpsOutputImageURL, true},
	"thermistor_image": {workflow.FieldThermistorImageURL, true},
	"tech_signature":   {workflow.FieldTechSignature, false},
}

type uploadResponse struct {
	URL         string `json:"url"`
	Watermarked bool   `json:"watermarked"`
	Warning     string `json:"warning,omitempty"`
}

// UploadWizardImage receives one image for a single-image field,
// watermarks it with the device GPS fix when one exists, uploads it and
// records the resulting URL on the accumulator. Without a fix the
// original bytes are uploaded and the response carries a warning.
func UploadWizardImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	field, ok := imageFields[mux.Vars(r)["field"]]
	if !ok {
		http.Error(w, "unknown image field", http.StatusBadRequest)
		return
	}

	data, filename, ok := readUpload(w, r)
	if !ok {
		return
	}

	resp := uploadResponse{}
	if field.watermark {
		if lat, lon, hasFix := sess.DeviceLocation(); hasFix {
			marked, err := utils.Watermark(data, lat, lon)
			if err != nil {
				http.Error(w, "failed to watermark image: "+err.Error(), http.StatusBadGateway)
				return
			}
			data = marked
			resp.Watermarked = true
		} else {
			resp.Warning = "no GPS fix acquired; image uploaded without watermark"
		}
	}

	objectName := fmt.Sprintf("reports/%s/%s-%d-%s", sess.ID, mux.Vars(r)["field"], time.Now().UnixMilli(), filename)
	url, err := Objects().Upload(r.Context(), objectName, data, "image/jpeg")
	if err != nil {
		http.Error(w, "upload failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	sess.UpdateFields(map[string]interface{}{field.accField: url})
	resp.URL = url

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// UploadRawPowerImage appends one image to the raw-power-supply
// sequence. The cardinality cap is checked before the upload call is
// made, so an over-limit request never reaches the object store.
func UploadRawPowerImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	if !sess.CanAddRawPowerImage() {
		http.Error(w, "maximum number of raw power supply images reached", http.StatusConflict)
		return
	}

	data, filename, ok := readUpload(w, r)
	if !ok {
		return
	}

	resp := uploadResponse{}
	if lat, lon, hasFix := sess.DeviceLocation(); hasFix {
		marked, err := utils.Watermark(data, lat, lon)
		if err != nil {
			http.Error(w, "failed to watermark image: "+err.Error(), http.StatusBadGateway)
			return
		}
		data = marked
		resp.Watermarked = true
	} else {
		resp.Warning = "no GPS fix acquired; image uploaded without watermark"
	}

	objectName := fmt.Sprintf("reports/%s/raw_power-%d-%s", sess.ID, time.Now().UnixMilli(), filename)
	url, err := Objects().Upload(r.Context(), objectName, data, "image/jpeg")
	if err != nil {
		http.Error(w, "upload failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	if err := sess.AppendRawPowerImage(url); err != nil {
		// cap was reached while the upload was in flight; the stored
		// object is orphaned and cleaned up best-effort elsewhere
		config.Logger().WithField("url", url).Warn("raw power image discarded after upload")
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	resp.URL = url

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// RemoveRawPowerImage drops one image from the sequence by index.
func RemoveRawPowerImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		http.Error(w, "invalid image index", http.StatusBadRequest)
		return
	}
	if err := sess.RemoveRawPowerImage(index); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess.State())
}

func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field: "+err.Error(), http.StatusBadRequest)
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		http.Error(w, "failed to read file: "+err.Error(), http.StatusInternalServerError)
		return nil, "", false
	}

	return data, header.Filename, true
}
