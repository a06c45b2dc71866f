package workflow

import (
	"fmt"

	"p9e.in/fieldops/models"
)

// ReportFromFields converts accumulated wizard fields into the typed
// report record. Unknown keys are a hard error at this boundary rather
// than being passed through silently.
func ReportFromFields(fields map[string]interface{}) (*models.ServiceReport, error) {
	report := &models.ServiceReport{}

	for key, value := range fields {
		if value == nil {
			continue
		}
		switch key {
		case FieldComplaintNo:
			report.ComplaintNo = asString(value)
		case FieldComplaintType:
			report.ComplaintType = asString(value)
		case FieldSystemType:
			report.SystemType = asString(value)
		case FieldProjectPhase:
			report.ProjectPhase = asString(value)
		case FieldZone:
			report.Zone = asString(value)
		case FieldDate:
			report.Date = asString(value)
		case FieldRfpNo:
			report.RfpNo = asString(value)
		case FieldLocation:
			report.Location = asString(value)
		case FieldWardNo:
			report.WardNo = asString(value)
		case FieldPsLimits:
			report.PsLimits = asString(value)
		case FieldPoleID:
			report.PoleID = asString(value)
		case FieldJbSlNo:
			report.JbSlNo = asString(value)
		case FieldLocationLatitude:
			report.LocationLatitude = asFloatPtr(value)
		case FieldLocationLongitude:
			report.LocationLongitude = asFloatPtr(value)
		case FieldLatitude:
			report.Latitude = asFloatPtr(value)
		case FieldLongitude:
			report.Longitude = asFloatPtr(value)
		case FieldBeforeImageURL:
			report.BeforeImageURL = asString(value)
		case FieldAfterImageURL:
			report.AfterImageURL = asString(value)
		case FieldUpsInputImageURL:
			report.UpsInputImageURL = asString(value)
		case FieldUpsOutputImageURL:
			report.UpsOutputImageURL = asString(value)
		case FieldThermistorImageURL:
			report.ThermistorImageURL = asString(value)
		case FieldRawPowerSupplyImages:
			report.RawPowerSupplyImages = asStringList(value)
		case FieldChecklistData:
			data, err := asChecklistData(value)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", key, err)
			}
			report.ChecklistData = data
		case FieldEquipmentRemarks:
			remarks, err := asRemarkMap(value)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", key, err)
			}
			report.EquipmentRemarks = remarks
		case FieldJbTemperature:
			report.JbTemperature = asFloatPtr(value)
		case FieldNatureOfComplaint:
			report.NatureOfComplaint = asString(value)
		case FieldFieldTeamRemarks:
			report.FieldTeamRemarks = asString(value)
		case FieldCustomerFeedback:
			report.CustomerFeedback = asString(value)
		case FieldTechEngineer:
			report.TechEngineer = asString(value)
		case FieldTechMobile:
			report.TechMobile = asString(value)
		case FieldTechSignature:
			report.TechSignature = asString(value)
		default:
			return nil, fmt.Errorf("unknown report field %q", key)
		}
	}

	return report, nil
}

// FieldsFromReport flattens a persisted report back into wizard fields,
// used when resuming a draft or cloning an existing report.
func FieldsFromReport(report *models.ServiceReport) map[string]interface{} {
	fields := map[string]interface{}{}

	setIfNotEmpty := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}

	setIfNotEmpty(FieldComplaintNo, report.ComplaintNo)
	setIfNotEmpty(FieldComplaintType, report.ComplaintType)
	setIfNotEmpty(FieldSystemType, report.SystemType)
	setIfNotEmpty(FieldProjectPhase, report.ProjectPhase)
	setIfNotEmpty(FieldZone, report.Zone)
	setIfNotEmpty(FieldDate, report.Date)
	setIfNotEmpty(FieldRfpNo, report.RfpNo)
	setIfNotEmpty(FieldLocation, report.Location)
	setIfNotEmpty(FieldWardNo, report.WardNo)
	setIfNotEmpty(FieldPsLimits, report.PsLimits)
	setIfNotEmpty(FieldPoleID, report.PoleID)
	setIfNotEmpty(FieldJbSlNo, report.JbSlNo)
	setIfNotEmpty(FieldBeforeImageURL, report.BeforeImageURL)
	setIfNotEmpty(FieldAfterImageURL, report.AfterImageURL)
	setIfNotEmpty(FieldUpsInputImageURL, report.UpsInputImageURL)
	setIfNotEmpty(FieldUpsOutputImageURL, report.UpsOutputImageURL)
	setIfNotEmpty(FieldThermistorImageURL, report.ThermistorImageURL)
	setIfNotEmpty(FieldNatureOfComplaint, report.NatureOfComplaint)
	setIfNotEmpty(FieldFieldTeamRemarks, report.FieldTeamRemarks)
	setIfNotEmpty(FieldCustomerFeedback, report.CustomerFeedback)
	setIfNotEmpty(FieldTechEngineer, report.TechEngineer)
	setIfNotEmpty(FieldTechMobile, report.TechMobile)
	setIfNotEmpty(FieldTechSignature, report.TechSignature)

	if report.LocationLatitude != nil {
		fields[FieldLocationLatitude] = *report.LocationLatitude
	}
	if report.LocationLongitude != nil {
		fields[FieldLocationLongitude] = *report.LocationLongitude
	}
	if report.Latitude != nil {
		fields[FieldLatitude] = *report.Latitude
	}
	if report.Longitude != nil {
		fields[FieldLongitude] = *report.Longitude
	}
	if report.JbTemperature != nil {
		fields[FieldJbTemperature] = *report.JbTemperature
	}
	if len(report.RawPowerSupplyImages) > 0 {
		fields[FieldRawPowerSupplyImages] = []string(report.RawPowerSupplyImages)
	}
	if len(report.ChecklistData) > 0 {
		fields[FieldChecklistData] = report.ChecklistData
	}
	if len(report.EquipmentRemarks) > 0 {
		fields[FieldEquipmentRemarks] = report.EquipmentRemarks
	}

	return fields
}

func asString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func asFloatPtr(value interface{}) *float64 {
	switch v := value.(type) {
	case float64:
		return &v
	case float32:
		f := float64(v)
		return &f
	case int:
		f := float64(v)
		return &f
	case int64:
		f := float64(v)
		return &f
	case *float64:
		return v
	default:
		return nil
	}
}

func asStringList(value interface{}) models.StringList {
	switch v := value.(type) {
	case models.StringList:
		return v
	case []string:
		return models.StringList(v)
	case []interface{}:
		out := make(models.StringList, 0, len(v))
		for _, item := range v {
			out = append(out, asString(item))
		}
		return out
	default:
		return nil
	}
}

func asChecklistData(value interface{}) (models.ChecklistData, error) {
	switch v := value.(type) {
	case models.ChecklistData:
		return v, nil
	case map[string]map[string]string:
		return models.ChecklistData(v), nil
	case map[string]interface{}:
		// decoded JSON bodies arrive as nested interface maps
		data := make(models.ChecklistData, len(v))
		for section, rawItems := range v {
			items, ok := rawItems.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("section %q is not an object", section)
			}
			converted := make(map[string]string, len(items))
			for item, status := range items {
				converted[item] = asString(status)
			}
			data[section] = converted
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported checklist payload type %T", value)
	}
}

func asRemarkMap(value interface{}) (models.RemarkMap, error) {
	switch v := value.(type) {
	case models.RemarkMap:
		return v, nil
	case map[string]string:
		return models.RemarkMap(v), nil
	case map[string]interface{}:
		remarks := make(models.RemarkMap, len(v))
		for key, val := range v {
			remarks[key] = asString(val)
		}
		return remarks, nil
	default:
		return nil, fmt.Errorf("unsupported remarks payload type %T", value)
	}
}
