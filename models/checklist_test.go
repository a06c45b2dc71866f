package models

import (
	"strings"
	"testing"
)

func TestDefaultChecklistSchema_Shape(t *testing.T) {
	schema := DefaultChecklistSchema()

	if len(schema.Sections) != 6 {
		t.Fatalf("schema has %d sections, expected 6", len(schema.Sections))
	}
	if schema.ItemCount() != 33 {
		t.Errorf("schema has %d items, expected 33", schema.ItemCount())
	}

	valueRequired := map[string]bool{"UPS System": true, "Battery": true}
	for _, sec := range schema.Sections {
		if sec.RequiresValue != valueRequired[sec.Name] {
			t.Errorf("section %q RequiresValue = %v", sec.Name, sec.RequiresValue)
		}
	}
}

func TestNewChecklistData_DefaultFill(t *testing.T) {
	schema := DefaultChecklistSchema()
	data := NewChecklistData(schema, nil)

	total := 0
	for _, sec := range schema.Sections {
		items, ok := data[sec.Name]
		if !ok {
			t.Fatalf("section %q missing from default fill", sec.Name)
		}
		for _, item := range sec.Items {
			if items[item] != ChecklistOK {
				t.Errorf("%s / %s = %q, expected default ok", sec.Name, item, items[item])
			}
			total++
		}
	}
	if total != 33 {
		t.Errorf("default fill covered %d items, expected 33", total)
	}
}

func TestNewChecklistData_CarriesPriorStatuses(t *testing.T) {
	schema := DefaultChecklistSchema()
	prior := ChecklistData{
		"Battery":         {"Terminal Condition": ChecklistIssue},
		"Retired Section": {"Old Item": ChecklistIssue}, // no longer in the schema
	}
	data := NewChecklistData(schema, prior)

	if got := data["Battery"]["Terminal Condition"]; got != ChecklistIssue {
		t.Errorf("prior status = %q, expected carried over", got)
	}
	if _, ok := data["Retired Section"]; ok {
		t.Error("item absent from the schema survived the rebuild")
	}
	if got := data["Battery"]["Electrolyte Level"]; got != ChecklistOK {
		t.Errorf("untouched item = %q, expected defaulted ok", got)
	}
}

func TestSetChecklistStatus(t *testing.T) {
	schema := DefaultChecklistSchema()

	t.Run("rejects bad input", func(t *testing.T) {
		data := NewChecklistData(schema, nil)
		if err := SetChecklistStatus(data, nil, "Battery", "Terminal Condition", "broken"); err == nil {
			t.Error("invalid status accepted")
		}
		if err := SetChecklistStatus(data, nil, "Nope", "Terminal Condition", ChecklistOK); err == nil {
			t.Error("unknown section accepted")
		}
		if err := SetChecklistStatus(data, nil, "Battery", "Nope", ChecklistOK); err == nil {
			t.Error("unknown item accepted")
		}
	})

	t.Run("prunes the remark when leaving issue", func(t *testing.T) {
		data := NewChecklistData(schema, nil)
		remarks := RemarkMap{}

		if err := SetChecklistStatus(data, remarks, "Battery", "Terminal Condition", ChecklistIssue); err != nil {
			t.Fatal(err)
		}
		remarks[RemarkKey("Battery", "Terminal Condition")] = "corroded terminals"
		remarks[ValueKey("Battery", "Terminal Condition")] = "11.8"

		if err := SetChecklistStatus(data, remarks, "Battery", "Terminal Condition", ChecklistOK); err != nil {
			t.Fatal(err)
		}
		if _, ok := remarks[RemarkKey("Battery", "Terminal Condition")]; ok {
			t.Error("issue remark survived the status change away from issue")
		}
		if _, ok := remarks[ValueKey("Battery", "Terminal Condition")]; !ok {
			t.Error("measured value pruned, it is independent of status")
		}
	})
}

func TestValidateChecklist(t *testing.T) {
	schema := DefaultChecklistSchema()

	fullValues := func() RemarkMap {
		remarks := RemarkMap{}
		for _, sec := range schema.Sections {
			if !sec.RequiresValue {
				continue
			}
			for _, item := range sec.Items {
				remarks[ValueKey(sec.Name, item)] = "230"
			}
		}
		return remarks
	}

	t.Run("clean checklist passes", func(t *testing.T) {
		data := NewChecklistData(schema, nil)
		if problems := ValidateChecklist(schema, data, fullValues()); len(problems) != 0 {
			t.Errorf("unexpected problems: %v", problems)
		}
	})

	t.Run("issue without remark is flagged", func(t *testing.T) {
		data := NewChecklistData(schema, nil)
		remarks := fullValues()
		data["Junction Box"]["Water Ingress"] = ChecklistIssue

		problems := ValidateChecklist(schema, data, remarks)
		if len(problems) != 1 || !strings.Contains(problems[0], "Water Ingress") {
			t.Fatalf("problems = %v, expected one naming the item", problems)
		}

		remarks[RemarkKey("Junction Box", "Water Ingress")] = "seal perished, moisture inside"
		if problems := ValidateChecklist(schema, data, remarks); len(problems) != 0 {
			t.Errorf("problems after remark added: %v", problems)
		}
	})

	t.Run("value-required section without values is flagged", func(t *testing.T) {
		data := NewChecklistData(schema, nil)
		problems := ValidateChecklist(schema, data, RemarkMap{})
		// UPS System has 6 items, Battery has 5, each missing a value.
		if len(problems) != 11 {
			t.Errorf("got %d problems, expected 11: %v", len(problems), problems)
		}
	})

	t.Run("na item still needs its measured value", func(t *testing.T) {
		data := NewChecklistData(schema, nil)
		remarks := fullValues()
		data["UPS System"]["Fan Condition"] = ChecklistNA
		delete(remarks, ValueKey("UPS System", "Fan Condition"))

		problems := ValidateChecklist(schema, data, remarks)
		if len(problems) != 1 || !strings.Contains(problems[0], "Fan Condition") {
			t.Errorf("problems = %v", problems)
		}
	})
}

func TestLoadChecklistSchema(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		raw := []byte(`{"version":"2.0","sections":[{"name":"Solar Panel","items":["Panel Surface","Inverter Status"],"requires_value":true}]}`)
		schema, err := LoadChecklistSchema(raw)
		if err != nil {
			t.Fatal(err)
		}
		if schema.Version != "2.0" || schema.ItemCount() != 2 {
			t.Errorf("schema = %+v", schema)
		}
		sec, ok := schema.Section("Solar Panel")
		if !ok || !sec.RequiresValue {
			t.Errorf("section lookup = (%+v, %v)", sec, ok)
		}
	})

	tests := []struct {
		name string
		raw  string
	}{
		{"malformed json", `{"sections":`},
		{"no sections", `{"version":"1.0","sections":[]}`},
		{"section without items", `{"sections":[{"name":"Empty","items":[]}]}`},
		{"unnamed section", `{"sections":[{"name":"","items":["x"]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadChecklistSchema([]byte(tt.raw)); err == nil {
				t.Error("invalid schema accepted")
			}
		})
	}
}
