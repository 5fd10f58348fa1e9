package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestMatterStatus_CanAdvanceTo(t *testing.T) {
	tests := []struct {
		from, to MatterStatus
		want     bool
	}{
		{MatterStatusCreated, MatterStatusParsed, true},
		{MatterStatusParsed, MatterStatusDrafted, true},
		{MatterStatusCreated, MatterStatusDrafted, true},
		{MatterStatusDrafted, MatterStatusDrafted, true},
		{MatterStatusDrafted, MatterStatusParsed, false},
		{MatterStatusParsed, MatterStatusCreated, false},
		{MatterStatusCreated, "archived", false},
	}
	for _, tt := range tests {
		if got := tt.from.CanAdvanceTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestMatterStatus_Predecessors(t *testing.T) {
	tests := []struct {
		status MatterStatus
		want   []MatterStatus
	}{
		{MatterStatusCreated, []MatterStatus{MatterStatusCreated}},
		{MatterStatusParsed, []MatterStatus{MatterStatusCreated, MatterStatusParsed}},
		{MatterStatusDrafted, []MatterStatus{MatterStatusCreated, MatterStatusParsed, MatterStatusDrafted}},
		{"archived", nil},
	}
	for _, tt := range tests {
		if got := tt.status.Predecessors(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Predecessors(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestJurisdiction_IsValid(t *testing.T) {
	for _, j := range Jurisdictions {
		if !j.IsValid() {
			t.Errorf("%s should be valid", j)
		}
	}
	if Jurisdiction("JPO").IsValid() || Jurisdiction("uspto").IsValid() {
		t.Error("unknown or lowercase jurisdictions should be invalid")
	}
}

func TestExtractionRecord_NormalizeSerializesArrays(t *testing.T) {
	rec := ExtractionRecord{Rejections: []Rejection{{Code: "103"}}}
	rec.Normalize()

	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"metadata":{"application_number":"","examiner":"","art_unit":"","mail_date":""},` +
		`"rejections":[{"code":"103","basis":"","claims":[],"summary":""}],` +
		`"formalities":[],"claims":[],"prior_art":[]}`
	if string(b) != want {
		t.Errorf("got  %s\nwant %s", b, want)
	}
}

func TestDraftContent_Normalize(t *testing.T) {
	var c DraftContent
	c.Normalize()
	b, _ := json.Marshal(c)
	if string(b) != `{"outline":"","arguments":[],"amendments":[],"citations":[]}` {
		t.Errorf("unexpected %s", b)
	}
}
