package cytometry

import "testing"

func TestCohortCriteriaAnyIsUnconstrained(t *testing.T) {
	c := CohortCriteria{Condition: Any, Sex: SexAny, Treatment: TreatmentAny}
	if preds := c.Predicates(); len(preds) != 0 {
		t.Fatalf("predicates: want none got=%v", preds)
	}
	if preds := (CohortCriteria{}).Predicates(); len(preds) != 0 {
		t.Fatalf("empty criteria predicates: want none got=%v", preds)
	}
	if !c.Matches(&Subject{Sex: SexFemale, Condition: "melanoma"}) {
		t.Fatalf("all-Any criteria should match every subject")
	}
}

func TestCohortCriteriaConjunction(t *testing.T) {
	c := CohortCriteria{Condition: "melanoma", Sex: SexMale, Treatment: TreatmentAny}
	preds := c.Predicates()
	if len(preds) != 2 {
		t.Fatalf("predicates: want=2 got=%d", len(preds))
	}
	if preds[0].Column != "condition" || preds[1].Column != "sex" {
		t.Fatalf("columns: got=%v", preds)
	}
	if !c.Matches(&Subject{Condition: "melanoma", Sex: SexMale, Treatment: "phauximab"}) {
		t.Fatalf("expected match")
	}
	if c.Matches(&Subject{Condition: "melanoma", Sex: SexFemale}) {
		t.Fatalf("sex mismatch should not match")
	}
	if c.Matches(&Subject{Condition: "carcinoma", Sex: SexMale}) {
		t.Fatalf("condition mismatch should not match")
	}
}

func TestDatasetCriteriaTimeFilter(t *testing.T) {
	zero := 0
	seven := 7
	pbmc := "PBMC"

	d := DatasetCriteria{TimeFromTreatmentStart: &zero}
	if !d.Matches(&Sample{TimeFromTreatmentStart: 0}) {
		t.Fatalf("time 0 filter should match time 0")
	}
	if d.Matches(&Sample{TimeFromTreatmentStart: 7}) {
		t.Fatalf("time 0 filter should not match time 7")
	}

	d = DatasetCriteria{SampleType: &pbmc, TimeFromTreatmentStart: &seven}
	if len(d.SamplePredicates()) != 2 {
		t.Fatalf("predicates: want=2 got=%v", d.SamplePredicates())
	}
	if d.Matches(&Sample{Type: "WB", TimeFromTreatmentStart: 7}) {
		t.Fatalf("type mismatch should not match")
	}

	if preds := (DatasetCriteria{}).SamplePredicates(); len(preds) != 0 {
		t.Fatalf("unfiltered predicates: got=%v", preds)
	}
}

func TestTimeFilterLegacyZero(t *testing.T) {
	zero := 0
	three := 3
	if got := TimeFilter(&zero, false); got == nil || *got != 0 {
		t.Fatalf("explicit zero: got=%v", got)
	}
	if got := TimeFilter(&zero, true); got != nil {
		t.Fatalf("legacy zero: want nil got=%v", *got)
	}
	if got := TimeFilter(&three, true); got == nil || *got != 3 {
		t.Fatalf("legacy three: got=%v", got)
	}
	if got := TimeFilter(nil, false); got != nil {
		t.Fatalf("nil: got=%v", *got)
	}
}
