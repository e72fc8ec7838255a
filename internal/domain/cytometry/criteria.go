package cytometry

// Predicate is a single equality constraint on a column.
type Predicate struct {
	Column string
	Value  any
}

// CohortCriteria is a conjunction of optional subject predicates. Any (or
// empty) leaves a field unconstrained.
type CohortCriteria struct {
	Condition string
	Sex       Sex
	Treatment Treatment
}

func (c CohortCriteria) Predicates() []Predicate {
	var out []Predicate
	if constrained(c.Condition) {
		out = append(out, Predicate{Column: "condition", Value: c.Condition})
	}
	if constrained(string(c.Sex)) {
		out = append(out, Predicate{Column: "sex", Value: string(c.Sex)})
	}
	if constrained(string(c.Treatment)) {
		out = append(out, Predicate{Column: "treatment", Value: string(c.Treatment)})
	}
	return out
}

// Matches evaluates the criteria against a subject in memory.
func (c CohortCriteria) Matches(s *Subject) bool {
	if s == nil {
		return false
	}
	if constrained(c.Condition) && s.Condition != c.Condition {
		return false
	}
	if constrained(string(c.Sex)) && s.Sex != c.Sex {
		return false
	}
	if constrained(string(c.Treatment)) && s.Treatment != string(c.Treatment) {
		return false
	}
	return true
}

// DatasetCriteria are the sample-level predicates plus the cohort the
// samples' subjects must belong to. Nil filters are unconstrained.
type DatasetCriteria struct {
	CohortID               uint
	SampleType             *string
	TimeFromTreatmentStart *int
}

func (d DatasetCriteria) SamplePredicates() []Predicate {
	var out []Predicate
	if d.SampleType != nil && *d.SampleType != "" {
		out = append(out, Predicate{Column: "type", Value: *d.SampleType})
	}
	if d.TimeFromTreatmentStart != nil {
		out = append(out, Predicate{Column: "time_from_treatment_start", Value: *d.TimeFromTreatmentStart})
	}
	return out
}

// Matches checks the sample-level predicates only. Cohort membership is the
// caller's concern.
func (d DatasetCriteria) Matches(m *Sample) bool {
	if m == nil {
		return false
	}
	if d.SampleType != nil && *d.SampleType != "" && m.Type != *d.SampleType {
		return false
	}
	if d.TimeFromTreatmentStart != nil && m.TimeFromTreatmentStart != *d.TimeFromTreatmentStart {
		return false
	}
	return true
}

// TimeFilter converts a submitted time value into a stored filter. In legacy
// mode a zero means "unfiltered", reproducing the older falsy-zero behavior.
func TimeFilter(v *int, legacyZero bool) *int {
	if v == nil {
		return nil
	}
	if legacyZero && *v == 0 {
		return nil
	}
	out := *v
	return &out
}

func constrained(v string) bool {
	return v != "" && v != Any
}
