package cytometry

import (
	"fmt"
	"strings"
)

// Any is the stored value of an unconstrained cohort criterion.
const Any = "Any"

type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
	SexAny    Sex = Any
)

type Response string

const (
	ResponseYes Response = "yes"
	ResponseNo  Response = "no"
)

type Treatment string

const (
	TreatmentMiraclib  Treatment = "miraclib"
	TreatmentPhauximab Treatment = "phauximab"
	TreatmentAny       Treatment = Any
)

// ParseSex accepts M or F. Cohort criteria use ParseSexCriterion.
func ParseSex(raw string) (Sex, error) {
	switch Sex(strings.TrimSpace(raw)) {
	case SexMale:
		return SexMale, nil
	case SexFemale:
		return SexFemale, nil
	default:
		return "", fmt.Errorf("sex must be M or F, got %q", raw)
	}
}

// ParseResponse maps "" to nil (absent response).
func ParseResponse(raw string) (*Response, error) {
	switch r := Response(strings.TrimSpace(raw)); r {
	case "":
		return nil, nil
	case ResponseYes, ResponseNo:
		return &r, nil
	default:
		return nil, fmt.Errorf("response must be yes, no or empty, got %q", raw)
	}
}

func ParseSexCriterion(raw string) (Sex, error) {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, Any) {
		return SexAny, nil
	}
	return ParseSex(v)
}

func ParseTreatmentCriterion(raw string) (Treatment, error) {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, Any) {
		return TreatmentAny, nil
	}
	switch t := Treatment(v); t {
	case TreatmentMiraclib, TreatmentPhauximab:
		return t, nil
	default:
		return "", fmt.Errorf("treatment must be miraclib, phauximab or Any, got %q", raw)
	}
}

func ParseConditionCriterion(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, Any) {
		return Any
	}
	return v
}
