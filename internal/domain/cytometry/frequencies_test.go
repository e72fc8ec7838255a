package cytometry

import (
	"math"
	"testing"
)

func TestPopulationFrequenciesZeroTotal(t *testing.T) {
	got := PopulationFrequencies(&Sample{})
	if len(got) != len(CellTypes) {
		t.Fatalf("len: want=%d got=%d", len(CellTypes), len(got))
	}
	for _, ct := range CellTypes {
		if got[ct] != 0 {
			t.Fatalf("%s: want=0 got=%v", ct, got[ct])
		}
	}
}

func TestPopulationFrequenciesEqualCounts(t *testing.T) {
	s := &Sample{BCell: 10, CD8TCell: 10, CD4TCell: 10, NKCell: 10, Monocyte: 10}
	got := PopulationFrequencies(s)
	for _, ct := range CellTypes {
		if got[ct] != 20 {
			t.Fatalf("%s: want=20 got=%v", ct, got[ct])
		}
	}
}

func TestPopulationFrequenciesSumToHundred(t *testing.T) {
	s := &Sample{BCell: 36000, CD8TCell: 24000, CD4TCell: 42000, NKCell: 13000, Monocyte: 7000}
	got := PopulationFrequencies(s)
	sum := 0.0
	for _, v := range got {
		sum += v
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Fatalf("sum: want=100 got=%v", sum)
	}
	want := 36000.0 / 122000.0 * 100
	if math.Abs(got[CellB]-want) > 1e-9 {
		t.Fatalf("b cell: want=%v got=%v", want, got[CellB])
	}
}

func TestFrequencyReportExcludesAbsentResponse(t *testing.T) {
	yes := ResponseYes
	empty := Response("")
	subjects := map[uint]*Subject{
		1: {ID: 1, Response: &yes},
		2: {ID: 2},
		3: {ID: 3, Response: &empty},
	}
	samples := []*Sample{
		{ID: 10, SubjectID: 1, BCell: 1},
		{ID: 11, SubjectID: 2, BCell: 1},
		{ID: 12, SubjectID: 3, BCell: 1},
		{ID: 13, SubjectID: 99, BCell: 1},
	}
	rows := FrequencyReport(samples, subjects)
	if len(rows) != 1 {
		t.Fatalf("rows: want=1 got=%d", len(rows))
	}
	if rows[0].SampleID != 10 || rows[0].Response != ResponseYes {
		t.Fatalf("row: got=%+v", rows[0])
	}
	if rows[0].Frequencies[CellB] != 100 {
		t.Fatalf("b cell: want=100 got=%v", rows[0].Frequencies[CellB])
	}
}
