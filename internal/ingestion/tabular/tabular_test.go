package tabular

import (
	"errors"
	"strings"
	"testing"

	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
)

const header = "project,subject,condition,age,sex,treatment,response,sample,sample_type,time_from_treatment_start,b_cell,cd8_t_cell,cd4_t_cell,nk_cell,monocyte\n"

func TestParseRows(t *testing.T) {
	src := header +
		"prj1,sbj1,melanoma,70,M,miraclib,yes,s1,PBMC,0,36000,24000,42000,13000,7000\n" +
		"prj1,sbj2,carcinoma,55,F,phauximab,,s2,WB,7,1,2,3,4,5\n"
	rows, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: want=2 got=%d", len(rows))
	}
	r := rows[0]
	if r.Line != 2 || r.Project != "prj1" || r.Subject != "sbj1" || r.Age != 70 || r.Sex != cytometry.SexMale {
		t.Fatalf("row 0: got=%+v", r)
	}
	if r.Response == nil || *r.Response != cytometry.ResponseYes {
		t.Fatalf("row 0 response: got=%v", r.Response)
	}
	if r.BCell != 36000 || r.Monocyte != 7000 {
		t.Fatalf("row 0 counts: got=%+v", r)
	}
	if rows[1].Response != nil {
		t.Fatalf("row 1 response should be absent: got=%v", *rows[1].Response)
	}
	if rows[1].TimeFromTreatmentStart != 7 || rows[1].SampleType != "WB" {
		t.Fatalf("row 1 sample fields: got=%+v", rows[1])
	}
}

func TestParseColumnOrderIndependent(t *testing.T) {
	src := "sample,subject,project,condition,age,sex,treatment,response,sample_type,time_from_treatment_start,monocyte,nk_cell,cd4_t_cell,cd8_t_cell,b_cell\n" +
		"s1,sbj1,prj1,melanoma,70,F,miraclib,no,PBMC,14,5,4,3,2,1\n"
	rows, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rows[0].BCell != 1 || rows[0].Monocyte != 5 || rows[0].Sample != "s1" {
		t.Fatalf("row: got=%+v", rows[0])
	}
}

func TestParseMalformedNumber(t *testing.T) {
	src := header +
		"prj1,sbj1,melanoma,70,M,miraclib,yes,s1,PBMC,0,1,1,1,1,1\n" +
		"prj1,sbj2,melanoma,70,M,miraclib,yes,s2,PBMC,0,1,abc,1,1,1\n"
	_, err := Parse(strings.NewReader(src))
	if !errors.Is(err, cytometry.ErrIngest) {
		t.Fatalf("want ingest error got=%v", err)
	}
	var ie *cytometry.IngestError
	if !errors.As(err, &ie) {
		t.Fatalf("want *IngestError got=%T", err)
	}
	if ie.Row != 3 || ie.Column != ColCD8TCell || ie.Value != "abc" {
		t.Fatalf("ingest error: got=%+v", ie)
	}
}

func TestParseRejectsOutOfDomain(t *testing.T) {
	cases := map[string]string{
		"sex":            "prj1,sbj1,melanoma,70,X,miraclib,yes,s1,PBMC,0,1,1,1,1,1\n",
		"response":       "prj1,sbj1,melanoma,70,M,miraclib,maybe,s1,PBMC,0,1,1,1,1,1\n",
		"negative count": "prj1,sbj1,melanoma,70,M,miraclib,yes,s1,PBMC,0,-1,1,1,1,1\n",
		"missing sample": "prj1,sbj1,melanoma,70,M,miraclib,yes,,PBMC,0,1,1,1,1,1\n",
	}
	for name, line := range cases {
		if _, err := Parse(strings.NewReader(header + line)); !errors.Is(err, cytometry.ErrIngest) {
			t.Fatalf("%s: want ingest error got=%v", name, err)
		}
	}
}

func TestParseHeaderProblems(t *testing.T) {
	if _, err := Parse(strings.NewReader("")); !errors.Is(err, cytometry.ErrIngest) {
		t.Fatalf("empty: want ingest error got=%v", err)
	}
	_, err := Parse(strings.NewReader("project,subject\nprj1,sbj1\n"))
	if !errors.Is(err, cytometry.ErrIngest) || !strings.Contains(err.Error(), "missing columns") {
		t.Fatalf("missing columns: got=%v", err)
	}
}
