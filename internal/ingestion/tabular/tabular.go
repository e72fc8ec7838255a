// Package tabular parses the cell-count CSV format into validated rows.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
)

const op = "tabular.Parse"

// Column names of the source header, in canonical order.
const (
	ColProject   = "project"
	ColSubject   = "subject"
	ColCondition = "condition"
	ColAge       = "age"
	ColSex       = "sex"
	ColTreatment = "treatment"
	ColResponse  = "response"
	ColSample    = "sample"
	ColType      = "sample_type"
	ColTime      = "time_from_treatment_start"
	ColBCell     = "b_cell"
	ColCD8TCell  = "cd8_t_cell"
	ColCD4TCell  = "cd4_t_cell"
	ColNKCell    = "nk_cell"
	ColMonocyte  = "monocyte"
)

var Columns = []string{
	ColProject, ColSubject, ColCondition, ColAge, ColSex, ColTreatment, ColResponse,
	ColSample, ColType, ColTime, ColBCell, ColCD8TCell, ColCD4TCell, ColNKCell, ColMonocyte,
}

// Row is one fully validated source line.
type Row struct {
	Line int

	Project string

	Subject   string
	Condition string
	Age       int
	Sex       cytometry.Sex
	Treatment string
	Response  *cytometry.Response

	Sample                 string
	SampleType             string
	TimeFromTreatmentStart int
	BCell                  int
	CD8TCell               int
	CD4TCell               int
	NKCell                 int
	Monocyte               int
}

// SubjectRecord returns the subject attributes carried by the row.
func (r Row) SubjectRecord() *cytometry.Subject {
	return &cytometry.Subject{
		Name:      r.Subject,
		Condition: r.Condition,
		Age:       r.Age,
		Sex:       r.Sex,
		Treatment: r.Treatment,
		Response:  r.Response,
	}
}

// Parse reads every row before returning so that a malformed value anywhere
// in the source fails the whole import.
func Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, cytometry.Ingest(op, 0, "", "", errors.New("source is empty"))
	}
	if err != nil {
		return nil, cytometry.Ingest(op, 1, "", "", err)
	}
	idx, err := indexHeader(header)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, cytometry.Ingest(op, pe.Line, "", "", pe.Err)
			}
			return nil, cytometry.Ingest(op, 0, "", "", err)
		}
		line, _ := cr.FieldPos(0)
		row, err := parseRecord(line, rec, idx)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func indexHeader(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[name]; dup && name != "" {
			return nil, cytometry.Ingest(op, 1, name, "", errors.New("duplicate column"))
		}
		idx[name] = i
	}
	var missing []string
	for _, col := range Columns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, cytometry.Ingest(op, 1, "", "", fmt.Errorf("missing columns: %s", strings.Join(missing, ", ")))
	}
	return idx, nil
}

type recordReader struct {
	line int
	rec  []string
	idx  map[string]int
	err  error
}

func (rr *recordReader) str(col string) string {
	return strings.TrimSpace(rr.rec[rr.idx[col]])
}

func (rr *recordReader) required(col string) string {
	v := rr.str(col)
	if v == "" && rr.err == nil {
		rr.err = cytometry.Ingest(op, rr.line, col, v, errors.New("value is required"))
	}
	return v
}

func (rr *recordReader) count(col string) int {
	raw := rr.str(col)
	n, err := strconv.Atoi(raw)
	if err != nil {
		if rr.err == nil {
			rr.err = cytometry.Ingest(op, rr.line, col, raw, errors.New("not an integer"))
		}
		return 0
	}
	if n < 0 && rr.err == nil {
		rr.err = cytometry.Ingest(op, rr.line, col, raw, errors.New("must be non-negative"))
	}
	return n
}

func (rr *recordReader) integer(col string) int {
	raw := rr.str(col)
	n, err := strconv.Atoi(raw)
	if err != nil && rr.err == nil {
		rr.err = cytometry.Ingest(op, rr.line, col, raw, errors.New("not an integer"))
	}
	return n
}

func parseRecord(line int, rec []string, idx map[string]int) (Row, error) {
	rr := &recordReader{line: line, rec: rec, idx: idx}
	row := Row{
		Line:                   line,
		Project:                rr.required(ColProject),
		Subject:                rr.required(ColSubject),
		Condition:              rr.str(ColCondition),
		Age:                    rr.count(ColAge),
		Treatment:              rr.str(ColTreatment),
		Sample:                 rr.required(ColSample),
		SampleType:             rr.str(ColType),
		TimeFromTreatmentStart: rr.integer(ColTime),
		BCell:                  rr.count(ColBCell),
		CD8TCell:               rr.count(ColCD8TCell),
		CD4TCell:               rr.count(ColCD4TCell),
		NKCell:                 rr.count(ColNKCell),
		Monocyte:               rr.count(ColMonocyte),
	}
	if rr.err != nil {
		return Row{}, rr.err
	}

	sex, err := cytometry.ParseSex(rr.str(ColSex))
	if err != nil {
		return Row{}, cytometry.Ingest(op, line, ColSex, rr.str(ColSex), err)
	}
	row.Sex = sex

	resp, err := cytometry.ParseResponse(rr.str(ColResponse))
	if err != nil {
		return Row{}, cytometry.Ingest(op, line, ColResponse, rr.str(ColResponse), err)
	}
	row.Response = resp
	return row, nil
}
