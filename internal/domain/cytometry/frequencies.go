package cytometry

// CellType names a measured immune cell population.
type CellType string

const (
	CellB        CellType = "B Cell"
	CellCD8T     CellType = "CD8 T Cell"
	CellCD4T     CellType = "CD4 T Cell"
	CellNK       CellType = "NK Cell"
	CellMonocyte CellType = "Monocyte"
)

// CellTypes lists the populations in report order.
var CellTypes = []CellType{CellB, CellCD8T, CellCD4T, CellNK, CellMonocyte}

// PopulationFrequencies returns each count as a percentage of the total.
// A zero total yields zeros rather than an error.
func PopulationFrequencies(s *Sample) map[CellType]float64 {
	out := make(map[CellType]float64, len(CellTypes))
	total := s.TotalCells()
	counts := s.Counts()
	for _, ct := range CellTypes {
		if total == 0 {
			out[ct] = 0
			continue
		}
		out[ct] = float64(counts[ct]) / float64(total) * 100
	}
	return out
}

// ReportRow is one sample's frequencies paired with its subject's response.
type ReportRow struct {
	SampleID    uint                 `json:"sample_id"`
	SampleName  string               `json:"sample_name"`
	Frequencies map[CellType]float64 `json:"frequencies"`
	Response    Response             `json:"response"`
}

// FrequencyReport builds report rows for samples whose subject has a
// response. subjects must contain every sample's subject keyed by id.
func FrequencyReport(samples []*Sample, subjects map[uint]*Subject) []ReportRow {
	rows := make([]ReportRow, 0, len(samples))
	for _, m := range samples {
		if m == nil {
			continue
		}
		subj := subjects[m.SubjectID]
		if !subj.HasResponse() {
			continue
		}
		rows = append(rows, ReportRow{
			SampleID:    m.ID,
			SampleName:  m.Name,
			Frequencies: PopulationFrequencies(m),
			Response:    *subj.Response,
		})
	}
	return rows
}
