package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
	"github.com/adknaupp/cytometry-manager/internal/http/response"
	"github.com/adknaupp/cytometry-manager/internal/services"
)

const reportKind = "report"

type DatasetHandler struct {
	datasets  services.DatasetService
	analytics services.AnalyticsService
}

func NewDatasetHandler(datasets services.DatasetService, analytics services.AnalyticsService) *DatasetHandler {
	return &DatasetHandler{datasets: datasets, analytics: analytics}
}

// GET /api/datasets
func (h *DatasetHandler) ListDatasets(c *gin.Context) {
	datasets, err := h.datasets.List(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"datasets": datasets})
}

// POST /api/datasets
func (h *DatasetHandler) CreateDataset(c *gin.Context) {
	var in services.DatasetInput
	if !bindJSON(c, &in) {
		return
	}
	ds, err := h.datasets.Add(c.Request.Context(), in)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"dataset": ds})
}

// GET /api/datasets/:id/:kind where kind is details, samples,
// visualizations or report. The samples view takes ?response= and ?sex=.
func (h *DatasetHandler) GetDatasetContent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	kind := strings.ToLower(strings.TrimSpace(c.Param("kind")))
	if kind == reportKind {
		h.report(c, id)
		return
	}
	view, err := cytometry.ParseDatasetView(kind)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	filter := services.DatasetSampleFilter{Response: c.Query("response"), Sex: c.Query("sex")}
	content, err := h.datasets.Content(requestDBC(c), id, view, filter)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"view": view.String(), "content": content})
}

func (h *DatasetHandler) report(c *gin.Context, id uint) {
	rows, err := h.analytics.DatasetFrequencyReport(requestDBC(c), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"dataset_id": id, "report": rows})
}
