package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adknaupp/cytometry-manager/internal/data/repos"
	"github.com/adknaupp/cytometry-manager/internal/http/response"
	"github.com/adknaupp/cytometry-manager/internal/services"
)

type SampleHandler struct {
	samples   services.SampleService
	analytics services.AnalyticsService
}

func NewSampleHandler(samples services.SampleService, analytics services.AnalyticsService) *SampleHandler {
	return &SampleHandler{samples: samples, analytics: analytics}
}

// GET /api/samples?project_id=&subject_id=&type=&name=
func (h *SampleHandler) ListSamples(c *gin.Context) {
	projectID, ok := queryUint(c, "project_id")
	if !ok {
		return
	}
	subjectID, ok := queryUint(c, "subject_id")
	if !ok {
		return
	}
	samples, err := h.samples.List(requestDBC(c), repos.SampleFilter{
		ProjectID:  projectID,
		SubjectID:  subjectID,
		Type:       c.Query("type"),
		NamePrefix: c.Query("name"),
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"samples": samples})
}

// GET /api/samples/:id
func (h *SampleHandler) GetSample(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	m, err := h.samples.Get(requestDBC(c), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sample": m})
}

// POST /api/samples
func (h *SampleHandler) CreateSample(c *gin.Context) {
	var in services.SampleInput
	if !bindJSON(c, &in) {
		return
	}
	m, err := h.samples.Add(c.Request.Context(), in)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"sample": m})
}

// DELETE /api/samples/:id
func (h *SampleHandler) DeleteSample(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.samples.Delete(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/samples/:id/frequencies
func (h *SampleHandler) GetFrequencies(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	freqs, err := h.analytics.PopulationFrequencies(requestDBC(c), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sample_id": id, "frequencies": freqs})
}
