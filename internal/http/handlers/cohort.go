package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
	"github.com/adknaupp/cytometry-manager/internal/http/response"
	"github.com/adknaupp/cytometry-manager/internal/services"
)

type CohortHandler struct {
	cohorts services.CohortService
}

func NewCohortHandler(cohorts services.CohortService) *CohortHandler {
	return &CohortHandler{cohorts: cohorts}
}

// GET /api/cohorts
func (h *CohortHandler) ListCohorts(c *gin.Context) {
	cohorts, err := h.cohorts.List(requestDBC(c))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"cohorts": cohorts})
}

// POST /api/cohorts
func (h *CohortHandler) CreateCohort(c *gin.Context) {
	var in services.CohortInput
	if !bindJSON(c, &in) {
		return
	}
	cohort, err := h.cohorts.Add(c.Request.Context(), in)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"cohort": cohort})
}

// GET /api/cohorts/:id/:kind where kind is details, subjects or samples.
func (h *CohortHandler) GetCohortContent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := cytometry.ParseCohortView(c.Param("kind"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	content, err := h.cohorts.Content(requestDBC(c), id, view)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"view": view.String(), "content": content})
}
