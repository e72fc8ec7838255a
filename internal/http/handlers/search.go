package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/adknaupp/cytometry-manager/internal/domain"
	"github.com/adknaupp/cytometry-manager/internal/http/response"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
	"github.com/adknaupp/cytometry-manager/internal/services"
)

type SearchHandler struct {
	search services.SearchService
}

func NewSearchHandler(search services.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

type searchFunc func(dbc dbctx.Context, q string, limit int) ([]types.Option, error)

func (h *SearchHandler) serve(c *gin.Context, fn searchFunc) {
	opts, err := fn(requestDBC(c), c.Query("q"), queryLimit(c))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"options": opts})
}

// GET /api/search/projects?q=&limit=
func (h *SearchHandler) SearchProjects(c *gin.Context) { h.serve(c, h.search.Projects) }

// GET /api/search/subjects?q=&limit=
func (h *SearchHandler) SearchSubjects(c *gin.Context) { h.serve(c, h.search.Subjects) }

// GET /api/search/cohorts?q=&limit=
func (h *SearchHandler) SearchCohorts(c *gin.Context) { h.serve(c, h.search.Cohorts) }

// GET /api/search/sample-types?q=&limit=
func (h *SearchHandler) SearchSampleTypes(c *gin.Context) { h.serve(c, h.search.SampleTypes) }
