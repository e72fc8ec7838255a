package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/adknaupp/cytometry-manager/internal/data/repos"
	"github.com/adknaupp/cytometry-manager/internal/http/response"
	"github.com/adknaupp/cytometry-manager/internal/services"
)

type SubjectHandler struct {
	subjects services.SubjectService
}

func NewSubjectHandler(subjects services.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjects: subjects}
}

// GET /api/subjects?sex=&response=&treatment=&name=
func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	filter := repos.SubjectFilter{
		Sex:        c.Query("sex"),
		Response:   c.Query("response"),
		Treatment:  c.Query("treatment"),
		NamePrefix: c.Query("name"),
	}
	subjects, err := h.subjects.List(requestDBC(c), filter)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"subjects": subjects})
}

// GET /api/subjects/:id
func (h *SubjectHandler) GetSubject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	s, err := h.subjects.Get(requestDBC(c), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"subject": s})
}

// POST /api/subjects
func (h *SubjectHandler) CreateSubject(c *gin.Context) {
	var in services.SubjectInput
	if !bindJSON(c, &in) {
		return
	}
	s, err := h.subjects.Add(c.Request.Context(), in)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"subject": s})
}
