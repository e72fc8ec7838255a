package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
	"github.com/adknaupp/cytometry-manager/internal/http/response"
	"github.com/adknaupp/cytometry-manager/internal/services"
)

type IngestHandler struct {
	ingest services.IngestionService
}

func NewIngestHandler(ingest services.IngestionService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

type ingestRequest struct {
	Source          string `json:"source"`
	SkipIfPopulated bool   `json:"skip_if_populated"`
}

// POST /api/ingest
//
// Accepts either a JSON body naming a source path or gs:// URI, or a
// multipart upload in the "file" field.
func (h *IngestHandler) Ingest(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		h.ingestUpload(c)
		return
	}
	var req ingestRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Source) == "" {
		response.RespondErr(c, cytometry.Validation("http", "source is required"))
		return
	}
	sum, err := h.ingest.Ingest(c.Request.Context(), req.Source, services.IngestOptions{SkipIfPopulated: req.SkipIfPopulated})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"ingest": sum})
}

func (h *IngestHandler) ingestUpload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondErr(c, cytometry.NewError(cytometry.CodeValidation, "http", "file is required", err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondErr(c, cytometry.NewError(cytometry.CodeIngest, "http", "open upload", &cytometry.IngestError{Err: err}))
		return
	}
	defer f.Close()
	opts := services.IngestOptions{SkipIfPopulated: c.PostForm("skip_if_populated") == "true"}
	sum, err := h.ingest.IngestReader(c.Request.Context(), fh.Filename, f, opts)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"ingest": sum})
}

// GET /api/ingest/runs
func (h *IngestHandler) ListRuns(c *gin.Context) {
	runs, err := h.ingest.Runs(requestDBC(c), queryLimit(c))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"runs": runs})
}
