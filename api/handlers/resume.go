package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/DovudAsadov/ai-hr-platform/internal/processor"
	"github.com/DovudAsadov/ai-hr-platform/pkg/logger"
)

// maxUploadSize caps uploaded resume files at 10MB.
const maxUploadSize = 10 << 20

// maxBatchConcurrency bounds concurrent backend calls in a batch request.
const maxBatchConcurrency = 4

// ResumeHandler exposes the resume processors over HTTP. It forwards
// input and renders results; no business logic lives here.
type ResumeHandler struct {
	analyzer  *processor.ResumeAnalyzer
	optimizer *processor.ResumeOptimizer
	logger    logger.Logger
}

// NewResumeHandler creates the resume handler group.
func NewResumeHandler(
	analyzer *processor.ResumeAnalyzer,
	optimizer *processor.ResumeOptimizer,
	log logger.Logger,
) *ResumeHandler {
	return &ResumeHandler{analyzer: analyzer, optimizer: optimizer, logger: log}
}

type textRequest struct {
	Text string `json:"text"`
}

// ErrorResponse is the error body for malformed requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Analyze handles POST /resume/analyze.
func (h *ResumeHandler) Analyze(c *gin.Context) {
	doc, ok := h.readDocument(c)
	if !ok {
		return
	}
	h.render(c, h.analyzer.Process(c.Request.Context(), doc))
}

// Optimize handles POST /resume/optimize.
func (h *ResumeHandler) Optimize(c *gin.Context) {
	doc, ok := h.readDocument(c)
	if !ok {
		return
	}
	h.render(c, h.optimizer.Process(c.Request.Context(), doc))
}

// AnalyzeBatch handles POST /resume/batch: several uploaded resumes
// analyzed concurrently, one result per file.
func (h *ResumeHandler) AnalyzeBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.badRequest(c, "Invalid form data", err)
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		h.badRequest(c, "No files provided", nil)
		return
	}

	type fileResult struct {
		Filename string           `json:"filename"`
		Result   processor.Result `json:"result"`
	}

	results := make([]fileResult, len(files))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.SetLimit(maxBatchConcurrency)
	for i, header := range files {
		i, header := i, header
		g.Go(func() error {
			data, err := readUpload(header)
			var res processor.Result
			if err != nil {
				res = processor.Failedf("could not read upload: %v", err)
			} else {
				res = h.analyzer.Process(ctx, processor.BytesDocument(data))
			}
			mu.Lock()
			results[i] = fileResult{Filename: header.Filename, Result: res}
			mu.Unlock()
			return nil
		})
	}
	// Workers only record results, they never return errors.
	_ = g.Wait()

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// Health handles GET /health.
func (h *ResumeHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readDocument accepts either a multipart "file" upload or a JSON body
// with a "text" field.
func (h *ResumeHandler) readDocument(c *gin.Context) (processor.Document, bool) {
	if file, header, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		if header.Size > maxUploadSize {
			h.badRequest(c, "File too large", nil)
			return processor.Document{}, false
		}
		data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
		if err != nil {
			h.badRequest(c, "Could not read file", err)
			return processor.Document{}, false
		}
		return processor.BytesDocument(data), true
	}

	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Provide a 'file' upload or a JSON body with 'text'", err)
		return processor.Document{}, false
	}
	return processor.TextDocument(req.Text), true
}

// render maps a Result onto the wire: 200 for success, 422 for a failed run.
func (h *ResumeHandler) render(c *gin.Context, result processor.Result) {
	status := http.StatusOK
	if !result.OK() {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

func (h *ResumeHandler) badRequest(c *gin.Context, msg string, err error) {
	resp := ErrorResponse{Error: "bad_request", Message: msg}
	if err != nil {
		h.logger.Warn("bad request", logger.String("message", msg), logger.Error(err))
	}
	c.JSON(http.StatusBadRequest, resp)
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(io.LimitReader(file, maxUploadSize))
}
