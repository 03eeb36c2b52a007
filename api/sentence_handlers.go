package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-natex/services"
)

// maxImportSize bounds a CoNLL-U document accepted by the import route.
const maxImportSize = 64 << 20

// AddSentenceHandler annotates a sentence (or accepts pre-annotated tokens)
// and stores it.
// Request Body: services.AddSentenceRequest
func (api *API) AddSentenceHandler(c *gin.Context) {
	var req services.AddSentenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	if validation := ValidateAddSentenceRequest(&req, ""); validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	sentence, err := api.engine.AddSentence(c.Request.Context(), req)
	if err != nil {
		SendEngineError(c, "sentence annotation", err)
		return
	}

	c.JSON(http.StatusCreated, sentence)
}

// BulkAddSentencesHandler starts a job annotating many sentences.
// Request Body: services.BulkAddRequest
func (api *API) BulkAddSentencesHandler(c *gin.Context) {
	var req services.BulkAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	if validation := ValidateBulkAddRequest(&req); validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	jobID, err := api.engine.AddSentencesAsync(req)
	if err != nil {
		SendEngineError(c, "bulk annotation", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Annotation of " + strconv.Itoa(len(req.Sentences)) + " sentences started",
		"job_id":  jobID,
	})
}

// ImportConlluHandler starts a job storing the sentences of a CoNLL-U
// document sent as the raw request body.
// Query Parameters: language (defaults to the service default language)
func (api *API) ImportConlluHandler(c *gin.Context) {
	if c.Request.ContentLength > maxImportSize {
		SendError(c, http.StatusRequestEntityTooLarge, ErrorCodeRequestTooLarge,
			"CoNLL-U document exceeds the size limit")
		return
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)
	jobID, err := api.engine.ImportConlluAsync(body, c.Query("language"))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			SendError(c, http.StatusRequestEntityTooLarge, ErrorCodeRequestTooLarge,
				"CoNLL-U document exceeds the size limit")
			return
		}
		SendEngineError(c, "conllu import", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "CoNLL-U import started",
		"job_id":  jobID,
	})
}

// ListSentencesHandler lists stored sentences.
// Query Parameters: page (default 1), page_size (default 10, max 100)
func (api *API) ListSentencesHandler(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	page, pageSize, validation := ValidatePagination(page, pageSize)
	if validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	sentences, total, err := api.engine.ListSentences((page-1)*pageSize, pageSize)
	if err != nil {
		SendEngineError(c, "sentence listing", err)
		return
	}

	totalPages := (total + pageSize - 1) / pageSize
	c.JSON(http.StatusOK, gin.H{
		"sentences":   sentences,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": totalPages,
	})
}

// GetSentenceHandler returns a stored sentence with its tokens and representation.
func (api *API) GetSentenceHandler(c *gin.Context) {
	sentenceID := c.Param("id")
	if validation := ValidateSentenceID(sentenceID); validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	sentence, err := api.engine.GetSentence(sentenceID)
	if err != nil {
		SendEngineError(c, "sentence retrieval", err)
		return
	}

	c.JSON(http.StatusOK, sentence)
}

// DeleteSentenceHandler removes a stored sentence.
func (api *API) DeleteSentenceHandler(c *gin.Context) {
	sentenceID := c.Param("id")
	if validation := ValidateSentenceID(sentenceID); validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	if err := api.engine.DeleteSentence(sentenceID); err != nil {
		SendEngineError(c, "sentence deletion", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sentence '" + sentenceID + "' deleted successfully"})
}
