package api

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-natex/services"
)

// operations maps route suffixes onto pattern operations.
var operations = map[string]services.Operation{
	"_match":   services.OpMatch,
	"_search":  services.OpSearch,
	"_findall": services.OpFindAll,
	"_sub":     services.OpSub,
	"_split":   services.OpSplit,
}

// OperationHandler runs a pattern operation against a stored sentence.
// Route: POST /sentences/:id/_match|_search|_findall|_sub|_split
// Request Body: services.PatternRequest
func (api *API) OperationHandler(c *gin.Context) {
	sentenceID := c.Param("id")
	op, ok := operations[c.Param("operation")]
	if !ok {
		known := make([]string, 0, len(operations))
		for name := range operations {
			known = append(known, name)
		}
		sort.Strings(known)
		SendError(c, http.StatusNotFound, ErrorCodeInvalidRequest,
			"Unknown operation '"+c.Param("operation")+"'",
			ErrorDetail{Field: "operation", Message: "Expected one of " + strings.Join(known, ", ")})
		return
	}

	if validation := ValidateSentenceID(sentenceID); validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	var req services.PatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	if validation := ValidatePatternRequest(&req, op); validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	result, err := api.engine.Run(sentenceID, op, req)
	if err != nil {
		SendEngineError(c, string(op), err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CompilePatternRequest is the body of the compile route.
type CompilePatternRequest struct {
	Pattern string `json:"pattern"`
	Flags   string `json:"flags,omitempty"`
}

// CompilePatternHandler compiles a pattern and returns the regular
// expression it becomes, with warnings about unknown tag values.
// Request Body: CompilePatternRequest
func (api *API) CompilePatternHandler(c *gin.Context) {
	var req CompilePatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	patternReq := services.PatternRequest{Pattern: req.Pattern, Flags: req.Flags}
	if validation := ValidatePatternRequest(&patternReq, ""); validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	result, err := api.engine.CompilePattern(req.Pattern, req.Flags)
	if err != nil {
		SendEngineError(c, "pattern compilation", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SearchCorpusHandler runs a pattern over every stored sentence carrying the
// required tag keys.
// Route: POST /sentences/_search
// Request Body: services.CorpusSearchRequest
func (api *API) SearchCorpusHandler(c *gin.Context) {
	var req services.CorpusSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	if validation := ValidateCorpusSearchRequest(&req); validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	result, err := api.engine.SearchCorpus(req)
	if err != nil {
		SendEngineError(c, "corpus search", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// tagKinds maps the kind query parameter onto tag key prefixes.
var tagKinds = map[string]string{
	"":      "",
	"pos":   "@",
	"dep":   "#",
	"lemma": "=",
}

// TagCountsHandler lists the indexed tag keys, most frequent first.
// Query Parameters: kind (pos, dep or lemma), limit
func (api *API) TagCountsHandler(c *gin.Context) {
	prefix, ok := tagKinds[c.Query("kind")]
	if !ok {
		result := &ValidationResult{Valid: true}
		result.AddError("kind", "Kind must be one of pos, dep or lemma")
		SendValidationError(c, result)
		return
	}

	counts := api.engine.TagCounts(prefix)
	total := len(counts)
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 && limit < len(counts) {
		counts = counts[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"tags":  counts,
		"total": total,
	})
}
