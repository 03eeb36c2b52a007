// Package api provides validation utilities for API request handling.
package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-natex/model"
	"github.com/gcbaptista/go-natex/services"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	maxBulkSize     = 10000
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateSentenceID validates a sentence ID path parameter or request field
func ValidateSentenceID(sentenceID string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if sentenceID == "" {
		result.AddError("id", "Sentence ID is required")
		return result
	}

	if strings.TrimSpace(sentenceID) != sentenceID {
		result.AddError("id", "Sentence ID cannot have leading or trailing whitespace")
		return result
	}

	if strings.HasPrefix(sentenceID, "_") {
		result.AddError("id", "Sentence ID cannot start with '_'")
	}

	return result
}

// ValidateAddSentenceRequest validates a single sentence submission. Field
// names are prefixed so that bulk requests point at the failing entry.
func ValidateAddSentenceRequest(req *services.AddSentenceRequest, prefix string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if strings.TrimSpace(req.Text) == "" {
		result.AddError(prefix+"text", "Text is required")
	}

	if req.ID != "" {
		if idResult := ValidateSentenceID(req.ID); idResult.HasErrors() {
			for _, err := range idResult.Errors {
				result.AddError(prefix+err.Field, err.Message)
			}
		}
	}

	for i, tok := range req.Tokens {
		field := fmt.Sprintf("%stokens[%d]", prefix, i)
		if tok.Literal == "" {
			result.AddError(field+".literal", "Token literal is required")
		}
		if tok.Span.End < tok.Span.Start {
			result.AddError(field+".span", "Token span ends before it starts")
		}
		if tok.Entity != "" {
			if tag, _ := model.ParseEntityTag(string(tok.Entity)); tag == model.EntityNone && tok.Entity != model.EntityNone {
				result.AddError(field+".entity", "Entity tag must be one of O, B, I, E, S")
			}
		}
	}

	return result
}

// ValidateBulkAddRequest validates a batch annotation request
func ValidateBulkAddRequest(req *services.BulkAddRequest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len(req.Sentences) == 0 {
		result.AddError("sentences", "No sentences provided")
		return result
	}

	if len(req.Sentences) > maxBulkSize {
		result.AddError("sentences", fmt.Sprintf("At most %d sentences can be added in one request", maxBulkSize))
		return result
	}

	for i := range req.Sentences {
		itemResult := ValidateAddSentenceRequest(&req.Sentences[i], fmt.Sprintf("sentences[%d].", i))
		result.Errors = append(result.Errors, itemResult.Errors...)
	}
	if len(result.Errors) > 0 {
		result.Valid = false
	}

	return result
}

// ValidatePatternRequest validates the body of a pattern operation
func ValidatePatternRequest(req *services.PatternRequest, op services.Operation) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if req.Pattern == "" {
		result.AddError("pattern", "Pattern is required")
	}

	if req.Flags != "" && strings.Trim(strings.ToLower(req.Flags), "ims") != "" {
		result.AddError("flags", "Flags may only contain 'i', 'm' and 's'")
	}

	if req.Limit < -1 {
		result.AddError("limit", "Limit must be -1, 0 or positive")
	}

	if req.Limit != 0 && op != services.OpSplit {
		result.AddError("limit", "Limit is only used by split")
	}

	return result
}

// ValidateCorpusSearchRequest validates the body of a corpus search
func ValidateCorpusSearchRequest(req *services.CorpusSearchRequest) *ValidationResult {
	result := ValidatePatternRequest(&services.PatternRequest{Pattern: req.Pattern, Flags: req.Flags}, services.OpSearch)

	if req.Limit < 0 {
		result.AddError("limit", "Limit cannot be negative")
	}

	for i, key := range req.Require {
		if strings.TrimSpace(key) == "" {
			result.AddError(fmt.Sprintf("require[%d]", i), "Tag key cannot be empty")
		}
	}

	return result
}

// ValidatePagination validates pagination parameters
func ValidatePagination(page, pageSize int) (int, int, *ValidationResult) {
	result := &ValidationResult{Valid: true}

	// Set defaults
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return page, pageSize, result
}

// SendValidationError sends a standardized validation error response
func SendValidationError(c *gin.Context, result *ValidationResult) {
	SendStructuredValidationError(c, result)
}
