package types

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

// ChatParams is the body of POST /api/chat.
type ChatParams struct {
	Question string `json:"question" validate:"required,min=1,max=1000"`
}

func (params *ChatParams) Validate() map[string]string {
	return validateStruct(params)
}

func validateStruct(v any) map[string]string {
	validate := validator.New()
	if err := validate.Struct(v); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}

type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}

func NewValidationError(errors map[string]string) ValidationError {
	return ValidationError{
		Status: http.StatusUnprocessableEntity,
		Errors: errors,
	}
}

// ChatResponse is returned by POST /api/chat.
type ChatResponse struct {
	Answer    string    `json:"answer"`
	Sources   []Source  `json:"sources"`
	Timestamp time.Time `json:"timestamp"`
}

// UploadResponse is returned by POST /api/documents/upload.
type UploadResponse struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Message  string `json:"message"`
	Status   string `json:"status"`
}

// DeleteResponse is returned by DELETE /api/documents/:id.
type DeleteResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// StatsResponse is returned by GET /api/stats.
type StatsResponse struct {
	TotalDocuments int    `json:"total_documents"`
	TotalChunks    int    `json:"total_chunks"`
	CollectionName string `json:"collection_name"`
	EmbeddingModel string `json:"embedding_model"`
	LLMModel       string `json:"llm_model"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status      string          `json:"status"`
	VectorStore *CollectionInfo `json:"vector_store,omitempty"`
	Error       string          `json:"error,omitempty"`
}
