package chi

import (
	"github.com/gridwell/jsongrid/internal/domain"
	"github.com/gridwell/jsongrid/internal/domain/schema/field"
)

// ErrorCode identifies an error response category.
type ErrorCode string

// Error response codes.
const (
	CodeBadRequest          ErrorCode = "bad_request"
	CodeInvalidURL          ErrorCode = "invalid_url"
	CodeInvalidSchema       ErrorCode = "invalid_schema"
	CodeFieldNotFound       ErrorCode = "field_not_found"
	CodeEmptyContent        ErrorCode = "empty_content"
	CodeCacheCapacity       ErrorCode = "cache_capacity_exceeded"
	CodeUpstreamFailed      ErrorCode = "upstream_fetch_failed"
	CodeUpstreamInvalidJSON ErrorCode = "upstream_invalid_json"
	CodeInternalError       ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ConfigParamsDTO mirrors the connector configuration collected by the host UI.
type ConfigParamsDTO struct {
	URL             string `json:"url"`
	Cache           bool   `json:"cache"`
	CacheExpiryTime string `json:"cache_expiry_time"`
}

// FieldRefDTO names one requested field.
type FieldRefDTO struct {
	Name string `json:"name"`
}

// SchemaRequest is the body of POST /api/v1/schema.
type SchemaRequest struct {
	ConfigParams ConfigParamsDTO `json:"configParams"`
}

// DataRequest is the body of POST /api/v1/data.
type DataRequest struct {
	ConfigParams ConfigParamsDTO `json:"configParams"`
	Fields       []FieldRefDTO   `json:"fields"`
}

// FieldDefinitionDTO is one schema column.
type FieldDefinitionDTO struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	SemanticType string `json:"semanticType"`
	ConceptType  string `json:"conceptType"`
}

// SchemaResponse is the body returned for schema requests.
type SchemaResponse struct {
	Schema []FieldDefinitionDTO `json:"schema"`
}

// DataResponse is the body returned for data requests.
type DataResponse struct {
	Schema []FieldDefinitionDTO `json:"schema"`
	Rows   [][]any              `json:"rows"`
}

func configFromDTO(dto ConfigParamsDTO) domain.ConfigParams {
	return domain.ConfigParams{
		URL:             dto.URL,
		Cache:           dto.Cache,
		CacheExpiryTime: dto.CacheExpiryTime,
	}
}

func fieldToDTO(f field.Field) FieldDefinitionDTO {
	return FieldDefinitionDTO{
		ID:           f.ID(),
		DisplayName:  f.DisplayName(),
		SemanticType: string(f.SemanticType()),
		ConceptType:  string(f.Concept()),
	}
}

func fieldsToDTO(fields []field.Field) []FieldDefinitionDTO {
	out := make([]FieldDefinitionDTO, len(fields))
	for i, f := range fields {
		out[i] = fieldToDTO(f)
	}
	return out
}
