package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is "<MODULE>_<nnn>".
type ErrorCode string

func (c ErrorCode) String() string { return string(c) }

const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeFeatureDisabled    ErrorCode = "COMMON_015"
	ErrCodeNotImplemented     ErrorCode = "COMMON_016"
	ErrCodeCancelled          ErrorCode = "COMMON_017"

	// interaction checks
	ErrCodeNotHydrogenBond       ErrorCode = "HB_001"
	ErrCodeDegenerateGeometry    ErrorCode = "HB_002"
	ErrCodeFeatureEmpty          ErrorCode = "HB_003"
	ErrCodeMemberCountMismatch   ErrorCode = "HB_004"
	ErrCodeInvalidCutoff         ErrorCode = "HB_005"
	ErrCodeSerialNumberMissing   ErrorCode = "HB_006"
	ErrCodeFeatureTypeIncomplete ErrorCode = "HB_007"

	// frames
	ErrCodeFrameInvalid      ErrorCode = "FRM_001"
	ErrCodeFrameDecodeFailed ErrorCode = "FRM_002"
	ErrCodeAtomIndexInvalid  ErrorCode = "FRM_003"

	// profile tables
	ErrCodeMalformedTable ErrorCode = "STAT_001"
	ErrCodeEmptyTable     ErrorCode = "STAT_002"

	// profiling runs
	ErrCodeProfilingFailed ErrorCode = "PROF_001"
	ErrCodeExportFailed    ErrorCode = "PROF_002"
	ErrCodePublishFailed   ErrorCode = "PROF_003"
)

// Short names used by the factories and the infrastructure packages.
const (
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeNotFound       = ErrCodeNotFound
	CodeConflict       = ErrCodeConflict
	CodeNotImplemented = ErrCodeNotImplemented
	CodeOK             = ErrorCode("OK")
	CodeUnknown        = ErrorCode("UNKNOWN")

	CodeDBConnectionError = ErrCodeDatabaseError
	CodeDBQueryError      = ErrCodeDatabaseError
	CodeCacheError        = ErrCodeCacheError
	CodeMessageQueueError = ErrCodeExternalService
	CodeStorageError      = ErrCodeExternalService
)

type codeInfo struct {
	status  int
	message string
}

var codes = map[ErrorCode]codeInfo{
	ErrCodeInternal:           {http.StatusInternalServerError, "internal server error"},
	ErrCodeBadRequest:         {http.StatusBadRequest, "bad request"},
	ErrCodeNotFound:           {http.StatusNotFound, "resource not found"},
	ErrCodeConflict:           {http.StatusConflict, "resource conflict"},
	ErrCodeServiceUnavailable: {http.StatusServiceUnavailable, "service unavailable"},
	ErrCodeTimeout:            {http.StatusGatewayTimeout, "request timeout"},
	ErrCodeValidation:         {http.StatusUnprocessableEntity, "validation failed"},
	ErrCodeSerialization:      {http.StatusInternalServerError, "serialization failed"},
	ErrCodeDatabaseError:      {http.StatusInternalServerError, "database error"},
	ErrCodeCacheError:         {http.StatusInternalServerError, "cache error"},
	ErrCodeExternalService:    {http.StatusBadGateway, "external service error"},
	ErrCodeFeatureDisabled:    {http.StatusForbidden, "feature disabled"},
	ErrCodeNotImplemented:     {http.StatusNotImplemented, "not implemented"},
	ErrCodeCancelled:          {http.StatusRequestTimeout, "operation cancelled"},

	ErrCodeNotHydrogenBond:       {http.StatusUnprocessableEntity, "pair does not satisfy hydrogen bond criteria"},
	ErrCodeDegenerateGeometry:    {http.StatusUnprocessableEntity, "degenerate geometry: coincident coordinates"},
	ErrCodeFeatureEmpty:          {http.StatusBadRequest, "feature has no atoms"},
	ErrCodeMemberCountMismatch:   {http.StatusBadRequest, "member count does not match interaction degree"},
	ErrCodeInvalidCutoff:         {http.StatusBadRequest, "invalid interaction cutoff"},
	ErrCodeSerialNumberMissing:   {http.StatusUnprocessableEntity, "atom has no pdb serial number"},
	ErrCodeFeatureTypeIncomplete: {http.StatusUnprocessableEntity, "interaction class has no feature types"},

	ErrCodeFrameInvalid:      {http.StatusBadRequest, "invalid frame"},
	ErrCodeFrameDecodeFailed: {http.StatusBadRequest, "failed to decode frame"},
	ErrCodeAtomIndexInvalid:  {http.StatusBadRequest, "atom index out of range"},

	ErrCodeMalformedTable: {http.StatusBadRequest, "malformed profile table"},
	ErrCodeEmptyTable:     {http.StatusBadRequest, "profile table is empty"},

	ErrCodeProfilingFailed: {http.StatusInternalServerError, "profiling failed"},
	ErrCodeExportFailed:    {http.StatusInternalServerError, "export failed"},
	ErrCodePublishFailed:   {http.StatusBadGateway, "failed to publish hit events"},
}

// HTTPStatusForCode is 500 for codes without an entry.
func HTTPStatusForCode(code ErrorCode) int {
	if info, ok := codes[code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

func DefaultMessageForCode(code ErrorCode) string {
	if info, ok := codes[code]; ok {
		return info.message
	}
	return "unknown error"
}

func IsClientError(code ErrorCode) bool { return HTTPStatusForCode(code)/100 == 4 }
func IsServerError(code ErrorCode) bool { return HTTPStatusForCode(code)/100 == 5 }

// ModuleForCode returns the prefix before the first underscore.
func ModuleForCode(code ErrorCode) string {
	module, _, _ := strings.Cut(string(code), "_")
	if module == "" {
		return "UNKNOWN"
	}
	return module
}

//Personal.AI order the ending
