package errors

import (
	"encoding/json"
)

// ErrorResponse is the flat JSON form of an error as printed by the
// envstage CLI. The cause chain is left out; Context carries the offending
// path or parameter instead.
type ErrorResponse struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Classification string                 `json:"classification"`
	Context        map[string]interface{} `json:"context,omitempty"`
}

// ToJSON flattens err into an ErrorResponse, or returns nil for a nil err.
// Errors from outside this package are reported as CodeUnknown with their
// Error() text.
func ToJSON(err error) *ErrorResponse {
	if err == nil {
		return nil
	}
	pe, ok := find(err)
	if !ok {
		return &ErrorResponse{
			Code:           string(CodeUnknown),
			Message:        err.Error(),
			Classification: string(ClassificationPermanent),
		}
	}
	return response(pe)
}

func response(pe PlatformError) *ErrorResponse {
	return &ErrorResponse{
		Code:           string(pe.Code()),
		Message:        pe.Message(),
		Classification: string(pe.Classification()),
		Context:        pe.Context(),
	}
}

// MarshalJSON encodes e as an ErrorResponse.
func (e *platformError) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(response(e))
	if err != nil {
		return nil, Wrap(err, CodeInternal, "failed to marshal error response")
	}
	return data, nil
}
