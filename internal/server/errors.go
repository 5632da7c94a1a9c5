package server

import (
	"net/http"

	errs "github.com/matzehuels/ebdgraph/pkg/errors"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

// StatusCode maps an error to its HTTP status:
//   - 400 for input and structural build errors
//   - 422 when the requested grammar cannot express the graph
//   - 502 when the rendering service fails
//   - 500 otherwise
func StatusCode(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidLanguage,
		errs.ErrCodeInvalidPath, errs.ErrCodeDuplicateStep, errs.ErrCodeUnresolvedStep,
		errs.ErrCodeTerminalMisuse, errs.ErrCodeAmbiguousOutcome, errs.ErrCodeUnsupportedReference:
		return http.StatusBadRequest
	case errs.ErrCodeNotExactlyTwoEdges, errs.ErrCodeCycle, errs.ErrCodeTooComplex, errs.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeRenderService, errs.ErrCodeNetwork, errs.ErrCodeTimeout:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	msg := errs.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", RequestID(r.Context()), "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
