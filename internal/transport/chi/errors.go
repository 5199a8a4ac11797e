package chi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docinsight/internal/db"
	"github.com/kailas-cloud/docinsight/internal/domain"
	"github.com/kailas-cloud/docinsight/internal/logger"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// defaultErrorHandlers is ordered: ErrRateLimited wraps alongside provider errors
// and must match first.
func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		detailHandler(domain.ErrInvalidArgument, http.StatusBadRequest),
		fixedHandler(domain.ErrUnsupportedFile, http.StatusBadRequest, msgNotPDF),
		detailHandler(domain.ErrNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests),
		sentinelHandler(domain.ErrEmbeddingQuotaExceeded, http.StatusPaymentRequired),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway),
		sentinelHandler(domain.ErrLLMProviderError, http.StatusBadGateway),
		sentinelHandler(domain.ErrMalformedOutput, http.StatusBadGateway),
		storeHandler,
	}
}

const (
	msgNotPDF   = "File must be a PDF"
	msgInternal = "internal error"
)

// sentinelHandler answers with the sentinel's own text, hiding wrapped internals.
func sentinelHandler(sentinel error, status int) errorHandler {
	return fixedHandler(sentinel, status, sentinel.Error())
}

func fixedHandler(sentinel error, status int, msg string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, msg)
		return true
	}
}

// detailHandler answers with the full error text. Use only for errors built
// from request input.
func detailHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, err.Error())
		return true
	}
}

func storeHandler(w http.ResponseWriter, err error) bool {
	var dbErr *db.Error
	if !errors.Is(err, domain.ErrStoreUnavailable) && !errors.As(err, &dbErr) {
		return false
	}
	writeError(w, http.StatusServiceUnavailable, domain.ErrStoreUnavailable.Error())
	return true
}

// handleDomainError maps err through the handler chain, falling back to 500.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, msgInternal)
}

// outcomeSentinels are reported by their own text so wrapped provider and
// store details stay in the log.
var outcomeSentinels = []error{
	domain.ErrRateLimited,
	domain.ErrEmbeddingQuotaExceeded,
	domain.ErrEmbeddingProviderError,
	domain.ErrLLMProviderError,
	domain.ErrMalformedOutput,
	domain.ErrStoreUnavailable,
}

// outcomeMessage is the text shown to users for a failed analysis.
func outcomeMessage(err error) string {
	var oe *domain.OutcomeError
	if errors.As(err, &oe) {
		return oe.Msg
	}
	for _, sentinel := range outcomeSentinels {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	var dbErr *db.Error
	if errors.As(err, &dbErr) {
		return domain.ErrStoreUnavailable.Error()
	}
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidArgument) {
		return err.Error()
	}
	return msgInternal
}

// handleOutcomeError reports a failed analysis as 200 {error}, the shape the
// frontend renders inline. Bad input is still a 400.
func (s *Server) handleOutcomeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrInvalidArgument) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	logger.FromContext(r.Context()).Warn("analysis failed", zap.Error(err))
	writeError(w, http.StatusOK, outcomeMessage(err))
}

// handleUploadError keeps client and quota errors mapped and reports
// every other pipeline failure as 500 with its message.
func (s *Server) handleUploadError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range []errorHandler{
		fixedHandler(domain.ErrUnsupportedFile, http.StatusBadRequest, msgNotPDF),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests),
		sentinelHandler(domain.ErrEmbeddingQuotaExceeded, http.StatusPaymentRequired),
	} {
		if h(w, err) {
			return
		}
	}
	logger.FromContext(r.Context()).Error("upload failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}
