package reply

import (
	"context"
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"pricetrack/pkg/contextx"
	"pricetrack/pkg/errcodes"
	"pricetrack/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	SupportID string `json:"supportId"`
}

func (e *errorResponse) WithDefaultCode(code errcodes.ErrorCode) {
	if e.Code == "" {
		e.Code = code.String()
	}
}

// codedError is implemented by domain errors.
type codedError interface {
	error
	ErrorCode() errcodes.ErrorCode
	Description() string
}

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

func OK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
}

func JSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger(ctx).Error("json.Encode", logx.Error(err))
	}
}

func Error(ctx context.Context, w http.ResponseWriter, err error) {
	response := errorResponse{
		SupportID: supportID(ctx),
	}

	var coded codedError
	if errors.As(err, &coded) {
		response.Code = coded.ErrorCode().String()
		response.Message = coded.Description()
	}

	switch errcodes.ErrorCode(response.Code) {
	case errcodes.ValidationError:
		logger(ctx).Warn("bad request", logx.Error(err))
		JSON(ctx, w, http.StatusBadRequest, response)
	case errcodes.NotFound, errcodes.ArtifactNotFound, errcodes.PriceNotFound:
		logger(ctx).Info("not found", logx.Error(err))
		JSON(ctx, w, http.StatusNotFound, response)
	case errcodes.TimeoutExceeded:
		logger(ctx).Error("timeout", logx.Error(err))
		JSON(ctx, w, http.StatusGatewayTimeout, response)
	default:
		logger(ctx).Error("error", logx.Error(err))
		response.WithDefaultCode(errcodes.InternalServerError)
		JSON(ctx, w, http.StatusInternalServerError, response)
	}
}

func supportID(ctx context.Context) string {
	return contextx.TraceIDOrDefault(ctx, "unsupported").String()
}
