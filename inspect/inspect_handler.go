package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"

	"github.com/sirupsen/logrus"
)

const (
	AlgorithmsPath   = "/algorithms"
	ReportFieldsPath = "/reportFields"
	SortPath         = "/sort"
	HistoryPath      = "/history"

	// MaxRequestBodySize caps the JSON body a request may send.
	MaxRequestBodySize = 64 << 10
)

// NewInspectHandler serves inspect over http. Routes are matched on the path
// suffix so the handler can be mounted under any prefix. Failed requests are
// logged to logger, or to the logrus standard logger when it is nil.
func NewInspectHandler(inspect Inspect, logger logrus.FieldLogger) http.HandlerFunc {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	var (
		// path pattern matchers
		endsInAlgorithms   = regexp.MustCompile(AlgorithmsPath + "$")
		endsInReportFields = regexp.MustCompile(ReportFieldsPath + "$")
		endsInSort         = regexp.MustCompile(SortPath + "$")
		endsInHistory      = regexp.MustCompile(HistoryPath + "$")

		// handlers
		algorithmsHandler = buildHandler(logger, func(_ context.Context, _ struct{}) ([]string, error) {
			return inspect.Algorithms()
		})
		reportFieldsHandler = buildHandler(logger, func(_ context.Context, _ struct{}) (map[string]string, error) {
			return inspect.ReportFields()
		})
		sortHandler = buildHandler(logger, func(ctx context.Context, req requestSort) (any, error) {
			return inspect.Sort(ctx, req.Algorithm, req.LightCount)
		})
		historyHandler = buildHandler(logger, func(ctx context.Context, req requestHistory) (any, error) {
			return inspect.History(ctx, req.Algorithm, req.LightCount, req.Limit)
		})
	)

	return func(writer http.ResponseWriter, request *http.Request) {
		path := []byte(request.URL.Path)

		switch {
		case endsInAlgorithms.Match(path):
			algorithmsHandler.ServeHTTP(writer, request)
		case endsInReportFields.Match(path):
			reportFieldsHandler.ServeHTTP(writer, request)
		case endsInSort.Match(path):
			sortHandler.ServeHTTP(writer, request)
		case endsInHistory.Match(path):
			historyHandler.ServeHTTP(writer, request)
		default:
			http.NotFound(writer, request)
		}
	}
}

type requestSort struct {
	Algorithm  string `json:"algorithm"`
	LightCount int    `json:"lightCount"`
}

type requestHistory struct {
	requestSort
	Limit uint64 `json:"limit"`
}

type responseError struct {
	Error string `json:"error"`
}

func newResponseErrorBytes(err error) ([]byte, error) {
	return json.Marshal(responseError{Error: err.Error()})
}

// buildHandler decodes an optional JSON body into Req, calls fn and writes
// its result as JSON.
func buildHandler[Req any, Resp any](logger logrus.FieldLogger, fn func(ctx context.Context, req Req) (Resp, error)) http.HandlerFunc {
	return func(response http.ResponseWriter, request *http.Request) {
		accept := request.Header.Get("Accept")
		if accept == "" {
			accept = "application/json"
		}

		if accept != "application/json" {
			writeEmptyResponse(response, http.StatusNotAcceptable)
			return
		}

		data, err := io.ReadAll(http.MaxBytesReader(response, request.Body, MaxRequestBodySize))
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				writeErrorResponse(logger, request, response, http.StatusRequestEntityTooLarge, err)
				return
			}
			writeErrorResponse(logger, request, response, http.StatusInternalServerError, err)
			return
		}

		var req Req
		if len(data) > 0 {
			if err = json.Unmarshal(data, &req); err != nil {
				writeErrorResponse(logger, request, response, http.StatusBadRequest, err)
				return
			}
		}

		result, err := fn(request.Context(), req)
		if err != nil {
			writeErrorResponse(logger, request, response, http.StatusInternalServerError, err)
			return
		}

		data, err = json.Marshal(result)
		if err != nil {
			writeErrorResponse(logger, request, response, http.StatusInternalServerError, err)
			return
		}

		writeResponse(response, http.StatusOK, data)
	}
}

func writeResponse(response http.ResponseWriter, status int, data []byte) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	_, _ = response.Write(data)
}

func writeEmptyResponse(response http.ResponseWriter, status int) {
	response.WriteHeader(status)
}

func writeErrorResponse(logger logrus.FieldLogger, request *http.Request, response http.ResponseWriter, status int, err error) {
	logger.WithFields(logrus.Fields{
		"path":   request.URL.Path,
		"status": status,
		"error":  err.Error(),
	}).Warn("inspect request failed")

	errBytes, errErrResp := newResponseErrorBytes(err)
	if errErrResp != nil {
		writeEmptyResponse(response, status)
		return
	}
	writeResponse(response, status, errBytes)
}
