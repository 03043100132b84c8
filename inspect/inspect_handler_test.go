package inspect

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-bond/disks"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(t *testing.T, path string, body any) *http.Request {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	return httptest.NewRequest(http.MethodPost, "http://localhost/disks"+path, reader)
}

func TestInspectHandler(t *testing.T) {
	insp := setupInspect(t)
	defer tearDownInspect(insp)

	logger, hook := test.NewNullLogger()
	handler := NewInspectHandler(insp, logger)

	t.Run("Algorithms", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, newRequest(t, AlgorithmsPath, nil))

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
		assert.JSONEq(t, `["left-to-right","lawnmower"]`, recorder.Body.String())
	})

	t.Run("ReportFields", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, newRequest(t, ReportFieldsPath, nil))

		assert.Equal(t, http.StatusOK, recorder.Code)

		var fields map[string]string
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &fields))
		assert.Equal(t, "int", fields["SwapCount"])
	})

	t.Run("Sort", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, newRequest(t, SortPath, requestSort{Algorithm: "lawnmower", LightCount: 4}))

		require.Equal(t, http.StatusOK, recorder.Code)

		var report disks.SortReport
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &report))
		assert.Equal(t, disks.AlgorithmLawnmower, report.Algorithm)
		assert.Equal(t, "L L L L D D D D", report.After)
		assert.Equal(t, 10, report.SwapCount)
	})

	t.Run("History", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, newRequest(t, HistoryPath, requestHistory{
			requestSort: requestSort{Algorithm: "lawnmower", LightCount: 4},
			Limit:       10,
		}))

		require.Equal(t, http.StatusOK, recorder.Code)

		var reports []*disks.SortReport
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &reports))
		require.Len(t, reports, 1)
		assert.Equal(t, 4, reports[0].LightCount)
	})

	t.Run("ErrorFromInspect", func(t *testing.T) {
		hook.Reset()

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, newRequest(t, SortPath, requestSort{Algorithm: "bogo", LightCount: 4}))

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		assert.JSONEq(t, `{"error":"unknown algorithm: bogo"}`, recorder.Body.String())

		require.Len(t, hook.Entries, 1)
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		assert.Equal(t, "/disks/sort", hook.LastEntry().Data["path"])
		assert.Equal(t, http.StatusInternalServerError, hook.LastEntry().Data["status"])
	})

	t.Run("ErrorLightCountLimit", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, newRequest(t, SortPath, requestSort{Algorithm: "lawnmower", LightCount: 1 << 40}))

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "invalid light count")
	})

	t.Run("ErrorMalformedBody", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "http://localhost/disks/sort", bytes.NewReader([]byte("{")))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"error"`)
	})

	t.Run("ErrorBodyTooLarge", func(t *testing.T) {
		body := append([]byte(`{"algorithm":"`), bytes.Repeat([]byte("x"), MaxRequestBodySize)...)
		body = append(body, `","lightCount":1}`...)
		request := httptest.NewRequest(http.MethodPost, "http://localhost/disks/sort", bytes.NewReader(body))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusRequestEntityTooLarge, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "request body too large")
	})

	t.Run("ErrorNotAcceptable", func(t *testing.T) {
		request := newRequest(t, AlgorithmsPath, nil)
		request.Header.Set("Accept", "text/html")

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNotAcceptable, recorder.Code)
		assert.Empty(t, recorder.Body.String())
	})

	t.Run("ErrorNotFound", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, newRequest(t, "/tables", nil))

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestInspectRemote(t *testing.T) {
	insp := setupInspect(t)
	defer tearDownInspect(insp)

	logger, _ := test.NewNullLogger()
	server := httptest.NewServer(NewInspectHandler(insp, logger))
	defer server.Close()

	remote := NewInspectRemote(server.URL+"/disks/", map[string]string{"X-Test": "yes"})
	ctx := context.Background()

	algorithms, err := remote.Algorithms()
	require.NoError(t, err)
	assert.Equal(t, []string{"left-to-right", "lawnmower"}, algorithms)

	fields, err := remote.ReportFields()
	require.NoError(t, err)
	localFields, err := insp.ReportFields()
	require.NoError(t, err)
	assert.Equal(t, localFields, fields)

	report, err := remote.Sort(ctx, "left-to-right", 5)
	require.NoError(t, err)
	assert.Equal(t, 15, report.SwapCount)
	assert.True(t, report.Sorted)

	history, err := remote.History(ctx, "left-to-right", 5, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, report, history[0])

	_, err = remote.Sort(ctx, "bogo", 5)
	assert.EqualError(t, err, "request failed with status: 500 Internal Server Error: unknown algorithm: bogo")
}

func TestInspectRemote_Headers(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`["left-to-right"]`))
	}))
	defer server.Close()

	remote := NewInspectRemote(server.URL, map[string]string{"Authorization": "Bearer token"})

	algorithms, err := remote.Algorithms()
	require.NoError(t, err)
	assert.Equal(t, []string{"left-to-right"}, algorithms)
	assert.Equal(t, "Bearer token", got.Get("Authorization"))
}
