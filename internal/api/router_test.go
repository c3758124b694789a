package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/landsuit/internal/model"
	"github.com/sells-group/landsuit/internal/pipeline"
	"github.com/sells-group/landsuit/internal/store"
)

const validBody = `{"datasets":[{"identifier":"slope.tif","type":"numerical","chosen":true,"thresholds":[0,10]}],
"target":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}}`

type fakeRunner struct {
	out  *pipeline.Output
	err  error
	reqs []*model.Request
}

func (f *fakeRunner) Run(_ context.Context, req *model.Request) (*pipeline.Output, error) {
	f.reqs = append(f.reqs, req)
	return f.out, f.err
}

type fakeRuns map[string]*model.Run

func (f fakeRuns) GetRun(_ context.Context, id string) (*model.Run, error) {
	if id == "broken" {
		return nil, errors.New("db down")
	}
	r, ok := f[id]
	if !ok {
		return nil, eris.Wrapf(store.ErrRunNotFound, "get run %s", id)
	}
	return r, nil
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	h := NewRouter(Config{}, &fakeRunner{}, nil)
	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestSuitability_OK(t *testing.T) {
	runner := &fakeRunner{out: &pipeline.Output{
		URL:     "https://geoc-temp.s3.eu-central-1.amazonaws.com/abc.tif",
		RunID:   "run-1",
		Summary: model.Summary{Height: 2, Width: 2, Suitable: 1, Unsuitable: 1, NoData: 2},
	}}
	h := NewRouter(Config{}, runner, nil)

	rec := do(t, h, http.MethodPost, "/suitability", validBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, "https://geoc-temp.s3.eu-central-1.amazonaws.com/abc.tif", body["URL"])
	assert.Equal(t, "run-1", body["run_id"])
	require.Len(t, runner.reqs, 1)
	require.Len(t, runner.reqs[0].Datasets, 1)
	assert.Equal(t, "slope.tif", runner.reqs[0].Datasets[0].ID())
}

func TestSuitability_ErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", eris.Wrap(model.ErrInvalidInput, "target: empty target area"), http.StatusBadRequest},
		{"alignment mismatch", eris.Wrap(model.ErrAlignmentMismatch, "slope.tif is 2x2 but soil.tif is 2x3"), http.StatusUnprocessableEntity},
		{"encoding failure", eris.Wrap(model.ErrEncodingFailure, "empty projection"), http.StatusInternalServerError},
		{"other", errors.New("s3 down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRouter(Config{}, &fakeRunner{err: tt.err}, nil)
			rec := do(t, h, http.MethodPost, "/suitability", validBody)
			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, decode(t, rec)["error"])
		})
	}
}

func TestSuitability_BadBody(t *testing.T) {
	runner := &fakeRunner{}
	h := NewRouter(Config{}, runner, nil)

	rec := do(t, h, http.MethodPost, "/suitability", `{"datasets":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, runner.reqs)
}

func TestSuitability_BodyTooLarge(t *testing.T) {
	h := NewRouter(Config{MaxBodyBytes: 16}, &fakeRunner{}, nil)
	rec := do(t, h, http.MethodPost, "/suitability", validBody)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestSuitability_RateLimit(t *testing.T) {
	runner := &fakeRunner{out: &pipeline.Output{URL: "u"}}
	h := NewRouter(Config{RateLimit: 0.001, Burst: 2}, runner, nil)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/suitability", validBody).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/suitability", validBody).Code)

	rec := do(t, h, http.MethodPost, "/suitability", validBody)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code, "health is not limited")
}

func TestGetRun(t *testing.T) {
	runs := fakeRuns{"run-1": {ID: "run-1", Status: model.RunStatusComplete, Datasets: []string{"slope.tif"}}}
	h := NewRouter(Config{}, &fakeRunner{}, runs)

	rec := do(t, h, http.MethodGet, "/runs/run-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "run-1", body["id"])
	assert.Equal(t, "complete", body["status"])

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/runs/missing", "").Code)
	assert.Equal(t, http.StatusInternalServerError, do(t, h, http.MethodGet, "/runs/broken", "").Code)
}

func TestGetRun_NoLedger(t *testing.T) {
	h := NewRouter(Config{}, &fakeRunner{}, nil)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/runs/run-1", "").Code)
}

func TestCORSPreflight(t *testing.T) {
	h := NewRouter(Config{AllowedOrigins: []string{"https://app.example.com"}}, &fakeRunner{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/suitability", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
