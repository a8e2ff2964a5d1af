package devserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leefowlercu/mldata/internal/api"
)

func newTestServer(t *testing.T, pageSize int) *httptest.Server {
	t.Helper()
	srv := NewServer(newTestStore(t), Config{PageSize: pageSize})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doRequest(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, 5)

	resp := doRequest(t, http.MethodGet, ts.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestDatasetRoutes_TwoSegmentPrefix(t *testing.T) {
	ts := newTestServer(t, 5)

	resp := doRequest(t, http.MethodPost, ts.URL+"/datasets", api.DatasetRecord{URLPrefix: "alice/mnist", Title: "MNIST"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	resp = doRequest(t, http.MethodGet, ts.URL+"/datasets/alice/mnist", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var rec api.DatasetRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatalf("failed to decode dataset: %v", err)
	}
	if rec.URLPrefix != "alice/mnist" || rec.Title != "MNIST" {
		t.Errorf("unexpected record %+v", rec)
	}

	resp = doRequest(t, http.MethodPost, ts.URL+"/datasets/alice/mnist/elements", api.ElementInput{Title: "digit"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create element status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	var id string
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		t.Fatalf("created element id must be a JSON string: %v", err)
	}

	resp = doRequest(t, http.MethodGet, ts.URL+"/datasets/alice/mnist/elements/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get element status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"_id":"`+id+`"`) {
		t.Errorf("element body should carry _id, got %s", body)
	}
}

func TestListElements_Paging(t *testing.T) {
	ts := newTestServer(t, 2)

	doRequest(t, http.MethodPost, ts.URL+"/datasets", api.DatasetRecord{URLPrefix: "ds"})
	for i := 0; i < 3; i++ {
		doRequest(t, http.MethodPost, ts.URL+"/datasets/ds/elements", api.ElementInput{Title: "e"})
	}

	sizes := []int{}
	for _, q := range []string{"", "?page=1", "?page=2"} {
		resp := doRequest(t, http.MethodGet, ts.URL+"/datasets/ds/elements"+q, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("list%s status = %d", q, resp.StatusCode)
		}
		var page []api.ElementSummary
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			t.Fatalf("failed to decode page: %v", err)
		}
		sizes = append(sizes, len(page))
	}

	want := []int{2, 1, 0}
	for i := range want {
		if sizes[i] != want[i] {
			t.Errorf("page sizes = %v, want %v", sizes, want)
			break
		}
	}

	resp := doRequest(t, http.MethodGet, ts.URL+"/datasets/ds/elements?page=-1", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("negative page status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestNotFound(t *testing.T) {
	ts := newTestServer(t, 5)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/datasets/missing"},
		{http.MethodGet, "/datasets/missing/elements"},
		{http.MethodGet, "/datasets/missing/elements/abc"},
		{http.MethodDelete, "/datasets/missing/elements/abc"},
		{http.MethodGet, "/datasets/missing/elements/abc/content"},
	}

	for _, tt := range tests {
		resp := doRequest(t, tt.method, ts.URL+tt.path, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, resp.StatusCode, http.StatusNotFound)
		}
	}
}

func TestCreateDataset_Conflict(t *testing.T) {
	ts := newTestServer(t, 5)

	doRequest(t, http.MethodPost, ts.URL+"/datasets", api.DatasetRecord{URLPrefix: "ds"})
	resp := doRequest(t, http.MethodPost, ts.URL+"/datasets", api.DatasetRecord{URLPrefix: "ds"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, 5)

	doRequest(t, http.MethodGet, ts.URL+"/healthz", nil)
	resp := doRequest(t, http.MethodGet, ts.URL+"/metrics", nil)
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "mldata_server_requests_total") {
		t.Error("metrics should include mldata_server_requests_total")
	}
}
