package headhunter

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"testing"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Form   url.Values
	Header http.Header
}

type fakeHH struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeHH) record(r *http.Request) {
	_ = r.ParseForm()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Form:   r.PostForm,
		Header: r.Header.Clone(),
	})
}

func (f *fakeHH) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *fakeHH) {
	t.Helper()

	fake := &fakeHH{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client := New(nil, Credentials{ClientID: "client", ClientSecret: "secret", RedirectURI: "http://localhost/callback"})
	client.APIURL = srv.URL
	client.AuthURL = srv.URL + "/oauth/authorize"

	return client, fake
}

func TestBuildParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		query  url.Values
		expect url.Values
	}{
		{
			name:  "category is sent as specialization",
			query: url.Values{"text": {"golang"}, "category": {"1.221"}},
			expect: url.Values{
				"text":           {"golang"},
				"specialization": {"1.221"},
			},
		},
		{
			name:   "only_with_salary literal true",
			query:  url.Values{"only_with_salary": {"true"}},
			expect: url.Values{"only_with_salary": {"true"}},
		},
		{
			name:   "only_with_salary other values are dropped",
			query:  url.Values{"only_with_salary": {"1"}, "experience": {"between1And3"}},
			expect: url.Values{"experience": {"between1And3"}},
		},
		{
			name:   "only_with_salary false is dropped",
			query:  url.Values{"only_with_salary": {"false"}},
			expect: url.Values{},
		},
		{
			name: "salary range and pagination",
			query: url.Values{
				"salary_from": {"100000"},
				"salary_to":   {"300000"},
				"page":        {"2"},
				"per_page":    {"50"},
			},
			expect: url.Values{
				"salary_from": {"100000"},
				"salary_to":   {"300000"},
				"page":        {"2"},
				"per_page":    {"50"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := buildParams(SearchParamsFromQuery(tt.query))
			if !reflect.DeepEqual(got, tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestSearchDefaultsPerPage(t *testing.T) {
	client, fake := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items":[],"found":0}`))
	})

	raw, err := client.Search(context.Background(), "access", SearchParamsFromQuery(url.Values{"text": {"go"}}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(raw) != `{"items":[],"found":0}` {
		t.Fatalf("expected body passed through, got %s", raw)
	}

	req := fake.last()
	if req.Path != "/vacancies" {
		t.Fatalf("unexpected path %q", req.Path)
	}
	if req.Query.Get("per_page") != "20" {
		t.Fatalf("expected default per_page 20, got %q", req.Query.Get("per_page"))
	}
	if req.Header.Get("Authorization") != "Bearer access" {
		t.Fatalf("unexpected authorization header %q", req.Header.Get("Authorization"))
	}
}

func TestParseResumes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		expect  string
		err     error
	}{
		{name: "wrapped list", payload: `{"items":[{"id":"r1","title":"Go"}]}`, expect: "r1"},
		{name: "bare list", payload: `[{"id":"r2"}]`, expect: "r2"},
		{name: "numeric id", payload: `[{"id":42}]`, expect: "42"},
		{name: "empty wrapped list", payload: `{"items":[]}`, err: ErrNoResume},
		{name: "empty bare list", payload: `[]`, err: ErrNoResume},
		{name: "first resume without id", payload: `{"items":[{"title":"draft"},{"id":"r3"}]}`, err: ErrNoResume},
		{name: "unexpected object", payload: `{"found":0}`, err: ErrNoResume},
		{name: "first entry is not an object", payload: `["x",{"id":"r4"}]`, err: ErrNoResume},
		{name: "malformed title keeps id", payload: `{"items":[{"id":"r1","title":{"a":1}}]}`, expect: "r1"},
		{name: "object id is not an id", payload: `[{"id":{"value":"r5"},"title":"Go"}]`, err: ErrNoResume},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resumes, err := ParseResumes(json.RawMessage(tt.payload))
			if err != nil {
				t.Fatalf("unexpected parse error: %v", err)
			}

			resume, err := resumes.First()
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resume.ID != tt.expect {
				t.Fatalf("expected resume %q, got %q", tt.expect, resume.ID)
			}
		})
	}
}

func TestApplyPayload(t *testing.T) {
	tests := []struct {
		name    string
		message string
		body    string
		expect  any
	}{
		{
			name:   "without message uses default state",
			expect: map[string]string{"id": "response"},
		},
		{
			name:    "with message keeps upstream state",
			message: "Hello!",
			body:    `{"state":{"id":"invitation"}}`,
			expect:  map[string]any{"id": "invitation"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, fake := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(tt.body))
			})

			result, err := client.Apply(context.Background(), "access", ApplyParams{VacancyID: "v1", ResumeID: "r1", Message: tt.message})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result.StatusCode != http.StatusCreated {
				t.Fatalf("expected 201, got %d", result.StatusCode)
			}
			if !reflect.DeepEqual(result.State, tt.expect) {
				t.Fatalf("expected state %v, got %v", tt.expect, result.State)
			}

			req := fake.last()
			if req.Method != http.MethodPost || req.Path != "/negotiations" {
				t.Fatalf("unexpected request %s %s", req.Method, req.Path)
			}
			if req.Form.Get("vacancy_id") != "v1" || req.Form.Get("resume_id") != "r1" {
				t.Fatalf("unexpected form %v", req.Form)
			}
			_, hasMessage := req.Form["message"]
			if hasMessage != (tt.message != "") {
				t.Fatalf("message presence mismatch: form %v", req.Form)
			}
			if req.Header.Get("Content-Type") != formContentType {
				t.Fatalf("unexpected content type %q", req.Header.Get("Content-Type"))
			}
		})
	}
}

func TestApplyPropagatesStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors":[{"type":"negotiations","value":"limit_exceeded"}]}`))
	})

	_, err := client.Apply(context.Background(), "access", ApplyParams{VacancyID: "v1", ResumeID: "r1"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if StatusCode(err) != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", StatusCode(err))
	}
	if !strings.Contains(ErrorBody(err), "limit_exceeded") {
		t.Fatalf("expected body in error, got %q", ErrorBody(err))
	}
}

func TestStatusCodeDefaults(t *testing.T) {
	if got := StatusCode(errors.New("dial tcp: refused")); got != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", got)
	}
	if !IsUnauthorized(&APIError{StatusCode: http.StatusUnauthorized}) {
		t.Fatalf("expected 401 to be unauthorized")
	}
}

func TestGetJSONDecodesGzip(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		_, _ = gz.Write([]byte(`{"id":"1","first_name":"Ivan"}`))
		_ = gz.Close()

		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(buf.Bytes())
	})

	raw, err := client.Me(context.Background(), "access")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `{"id":"1","first_name":"Ivan"}` {
		t.Fatalf("unexpected body %s", raw)
	}
}

func TestNegotiationsForwardsPaging(t *testing.T) {
	client, fake := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"id":"n1","vacancy":{"id":"v1"}},{"id":"n2"}]}`))
	})

	items, err := client.Negotiations(context.Background(), "access", url.Values{"page": {"1"}, "ignored": {"x"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].VacancyID() != "v1" || items[1].VacancyID() != "" {
		t.Fatalf("unexpected vacancy ids %q %q", items[0].VacancyID(), items[1].VacancyID())
	}

	req := fake.last()
	if req.Query.Get("page") != "1" || req.Query.Has("ignored") {
		t.Fatalf("unexpected query %v", req.Query)
	}
}

func TestVacancyMergeEmployer(t *testing.T) {
	vacancy := &Vacancy{ID: "v1", Employer: map[string]any{"id": "e1", "name": "Acme"}}

	id, err := vacancy.EmployerID()
	if err != nil || id != "e1" {
		t.Fatalf("unexpected employer id %q, %v", id, err)
	}

	merged := vacancy.MergeEmployer(&EmployerDetails{LastOnlineAt: "2024-01-01T10:00:00+0300", ResponseRate: 87.5})
	if merged["name"] != "Acme" || merged["last_online"] != "2024-01-01T10:00:00+0300" || merged["response_rate"] != 87.5 {
		t.Fatalf("unexpected merge result %v", merged)
	}
	if _, ok := vacancy.Employer["last_online"]; ok {
		t.Fatalf("original employer must not be modified")
	}

	if _, err := (&Vacancy{ID: "v2"}).EmployerID(); !errors.Is(err, ErrNoEmployer) {
		t.Fatalf("expected ErrNoEmployer, got %v", err)
	}
}
