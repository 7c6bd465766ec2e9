package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"github.com/atvirokodosprendimai/employees/internal/adapters/memory"
	"github.com/atvirokodosprendimai/employees/internal/core/domain"
	"github.com/atvirokodosprendimai/employees/internal/core/usecase"
)

type stubSource struct {
	text string
	err  error
}

func (s stubSource) Fetch(context.Context) (string, error) { return s.text, s.err }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testRouter(quotes, jokes stubSource) http.Handler {
	log := quietLogger()
	enricher := usecase.NewEnricher(quotes, jokes, time.Second, log)
	svc := usecase.NewEmployeeService(memory.NewRepository(), enricher,
		usecase.WithClock(func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) }))
	return NewHandler(svc, log).Router()
}

func defaultRouter() http.Handler {
	return testRouter(stubSource{text: "a quote"}, stubSource{text: "a joke"})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func resultMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return payload["result"]
}

const lackey = `{"firstName":"A","lastName":"B","hireDate":"2020-03-01","role":"LACKEY"}`

func TestCreateScenario(t *testing.T) {
	h := defaultRouter()

	rec := do(t, h, http.MethodPost, "/employees", lackey)
	if rec.Code != http.StatusCreated {
		t.Fatalf("lackey: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, "/employees", `{"firstName":"A","lastName":"B","hireDate":"2020-03-01","role":"CEO"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first ceo: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, "/employees", `{"firstName":"A","lastName":"B","hireDate":"2020-03-01","role":"ceo"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("second ceo: expected 400, got %d", rec.Code)
	}
	if got := resultMessage(t, rec); got != "There can be only one employee with role [CEO]." {
		t.Fatalf("unexpected message %q", got)
	}

	rec = do(t, h, http.MethodPost, "/employees", `{"firstName":"A","lastName":"B","hireDate":"2999-01-01","role":"VP"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("future date: expected 400, got %d", rec.Code)
	}
	if got := resultMessage(t, rec); got != "The value of property [hireDate] must not be a date in the future." {
		t.Fatalf("unexpected message %q", got)
	}

	rec = do(t, h, http.MethodPost, "/employees", `{"firstName":"A","lastName":"B","hireDate":"2020-03-01","role":"LACKEYX"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad role: expected 400, got %d", rec.Code)
	}
	if got := resultMessage(t, rec); got != "The value of property [role] is invalid. It should be one of CEO, VP, MANAGER, LACKEY." {
		t.Fatalf("unexpected message %q", got)
	}

	rec = do(t, h, http.MethodGet, "/employees", "")
	var list []employeeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 || list[0].Role != "LACKEY" || list[1].Role != "CEO" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestCreateReportsFirstInvalidField(t *testing.T) {
	h := defaultRouter()
	rec := do(t, h, http.MethodPost, "/employees", `{"firstName":1,"hireDate":"nope","role":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := resultMessage(t, rec); got != "The value of property [firstName] is not the correct data type. It should be [string]." {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	h := defaultRouter()

	rec := do(t, h, http.MethodPost, "/employees", `{"firstName":"Ann","lastName":"Lee","hireDate":"2019-07-15","role":"manager"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/employees/") {
		t.Fatalf("unexpected Location %q", location)
	}

	rec = do(t, h, http.MethodGet, location, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got employeeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := employeeResponse{
		ID:        strings.TrimPrefix(location, "/employees/"),
		FirstName: "Ann",
		LastName:  "Lee",
		HireDate:  "2019-07-15",
		Role:      "MANAGER",
		Quote:     "a quote",
		Joke:      "a joke",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateSurvivesCollaboratorOutage(t *testing.T) {
	h := testRouter(stubSource{err: errors.New("down")}, stubSource{err: errors.New("down")})

	rec := do(t, h, http.MethodPost, "/employees", lackey)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var got employeeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Quote != usecase.FallbackQuote || got.Joke != usecase.FallbackJoke {
		t.Fatalf("expected fallbacks, got %+v", got)
	}
}

func TestCreateRejectsBadBodies(t *testing.T) {
	h := defaultRouter()
	for _, body := range []string{`not json`, `[1,2]`, `null`, lackey + ` {}`} {
		rec := do(t, h, http.MethodPost, "/employees", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
		if got := resultMessage(t, rec); got != msgInvalidBody {
			t.Fatalf("body %q: unexpected message %q", body, got)
		}
	}
}

func TestGetNotFound(t *testing.T) {
	rec := do(t, defaultRouter(), http.MethodGet, "/employees/abc", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if got := resultMessage(t, rec); got != "Resource with id [abc] not found." {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestReplace(t *testing.T) {
	h := defaultRouter()
	location := do(t, h, http.MethodPost, "/employees", lackey).Header().Get("Location")

	rec := do(t, h, http.MethodPut, location, lackey)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without quote, got %d", rec.Code)
	}
	if got := resultMessage(t, rec); got != "Required property [quote] is missing from the request payload." {
		t.Fatalf("unexpected message %q", got)
	}

	rec = do(t, h, http.MethodPut, location, `{"firstName":"X","lastName":"B","hireDate":"2020-03-01","role":"vp","quote":"q","joke":"j"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	var got employeeResponse
	if err := json.Unmarshal(do(t, h, http.MethodGet, location, "").Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.FirstName != "X" || got.Role != "VP" || got.Quote != "q" || got.Joke != "j" {
		t.Fatalf("unexpected employee after replace: %+v", got)
	}
}

func TestReplaceUnknownIDIsCheckedFirst(t *testing.T) {
	rec := do(t, defaultRouter(), http.MethodPut, "/employees/missing", `not json`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if got := resultMessage(t, rec); got != "Resource with id [missing] not found." {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	h := defaultRouter()
	location := do(t, h, http.MethodPost, "/employees", lackey).Header().Get("Location")

	for i := 0; i < 2; i++ {
		rec := do(t, h, http.MethodDelete, location, "")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("delete %d: expected 204, got %d", i, rec.Code)
		}
	}
	if rec := do(t, h, http.MethodGet, location, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestUnmatchedRoutes(t *testing.T) {
	h := defaultRouter()
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/nope"},
		{http.MethodPatch, "/employees/1"},
		{http.MethodDelete, "/employees"},
	} {
		rec := do(t, h, tc.method, tc.path, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s %s: expected 404, got %d", tc.method, tc.path, rec.Code)
		}
		if rec.Body.String() != "Not found" {
			t.Fatalf("%s %s: unexpected body %q", tc.method, tc.path, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
			t.Fatalf("%s %s: unexpected content type %q", tc.method, tc.path, ct)
		}
	}
}

func TestHandleDomainErrorUnknown(t *testing.T) {
	h := NewHandler(nil, quietLogger())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/employees/1", nil)
	h.handleDomainError(rec, req, errors.New("boom"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := resultMessage(t, rec); got != msgInternal {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestNotFoundUsesRouteID(t *testing.T) {
	h := NewHandler(nil, quietLogger())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/employees/x1", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "x1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	h.handleDomainError(rec, req, domain.ErrNotFound)
	if got := resultMessage(t, rec); got != "Resource with id [x1] not found." {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestWriteJSONEncodeErrorHandled(t *testing.T) {
	h := NewHandler(nil, quietLogger())
	rec := httptest.NewRecorder()
	h.writeJSON(rec, http.StatusOK, map[string]any{"bad": func() {}})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestHealthAndOpenAPI(t *testing.T) {
	h := defaultRouter()
	for _, path := range []string{"/healthz", "/openapi.json"} {
		rec := do(t, h, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
