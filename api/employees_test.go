package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/xuri/excelize/v2"

	"github.com/garnizeh/staffdir/api"
	"github.com/garnizeh/staffdir/internal/assets"
	"github.com/garnizeh/staffdir/internal/auth"
	"github.com/garnizeh/staffdir/internal/config"
	"github.com/garnizeh/staffdir/internal/directory"
	"github.com/garnizeh/staffdir/internal/export"
	"github.com/garnizeh/staffdir/internal/repository/memory"
	"github.com/garnizeh/staffdir/pkg/models"
	"github.com/garnizeh/staffdir/pkg/repository/mock"
)

// recordingAssets wraps a memory asset store, optionally failing Put, and
// remembers which references were stored and deleted.
type recordingAssets struct {
	*assets.Memory
	putErr error

	mu      sync.Mutex
	puts    []string
	deletes []string
}

func (a *recordingAssets) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	if a.putErr != nil {
		return "", a.putErr
	}
	ref, err := a.Memory.Put(ctx, name, contentType, r)
	a.mu.Lock()
	a.puts = append(a.puts, ref)
	a.mu.Unlock()
	return ref, err
}

func (a *recordingAssets) Delete(ctx context.Context, ref string) error {
	a.mu.Lock()
	a.deletes = append(a.deletes, ref)
	a.mu.Unlock()
	return a.Memory.Delete(ctx, ref)
}

type testServer struct {
	router *mux.Router
	token  string
	store  *mock.EmployeeStore
	assets *recordingAssets
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repo := memory.New()
	mocks := mock.NewMocks(repo)
	provider := auth.NewProvider(repo, "testsecret", time.Hour)
	files := &recordingAssets{Memory: assets.NewMemory()}

	cfg := &config.Config{Assets: config.AssetsConfig{MaxUploadBytes: 1 << 20}}
	router := api.SetupRoutes(cfg, "test", "now", api.Deps{
		Directory: directory.NewService(mocks.Employees),
		Auth:      provider,
		Assets:    files,
	})

	if err := provider.Register(context.Background(), "admin", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	token, err := provider.Login(context.Background(), "admin", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return &testServer{router: router, token: token, store: mocks.Employees, assets: files}
}

func (s *testServer) do(t *testing.T, method, path string, body io.Reader, contentType string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	res := w.Result()
	data, _ := io.ReadAll(res.Body)
	res.Body.Close()
	return res, data
}

func (s *testServer) doJSON(t *testing.T, method, path string, v any) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if v != nil {
		b, _ := json.Marshal(v)
		body = bytes.NewReader(b)
	}
	return s.do(t, method, path, body, "application/json")
}

func employeeBody(name string, n int) map[string]string {
	return map[string]string{
		"name":        name,
		"email":       fmt.Sprintf("emp%d@example.com", n),
		"mobile":      "9876543210",
		"designation": "Manager",
		"course":      "MCA",
		"gender":      "Female",
	}
}

func (s *testServer) create(t *testing.T, name string, n int) models.Employee {
	t.Helper()
	res, data := s.doJSON(t, http.MethodPost, "/v1/employees", employeeBody(name, n))
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create %s: status %d body=%s", name, res.StatusCode, data)
	}
	var cr struct {
		Message  string          `json:"message"`
		Employee models.Employee `json:"employee"`
	}
	if err := json.Unmarshal(data, &cr); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	return cr.Employee
}

func errorOf(t *testing.T, data []byte) string {
	t.Helper()
	var er struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &er); err != nil {
		t.Fatalf("expected JSON error body, got %s", data)
	}
	return er.Error
}

func TestEmployeesRequireToken(t *testing.T) {
	s := newTestServer(t)
	s.token = ""
	res, data := s.do(t, http.MethodGet, "/v1/employees", nil, "")
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}
	if errorOf(t, data) == "" {
		t.Fatalf("expected error message")
	}

	s.token = "forged"
	if res, _ := s.do(t, http.MethodGet, "/v1/employees", nil, ""); res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forged token, got %d", res.StatusCode)
	}
}

func TestEmployeeLifecycle(t *testing.T) {
	s := newTestServer(t)
	e := s.create(t, "Alice", 1)
	if e.ID == "" || !e.Active || e.CreatedAt.IsZero() {
		t.Fatalf("unexpected created employee: %#v", e)
	}

	res, data := s.do(t, http.MethodGet, "/v1/employees/"+e.ID, nil, "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("get: %d %s", res.StatusCode, data)
	}

	// rejected update leaves the record unchanged
	res, data = s.doJSON(t, http.MethodPut, "/v1/employees/"+e.ID, map[string]string{"email": "not-an-email"})
	if res.StatusCode != http.StatusBadRequest || errorOf(t, data) != "Invalid email format" {
		t.Fatalf("bad email update: %d %s", res.StatusCode, data)
	}
	res, data = s.doJSON(t, http.MethodPut, "/v1/employees/"+e.ID, map[string]any{"id": "other", "name": "X"})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown field update: %d %s", res.StatusCode, data)
	}
	res, data = s.doJSON(t, http.MethodPut, "/v1/employees/"+e.ID, map[string]any{"name": 42})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("wrong type update: %d %s", res.StatusCode, data)
	}
	_, data = s.do(t, http.MethodGet, "/v1/employees/"+e.ID, nil, "")
	var got models.Employee
	json.Unmarshal(data, &got)
	if got.Email != e.Email || got.Name != "Alice" {
		t.Fatalf("record changed by rejected updates: %#v", got)
	}

	res, data = s.doJSON(t, http.MethodPut, "/v1/employees/"+e.ID, map[string]string{"name": "Alice Cooper", "mobile": "12345678901"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("update: %d %s", res.StatusCode, data)
	}
	json.Unmarshal(data, &got)
	if got.Name != "Alice Cooper" || got.Mobile != "12345678901" || got.ID != e.ID {
		t.Fatalf("update not applied: %#v", got)
	}

	for _, want := range []bool{false, true} {
		res, data = s.do(t, http.MethodPut, "/v1/employees/"+e.ID+"/active", nil, "")
		if res.StatusCode != http.StatusOK {
			t.Fatalf("toggle: %d %s", res.StatusCode, data)
		}
		var tr struct {
			Message string `json:"message"`
			Active  bool   `json:"active"`
		}
		json.Unmarshal(data, &tr)
		if tr.Active != want || tr.Message != "Employee status updated" {
			t.Fatalf("toggle response %s, want active=%v", data, want)
		}
	}

	res, data = s.do(t, http.MethodDelete, "/v1/employees/"+e.ID, nil, "")
	if res.StatusCode != http.StatusOK || !strings.Contains(string(data), "Employee deleted successfully") {
		t.Fatalf("delete: %d %s", res.StatusCode, data)
	}
	res, data = s.do(t, http.MethodGet, "/v1/employees/"+e.ID, nil, "")
	if res.StatusCode != http.StatusNotFound || errorOf(t, data) != "Employee not found" {
		t.Fatalf("get after delete: %d %s", res.StatusCode, data)
	}
	if res, _ := s.do(t, http.MethodDelete, "/v1/employees/"+e.ID, nil, ""); res.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", res.StatusCode)
	}
	if res, _ := s.do(t, http.MethodPut, "/v1/employees/missing/active", nil, ""); res.StatusCode != http.StatusNotFound {
		t.Fatalf("toggle missing: expected 404, got %d", res.StatusCode)
	}
}

func TestCreateEmployeeErrors(t *testing.T) {
	s := newTestServer(t)
	s.create(t, "Alice", 1)

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantError  string
	}{
		{"DuplicateEmail", employeeBody("Other", 1), http.StatusConflict, "Email already exists"},
		{"MissingField", map[string]string{"name": "Bob"}, http.StatusBadRequest, "All fields are required"},
		{"BadGender", func() map[string]string { b := employeeBody("Bob", 2); b["gender"] = "Robot"; return b }(), http.StatusBadRequest, "Gender must be Male, Female or Other"},
		{"UnknownField", map[string]any{"name": "Bob", "createdAt": "yesterday"}, http.StatusBadRequest, ""},
		{"NotJSON", "][", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res *http.Response
			var data []byte
			if raw, ok := tt.body.(string); ok {
				res, data = s.do(t, http.MethodPost, "/v1/employees", strings.NewReader(raw), "application/json")
			} else {
				res, data = s.doJSON(t, http.MethodPost, "/v1/employees", tt.body)
			}
			if res.StatusCode != tt.wantStatus {
				t.Fatalf("expected %d, got %d body=%s", tt.wantStatus, res.StatusCode, data)
			}
			msg := errorOf(t, data)
			if tt.wantError != "" && msg != tt.wantError {
				t.Fatalf("error = %q want %q", msg, tt.wantError)
			}
		})
	}

	res, data := s.do(t, http.MethodGet, "/v1/employees", nil, "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list: %d", res.StatusCode)
	}
	var lr directory.ListResult
	json.Unmarshal(data, &lr)
	if lr.TotalCount != 1 {
		t.Fatalf("failed creates changed the count: %d", lr.TotalCount)
	}
}

func TestListEmployees(t *testing.T) {
	s := newTestServer(t)
	for i := range 25 {
		s.create(t, fmt.Sprintf("Employee %02d", i), i)
	}

	tests := []struct {
		query      string
		wantStatus int
		wantLen    int
		wantFirst  string
	}{
		{"?page=1&pageSize=10&sortField=name", http.StatusOK, 10, "Employee 00"},
		{"?page=3&pageSize=10&sortField=name", http.StatusOK, 5, "Employee 20"},
		{"?page=4&pageSize=10", http.StatusOK, 0, ""},
		{"?limit=7&sortField=name&sortOrder=desc", http.StatusOK, 7, "Employee 24"},
		{"?search=employee%2001&sortField=name", http.StatusOK, 10, "Employee 00"},
		{"?sortField=createDate&sortOrder=asc", http.StatusOK, 10, "Employee 00"},
		{"?page=abc", http.StatusBadRequest, 0, ""},
		{"?pageSize=-1", http.StatusBadRequest, 0, ""},
		{"?pageSize=1000", http.StatusBadRequest, 0, ""},
		{"?sortField=password", http.StatusBadRequest, 0, ""},
		{"?sortOrder=up", http.StatusBadRequest, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res, data := s.do(t, http.MethodGet, "/v1/employees"+tt.query, nil, "")
			if res.StatusCode != tt.wantStatus {
				t.Fatalf("expected %d got %d body=%s", tt.wantStatus, res.StatusCode, data)
			}
			if tt.wantStatus != http.StatusOK {
				errorOf(t, data)
				return
			}
			var lr directory.ListResult
			if err := json.Unmarshal(data, &lr); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(lr.Records) != tt.wantLen {
				t.Fatalf("expected %d records, got %d", tt.wantLen, len(lr.Records))
			}
			if !strings.Contains(string(data), `"records":[`) {
				t.Fatalf("records must be a JSON array: %s", data)
			}
			if tt.wantFirst != "" && lr.Records[0].Name != tt.wantFirst {
				t.Fatalf("first record %q want %q", lr.Records[0].Name, tt.wantFirst)
			}
			if !strings.Contains(tt.query, "search") && (lr.TotalCount != 25 || lr.TotalActiveCount != 25) {
				t.Fatalf("unexpected counts %d/%d", lr.TotalCount, lr.TotalActiveCount)
			}
		})
	}
}

func TestListStoreFailureIsOpaque(t *testing.T) {
	s := newTestServer(t)
	s.store.CountErr = errors.New("connection reset by peer")

	res, data := s.do(t, http.MethodGet, "/v1/employees", nil, "")
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.StatusCode)
	}
	if msg := errorOf(t, data); msg != "Internal server error" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func multipartBody(t *testing.T, fields map[string]string, fileName, fileType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, fileName))
		h.Set("Content-Type", fileType)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		part.Write(content)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestCreateWithImage(t *testing.T) {
	s := newTestServer(t)
	body, ct := multipartBody(t, employeeBody("Alice", 1), "alice.png", "image/png", []byte("PNGDATA"))

	res, data := s.do(t, http.MethodPost, "/v1/employees", body, ct)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %s", res.StatusCode, data)
	}
	var cr struct {
		Employee models.Employee `json:"employee"`
	}
	json.Unmarshal(data, &cr)
	if !strings.HasPrefix(cr.Employee.ImageRef, assets.KeyPrefix) {
		t.Fatalf("expected imageRef, got %q", cr.Employee.ImageRef)
	}

	// uploads are served without a token
	s.token = ""
	res, data = s.do(t, http.MethodGet, "/"+cr.Employee.ImageRef, nil, "")
	if res.StatusCode != http.StatusOK || string(data) != "PNGDATA" {
		t.Fatalf("serve upload: %d %q", res.StatusCode, data)
	}
	if got := res.Header.Get("Content-Type"); got != "image/png" {
		t.Fatalf("content type %q", got)
	}
	if got := res.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("missing nosniff header, got %q", got)
	}
	if res, _ := s.do(t, http.MethodGet, "/uploads/missing.png", nil, ""); res.StatusCode != http.StatusNotFound {
		t.Fatalf("missing upload: expected 404, got %d", res.StatusCode)
	}
}

func TestCreateWithImageRejectsNonImage(t *testing.T) {
	tests := []struct {
		fileName string
		fileType string
	}{
		{"notes.txt", "text/plain"},
		{"x.html", "text/html"},
		{"logo.svg", "image/svg+xml"},
		{"blob.png", ""},
	}
	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			s := newTestServer(t)
			body, ct := multipartBody(t, employeeBody("Alice", 1), tt.fileName, tt.fileType, []byte("hi"))
			res, data := s.do(t, http.MethodPost, "/v1/employees", body, ct)
			if res.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d %s", res.StatusCode, data)
			}
			if len(s.assets.puts) != 0 {
				t.Fatalf("expected nothing stored, got %v", s.assets.puts)
			}
		})
	}
}

func TestUploadServedWithDeclaredImageType(t *testing.T) {
	files, err := assets.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	defer files.Close()

	repo := memory.New()
	provider := auth.NewProvider(repo, "testsecret", time.Hour)
	cfg := &config.Config{Assets: config.AssetsConfig{MaxUploadBytes: 1 << 20}}
	s := &testServer{router: api.SetupRoutes(cfg, "test", "now", api.Deps{
		Directory: directory.NewService(repo),
		Auth:      provider,
		Assets:    files,
	})}
	if err := provider.Register(context.Background(), "admin", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if s.token, err = provider.Login(context.Background(), "admin", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	body, ct := multipartBody(t, employeeBody("Alice", 1), "x.html", "image/png", []byte("<script>alert(1)</script>"))
	res, data := s.do(t, http.MethodPost, "/v1/employees", body, ct)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %s", res.StatusCode, data)
	}
	var cr struct {
		Employee models.Employee `json:"employee"`
	}
	json.Unmarshal(data, &cr)
	if !strings.HasSuffix(cr.Employee.ImageRef, ".png") {
		t.Fatalf("expected key with the declared type's extension, got %q", cr.Employee.ImageRef)
	}

	s.token = ""
	res, _ = s.do(t, http.MethodGet, "/"+cr.Employee.ImageRef, nil, "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("serve upload: %d", res.StatusCode)
	}
	if got := res.Header.Get("Content-Type"); got != "image/png" {
		t.Fatalf("content type %q, want image/png", got)
	}
	if got := res.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options %q, want nosniff", got)
	}
}

func TestCreateWithImageUploadFailure(t *testing.T) {
	s := newTestServer(t)
	s.assets.putErr = errors.New("bucket unavailable")
	body, ct := multipartBody(t, employeeBody("Alice", 1), "alice.png", "image/png", []byte("PNGDATA"))

	res, data := s.do(t, http.MethodPost, "/v1/employees", body, ct)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("expected create without image, got %d %s", res.StatusCode, data)
	}
	var cr struct {
		Employee models.Employee `json:"employee"`
	}
	json.Unmarshal(data, &cr)
	if cr.Employee.ImageRef != "" {
		t.Fatalf("expected no imageRef, got %q", cr.Employee.ImageRef)
	}
}

func TestCreateFailureRemovesUpload(t *testing.T) {
	s := newTestServer(t)
	s.create(t, "Alice", 1)
	body, ct := multipartBody(t, employeeBody("Alice Again", 1), "alice.png", "image/png", []byte("PNGDATA"))

	res, data := s.do(t, http.MethodPost, "/v1/employees", body, ct)
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d %s", res.StatusCode, data)
	}
	if len(s.assets.puts) != 1 || len(s.assets.deletes) != 1 || s.assets.puts[0] != s.assets.deletes[0] {
		t.Fatalf("expected uploaded image to be removed: puts=%v deletes=%v", s.assets.puts, s.assets.deletes)
	}
}

func TestDeleteRemovesImage(t *testing.T) {
	s := newTestServer(t)
	body, ct := multipartBody(t, employeeBody("Alice", 1), "alice.png", "image/png", []byte("PNGDATA"))
	res, data := s.do(t, http.MethodPost, "/v1/employees", body, ct)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %s", res.StatusCode, data)
	}
	var cr struct {
		Employee models.Employee `json:"employee"`
	}
	json.Unmarshal(data, &cr)

	if res, _ := s.do(t, http.MethodDelete, "/v1/employees/"+cr.Employee.ID, nil, ""); res.StatusCode != http.StatusOK {
		t.Fatalf("delete: %d", res.StatusCode)
	}
	if _, _, err := s.assets.Open(context.Background(), cr.Employee.ImageRef); !errors.Is(err, assets.ErrNotFound) {
		t.Fatalf("expected image removed, got %v", err)
	}
}

func TestExportEmployees(t *testing.T) {
	s := newTestServer(t)
	s.create(t, "Ana Silva", 1)
	s.create(t, "Juliana Reis", 2)
	s.create(t, "Bob", 3)

	res, data := s.do(t, http.MethodGet, "/v1/employees/export?search=ana&sortField=name&sortOrder=desc", nil, "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("export: %d %s", res.StatusCode, data)
	}
	if got := res.Header.Get("Content-Type"); got != export.ContentType {
		t.Fatalf("content type %q", got)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 || rows[1][1] != "Juliana Reis" || rows[2][1] != "Ana Silva" {
		t.Fatalf("unexpected export rows: %v", rows)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/v1/employees", nil, "")

	s.token = ""
	res, data := s.do(t, http.MethodGet, "/metrics", nil, "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("metrics: %d", res.StatusCode)
	}
	if !strings.Contains(string(data), `staffdir_http_requests_total{method="GET",route="/v1/employees",status="200"} 1`) {
		t.Fatalf("request counter missing:\n%s", data)
	}
}
