package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/garnizeh/staffdir/internal/assets"
	"github.com/garnizeh/staffdir/internal/directory"
	"github.com/garnizeh/staffdir/internal/export"
	"github.com/garnizeh/staffdir/pkg/models"
)

const maxJSONBody = 1 << 20

type EmployeesHandler struct {
	svc       *directory.Service
	assets    assets.Store
	maxUpload int64
}

func NewEmployeesHandler(svc *directory.Service, store assets.Store, maxUpload int64) *EmployeesHandler {
	return &EmployeesHandler{svc: svc, assets: store, maxUpload: maxUpload}
}

type createResponse struct {
	Message  string           `json:"message"`
	Employee *models.Employee `json:"employee"`
}

type toggleResponse struct {
	Message string `json:"message"`
	Active  bool   `json:"active"`
}

// listQuery reads page, pageSize (or its alias limit), search, sortField and
// sortOrder from the query string.
func listQuery(r *http.Request) (directory.ListQuery, string) {
	v := r.URL.Query()
	q := directory.ListQuery{
		Search:    v.Get("search"),
		SortField: v.Get("sortField"),
		SortOrder: v.Get("sortOrder"),
	}

	var err error
	if s := v.Get("page"); s != "" {
		if q.Page, err = strconv.Atoi(s); err != nil {
			return q, "Page must be a positive number"
		}
	}
	size := v.Get("pageSize")
	if size == "" {
		size = v.Get("limit")
	}
	if size != "" {
		if q.PageSize, err = strconv.Atoi(size); err != nil {
			return q, "Page size must be a positive number"
		}
	}
	return q, ""
}

func (h *EmployeesHandler) List(w http.ResponseWriter, r *http.Request) {
	q, bad := listQuery(r)
	if bad != "" {
		writeError(w, http.StatusBadRequest, bad)
		return
	}

	res, err := h.svc.List(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res, http.StatusOK)
}

// Export answers with an XLSX workbook of every employee matching the search,
// in the requested order.
func (h *EmployeesHandler) Export(w http.ResponseWriter, r *http.Request) {
	q, bad := listQuery(r)
	if bad != "" {
		writeError(w, http.StatusBadRequest, bad)
		return
	}

	employees, err := h.svc.Export(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, employees); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="employees.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (h *EmployeesHandler) Create(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		h.createMultipart(w, r)
		return
	}

	body, ok := readJSON(w, r)
	if !ok {
		return
	}
	if msg := validatePayload(r.Context(), createEmployeeSchema, body); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	var in models.EmployeeInput
	if err := json.Unmarshal(body, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	h.create(w, r, in)
}

// createMultipart accepts the employee fields as form values and an optional
// image file part. A failed upload does not block the create; the employee is
// stored without an image.
func (h *EmployeesHandler) createMultipart(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+maxJSONBody)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	in := models.EmployeeInput{
		Name:        r.FormValue("name"),
		Email:       r.FormValue("email"),
		Mobile:      r.FormValue("mobile"),
		Designation: r.FormValue("designation"),
		Course:      r.FormValue("course"),
		Gender:      models.Gender(r.FormValue("gender")),
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		writeError(w, http.StatusBadRequest, "Invalid image upload")
		return
	default:
		defer file.Close()
		ct, ok := assets.ImageType(header.Header.Get("Content-Type"))
		if !ok {
			writeError(w, http.StatusBadRequest, "Only PNG, JPEG, GIF or WebP images are allowed")
			return
		}
		ref, err := h.assets.Put(r.Context(), header.Filename, ct, file)
		if err != nil {
			logger.Warn("image upload failed, creating employee without image", slog.Any("err", err))
		} else {
			in.ImageRef = ref
		}
	}

	h.create(w, r, in)
}

func (h *EmployeesHandler) create(w http.ResponseWriter, r *http.Request, in models.EmployeeInput) {
	e, err := h.svc.Create(r.Context(), in)
	if err != nil {
		if in.ImageRef != "" {
			h.removeAsset(r.Context(), in.ImageRef)
		}
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, createResponse{Message: "Employee created successfully", Employee: e}, http.StatusCreated)
}

func (h *EmployeesHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, e, http.StatusOK)
}

func (h *EmployeesHandler) Update(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSON(w, r)
	if !ok {
		return
	}
	if msg := validatePayload(r.Context(), updateEmployeeSchema, body); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	var p models.EmployeePatch
	if err := json.Unmarshal(body, &p); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	e, err := h.svc.Update(r.Context(), mux.Vars(r)["id"], p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, e, http.StatusOK)
}

func (h *EmployeesHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	active, err := h.svc.ToggleActive(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, toggleResponse{Message: "Employee status updated", Active: active}, http.StatusOK)
}

// Delete removes the employee and then, best effort, its image.
func (h *EmployeesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	e, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if e.ImageRef != "" {
		h.removeAsset(r.Context(), e.ImageRef)
	}
	writeJSON(w, messageResponse{Message: "Employee deleted successfully"}, http.StatusOK)
}

func (h *EmployeesHandler) removeAsset(ctx context.Context, ref string) {
	if err := h.assets.Delete(ctx, ref); err != nil && !errors.Is(err, assets.ErrNotFound) {
		logger.Warn("remove image", slog.String("ref", ref), slog.Any("err", err))
	}
}

func readJSON(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return nil, false
	}
	return body, true
}
