package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/dom/reader/internal/api/middleware"
	"github.com/dom/reader/internal/domain"
	"github.com/dom/reader/internal/service"
	"github.com/go-chi/chi/v5"
)

type ReadBookHandler struct {
	readBookService *service.ReadBookService
}

func NewReadBookHandler(readBookService *service.ReadBookService) *ReadBookHandler {
	return &ReadBookHandler{readBookService: readBookService}
}

// ReadBookRequest is the body of Create and Update. Dates accept RFC 3339 or
// a bare YYYY-MM-DD.
type ReadBookRequest struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	ExternalCatalogID string  `json:"externalCatalogId"`
	StartDate         *string `json:"startDate"`
	EndDate           *string `json:"endDate"`
}

const dateOnly = "2006-01-02"

func parseOptionalDate(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, *v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateOnly, *v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (req ReadBookRequest) toInput() (service.ReadBookInput, error) {
	start, err := parseOptionalDate(req.StartDate)
	if err != nil {
		return service.ReadBookInput{}, errors.New("startDate: invalid date")
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return service.ReadBookInput{}, errors.New("endDate: invalid date")
	}
	return service.ReadBookInput{
		ID:                req.ID,
		Name:              req.Name,
		ExternalCatalogID: req.ExternalCatalogID,
		StartDate:         start,
		EndDate:           end,
	}, nil
}

// List godoc
// @Summary List the caller's read books
// @Tags ReadBooks
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.ReadBook
// @Router /readbooks [get]
func (h *ReadBookHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	books, err := h.readBookService.List(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR [readbooks.List] userID=%s: %v", userID, err)
		http.Error(w, "Failed to get read books", http.StatusInternalServerError)
		return
	}
	if books == nil {
		books = []*domain.ReadBook{}
	}

	writeJSON(w, http.StatusOK, books)
}

// Get godoc
// @Summary Get one read book
// @Tags ReadBooks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Read book id"
// @Success 200 {object} domain.ReadBook
// @Failure 404 {string} string "Read book not found"
// @Router /readbooks/{id} [get]
func (h *ReadBookHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}

	book, err := h.readBookService.Get(r.Context(), userID, id)
	if err != nil {
		h.writeError(w, "readbooks.Get", userID, err)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

// Create godoc
// @Summary Record a read book
// @Tags ReadBooks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ReadBookRequest true "Book"
// @Success 201 {object} domain.ReadBook
// @Failure 400 {string} string "Validation error"
// @Router /readbooks/Create [post]
func (h *ReadBookHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	input, ok := decodeReadBook(w, r)
	if !ok {
		return
	}

	book, err := h.readBookService.Create(r.Context(), userID, input)
	if err != nil {
		h.writeError(w, "readbooks.Create", userID, err)
		return
	}

	writeJSON(w, http.StatusCreated, book)
}

// Update godoc
// @Summary Update a read book
// @Tags ReadBooks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ReadBookRequest true "Book including its id"
// @Success 200 {object} domain.ReadBook
// @Failure 400 {string} string "Validation error"
// @Failure 404 {string} string "Read book not found"
// @Router /readbooks/Update [put]
func (h *ReadBookHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	input, ok := decodeReadBook(w, r)
	if !ok {
		return
	}
	if input.ID <= 0 {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}

	book, err := h.readBookService.Update(r.Context(), userID, input)
	if err != nil {
		h.writeError(w, "readbooks.Update", userID, err)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

// Delete godoc
// @Summary Delete a read book
// @Tags ReadBooks
// @Security BearerAuth
// @Param id path int true "Read book id"
// @Success 200
// @Failure 404 {string} string "Read book not found"
// @Router /readbooks/{id} [delete]
func (h *ReadBookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}

	if err := h.readBookService.Delete(r.Context(), userID, id); err != nil {
		h.writeError(w, "readbooks.Delete", userID, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func decodeReadBook(w http.ResponseWriter, r *http.Request) (service.ReadBookInput, bool) {
	var req ReadBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return service.ReadBookInput{}, false
	}
	input, err := req.toInput()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return service.ReadBookInput{}, false
	}
	return input, true
}

func (h *ReadBookHandler) writeError(w http.ResponseWriter, op, userID string, err error) {
	switch {
	case errors.Is(err, service.ErrReadBookNotFound):
		http.Error(w, "Read book not found", http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("ERROR [%s] userID=%s: %v", op, userID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
