package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/dom/reader/internal/service"
)

type BookHandler struct {
	searchService *service.BookSearchService
}

func NewBookHandler(searchService *service.BookSearchService) *BookHandler {
	return &BookHandler{searchService: searchService}
}

// Search godoc
// @Summary Search the book catalog
// @Tags Books
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search term"
// @Success 200 {object} domain.VolumeSearchResult
// @Failure 400 {string} string "Search term is required"
// @Failure 502 {string} string "Book catalog unavailable"
// @Router /books/search [get]
func (h *BookHandler) Search(w http.ResponseWriter, r *http.Request) {
	result, err := h.searchService.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSearchTermRequired):
			http.Error(w, "Search term is required", http.StatusBadRequest)
		case errors.Is(err, service.ErrCatalogUnavailable):
			log.Printf("ERROR [books.Search]: %v", err)
			http.Error(w, "Book catalog unavailable", http.StatusBadGateway)
		default:
			log.Printf("ERROR [books.Search]: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}
