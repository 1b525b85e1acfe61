package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/api/presenter"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/catalog"
)

func (s *Server) handleListPokemon(w http.ResponseWriter, r *http.Request) {
	pageNo, err := queryInt(r, "pageNo", 0)
	if err != nil {
		presenter.Error(w, r, err.Error(), http.StatusBadRequest)
		return
	}
	pageSize, err := queryInt(r, "pageSize", catalog.DefaultPageSize)
	if err != nil {
		presenter.Error(w, r, err.Error(), http.StatusBadRequest)
		return
	}
	presenter.JSON(w, r, s.catalog.List(pageNo, pageSize), http.StatusOK)
}

func (s *Server) handleGetPokemon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := s.catalog.Get(id)
	if err != nil {
		catalogError(w, r, err)
		return
	}
	presenter.JSON(w, r, p, http.StatusOK)
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	reviews, err := s.catalog.Reviews(id)
	if err != nil {
		catalogError(w, r, err)
		return
	}
	presenter.JSON(w, r, reviews, http.StatusOK)
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	reviewID, ok := pathID(w, r, "reviewId")
	if !ok {
		return
	}
	review, err := s.catalog.Review(id, reviewID)
	if err != nil {
		catalogError(w, r, err)
		return
	}
	presenter.JSON(w, r, review, http.StatusOK)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		presenter.Error(w, r, "invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func catalogError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		presenter.Error(w, r, err.Error(), http.StatusNotFound)
		return
	}
	presenter.Error(w, r, "catalog error", http.StatusInternalServerError)
}
