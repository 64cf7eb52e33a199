package handlers

import (
	"net/http"
	"time"

	"github.com/nkiryanov/library/internal/handlers/render"
	"github.com/nkiryanov/library/internal/logger"
	"github.com/nkiryanov/library/internal/models"
	"github.com/nkiryanov/library/internal/repository"
)

type bookRequest struct {
	Title  string `json:"title" validate:"required,notblank,max=255"`
	Author string `json:"author" validate:"required,notblank,max=255"`
	Stock  int32  `json:"stock" validate:"min=0"`
}

func (b bookRequest) params() repository.BookParams {
	return repository.BookParams{Title: b.Title, Author: b.Author, Stock: b.Stock}
}

type bookResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Stock     int32     `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newBookResponse(b models.Book) bookResponse {
	return bookResponse{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		Stock:     b.Stock,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func handleListBooks(libraryService libraryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params, err := listParams(r, repository.BookSortFields)
		if err != nil {
			renderError(w, l, err)
			return
		}

		page, err := libraryService.ListBooks(r.Context(), params)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, newPageResponse(page, params, newBookResponse))
	})
}

func handleGetBook(libraryService libraryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			renderError(w, l, err)
			return
		}

		book, err := libraryService.GetBook(r.Context(), id)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, newBookResponse(book))
	})
}

func handleCreateBook(libraryService libraryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[bookRequest](w, r)
		if err != nil {
			return
		}

		book, err := libraryService.CreateBook(r.Context(), data.params())
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSONWithStatus(w, newBookResponse(book), http.StatusCreated)
	})
}

func handleUpdateBook(libraryService libraryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			renderError(w, l, err)
			return
		}

		data, err := render.BindAndValidate[bookRequest](w, r)
		if err != nil {
			return
		}

		book, err := libraryService.UpdateBook(r.Context(), id, data.params())
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, newBookResponse(book))
	})
}

func handleDeleteBook(libraryService libraryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			renderError(w, l, err)
			return
		}

		if err := libraryService.DeleteBook(r.Context(), id); err != nil {
			renderError(w, l, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

// Distinct members who ever borrowed the book
func handleListBookBorrowers(libraryService libraryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			renderError(w, l, err)
			return
		}

		params, err := listParams(r, repository.MemberSortFields)
		if err != nil {
			renderError(w, l, err)
			return
		}

		page, err := libraryService.ListBookBorrowers(r.Context(), id, params)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, newPageResponse(page, params, newMemberResponse))
	})
}
