package handlers

import (
	"net/http"
	"time"

	"github.com/nkiryanov/library/internal/handlers/render"
	"github.com/nkiryanov/library/internal/logger"
	"github.com/nkiryanov/library/internal/models"
	"github.com/nkiryanov/library/internal/repository"
)

type memberRequest struct {
	Name  string `json:"name" validate:"required,notblank,max=255"`
	Email string `json:"email" validate:"required,email,max=254"`
}

type memberResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newMemberResponse(m models.Member) memberResponse {
	return memberResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func handleListMembers(libraryService libraryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params, err := listParams(r, repository.MemberSortFields)
		if err != nil {
			renderError(w, l, err)
			return
		}

		page, err := libraryService.ListMembers(r.Context(), params)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, newPageResponse(page, params, newMemberResponse))
	})
}

func handleGetMember(libraryService libraryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			renderError(w, l, err)
			return
		}

		member, err := libraryService.GetMember(r.Context(), id)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, newMemberResponse(member))
	})
}

func handleCreateMember(libraryService libraryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[memberRequest](w, r)
		if err != nil {
			return
		}

		member, err := libraryService.CreateMember(r.Context(), repository.MemberParams{Name: data.Name, Email: data.Email})
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSONWithStatus(w, newMemberResponse(member), http.StatusCreated)
	})
}

func handleUpdateMember(libraryService libraryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			renderError(w, l, err)
			return
		}

		data, err := render.BindAndValidate[memberRequest](w, r)
		if err != nil {
			return
		}

		member, err := libraryService.UpdateMember(r.Context(), id, repository.MemberParams{Name: data.Name, Email: data.Email})
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, newMemberResponse(member))
	})
}

func handleDeleteMember(libraryService libraryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			renderError(w, l, err)
			return
		}

		if err := libraryService.DeleteMember(r.Context(), id); err != nil {
			renderError(w, l, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}
