package handlers

import (
	"net/http"
	"time"

	"github.com/nkiryanov/library/internal/handlers/render"
)

func handleHealthCheck() http.Handler {
	type response struct {
		Service string    `json:"service"`
		Time    time.Time `json:"time"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, response{Service: "library", Time: time.Now().UTC()})
	})
}
