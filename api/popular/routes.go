package popular

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/food-connect-platform/food-connect-api/db"
	"github.com/food-connect-platform/food-connect-api/util"
)

// Routes creates a new Chi router with the read-only routes for popular items
func Routes(popularProvider db.PopularProvider) *chi.Mux {
	router := chi.NewRouter()
	router.Get("/", GetAll(popularProvider))
	router.Get("/{id}", GetSingle(popularProvider))
	return router
}

// GetAll gets all popular items from the database
func GetAll(popularProvider db.PopularProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := popularProvider.GetAllPopular(r.Context())
		if err != nil {
			util.Error(w, r, err, "Failed to fetch popular items")
			return
		}

		util.JSON(w, r, http.StatusOK, items)
	}
}

// GetSingle gets a single popular item by its ID
func GetSingle(popularProvider db.PopularProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := db.ParseID(chi.URLParam(r, "id"))
		if err != nil {
			util.Error(w, r, err, "Failed to fetch popular item")
			return
		}

		item, err := popularProvider.GetPopular(r.Context(), id)
		if err != nil {
			util.Error(w, r, err, "Failed to fetch popular item")
			return
		}

		util.JSON(w, r, http.StatusOK, item)
	}
}
