package requests

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/food-connect-platform/food-connect-api/db"
	"github.com/food-connect-platform/food-connect-api/types"
	"github.com/food-connect-platform/food-connect-api/util"
)

// Routes creates a new Chi router with all of the routes for the pickup request resource,
// at the root level
func Routes(requestProvider db.RequestProvider) *chi.Mux {
	router := chi.NewRouter()
	router.Get("/", GetAll(requestProvider))
	router.Post("/", Create(requestProvider))
	return router
}

// GetAll gets all pickup requests from the database
func GetAll(requestProvider db.RequestProvider) http.HandlerFunc {
	// Use a closure to inject the database provider
	return func(w http.ResponseWriter, r *http.Request) {
		requests, err := requestProvider.GetAllRequests(r.Context())
		if err != nil {
			util.Error(w, r, err, "Failed to fetch request")
			return
		}

		util.JSON(w, r, http.StatusOK, requests)
	}
}

// Create stores the request body as-is; requests have no enforced shape
func Create(requestProvider db.RequestProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		request := make(types.Document)
		err := util.DecodeJSON(r, &request)
		if err != nil {
			util.Error(w, r, err, "Failed to submit food request")
			return
		}

		id, err := requestProvider.CreateRequest(r.Context(), request)
		if err != nil {
			util.Error(w, r, err, "Failed to submit food request")
			return
		}

		util.JSON(w, r, http.StatusCreated, types.SuccessResponse{
			Success: true,
			Message: "Food request submitted successfully!",
			Result: types.InsertResult{
				Acknowledged: true,
				InsertedID:   id.Hex(),
			},
		})
	}
}
