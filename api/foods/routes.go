package foods

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-playground/validator/v10"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/food-connect-platform/food-connect-api/db"
	"github.com/food-connect-platform/food-connect-api/types"
	"github.com/food-connect-platform/food-connect-api/util"
)

var validate = validator.New()

// Routes creates a new Chi router with all of the routes for the food resource,
// at the root level
func Routes(foodProvider db.FoodProvider) *chi.Mux {
	router := chi.NewRouter()
	router.Get("/", GetAll(foodProvider))
	router.Post("/", Create(foodProvider))
	router.Get("/{id}", GetSingle(foodProvider))
	router.Put("/{id}", Update(foodProvider))
	router.Delete("/{id}", Delete(foodProvider))
	router.Put("/{id}/request", Request(foodProvider))
	return router
}

// GetAll gets all foods from the database,
// with an optional search querystring param matched against the food name
func GetAll(foodProvider db.FoodProvider) http.HandlerFunc {
	// Use a closure to inject the database provider
	return func(w http.ResponseWriter, r *http.Request) {
		foods, err := foodProvider.GetAllFoods(r.Context())
		if err != nil {
			util.Error(w, r, err, "Failed to fetch foods")
			return
		}

		// See if we have search parameter,
		// which can be empty
		search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search")))
		if search != "" {
			matching := []types.Food{}
			for _, food := range foods {
				if fuzzy.MatchNormalized(search, strings.ToLower(food.Name())) {
					matching = append(matching, food)
				}
			}
			foods = matching
		}

		util.JSON(w, r, http.StatusOK, foods)
	}
}

// GetAvailable gets the foods that can still be requested
func GetAvailable(foodProvider db.FoodProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		foods, err := foodProvider.GetFoodsByStatus(r.Context(), types.FoodAvailable)
		if err != nil {
			util.Error(w, r, err, "Failed to fetch available foods")
			return
		}

		util.JSON(w, r, http.StatusOK, foods)
	}
}

// GetSingle gets a single food from the database by its ID
func GetSingle(foodProvider db.FoodProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := db.ParseID(chi.URLParam(r, "id"))
		if err != nil {
			util.Error(w, r, err, "Failed to fetch food")
			return
		}

		food, err := foodProvider.GetFood(r.Context(), id)
		if err != nil {
			util.Error(w, r, err, "Failed to fetch food")
			return
		}

		// Return the single food as the top-level JSON
		util.JSON(w, r, http.StatusOK, food)
	}
}

// Create creates a new food in the database
func Create(foodProvider db.FoodProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var food types.Food
		err := util.DecodeJSON(r, &food)
		if err != nil {
			util.Error(w, r, err, "Failed to add food")
			return
		}

		// Fields other than the status are stored as sent.
		// New listings start out available
		if food.Status == "" {
			food.Status = types.FoodAvailable
		}
		if err := validate.Struct(food); err != nil {
			util.Error(w, r, util.NewBadRequestError("invalid food: %s", err), "Failed to add food")
			return
		}
		food.Set(types.CreatedAtField, time.Now().UTC())

		id, err := foodProvider.CreateFood(r.Context(), food)
		if err != nil {
			util.Error(w, r, err, "Failed to add food")
			return
		}

		util.JSON(w, r, http.StatusCreated, types.InsertResult{
			Acknowledged: true,
			InsertedID:   id.Hex(),
		})
	}
}

// Update overwrites the name, quantity and pickup location of a food
func Update(foodProvider db.FoodProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := db.ParseID(chi.URLParam(r, "id"))
		if err != nil {
			util.Error(w, r, err, "Failed to update food")
			return
		}

		var update types.FoodUpdate
		err = util.DecodeJSON(r, &update)
		if err != nil {
			util.Error(w, r, err, "Failed to update food")
			return
		}

		updated, err := foodProvider.UpdateFood(r.Context(), id, update)
		if err != nil {
			util.Error(w, r, err, "Failed to update food")
			return
		}

		// Return the updated food as the top-level JSON
		util.JSON(w, r, http.StatusOK, updated)
	}
}

// Request marks a food as requested and attaches the request body to it
func Request(foodProvider db.FoodProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := db.ParseID(chi.URLParam(r, "id"))
		if err != nil {
			util.Error(w, r, err, "Failed to update food status")
			return
		}

		requestDetails := make(map[string]interface{})
		err = util.DecodeJSON(r, &requestDetails)
		if err != nil {
			util.Error(w, r, err, "Failed to update food status")
			return
		}

		err = foodProvider.RequestFood(r.Context(), id, requestDetails)
		if err != nil {
			util.Error(w, r, err, "Failed to update food status")
			return
		}

		util.JSON(w, r, http.StatusOK, types.SuccessResponse{
			Success: true,
			Message: "Food status updated to requested",
		})
	}
}

// Delete deletes a food in the database
func Delete(foodProvider db.FoodProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := db.ParseID(chi.URLParam(r, "id"))
		if err != nil {
			util.Error(w, r, err, "Failed to delete food")
			return
		}

		deleted, err := foodProvider.DeleteFood(r.Context(), id)
		if err != nil {
			util.Error(w, r, err, "Failed to delete food")
			return
		}

		util.JSON(w, r, http.StatusOK, types.SuccessResponse{
			Success: true,
			Message: "Food deleted successfully",
			Result:  types.DeleteResult{DeletedCount: deleted},
		})
	}
}
