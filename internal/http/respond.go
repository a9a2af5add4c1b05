package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Joshithach18/ecommerce-backend/internal/order"
	"github.com/Joshithach18/ecommerce-backend/internal/product"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": msg,
		},
	})
}

// respondError maps domain errors onto the API's error taxonomy: validation
// failures to 422, unknown products to 404, stock shortfalls to 409, and
// anything else (the store being unreachable included) to 500.
func respondError(w http.ResponseWriter, logger *log.Logger, err error) {
	var pv *product.ValidationError
	var ov *order.ValidationError
	var stock *order.InsufficientStockError

	switch {
	case errors.As(err, &pv), errors.As(err, &ov):
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
	case errors.Is(err, order.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "product_not_found", err.Error())
	case errors.As(err, &stock):
		writeError(w, http.StatusConflict, "insufficient_stock", err.Error())
	default:
		logger.Printf("store error: %v", err)
		writeError(w, http.StatusInternalServerError, "store_unavailable", "the store could not complete the request")
	}
}
