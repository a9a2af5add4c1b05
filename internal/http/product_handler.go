package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/Joshithach18/ecommerce-backend/internal/product"
)

type ProductHandler struct {
	repo   product.Repository
	logger *log.Logger
}

func NewProductHandler(repo product.Repository, logger *log.Logger) *ProductHandler {
	return &ProductHandler{repo: repo, logger: logger}
}

type createProductRequest struct {
	Name       string         `json:"name"`
	Price      float64        `json:"price"`
	Quantity   int            `json:"quantity"`
	Attributes map[string]any `json:"attributes"`
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}

	p, err := h.repo.Create(r.Context(), req.Name, req.Price, req.Quantity, req.Attributes)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := product.DefaultPage()
	var ok bool
	if page.Limit, ok = intParam(w, q.Get("limit"), "limit", page.Limit); !ok {
		return
	}
	if page.Offset, ok = intParam(w, q.Get("offset"), "offset", page.Offset); !ok {
		return
	}

	filter := product.Filter{
		Name: q.Get("name"),
		Size: q.Get("size"),
	}

	products, err := h.repo.List(r.Context(), filter, page)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

// intParam parses an optional integer query parameter, writing a validation
// error response and returning ok=false when it is not an integer.
func intParam(w http.ResponseWriter, raw, name string, def int) (int, bool) {
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "invalid "+name+": must be an integer")
		return 0, false
	}
	return v, true
}
