package routes

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/SanskarBabel/BuyerBase/services"
	"github.com/SanskarBabel/BuyerBase/utils"

	"github.com/kataras/iris/v12"
)

// BuyerHandler exposes the buyer CRUD, list and import endpoints. All of
// them run behind the access-token verifier, so the acting user id is
// always present in the request values.
type BuyerHandler struct {
	Buyers *services.BuyerService
}

func NewBuyerHandler(buyers *services.BuyerService) *BuyerHandler {
	return &BuyerHandler{Buyers: buyers}
}

// ImportBuyersInput mirrors the parsed-CSV payload the UI posts: rows
// already split into objects, parsing itself happens client-side.
type ImportBuyersInput struct {
	Data []services.CreateBuyerInput `json:"data"`
}

// GET /api/buyers
func (h *BuyerHandler) List(ctx iris.Context) {
	filters := services.BuyerFilters{
		Page:         ctx.URLParamIntDefault("page", 1),
		Search:       strings.TrimSpace(ctx.URLParamDefault("search", "")),
		City:         ctx.URLParamDefault("city", ""),
		PropertyType: ctx.URLParamDefault("propertyType", ""),
		Status:       ctx.URLParamDefault("status", ""),
		Timeline:     ctx.URLParamDefault("timeline", ""),
		SortBy:       ctx.URLParamDefault("sortBy", "updatedAt"),
		SortOrder:    ctx.URLParamDefault("sortOrder", "desc"),
	}

	page, err := h.Buyers.List(filters)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(page)
}

// POST /api/buyers
func (h *BuyerHandler) Create(ctx iris.Context) {
	var input services.CreateBuyerInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	buyer, err := h.Buyers.Create(input, currentUserID(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(buyer)
}

// GET /api/buyers/{id}
func (h *BuyerHandler) Get(ctx iris.Context) {
	detail, err := h.Buyers.Get(ctx.Params().Get("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(detail)
}

// PUT /api/buyers/{id}
func (h *BuyerHandler) Update(ctx iris.Context) {
	var patch services.BuyerPatch
	if err := ctx.ReadJSON(&patch); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	buyer, err := h.Buyers.Update(ctx.Params().Get("id"), patch, currentUserID(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(buyer)
}

// POST /api/buyers/import
func (h *BuyerHandler) Import(ctx iris.Context) {
	var input ImportBuyersInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	report, err := h.Buyers.Import(input.Data, currentUserID(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(report)
}

func currentUserID(ctx iris.Context) string {
	return ctx.Values().GetString("userID")
}

func respondServiceError(ctx iris.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		ctx.StatusCode(http.StatusBadRequest)
		ctx.JSON(iris.Map{
			"error":   "validation_error",
			"message": "One or more fields failed validation",
			"fields":  verr.Fields,
		})
	case errors.Is(err, services.ErrNotFound):
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "buyer not found")
	case errors.Is(err, services.ErrForbidden):
		utils.JSONError(ctx, http.StatusForbidden, "forbidden", "you do not own this lead")
	case errors.Is(err, services.ErrTooManyRows):
		utils.JSONError(ctx, http.StatusBadRequest, "too_many_rows", err.Error())
	default:
		log.Printf("buyer route error: %v", err)
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "internal server error")
	}
}
