package inventory

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vantage-erp/vantage-erp/internal/platform/httpx"
	"github.com/vantage-erp/vantage-erp/internal/rbac"
	"github.com/vantage-erp/vantage-erp/internal/shared"
)

// Handler serves the inventory and forecasting endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes attaches the /api/inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Get("/metrics", h.metrics)
	r.Get("/low-stock", h.lowStock)

	r.Group(func(r chi.Router) {
		r.Use(rbac.Require(shared.RoleAdmin, shared.RoleInventory))
		r.Post("/products", h.createProduct)
		r.Put("/products/{id}", h.updateProduct)
		r.Patch("/products/{id}/restock", h.restock)
		r.Patch("/products/{id}/adjust", h.adjust)
	})

	r.With(rbac.Require(shared.RoleAdmin)).Delete("/products/{id}", h.deactivate)
}

// MountForecastRoutes attaches the /api/ml routes.
func (h *Handler) MountForecastRoutes(r chi.Router) {
	r.Post("/predict-demand", h.predictDemand)
	r.Get("/stock-optimization", h.stockOptimization)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 50
	}

	filter := ListFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		LowStock: q.Get("lowStock") == "true",
		Page:     page,
		Limit:    limit,
	}
	if q.Get("active") != "" {
		active := q.Get("active") == "true"
		filter.Active = &active
	}

	products, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, listResponse{
		Products:   newProductViews(products),
		Pagination: shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewProductView(product))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Invalid("body", "request body must be valid JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, validationError(err))
		return
	}

	product, err := h.service.CreateProduct(r.Context(), CreateProductInput{
		SKU:          req.SKU,
		Name:         req.Name,
		Category:     req.Category,
		Description:  req.Description,
		Supplier:     req.Supplier,
		Location:     req.Location,
		UnitCost:     req.UnitCost,
		Quantity:     req.Quantity,
		ReorderLevel: req.ReorderLevel,
	})
	if err != nil {
		h.logger.Warn("create product", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewProductView(product))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	var req updateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Invalid("body", "request body must be valid JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, validationError(err))
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, UpdateProductInput{
		SKU:          req.SKU,
		Name:         req.Name,
		Category:     req.Category,
		Description:  req.Description,
		Supplier:     req.Supplier,
		Location:     req.Location,
		UnitCost:     req.UnitCost,
		Quantity:     req.Quantity,
		ReorderLevel: req.ReorderLevel,
		IsActive:     req.IsActive,
	})
	if err != nil {
		h.logger.Warn("update product", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewProductView(product))
}

func (h *Handler) restock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	var req restockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Invalid("body", "request body must be valid JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, validationError(err))
		return
	}

	product, err := h.service.Restock(r.Context(), id, req.Quantity, req.Ref)
	if err != nil {
		h.logger.Warn("restock product", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewProductView(product))
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	var req adjustRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Invalid("body", "request body must be valid JSON"))
		return
	}

	product, err := h.service.Adjust(r.Context(), id, req.Quantity, req.Reason, req.Ref)
	if err != nil {
		h.logger.Warn("adjust product", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewProductView(product))
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	product, err := h.service.Deactivate(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Product deactivated successfully",
		"product": NewProductView(product),
	})
}

func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.Metrics(r.Context())
	if err != nil {
		h.logger.Error("inventory metrics", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, metrics)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.LowStock(r.Context())
	if err != nil {
		h.logger.Error("low stock listing", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newProductViews(products))
}

func (h *Handler) predictDemand(w http.ResponseWriter, r *http.Request) {
	var req predictDemandRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Invalid("body", "request body must be valid JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, validationError(err))
		return
	}

	report, err := h.service.PredictDemand(r.Context(), req.ProductIDs, req.ForecastDays)
	if err != nil {
		h.logger.Warn("predict demand", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) stockOptimization(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.StockOptimization(r.Context())
	if err != nil {
		h.logger.Warn("stock optimization", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, shared.Invalid("id", "invalid product id"))
		return 0, false
	}
	return id, true
}

func validationError(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		return shared.Invalid(errs[0].Field(), "failed validation on "+errs[0].Tag())
	}
	return shared.Invalid("body", "validation failed")
}
