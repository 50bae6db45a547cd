package transport

import (
	"errors"
	"net/http"
	"strconv"

	"inventario-backend/internal/middleware"
	"inventario-backend/internal/repository"
	"inventario-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxImageMemory bounds the in-memory part of multipart parsing (10 MiB).
const maxImageMemory = 10 << 20

// CreateProductRequest represents the multipart create payload
type CreateProductRequest struct {
	Name        string `validate:"required"`
	Description string
	Price       string `validate:"required"`
	Stock       string `validate:"required"`
	Category    string `validate:"required"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes. Reads and the category filter
// are public; writes require an authenticated admin.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/productos", func(r chi.Router) {
		// Public routes
		r.Get("/", h.List)
		r.Get("/categoria", h.FilterByCategoryQuery)
		r.Get("/categoria/{name}", h.FilterByCategoryPath)
		r.Get("/{param}", h.Get)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Patch("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List handles listing all products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Get handles retrieving a product by numeric id or case-insensitive name
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	param := chi.URLParam(r, "param")

	product, err := h.productService.Get(r.Context(), param)
	if err != nil {
		h.respondServiceError(w, err, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create handles product creation from a multipart form with an optional
// `imagen` file field
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageMemory); err != nil {
		h.logger.Debug("Failed to parse multipart form", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	req := CreateProductRequest{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
		Stock:       r.FormValue("stock"),
		Category:    r.FormValue("category"),
	}

	if err := middleware.ValidateRequest(req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			{Field: "price", Message: "Invalid decimal value"},
		})
		return
	}

	stock, err := decimal.NewFromString(req.Stock)
	if err != nil {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			{Field: "stock", Message: "Invalid decimal value"},
		})
		return
	}

	image, err := h.imageFromForm(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid image upload")
		return
	}

	input := service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Stock:       stock,
		Category:    req.Category,
	}

	product, err := h.productService.Create(r.Context(), input, image)
	if err != nil {
		h.respondServiceError(w, err, "failed to create product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update handles partial product updates; only fields present in the form are
// changed, and a new `imagen` replaces the remote image
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := r.ParseMultipartForm(maxImageMemory); err != nil {
		h.logger.Debug("Failed to parse multipart form", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	input := service.UpdateProductInput{
		Name:        formValue(r, "name"),
		Description: formValue(r, "description"),
		Category:    formValue(r, "category"),
	}

	if raw := formValue(r, "price"); raw != nil {
		price, err := decimal.NewFromString(*raw)
		if err != nil {
			middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
				{Field: "price", Message: "Invalid decimal value"},
			})
			return
		}
		input.Price = &price
	}

	if raw := formValue(r, "stock"); raw != nil {
		stock, err := decimal.NewFromString(*raw)
		if err != nil {
			middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
				{Field: "stock", Message: "Invalid decimal value"},
			})
			return
		}
		input.Stock = &stock
	}

	image, err := h.imageFromForm(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid image upload")
		return
	}

	product, err := h.productService.Update(r.Context(), id, input, image)
	if err != nil {
		h.respondServiceError(w, err, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete handles product deletion, returning 204 on success
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, err, "failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// FilterByCategoryQuery handles GET /productos/categoria?categoria=NAME
func (h *ProductHandler) FilterByCategoryQuery(w http.ResponseWriter, r *http.Request) {
	h.filterByCategory(w, r, r.URL.Query().Get("categoria"))
}

// FilterByCategoryPath handles GET /productos/categoria/{name}
func (h *ProductHandler) FilterByCategoryPath(w http.ResponseWriter, r *http.Request) {
	h.filterByCategory(w, r, chi.URLParam(r, "name"))
}

func (h *ProductHandler) filterByCategory(w http.ResponseWriter, r *http.Request, name string) {
	products, err := h.productService.FilterByCategory(r.Context(), name)
	if err != nil {
		h.respondServiceError(w, err, "failed to filter products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// imageFromForm extracts the optional `imagen` file field. A missing file is
// not an error; the product simply has no image.
func (h *ProductHandler) imageFromForm(r *http.Request) (*service.ImageUpload, error) {
	file, header, err := r.FormFile("imagen")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}

	return &service.ImageUpload{File: file, Filename: header.Filename}, nil
}

// respondServiceError maps service errors onto the error taxonomy
func (h *ProductHandler) respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, repository.ErrCategoryNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "category not found")
	case errors.Is(err, service.ErrCategoryNameRequired):
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			{Field: "categoria", Message: "This field is required"},
		})
	case errors.Is(err, service.ErrImageUpload):
		h.logger.Error("Media store upload failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "image upload failed")
	default:
		h.logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

// formValue returns a pointer to the form value when the key was present in
// the request, nil otherwise. Distinguishes "field omitted" from "field empty"
// for partial updates.
func formValue(r *http.Request, key string) *string {
	values, ok := r.Form[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}
