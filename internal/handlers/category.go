package handlers

import (
	"doctrac/internal/logger"
	"doctrac/internal/models"
	"doctrac/internal/services"
	helpers "doctrac/internal/utils/helpers"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	service *services.CategoryService
}

func NewCategoryHandler(service *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// ListCategories godoc
// @Summary Список категорий
// @Tags categories
// @Security ApiKeyAuth
// @Produce json
// @Param all query bool false "Включая неактивные"
// @Success 200 {array} models.Category
// @Router /api/categories [get]
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("all") != "true"
	cats, err := h.service.ListCategories(r.Context(), onlyActive)
	if err != nil {
		logger.Log.Error("Ошибка получения категорий", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка получения категорий")
		return
	}
	helpers.JSON(w, http.StatusOK, cats)
}

// ListWithTypes godoc
// @Summary Активные категории с их типами документов
// @Tags categories
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} models.CategoryWithTypes
// @Router /api/categories/with-types [get]
func (h *CategoryHandler) ListWithTypes(w http.ResponseWriter, r *http.Request) {
	cats, err := h.service.ListWithTypes(r.Context())
	if err != nil {
		logger.Log.Error("Ошибка получения категорий с типами", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка получения категорий")
		return
	}
	helpers.JSON(w, http.StatusOK, cats)
}

// GetCategory godoc
// @Summary Категория по ID
// @Tags categories
// @Security ApiKeyAuth
// @Param id path int true "ID категории"
// @Success 200 {object} models.Category
// @Failure 404 {string} string "Категория не найдена"
// @Router /api/categories/{id} [get]
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	cat, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		helpers.Error(w, http.StatusNotFound, "Категория не найдена")
		return
	}
	helpers.JSON(w, http.StatusOK, cat)
}

// CreateCategory godoc
// @Summary Создать категорию (только для админа)
// @Tags admin
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body models.CreateCategoryRequest true "Данные категории"
// @Success 201 {object} models.Category
// @Failure 409 {string} string "Код уже занят"
// @Router /api/admin/categories [post]
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}
	if err := req.Validate(); err != nil {
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	cat, err := h.service.CreateCategory(r.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrCodeTaken) {
			helpers.Error(w, http.StatusConflict, "Код категории уже занят")
			return
		}
		logger.Log.Error("Ошибка создания категории", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка создания категории")
		return
	}
	helpers.JSON(w, http.StatusCreated, cat)
}

// UpdateCategory godoc
// @Summary Обновить категорию (только для админа)
// @Tags admin
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID категории"
// @Param input body models.UpdateCategoryRequest true "Изменяемые поля"
// @Success 200 {object} models.Category
// @Failure 404 {string} string "Категория не найдена"
// @Router /api/admin/categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}
	if err := req.Validate(); err != nil {
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	cat, err := h.service.UpdateCategory(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, services.ErrCodeTaken) {
			helpers.Error(w, http.StatusConflict, "Код категории уже занят")
			return
		}
		if errors.Is(err, services.ErrNotFound) {
			helpers.Error(w, http.StatusNotFound, "Категория не найдена")
			return
		}
		logger.Log.Error("Ошибка обновления категории", zap.Int("category_id", id), zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка обновления категории")
		return
	}
	helpers.JSON(w, http.StatusOK, cat)
}
