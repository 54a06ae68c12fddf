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

type DocumentTypeHandler struct {
	service *services.DocumentTypeService
}

func NewDocumentTypeHandler(service *services.DocumentTypeService) *DocumentTypeHandler {
	return &DocumentTypeHandler{service: service}
}

// ListDocumentTypes godoc
// @Summary Типы документов (опционально по категории)
// @Tags document-types
// @Security ApiKeyAuth
// @Produce json
// @Param category_id query int false "ID категории"
// @Success 200 {array} models.DocumentType
// @Router /api/document-types [get]
func (h *DocumentTypeHandler) ListDocumentTypes(w http.ResponseWriter, r *http.Request) {
	var categoryID *int
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			helpers.Error(w, http.StatusBadRequest, "Невалидный category_id")
			return
		}
		categoryID = &id
	}

	types, err := h.service.ListByCategory(r.Context(), categoryID, true)
	if err != nil {
		logger.Log.Error("Ошибка получения типов документов", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка получения типов документов")
		return
	}
	helpers.JSON(w, http.StatusOK, types)
}

// CreateDocumentType godoc
// @Summary Создать тип документа (только для админа)
// @Tags admin
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body models.CreateDocumentTypeRequest true "Данные типа"
// @Success 201 {object} models.DocumentType
// @Failure 404 {string} string "Категория не найдена"
// @Failure 409 {string} string "Код уже занят в категории"
// @Router /api/admin/document-types [post]
func (h *DocumentTypeHandler) CreateDocumentType(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDocumentTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}
	if err := req.Validate(); err != nil {
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	docType, err := h.service.CreateDocumentType(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			helpers.Error(w, http.StatusNotFound, "Категория не найдена")
		case errors.Is(err, services.ErrCodeTaken):
			helpers.Error(w, http.StatusConflict, "Код типа уже занят в этой категории")
		default:
			logger.Log.Error("Ошибка создания типа документа", zap.Error(err))
			helpers.Error(w, http.StatusInternalServerError, "Ошибка создания типа документа")
		}
		return
	}
	helpers.JSON(w, http.StatusCreated, docType)
}

// UpdateDocumentType godoc
// @Summary Обновить тип документа (только для админа)
// @Tags admin
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID типа"
// @Param input body models.UpdateDocumentTypeRequest true "Изменяемые поля"
// @Success 200 {object} models.DocumentType
// @Failure 404 {string} string "Тип не найден"
// @Router /api/admin/document-types/{id} [put]
func (h *DocumentTypeHandler) UpdateDocumentType(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.UpdateDocumentTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}
	if err := req.Validate(); err != nil {
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	docType, err := h.service.UpdateDocumentType(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			helpers.Error(w, http.StatusNotFound, "Тип документа не найден")
		case errors.Is(err, services.ErrCodeTaken):
			helpers.Error(w, http.StatusConflict, "Код типа уже занят в этой категории")
		default:
			logger.Log.Error("Ошибка обновления типа документа", zap.Int("type_id", id), zap.Error(err))
			helpers.Error(w, http.StatusInternalServerError, "Ошибка обновления типа документа")
		}
		return
	}
	helpers.JSON(w, http.StatusOK, docType)
}

// DeleteDocumentType godoc
// @Summary Удалить тип документа (только для админа)
// @Tags admin
// @Security ApiKeyAuth
// @Param id path int true "ID типа"
// @Success 200 {string} string "Тип удалён"
// @Failure 404 {string} string "Тип не найден"
// @Router /api/admin/document-types/{id} [delete]
func (h *DocumentTypeHandler) DeleteDocumentType(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	if err := h.service.DeleteDocumentType(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			helpers.Error(w, http.StatusNotFound, "Тип документа не найден")
			return
		}
		logger.Log.Error("Ошибка удаления типа документа", zap.Int("type_id", id), zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка удаления типа документа")
		return
	}
	helpers.JSON(w, http.StatusOK, "Тип документа удалён")
}
