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

type EntityHandler struct {
	service   *services.EntityService
	usageType string
}

func NewEntityHandler(service *services.EntityService, usageType string) *EntityHandler {
	return &EntityHandler{service: service, usageType: usageType}
}

// ListEntities godoc
// @Summary Список сущностей
// @Tags entities
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} models.Entity
// @Router /api/entities [get]
func (h *EntityHandler) ListEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := h.service.ListEntities(r.Context(), h.usageType)
	if err != nil {
		logger.Log.Error("Ошибка получения сущностей", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка получения сущностей")
		return
	}
	helpers.JSON(w, http.StatusOK, entities)
}

// GetEntity godoc
// @Summary Сущность по ID
// @Tags entities
// @Security ApiKeyAuth
// @Param id path int true "ID сущности"
// @Success 200 {object} models.Entity
// @Failure 404 {string} string "Сущность не найдена"
// @Router /api/entities/{id} [get]
func (h *EntityHandler) GetEntity(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	entity, err := h.service.GetEntity(r.Context(), id)
	if err != nil {
		helpers.Error(w, http.StatusNotFound, "Сущность не найдена")
		return
	}
	helpers.JSON(w, http.StatusOK, entity)
}

// CreateEntity godoc
// @Summary Создать сущность (только для админа)
// @Tags admin
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body models.CreateEntityRequest true "Данные сущности"
// @Success 201 {object} models.Entity
// @Failure 409 {string} string "Код уже занят"
// @Router /api/admin/entities [post]
func (h *EntityHandler) CreateEntity(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}
	if err := req.Validate(); err != nil {
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	entity, err := h.service.CreateEntity(r.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrCodeTaken) {
			helpers.Error(w, http.StatusConflict, "Код сущности уже занят")
			return
		}
		logger.Log.Error("Ошибка создания сущности", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка создания сущности")
		return
	}
	helpers.JSON(w, http.StatusCreated, entity)
}

// UpdateEntity godoc
// @Summary Обновить сущность (только для админа)
// @Tags admin
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID сущности"
// @Param input body models.UpdateEntityRequest true "Изменяемые поля"
// @Success 200 {object} models.Entity
// @Failure 409 {string} string "Код уже занят"
// @Router /api/admin/entities/{id} [put]
func (h *EntityHandler) UpdateEntity(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.UpdateEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}
	if err := req.Validate(); err != nil {
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	entity, err := h.service.UpdateEntity(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, services.ErrCodeTaken) {
			helpers.Error(w, http.StatusConflict, "Код сущности уже занят")
			return
		}
		logger.Log.Error("Ошибка обновления сущности", zap.Int("entity_id", id), zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка обновления сущности")
		return
	}
	helpers.JSON(w, http.StatusOK, entity)
}

// RebuildFolders godoc
// @Summary Перестроить дерево папок (только для админа)
// @Description Создаёт недостающие папки сущностей и категорий. Ничего не удаляет.
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} map[string]int
// @Router /api/admin/rebuild-folders [post]
func (h *EntityHandler) RebuildFolders(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.RebuildFolders(r.Context())
	if err != nil {
		logger.Log.Error("Ошибка перестроения папок", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка перестроения папок")
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]int{"entities": count})
}
