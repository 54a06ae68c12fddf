package handlers

import (
	"doctrac/internal/logger"
	"doctrac/internal/middleware"
	"doctrac/internal/models"
	"doctrac/internal/services"
	helpers "doctrac/internal/utils/helpers"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// maxUploadSize — лимит multipart-загрузки PDF (20 МБ).
const maxUploadSize = 20 << 20

type DocumentHandler struct {
	service     *services.DocumentService
	authService *services.AuthService
	mediaRoot   string
	usageType   string
}

func NewDocumentHandler(service *services.DocumentService, authService *services.AuthService, mediaRoot, usageType string) *DocumentHandler {
	return &DocumentHandler{
		service:     service,
		authService: authService,
		mediaRoot:   mediaRoot,
		usageType:   usageType,
	}
}

// currentUser достаёт пользователя запроса по ID из JWT-контекста.
func (h *DocumentHandler) currentUser(r *http.Request) (*models.User, error) {
	userID, ok := r.Context().Value(middleware.ContextUserID).(int)
	if !ok {
		return nil, errors.New("нет user_id в контексте")
	}
	return h.authService.GetUserByID(r.Context(), userID)
}

// Dashboard godoc
// @Summary Данные главного экрана
// @Tags documents
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} models.Dashboard
// @Router /api/dashboard [get]
func (h *DocumentHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	viewer, err := h.currentUser(r)
	if err != nil {
		helpers.Error(w, http.StatusUnauthorized, "Пользователь не найден")
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), viewer, h.usageType)
	if err != nil {
		logger.Log.Error("Ошибка формирования дашборда", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка формирования дашборда")
		return
	}
	helpers.JSON(w, http.StatusOK, dashboard)
}

// ListDocuments godoc
// @Summary Список документов с фильтрами
// @Tags documents
// @Security ApiKeyAuth
// @Produce json
// @Param status query string false "Статус"
// @Param category_id query int false "ID категории"
// @Param entity_id query int false "ID сущности"
// @Param q query string false "Поиск по названию, заметкам и тегам"
// @Param page query int false "Страница"
// @Param page_size query int false "Размер страницы"
// @Success 200 {array} models.Document
// @Router /api/documents [get]
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	viewer, err := h.currentUser(r)
	if err != nil {
		helpers.Error(w, http.StatusUnauthorized, "Пользователь не найден")
		return
	}

	filter := models.DocumentFilter{
		Status: r.URL.Query().Get("status"),
		Query:  r.URL.Query().Get("q"),
	}
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			filter.CategoryID = &id
		}
	}
	if raw := r.URL.Query().Get("entity_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			filter.EntityID = &id
		}
	}

	limit, offset := parsePagination(r)
	docs, total, err := h.service.List(r.Context(), filter, viewer, limit, offset)
	if err != nil {
		logger.Log.Error("Ошибка получения документов", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка получения документов")
		return
	}

	helpers.JSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"total":     total,
	})
}

// UploadDocument godoc
// @Summary Загрузить PDF-документ
// @Description Принимает multipart-форму: обязательный файл file (только PDF)
// @Description и опциональные title, category_id, document_type_id, entity_id, document_date, notes, tags.
// @Tags documents
// @Security ApiKeyAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF-файл"
// @Success 201 {object} map[string]int
// @Failure 400 {string} string "Допустимы только PDF"
// @Router /api/documents [post]
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	viewer, err := h.currentUser(r)
	if err != nil {
		helpers.Error(w, http.StatusUnauthorized, "Пользователь не найден")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидная multipart-форма")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, "Файл не передан")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		helpers.Error(w, http.StatusBadRequest, "Допустимы только PDF-файлы")
		return
	}

	uploadDir := filepath.Join(h.mediaRoot, "documents")
	if err := os.MkdirAll(uploadDir, os.ModePerm); err != nil {
		logger.Log.Error("Ошибка создания каталога загрузок", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка сохранения файла")
		return
	}

	storedName := time.Now().Format("20060102_150405") + "_" + filepath.Base(header.Filename)
	storedPath := filepath.Join(uploadDir, storedName)

	dst, err := os.Create(storedPath)
	if err != nil {
		logger.Log.Error("Ошибка создания файла", zap.String("path", storedPath), zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка сохранения файла")
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		logger.Log.Error("Ошибка записи файла", zap.String("path", storedPath), zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка сохранения файла")
		return
	}

	title := r.FormValue("title")
	if title == "" {
		title = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}

	creatorID := viewer.ID
	doc := &models.Document{
		Title:            title,
		FilePath:         storedPath,
		Notes:            r.FormValue("notes"),
		Tags:             r.FormValue("tags"),
		CreatedBy:        &creatorID,
		OriginalFilename: header.Filename,
	}
	if id := formInt(r, "category_id"); id != nil {
		doc.CategoryID = id
	}
	if id := formInt(r, "document_type_id"); id != nil {
		doc.DocumentTypeID = id
	}
	if id := formInt(r, "entity_id"); id != nil {
		doc.EntityID = id
	}
	if raw := r.FormValue("document_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			helpers.Error(w, http.StatusBadRequest, "document_date должен быть в формате YYYY-MM-DD")
			return
		}
		doc.DocumentDate = &t
	}

	id, err := h.service.Create(r.Context(), doc)
	if err != nil {
		logger.Log.Error("Ошибка создания документа", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка создания документа")
		return
	}

	logger.Log.Info("Документ загружен",
		zap.Int("doc_id", id), zap.String("file", header.Filename), zap.Int("user_id", viewer.ID))
	helpers.JSON(w, http.StatusCreated, map[string]int{"id": id})
}

func formInt(r *http.Request, key string) *int {
	raw := r.FormValue(key)
	if raw == "" {
		return nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &id
}

// GetDocument godoc
// @Summary Документ с историей и сводными названиями
// @Tags documents
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID документа"
// @Success 200 {object} models.DocumentDetail
// @Failure 404 {string} string "Документ не найден"
// @Router /api/documents/{id} [get]
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	viewer, err := h.currentUser(r)
	if err != nil {
		helpers.Error(w, http.StatusUnauthorized, "Пользователь не найден")
		return
	}

	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	detail, err := h.service.Get(r.Context(), id, viewer)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			helpers.Error(w, http.StatusNotFound, "Документ не найден")
			return
		}
		logger.Log.Error("Ошибка получения документа", zap.Int("doc_id", id), zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка получения документа")
		return
	}
	helpers.JSON(w, http.StatusOK, detail)
}

// ServeDocumentFile godoc
// @Summary Отдать PDF-файл документа
// @Tags documents
// @Security ApiKeyAuth
// @Produce application/pdf
// @Param id path int true "ID документа"
// @Success 200 {file} file
// @Failure 404 {string} string "Документ не найден"
// @Router /api/documents/{id}/file [get]
func (h *DocumentHandler) ServeDocumentFile(w http.ResponseWriter, r *http.Request) {
	viewer, err := h.currentUser(r)
	if err != nil {
		helpers.Error(w, http.StatusUnauthorized, "Пользователь не найден")
		return
	}

	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	doc, err := h.service.GetFile(r.Context(), id, viewer)
	if err != nil {
		helpers.Error(w, http.StatusNotFound, "Документ не найден")
		return
	}

	if _, err := os.Stat(doc.FilePath); err != nil {
		logger.Log.Error("Файл документа отсутствует на диске",
			zap.Int("doc_id", id), zap.String("path", doc.FilePath), zap.Error(err))
		helpers.Error(w, http.StatusNotFound, "Файл документа не найден")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+filepath.Base(doc.FilePath)+`"`)
	http.ServeFile(w, r, doc.FilePath)
}

// UpdateDocument godoc
// @Summary Обновить классификацию и метаданные документа
// @Description Статус этим методом не меняется, для него есть отдельная операция.
// @Tags documents
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID документа"
// @Param input body models.UpdateDocumentRequest true "Изменяемые поля"
// @Success 200 {object} models.Document
// @Failure 404 {string} string "Документ не найден"
// @Router /api/documents/{id} [put]
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	viewer, err := h.currentUser(r)
	if err != nil {
		helpers.Error(w, http.StatusUnauthorized, "Пользователь не найден")
		return
	}

	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}
	if err := req.Validate(); err != nil {
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.service.Update(r.Context(), id, &req, viewer)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			helpers.Error(w, http.StatusNotFound, "Документ не найден")
			return
		}
		logger.Log.Error("Ошибка обновления документа", zap.Int("doc_id", id), zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка обновления документа")
		return
	}
	helpers.JSON(w, http.StatusOK, doc)
}

// ChangeStatus godoc
// @Summary Сменить статус документа
// @Description Каждая реальная смена статуса пишет строку в историю.
// @Description Повторная установка того же статуса записи не создаёт.
// @Tags documents
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID документа"
// @Param input body models.ChangeStatusRequest true "Новый статус и причина"
// @Success 200 {object} map[string]bool
// @Failure 404 {string} string "Документ не найден"
// @Router /api/documents/{id}/status [post]
func (h *DocumentHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	viewer, err := h.currentUser(r)
	if err != nil {
		helpers.Error(w, http.StatusUnauthorized, "Пользователь не найден")
		return
	}

	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}
	if err := req.Validate(); err != nil {
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	changed, err := h.service.ChangeStatus(r.Context(), id, req.Status, req.Reason, viewer)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			helpers.Error(w, http.StatusNotFound, "Документ не найден")
			return
		}
		logger.Log.Error("Ошибка смены статуса", zap.Int("doc_id", id), zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка смены статуса")
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]bool{"changed": changed})
}

// GetHistory godoc
// @Summary История смен статуса документа
// @Tags documents
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID документа"
// @Success 200 {array} models.DocumentHistory
// @Failure 404 {string} string "Документ не найден"
// @Router /api/documents/{id}/history [get]
func (h *DocumentHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	viewer, err := h.currentUser(r)
	if err != nil {
		helpers.Error(w, http.StatusUnauthorized, "Пользователь не найден")
		return
	}

	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	history, err := h.service.History(r.Context(), id, viewer)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			helpers.Error(w, http.StatusNotFound, "Документ не найден")
			return
		}
		logger.Log.Error("Ошибка получения истории", zap.Int("doc_id", id), zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "Ошибка получения истории")
		return
	}
	helpers.JSON(w, http.StatusOK, history)
}
