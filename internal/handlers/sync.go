package handlers

import (
	"doctrac/internal/logger"
	"doctrac/internal/services"
	helpers "doctrac/internal/utils/helpers"
	"net/http"

	"go.uber.org/zap"
)

type SyncHandler struct {
	service *services.SyncService
}

func NewSyncHandler(service *services.SyncService) *SyncHandler {
	return &SyncHandler{service: service}
}

// RunSync godoc
// @Summary Запустить синхронизацию папки сканов (только для админа)
// @Description Забирает PDF из папки мониторинга и регистрирует их как ожидающие документы.
// @Description С ?dry_run=true только считает файлы, ничего не перемещая.
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Param dry_run query bool false "Пробный прогон"
// @Success 200 {object} services.SyncReport
// @Router /api/admin/sync [post]
func (h *SyncHandler) RunSync(w http.ResponseWriter, r *http.Request) {
	dryRun := r.URL.Query().Get("dry_run") == "true"

	report, err := h.service.Run(r.Context(), dryRun)
	if err != nil {
		logger.Log.Error("Ошибка синхронизации папки сканов", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	helpers.JSON(w, http.StatusOK, report)
}
