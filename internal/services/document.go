package services

import (
	"context"
	"doctrac/internal/logger"
	"doctrac/internal/models"
	"doctrac/internal/naming"
	"time"

	"go.uber.org/zap"
)

// Причины записей истории по умолчанию.
const (
	ReasonCreated       = "created"
	ReasonStatusUpdated = "status updated"
)

type DocumentRepo interface {
	SaveDocument(ctx context.Context, doc *models.Document, reason string) (int, error)
	UpdateDocument(ctx context.Context, doc *models.Document, replaceAssignees bool) error
	ChangeStatus(ctx context.Context, id int, newStatus string, actorID *int, reason string) (bool, error)
	GetDocumentByID(ctx context.Context, id int) (*models.Document, error)
	ListDocuments(ctx context.Context, filter models.DocumentFilter, limit, offset int) ([]*models.Document, int, error)
	CountDocuments(ctx context.Context, filter models.DocumentFilter) (int, error)
	GetHistory(ctx context.Context, documentID int) ([]models.DocumentHistory, error)
	ExistsByOriginalFilename(ctx context.Context, filename string) (bool, error)
}

type DocumentService struct {
	repo       DocumentRepo
	catRepo    CategoryRepo
	typeRepo   DocumentTypeRepo
	entityRepo EntityRepo
}

func NewDocumentService(repo DocumentRepo, catRepo CategoryRepo, typeRepo DocumentTypeRepo, entityRepo EntityRepo) *DocumentService {
	return &DocumentService{repo: repo, catRepo: catRepo, typeRepo: typeRepo, entityRepo: entityRepo}
}

// Create сохраняет документ и первую строку истории (previous_status = NULL).
func (s *DocumentService) Create(ctx context.Context, doc *models.Document) (int, error) {
	logger.Log.Info("Сервис: создание документа", zap.String("title", doc.Title))
	if doc.Status == "" {
		doc.Status = models.StatusPending
	}
	if doc.PaymentStatus == "" {
		doc.PaymentStatus = models.PaymentNotApplicable
	}
	return s.repo.SaveDocument(ctx, doc, ReasonCreated)
}

// canAccess: админы и менеджеры видят всё, остальные — только назначенные
// им или созданные ими документы.
func canAccess(viewer *models.User, doc *models.Document) bool {
	if viewer == nil {
		return false
	}
	if viewer.CanViewAllDocuments() {
		return true
	}
	if doc.CreatedBy != nil && *doc.CreatedBy == viewer.ID {
		return true
	}
	for _, userID := range doc.AssignedUserIDs {
		if userID == viewer.ID {
			return true
		}
	}
	return false
}

// getAccessible возвращает документ или ErrNotFound — в том числе при
// отсутствии доступа, чтобы не раскрывать существование чужих документов.
func (s *DocumentService) getAccessible(ctx context.Context, id int, viewer *models.User) (*models.Document, error) {
	doc, err := s.repo.GetDocumentByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if !canAccess(viewer, doc) {
		logger.Log.Warn("Попытка доступа к чужому документу",
			zap.Int("doc_id", id), zap.Int("user_id", viewer.ID))
		return nil, ErrNotFound
	}
	return doc, nil
}

// Get возвращает документ с историей и обоими вариантами имени.
func (s *DocumentService) Get(ctx context.Context, id int, viewer *models.User) (*models.DocumentDetail, error) {
	doc, err := s.getAccessible(ctx, id, viewer)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.GetHistory(ctx, id)
	if err != nil {
		return nil, err
	}

	parts := s.namingParts(ctx, doc)
	return &models.DocumentDetail{
		Document:       *doc,
		StructuredName: naming.StructuredName(parts),
		DisplayName:    naming.DisplayName(parts),
		History:        history,
	}, nil
}

// GetFile возвращает документ для отдачи файла (с той же проверкой доступа).
func (s *DocumentService) GetFile(ctx context.Context, id int, viewer *models.User) (*models.Document, error) {
	return s.getAccessible(ctx, id, viewer)
}

func (s *DocumentService) List(ctx context.Context, filter models.DocumentFilter, viewer *models.User, limit, offset int) ([]*models.Document, int, error) {
	if !viewer.CanViewAllDocuments() {
		viewerID := viewer.ID
		filter.ViewerID = &viewerID
	}
	return s.repo.ListDocuments(ctx, filter, limit, offset)
}

// Update правит классификацию и метаданные. Статус этим путём не меняется —
// только явной операцией ChangeStatus.
func (s *DocumentService) Update(ctx context.Context, id int, req *models.UpdateDocumentRequest, viewer *models.User) (*models.Document, error) {
	doc, err := s.getAccessible(ctx, id, viewer)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		doc.Title = *req.Title
	}
	if req.CategoryID != nil {
		doc.CategoryID = req.CategoryID
	}
	if req.DocumentTypeID != nil {
		doc.DocumentTypeID = req.DocumentTypeID
	}
	if req.EntityID != nil {
		doc.EntityID = req.EntityID
	}
	if req.DocumentDate != nil {
		if t, err := time.Parse("2006-01-02", *req.DocumentDate); err == nil {
			doc.DocumentDate = &t
		}
	}
	if req.DueDate != nil {
		if t, err := time.Parse("2006-01-02", *req.DueDate); err == nil {
			doc.DueDate = &t
		}
	}
	if req.PaymentStatus != nil {
		doc.PaymentStatus = *req.PaymentStatus
	}
	if req.Notes != nil {
		doc.Notes = *req.Notes
	}
	if req.Tags != nil {
		doc.Tags = *req.Tags
	}
	replaceAssignees := false
	if req.AssignedUserIDs != nil {
		doc.AssignedUserIDs = req.AssignedUserIDs
		replaceAssignees = true
	}

	if err := s.repo.UpdateDocument(ctx, doc, replaceAssignees); err != nil {
		return nil, err
	}
	return doc, nil
}

// ChangeStatus — единственная точка смены статуса: обновление и строка
// истории пишутся атомарно. Повторная установка того же статуса не создаёт
// записи истории.
func (s *DocumentService) ChangeStatus(ctx context.Context, id int, newStatus, reason string, viewer *models.User) (bool, error) {
	if _, err := s.getAccessible(ctx, id, viewer); err != nil {
		return false, err
	}

	if reason == "" {
		reason = ReasonStatusUpdated
	}

	actorID := viewer.ID
	changed, err := s.repo.ChangeStatus(ctx, id, newStatus, &actorID, reason)
	if err != nil {
		logger.Log.Error("Ошибка смены статуса документа (service)",
			zap.Int("doc_id", id), zap.Error(err))
		return false, err
	}
	if changed {
		logger.Log.Info("Статус документа изменён",
			zap.Int("doc_id", id), zap.String("status", newStatus), zap.Int("user_id", viewer.ID))
	}
	return changed, nil
}

func (s *DocumentService) History(ctx context.Context, id int, viewer *models.User) ([]models.DocumentHistory, error) {
	if _, err := s.getAccessible(ctx, id, viewer); err != nil {
		return nil, err
	}
	return s.repo.GetHistory(ctx, id)
}

// namingParts собирает коды и названия связанных записей для движка имён.
// Отсутствующие связи просто опускаются.
func (s *DocumentService) namingParts(ctx context.Context, doc *models.Document) naming.Parts {
	parts := naming.Parts{Title: doc.Title}

	if doc.EntityID != nil {
		if entity, err := s.entityRepo.GetEntityByID(ctx, *doc.EntityID); err == nil {
			parts.EntityCode = entity.Code
			parts.EntityName = entity.Name
		}
	}
	if doc.CategoryID != nil {
		if cat, err := s.catRepo.GetCategoryByID(ctx, *doc.CategoryID); err == nil {
			parts.CategoryCode = cat.Code
			parts.CategoryName = cat.Name
		}
	}
	if doc.DocumentTypeID != nil {
		if docType, err := s.typeRepo.GetDocumentTypeByID(ctx, *doc.DocumentTypeID); err == nil {
			parts.TypeCode = docType.Code
			parts.TypeName = docType.Name
		}
	}
	if doc.DocumentDate != nil {
		parts.Date = doc.DocumentDate.Format("2006-01-02")
	}
	return parts
}

// Dashboard собирает данные главного экрана: ожидающие документы,
// классификаторы для выпадающих списков и счётчики.
func (s *DocumentService) Dashboard(ctx context.Context, viewer *models.User, usageType string) (*models.Dashboard, error) {
	filter := models.DocumentFilter{}
	if !viewer.CanViewAllDocuments() {
		viewerID := viewer.ID
		filter.ViewerID = &viewerID
	}

	pendingFilter := filter
	pendingFilter.Status = models.StatusPending

	// Лимит 20 — для производительности первой отрисовки.
	pending, pendingCount, err := s.repo.ListDocuments(ctx, pendingFilter, 20, 0)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	cats, err := s.catRepo.ListCategories(ctx, true)
	if err != nil {
		return nil, err
	}
	types, err := s.typeRepo.ListDocumentTypes(ctx, nil, true)
	if err != nil {
		return nil, err
	}
	entities, err := s.entityRepo.ListEntities(ctx, usageType)
	if err != nil {
		return nil, err
	}

	personLabel := "Persona"
	showCompanies := true
	if usageType == "empresa" {
		personLabel = "Departamento"
		showCompanies = false
	}

	return &models.Dashboard{
		PendingDocuments: pending,
		Categories:       cats,
		DocumentTypes:    types,
		Entities:         entities,
		TotalDocuments:   total,
		PendingCount:     pendingCount,
		UsageType:        usageType,
		PersonLabel:      personLabel,
		ShowCompanies:    showCompanies,
	}, nil
}
