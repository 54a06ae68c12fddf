package services

import (
	"context"
	"doctrac/internal/logger"
	"doctrac/internal/models"

	"go.uber.org/zap"
)

type DocumentTypeRepo interface {
	CreateDocumentType(ctx context.Context, t *models.DocumentType) (int, error)
	UpdateDocumentType(ctx context.Context, id int, input *models.UpdateDocumentTypeRequest) error
	DeleteDocumentType(ctx context.Context, id int) error
	GetDocumentTypeByID(ctx context.Context, id int) (*models.DocumentType, error)
	IsCodeTaken(ctx context.Context, categoryID int, code string, excludeID int) (bool, error)
	ListDocumentTypes(ctx context.Context, categoryID *int, onlyActive bool) ([]models.DocumentType, error)
}

type DocumentTypeService struct {
	repo    DocumentTypeRepo
	catRepo CategoryRepo
}

func NewDocumentTypeService(repo DocumentTypeRepo, catRepo CategoryRepo) *DocumentTypeService {
	return &DocumentTypeService{repo: repo, catRepo: catRepo}
}

func (s *DocumentTypeService) CreateDocumentType(ctx context.Context, req *models.CreateDocumentTypeRequest) (*models.DocumentType, error) {
	logger.Log.Info("Сервис: создание типа документа",
		zap.String("name", req.Name), zap.Int("category_id", req.CategoryID))

	// Категория обязательна и должна существовать.
	if _, err := s.catRepo.GetCategoryByID(ctx, req.CategoryID); err != nil {
		return nil, ErrNotFound
	}

	// Код уникален в пределах категории.
	if taken, err := s.repo.IsCodeTaken(ctx, req.CategoryID, req.Code, 0); taken || err != nil {
		if err != nil {
			return nil, err
		}
		return nil, ErrCodeTaken
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	docType := &models.DocumentType{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		IsActive:    isActive,
	}

	if _, err := s.repo.CreateDocumentType(ctx, docType); err != nil {
		return nil, err
	}
	return docType, nil
}

func (s *DocumentTypeService) UpdateDocumentType(ctx context.Context, id int, req *models.UpdateDocumentTypeRequest) (*models.DocumentType, error) {
	current, err := s.repo.GetDocumentTypeByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	if req.Code != nil {
		if taken, err := s.repo.IsCodeTaken(ctx, current.CategoryID, *req.Code, id); taken || err != nil {
			if err != nil {
				return nil, err
			}
			return nil, ErrCodeTaken
		}
	}

	if err := s.repo.UpdateDocumentType(ctx, id, req); err != nil {
		return nil, err
	}
	return s.repo.GetDocumentTypeByID(ctx, id)
}

func (s *DocumentTypeService) DeleteDocumentType(ctx context.Context, id int) error {
	logger.Log.Info("Сервис: удаление типа документа", zap.Int("type_id", id))
	if _, err := s.repo.GetDocumentTypeByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.repo.DeleteDocumentType(ctx, id)
}

func (s *DocumentTypeService) ListByCategory(ctx context.Context, categoryID *int, onlyActive bool) ([]models.DocumentType, error) {
	return s.repo.ListDocumentTypes(ctx, categoryID, onlyActive)
}
