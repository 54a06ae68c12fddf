package services

import (
	"context"
	"doctrac/internal/folders"
	"doctrac/internal/logger"
	"doctrac/internal/models"

	"go.uber.org/zap"
)

type CategoryRepo interface {
	CreateCategory(ctx context.Context, c *models.Category) (int, error)
	UpdateCategory(ctx context.Context, c *models.Category) error
	GetCategoryByID(ctx context.Context, id int) (*models.Category, error)
	IsCodeTaken(ctx context.Context, code string, excludeID int) (bool, error)
	ListCategories(ctx context.Context, onlyActive bool) ([]models.Category, error)
	ListActiveForEntity(ctx context.Context, entityID int) ([]models.Category, error)
	GetOrCreateByName(ctx context.Context, name, description string) (*models.Category, bool, error)
}

type CategoryService struct {
	repo        CategoryRepo
	entityRepo  EntityRepo
	typeRepo    DocumentTypeRepo
	provisioner *folders.Provisioner
}

func NewCategoryService(repo CategoryRepo, entityRepo EntityRepo, typeRepo DocumentTypeRepo, provisioner *folders.Provisioner) *CategoryService {
	return &CategoryService{repo: repo, entityRepo: entityRepo, typeRepo: typeRepo, provisioner: provisioner}
}

func (s *CategoryService) CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {
	logger.Log.Info("Сервис: создание категории", zap.String("name", req.Name), zap.String("code", req.Code))

	if taken, err := s.repo.IsCodeTaken(ctx, req.Code, 0); taken || err != nil {
		if err != nil {
			return nil, err
		}
		return nil, ErrCodeTaken
	}

	isActive, appliesToAll := true, true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	if req.AppliesToAll != nil {
		appliesToAll = *req.AppliesToAll
	}

	category := &models.Category{
		Name:                req.Name,
		Code:                req.Code,
		Description:         req.Description,
		IsActive:            isActive,
		AppliesToAll:        appliesToAll,
		ApplicableEntityIDs: req.ApplicableEntityIDs,
	}

	if _, err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	affected := s.ProvisionCategoryFolders(ctx, category)
	logger.Log.Info("Папки категории созданы",
		zap.String("category", category.Name), zap.Int("entities", affected))

	return category, nil
}

// ProvisionCategoryFolders создаёт подпапку категории у каждой подходящей
// сущности и возвращает число затронутых. Сущности без провиженной папки
// пропускаются молча; ошибка по одной сущности не останавливает остальных.
func (s *CategoryService) ProvisionCategoryFolders(ctx context.Context, category *models.Category) int {
	if s.provisioner == nil || s.provisioner.Base == "" || !category.IsActive {
		return 0
	}

	var ids []int
	if !category.AppliesToAll {
		if len(category.ApplicableEntityIDs) == 0 {
			return 0
		}
		ids = category.ApplicableEntityIDs
	}

	entities, err := s.entityRepo.ListAutoFolderEntities(ctx, ids)
	if err != nil {
		logger.Log.Error("Ошибка получения сущностей для папок категории",
			zap.String("category", category.Name), zap.Error(err))
		return 0
	}

	affected := 0
	for _, entity := range entities {
		if entity.FolderPath == nil || *entity.FolderPath == "" {
			continue
		}
		if err := s.provisioner.EnsureCategoryFolder(*entity.FolderPath, category.Name); err != nil {
			logger.Log.Error("Ошибка создания папки категории",
				zap.String("category", category.Name), zap.String("entity", entity.Name), zap.Error(err))
			continue
		}
		affected++
	}
	return affected
}

// UpdateCategory обновляет категорию и допровиженивает папки. Папки сущностей,
// выпавших из области применимости, не удаляются — провижининг только добавляет.
func (s *CategoryService) UpdateCategory(ctx context.Context, id int, req *models.UpdateCategoryRequest) (*models.Category, error) {
	category, err := s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		if taken, err := s.repo.IsCodeTaken(ctx, *req.Code, id); taken || err != nil {
			if err != nil {
				return nil, err
			}
			return nil, ErrCodeTaken
		}
		category.Code = *req.Code
	}
	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.AppliesToAll != nil {
		category.AppliesToAll = *req.AppliesToAll
	}
	if req.ApplicableEntityIDs != nil {
		category.ApplicableEntityIDs = req.ApplicableEntityIDs
	}

	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}

	affected := s.ProvisionCategoryFolders(ctx, category)
	logger.Log.Info("Папки категории обновлены",
		zap.String("category", category.Name), zap.Int("entities", affected))

	return category, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, id int) (*models.Category, error) {
	return s.repo.GetCategoryByID(ctx, id)
}

func (s *CategoryService) ListCategories(ctx context.Context, onlyActive bool) ([]models.Category, error) {
	return s.repo.ListCategories(ctx, onlyActive)
}

// ListWithTypes — активные категории вместе с их активными типами документов.
func (s *CategoryService) ListWithTypes(ctx context.Context) ([]models.CategoryWithTypes, error) {
	cats, err := s.repo.ListCategories(ctx, true)
	if err != nil {
		return nil, err
	}

	out := make([]models.CategoryWithTypes, 0, len(cats))
	for _, cat := range cats {
		catID := cat.ID
		types, err := s.typeRepo.ListDocumentTypes(ctx, &catID, true)
		if err != nil {
			return nil, err
		}
		out = append(out, models.CategoryWithTypes{Category: cat, Types: types})
	}
	return out, nil
}
