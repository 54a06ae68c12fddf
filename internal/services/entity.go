package services

import (
	"context"
	"doctrac/internal/folders"
	"doctrac/internal/logger"
	"doctrac/internal/models"

	"go.uber.org/zap"
)

type EntityRepo interface {
	CreateEntity(ctx context.Context, e *models.Entity) (int, error)
	UpdateEntity(ctx context.Context, id int, input *models.UpdateEntityRequest) error
	GetEntityByID(ctx context.Context, id int) (*models.Entity, error)
	IsCodeTaken(ctx context.Context, code string, excludeID int) (bool, error)
	ListEntities(ctx context.Context, usageType string) ([]*models.Entity, error)
	ListAutoFolderEntities(ctx context.Context, ids []int) ([]*models.Entity, error)
	SetFolderPath(ctx context.Context, id int, path string) error
}

type EntityService struct {
	repo        EntityRepo
	catRepo     CategoryRepo
	provisioner *folders.Provisioner
}

func NewEntityService(repo EntityRepo, catRepo CategoryRepo, provisioner *folders.Provisioner) *EntityService {
	return &EntityService{repo: repo, catRepo: catRepo, provisioner: provisioner}
}

func (s *EntityService) CreateEntity(ctx context.Context, req *models.CreateEntityRequest) (*models.Entity, error) {
	logger.Log.Info("Сервис: создание сущности", zap.String("name", req.Name), zap.String("code", req.Code))

	if taken, err := s.repo.IsCodeTaken(ctx, req.Code, 0); taken || err != nil {
		if err != nil {
			return nil, err
		}
		return nil, ErrCodeTaken
	}

	autoCreate := true
	if req.AutoCreateFolder != nil {
		autoCreate = *req.AutoCreateFolder
	}

	entity := &models.Entity{
		Name:             req.Name,
		Code:             req.Code,
		Description:      req.Description,
		IsCompany:        req.IsCompany,
		IsDepartment:     req.IsDepartment,
		AutoCreateFolder: autoCreate,
	}

	if _, err := s.repo.CreateEntity(ctx, entity); err != nil {
		return nil, err
	}

	if entity.AutoCreateFolder {
		s.ProvisionEntityFolder(ctx, entity)
	}

	return entity, nil
}

// ProvisionEntityFolder создаёт папку сущности и подпапки применимых активных
// категорий. Ошибки файловой системы логируются и не прерывают операцию:
// создание папок — побочный эффект, не условие успеха записи.
func (s *EntityService) ProvisionEntityFolder(ctx context.Context, entity *models.Entity) {
	if s.provisioner == nil || s.provisioner.Base == "" {
		return
	}

	path, err := s.provisioner.EnsureEntityFolder(entity.Name)
	if err != nil {
		logger.Log.Error("Ошибка создания папки сущности",
			zap.String("entity", entity.Name), zap.Error(err))
		return
	}

	// Путь сохраняется только один раз: переименование сущности
	// не переносит уже созданную папку.
	if entity.FolderPath == nil {
		if err := s.repo.SetFolderPath(ctx, entity.ID, path); err != nil {
			logger.Log.Error("Ошибка сохранения пути папки сущности",
				zap.Int("entity_id", entity.ID), zap.String("path", path), zap.Error(err))
		} else {
			entity.FolderPath = &path
		}
	}

	cats, err := s.catRepo.ListActiveForEntity(ctx, entity.ID)
	if err != nil {
		logger.Log.Error("Ошибка получения категорий для папок сущности",
			zap.Int("entity_id", entity.ID), zap.Error(err))
		return
	}
	for _, cat := range cats {
		if err := s.provisioner.EnsureCategoryFolder(path, cat.Name); err != nil {
			logger.Log.Error("Ошибка создания папки категории",
				zap.String("entity", entity.Name), zap.String("category", cat.Name), zap.Error(err))
		}
	}
}

func (s *EntityService) UpdateEntity(ctx context.Context, id int, req *models.UpdateEntityRequest) (*models.Entity, error) {
	if req.Code != nil {
		if taken, err := s.repo.IsCodeTaken(ctx, *req.Code, id); taken || err != nil {
			if err != nil {
				return nil, err
			}
			return nil, ErrCodeTaken
		}
	}

	if err := s.repo.UpdateEntity(ctx, id, req); err != nil {
		return nil, err
	}
	return s.repo.GetEntityByID(ctx, id)
}

func (s *EntityService) GetEntity(ctx context.Context, id int) (*models.Entity, error) {
	return s.repo.GetEntityByID(ctx, id)
}

func (s *EntityService) ListEntities(ctx context.Context, usageType string) ([]*models.Entity, error) {
	return s.repo.ListEntities(ctx, usageType)
}

// RebuildFolders проходит по всем сущностям с автосозданием папок и
// провиженит их заново. Операция только добавляет недостающие каталоги.
func (s *EntityService) RebuildFolders(ctx context.Context) (int, error) {
	logger.Log.Info("Сервис: перестроение дерева папок")
	entities, err := s.repo.ListAutoFolderEntities(ctx, nil)
	if err != nil {
		return 0, err
	}
	for _, entity := range entities {
		s.ProvisionEntityFolder(ctx, entity)
	}
	return len(entities), nil
}
