package repository

import (
	"context"
	"doctrac/internal/logger"
	"doctrac/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type EntityRepository struct {
	db *pgxpool.Pool
}

func NewEntityRepository(db *pgxpool.Pool) *EntityRepository {
	return &EntityRepository{db: db}
}

func (r *EntityRepository) CreateEntity(ctx context.Context, e *models.Entity) (int, error) {
	logger.Log.Info("Репозиторий: создание сущности", zap.String("name", e.Name), zap.String("code", e.Code))
	query := `
	INSERT INTO entities (name, code, description, is_company, is_department, auto_create_folder)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		e.Name,
		e.Code,
		e.Description,
		e.IsCompany,
		e.IsDepartment,
		e.AutoCreateFolder,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		logger.Log.Error("Ошибка создания сущности (repo)", zap.Error(err))
		return 0, err
	}
	return e.ID, nil
}

func (r *EntityRepository) UpdateEntity(ctx context.Context, id int, input *models.UpdateEntityRequest) error {
	_, err := r.db.Exec(ctx, `
		UPDATE entities SET
			name = COALESCE($1, name),
			code = COALESCE($2, code),
			description = COALESCE($3, description),
			is_company = COALESCE($4, is_company),
			is_department = COALESCE($5, is_department)
		WHERE id = $6`,
		input.Name, input.Code, input.Description, input.IsCompany, input.IsDepartment, id,
	)
	if err != nil {
		logger.Log.Error("Ошибка обновления сущности (repo)", zap.Int("entity_id", id), zap.Error(err))
	}
	return err
}

func (r *EntityRepository) GetEntityByID(ctx context.Context, id int) (*models.Entity, error) {
	query := `
	SELECT id, name, code, description, is_company, is_department, folder_path, auto_create_folder, created_at
	FROM entities WHERE id = $1`
	var e models.Entity
	err := r.db.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.Name, &e.Code, &e.Description,
		&e.IsCompany, &e.IsDepartment, &e.FolderPath, &e.AutoCreateFolder, &e.CreatedAt,
	)
	if err != nil {
		logger.Log.Error("Ошибка получения сущности по ID (repo)", zap.Int("entity_id", id), zap.Error(err))
		return nil, err
	}
	return &e, nil
}

func (r *EntityRepository) IsCodeTaken(ctx context.Context, code string, excludeID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM entities WHERE code = $1 AND id <> $2)`,
		code, excludeID,
	).Scan(&exists)
	if err != nil {
		logger.Log.Error("Ошибка проверки кода сущности (repo)", zap.Error(err))
	}
	return exists, err
}

// ListEntities возвращает все сущности. В режиме empresa сначала департаменты,
// затем внешние компании; в режиме personal — персоны, потом компании.
func (r *EntityRepository) ListEntities(ctx context.Context, usageType string) ([]*models.Entity, error) {
	order := "is_company, name"
	if usageType == "empresa" {
		order = "is_department, name"
	}
	query := `
	SELECT id, name, code, description, is_company, is_department, folder_path, auto_create_folder, created_at
	FROM entities ORDER BY ` + order

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		logger.Log.Error("Ошибка получения списка сущностей (repo)", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var entities []*models.Entity
	for rows.Next() {
		var e models.Entity
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Code, &e.Description,
			&e.IsCompany, &e.IsDepartment, &e.FolderPath, &e.AutoCreateFolder, &e.CreatedAt,
		); err != nil {
			logger.Log.Error("Ошибка сканирования сущности (repo)", zap.Error(err))
			return nil, err
		}
		entities = append(entities, &e)
	}
	return entities, rows.Err()
}

// ListAutoFolderEntities — сущности с автосозданием папок.
// Если ids пуст — все такие сущности, иначе только перечисленные.
func (r *EntityRepository) ListAutoFolderEntities(ctx context.Context, ids []int) ([]*models.Entity, error) {
	query := `
	SELECT id, name, code, description, is_company, is_department, folder_path, auto_create_folder, created_at
	FROM entities WHERE auto_create_folder = true`
	args := []interface{}{}
	if len(ids) > 0 {
		query += ` AND id = ANY($1)`
		args = append(args, ids)
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Log.Error("Ошибка получения сущностей для папок (repo)", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var entities []*models.Entity
	for rows.Next() {
		var e models.Entity
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Code, &e.Description,
			&e.IsCompany, &e.IsDepartment, &e.FolderPath, &e.AutoCreateFolder, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entities = append(entities, &e)
	}
	return entities, rows.Err()
}

// SetFolderPath записывает путь папки только если он ещё не выставлен.
// Уже провиженная папка никогда не переезжает, даже если сущность переименовали.
func (r *EntityRepository) SetFolderPath(ctx context.Context, id int, path string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE entities SET folder_path = $2 WHERE id = $1 AND folder_path IS NULL`,
		id, path,
	)
	if err != nil {
		logger.Log.Error("Ошибка сохранения пути папки (repo)", zap.Int("entity_id", id), zap.Error(err))
	}
	return err
}
