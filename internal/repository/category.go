package repository

import (
	"context"
	"doctrac/internal/logger"
	"doctrac/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type CategoryRepository struct {
	db *pgxpool.Pool
}

func NewCategoryRepository(db *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) CreateCategory(ctx context.Context, c *models.Category) (int, error) {
	logger.Log.Info("Репозиторий: создание категории", zap.String("name", c.Name), zap.String("code", c.Code))
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO categories (name, code, description, is_active, applies_to_all)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		c.Name, c.Code, c.Description, c.IsActive, c.AppliesToAll,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		logger.Log.Error("Ошибка создания категории (repo)", zap.Error(err))
		return 0, err
	}

	if err := insertCategoryEntities(ctx, tx, c.ID, c.ApplicableEntityIDs); err != nil {
		logger.Log.Error("Ошибка привязки сущностей к категории (repo)", zap.Error(err))
		return 0, err
	}

	return c.ID, tx.Commit(ctx)
}

func (r *CategoryRepository) UpdateCategory(ctx context.Context, c *models.Category) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE categories
		SET name=$1, code=$2, description=$3, is_active=$4, applies_to_all=$5, updated_at=now()
		WHERE id=$6`,
		c.Name, c.Code, c.Description, c.IsActive, c.AppliesToAll, c.ID,
	)
	if err != nil {
		logger.Log.Error("Ошибка обновления категории (repo)", zap.Int("category_id", c.ID), zap.Error(err))
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM category_entities WHERE category_id=$1`, c.ID); err != nil {
		return err
	}
	if err := insertCategoryEntities(ctx, tx, c.ID, c.ApplicableEntityIDs); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func insertCategoryEntities(ctx context.Context, tx pgx.Tx, categoryID int, entityIDs []int) error {
	for _, entityID := range entityIDs {
		_, err := tx.Exec(ctx, `
			INSERT INTO category_entities (category_id, entity_id)
			VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			categoryID, entityID,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *CategoryRepository) GetCategoryByID(ctx context.Context, id int) (*models.Category, error) {
	var c models.Category
	err := r.db.QueryRow(ctx, `
		SELECT id, name, code, description, is_active, applies_to_all, created_at, updated_at
		FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Code, &c.Description, &c.IsActive, &c.AppliesToAll, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		logger.Log.Error("Ошибка получения категории по ID (repo)", zap.Int("category_id", id), zap.Error(err))
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT entity_id FROM category_entities WHERE category_id=$1 ORDER BY entity_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var entityID int
		if err := rows.Scan(&entityID); err != nil {
			return nil, err
		}
		c.ApplicableEntityIDs = append(c.ApplicableEntityIDs, entityID)
	}
	return &c, rows.Err()
}

func (r *CategoryRepository) IsCodeTaken(ctx context.Context, code string, excludeID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE code = $1 AND id <> $2)`,
		code, excludeID,
	).Scan(&exists)
	if err != nil {
		logger.Log.Error("Ошибка проверки кода категории (repo)", zap.Error(err))
	}
	return exists, err
}

func (r *CategoryRepository) ListCategories(ctx context.Context, onlyActive bool) ([]models.Category, error) {
	query := `
	SELECT id, name, code, description, is_active, applies_to_all, created_at, updated_at
	FROM categories`
	if onlyActive {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		logger.Log.Error("Ошибка получения категорий (repo)", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Code, &c.Description, &c.IsActive, &c.AppliesToAll, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// ListActiveForEntity — активные категории, применимые к сущности:
// глобальные плюс явно привязанные.
func (r *CategoryRepository) ListActiveForEntity(ctx context.Context, entityID int) ([]models.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, code, description, is_active, applies_to_all, created_at, updated_at
		FROM categories
		WHERE is_active = true
		  AND (applies_to_all = true
		       OR id IN (SELECT category_id FROM category_entities WHERE entity_id = $1))
		ORDER BY name`, entityID)
	if err != nil {
		logger.Log.Error("Ошибка получения категорий сущности (repo)", zap.Int("entity_id", entityID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Code, &c.Description, &c.IsActive, &c.AppliesToAll, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// GetOrCreateByName возвращает категорию по имени, создавая её при отсутствии.
// Используется синхронизацией для категории по умолчанию.
func (r *CategoryRepository) GetOrCreateByName(ctx context.Context, name, description string) (*models.Category, bool, error) {
	var c models.Category
	err := r.db.QueryRow(ctx, `
		SELECT id, name, code, description, is_active, applies_to_all, created_at, updated_at
		FROM categories WHERE name = $1`, name,
	).Scan(&c.ID, &c.Name, &c.Code, &c.Description, &c.IsActive, &c.AppliesToAll, &c.CreatedAt, &c.UpdatedAt)
	if err == nil {
		return &c, false, nil
	}
	if err != pgx.ErrNoRows {
		logger.Log.Error("Ошибка поиска категории по имени (repo)", zap.String("name", name), zap.Error(err))
		return nil, false, err
	}

	created := models.Category{
		Name:         name,
		Code:         models.CodeFromName(name),
		Description:  description,
		IsActive:     true,
		AppliesToAll: true,
	}
	if _, err := r.CreateCategory(ctx, &created); err != nil {
		return nil, false, err
	}
	return &created, true, nil
}
