package repository

import (
	"context"
	"doctrac/internal/logger"
	"doctrac/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type DocumentTypeRepository struct {
	db *pgxpool.Pool
}

func NewDocumentTypeRepository(db *pgxpool.Pool) *DocumentTypeRepository {
	return &DocumentTypeRepository{db: db}
}

func (r *DocumentTypeRepository) CreateDocumentType(ctx context.Context, t *models.DocumentType) (int, error) {
	logger.Log.Info("Репозиторий: создание типа документа",
		zap.String("name", t.Name), zap.Int("category_id", t.CategoryID))
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_types (category_id, name, code, description, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		t.CategoryID, t.Name, t.Code, t.Description, t.IsActive,
	).Scan(&t.ID)
	if err != nil {
		logger.Log.Error("Ошибка создания типа документа (repo)", zap.Error(err))
		return 0, err
	}
	return t.ID, nil
}

func (r *DocumentTypeRepository) UpdateDocumentType(ctx context.Context, id int, input *models.UpdateDocumentTypeRequest) error {
	_, err := r.db.Exec(ctx, `
		UPDATE document_types SET
			name = COALESCE($1, name),
			code = COALESCE($2, code),
			description = COALESCE($3, description),
			is_active = COALESCE($4, is_active)
		WHERE id = $5`,
		input.Name, input.Code, input.Description, input.IsActive, id,
	)
	if err != nil {
		logger.Log.Error("Ошибка обновления типа документа (repo)", zap.Int("type_id", id), zap.Error(err))
	}
	return err
}

func (r *DocumentTypeRepository) DeleteDocumentType(ctx context.Context, id int) error {
	logger.Log.Info("Репозиторий: удаление типа документа", zap.Int("type_id", id))
	_, err := r.db.Exec(ctx, `DELETE FROM document_types WHERE id = $1`, id)
	if err != nil {
		logger.Log.Error("Ошибка удаления типа документа (repo)", zap.Int("type_id", id), zap.Error(err))
	}
	return err
}

func (r *DocumentTypeRepository) GetDocumentTypeByID(ctx context.Context, id int) (*models.DocumentType, error) {
	var t models.DocumentType
	err := r.db.QueryRow(ctx, `
		SELECT id, category_id, name, code, description, is_active
		FROM document_types WHERE id = $1`, id,
	).Scan(&t.ID, &t.CategoryID, &t.Name, &t.Code, &t.Description, &t.IsActive)
	if err != nil {
		logger.Log.Error("Ошибка получения типа документа (repo)", zap.Int("type_id", id), zap.Error(err))
		return nil, err
	}
	return &t, nil
}

// IsCodeTaken проверяет уникальность кода внутри категории.
func (r *DocumentTypeRepository) IsCodeTaken(ctx context.Context, categoryID int, code string, excludeID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM document_types WHERE category_id = $1 AND code = $2 AND id <> $3)`,
		categoryID, code, excludeID,
	).Scan(&exists)
	if err != nil {
		logger.Log.Error("Ошибка проверки кода типа документа (repo)", zap.Error(err))
	}
	return exists, err
}

// ListDocumentTypes — типы документов; categoryID == nil означает все категории.
func (r *DocumentTypeRepository) ListDocumentTypes(ctx context.Context, categoryID *int, onlyActive bool) ([]models.DocumentType, error) {
	query := `
	SELECT id, category_id, name, code, description, is_active
	FROM document_types WHERE 1=1`
	args := []interface{}{}
	if categoryID != nil {
		args = append(args, *categoryID)
		query += ` AND category_id = $1`
	}
	if onlyActive {
		query += ` AND is_active = true`
	}
	query += ` ORDER BY category_id, name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Log.Error("Ошибка получения типов документов (repo)", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var types []models.DocumentType
	for rows.Next() {
		var t models.DocumentType
		if err := rows.Scan(&t.ID, &t.CategoryID, &t.Name, &t.Code, &t.Description, &t.IsActive); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}
