package repository

import (
	"context"
	"doctrac/internal/logger"
	"doctrac/internal/models"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type DocumentRepository struct {
	db *pgxpool.Pool
}

func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `
	id, title, filepath, category_id, document_type_id, entity_id,
	document_date, due_date, status, payment_status, created_by,
	notes, tags, original_filename, imported_from_folder, created_at, updated_at`

func scanDocument(row pgx.Row, d *models.Document) error {
	return row.Scan(
		&d.ID, &d.Title, &d.FilePath, &d.CategoryID, &d.DocumentTypeID, &d.EntityID,
		&d.DocumentDate, &d.DueDate, &d.Status, &d.PaymentStatus, &d.CreatedBy,
		&d.Notes, &d.Tags, &d.OriginalFilename, &d.ImportedFromFolder, &d.CreatedAt, &d.UpdatedAt,
	)
}

// SaveDocument создаёт документ и первую строку истории (previous_status = NULL)
// одной транзакцией: документ без записи о создании существовать не должен.
func (r *DocumentRepository) SaveDocument(ctx context.Context, doc *models.Document, reason string) (int, error) {
	logger.Log.Info("Репозиторий: сохранение документа",
		zap.String("title", doc.Title), zap.String("status", doc.Status))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO documents (
			title, filepath, category_id, document_type_id, entity_id,
			document_date, due_date, status, payment_status, created_by,
			notes, tags, original_filename, imported_from_folder)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id, created_at, updated_at`,
		doc.Title, doc.FilePath, doc.CategoryID, doc.DocumentTypeID, doc.EntityID,
		doc.DocumentDate, doc.DueDate, doc.Status, doc.PaymentStatus, doc.CreatedBy,
		doc.Notes, doc.Tags, doc.OriginalFilename, doc.ImportedFromFolder,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		logger.Log.Error("Ошибка сохранения документа (repo)", zap.Error(err))
		return 0, err
	}

	for _, userID := range doc.AssignedUserIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO document_assignees (document_id, user_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			doc.ID, userID,
		); err != nil {
			return 0, err
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO document_history (document_id, previous_status, new_status, changed_by, change_reason)
		VALUES ($1, NULL, $2, $3, $4)`,
		doc.ID, doc.Status, doc.CreatedBy, reason,
	); err != nil {
		logger.Log.Error("Ошибка записи истории при создании (repo)", zap.Error(err))
		return 0, err
	}

	return doc.ID, tx.Commit(ctx)
}

// UpdateDocument обновляет поля классификации и метаданные. Статус здесь
// не трогается — смена статуса идёт только через ChangeStatus.
func (r *DocumentRepository) UpdateDocument(ctx context.Context, doc *models.Document, replaceAssignees bool) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE documents SET
			title=$1, category_id=$2, document_type_id=$3, entity_id=$4,
			document_date=$5, due_date=$6, payment_status=$7,
			notes=$8, tags=$9, updated_at=now()
		WHERE id=$10`,
		doc.Title, doc.CategoryID, doc.DocumentTypeID, doc.EntityID,
		doc.DocumentDate, doc.DueDate, doc.PaymentStatus,
		doc.Notes, doc.Tags, doc.ID,
	)
	if err != nil {
		logger.Log.Error("Ошибка обновления документа (repo)", zap.Int("doc_id", doc.ID), zap.Error(err))
		return err
	}

	if replaceAssignees {
		if _, err := tx.Exec(ctx, `DELETE FROM document_assignees WHERE document_id=$1`, doc.ID); err != nil {
			return err
		}
		for _, userID := range doc.AssignedUserIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO document_assignees (document_id, user_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
				doc.ID, userID,
			); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

// ChangeStatus меняет статус и пишет строку истории одной транзакцией.
// Если статус не изменился — ничего не пишет и возвращает false.
func (r *DocumentRepository) ChangeStatus(ctx context.Context, id int, newStatus string, actorID *int, reason string) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var previous string
	if err := tx.QueryRow(ctx,
		`SELECT status FROM documents WHERE id = $1 FOR UPDATE`, id,
	).Scan(&previous); err != nil {
		logger.Log.Error("Ошибка чтения статуса документа (repo)", zap.Int("doc_id", id), zap.Error(err))
		return false, err
	}

	if previous == newStatus {
		return false, tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE documents SET status=$1, updated_at=now() WHERE id=$2`,
		newStatus, id,
	); err != nil {
		return false, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO document_history (document_id, previous_status, new_status, changed_by, change_reason)
		VALUES ($1, $2, $3, $4, $5)`,
		id, previous, newStatus, actorID, reason,
	); err != nil {
		logger.Log.Error("Ошибка записи истории статуса (repo)", zap.Int("doc_id", id), zap.Error(err))
		return false, err
	}

	return true, tx.Commit(ctx)
}

func (r *DocumentRepository) GetDocumentByID(ctx context.Context, id int) (*models.Document, error) {
	var d models.Document
	err := scanDocument(r.db.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id), &d)
	if err != nil {
		logger.Log.Error("Ошибка получения документа по ID (repo)", zap.Int("doc_id", id), zap.Error(err))
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT user_id FROM document_assignees WHERE document_id=$1 ORDER BY user_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var userID int
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		d.AssignedUserIDs = append(d.AssignedUserIDs, userID)
	}
	return &d, rows.Err()
}

func buildDocumentWhere(filter models.DocumentFilter, args *[]interface{}) string {
	conds := []string{}

	add := func(cond string, val interface{}) {
		*args = append(*args, val)
		conds = append(conds, fmt.Sprintf(cond, len(*args)))
	}

	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.CategoryID != nil {
		add("category_id = $%d", *filter.CategoryID)
	}
	if filter.EntityID != nil {
		add("entity_id = $%d", *filter.EntityID)
	}
	if filter.Query != "" {
		add("(title ILIKE $%d OR notes ILIKE $%[1]d OR tags ILIKE $%[1]d)", "%"+filter.Query+"%")
	}
	if filter.ViewerID != nil {
		add(`(created_by = $%d OR EXISTS(
			SELECT 1 FROM document_assignees a WHERE a.document_id = documents.id AND a.user_id = $%[1]d))`,
			*filter.ViewerID)
	}

	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// ListDocuments — список по фильтру с пагинацией и общим количеством.
func (r *DocumentRepository) ListDocuments(ctx context.Context, filter models.DocumentFilter, limit, offset int) ([]*models.Document, int, error) {
	args := []interface{}{}
	where := buildDocumentWhere(filter, &args)

	query := `SELECT ` + documentColumns + ` FROM documents` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)

	rows, err := r.db.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		logger.Log.Error("Ошибка получения списка документов (repo)", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		var d models.Document
		if err := scanDocument(rows, &d); err != nil {
			logger.Log.Error("Ошибка сканирования документа (repo)", zap.Error(err))
			return nil, 0, err
		}
		docs = append(docs, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	total, err := r.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (r *DocumentRepository) CountDocuments(ctx context.Context, filter models.DocumentFilter) (int, error) {
	args := []interface{}{}
	where := buildDocumentWhere(filter, &args)

	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM documents`+where, args...).Scan(&total)
	if err != nil {
		logger.Log.Error("Ошибка подсчёта документов (repo)", zap.Error(err))
		return 0, err
	}
	return total, nil
}

func (r *DocumentRepository) GetHistory(ctx context.Context, documentID int) ([]models.DocumentHistory, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, document_id, previous_status, new_status, changed_by, change_reason, created_at
		FROM document_history
		WHERE document_id = $1
		ORDER BY created_at DESC, id DESC`, documentID)
	if err != nil {
		logger.Log.Error("Ошибка получения истории документа (repo)", zap.Int("doc_id", documentID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var history []models.DocumentHistory
	for rows.Next() {
		var h models.DocumentHistory
		if err := rows.Scan(&h.ID, &h.DocumentID, &h.PreviousStatus, &h.NewStatus, &h.ChangedBy, &h.ChangeReason, &h.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// ExistsByOriginalFilename — защита синхронизации от повторного импорта.
func (r *DocumentRepository) ExistsByOriginalFilename(ctx context.Context, filename string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM documents WHERE original_filename = $1)`, filename,
	).Scan(&exists)
	if err != nil {
		logger.Log.Error("Ошибка проверки оригинального имени файла (repo)", zap.Error(err))
	}
	return exists, err
}
