package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Статусы документа. Переходы не ограничены state-машиной,
// но каждое реальное изменение статуса пишет строку истории.
const (
	StatusPending     = "pending"
	StatusScanned     = "scanned"
	StatusDigitized   = "digitized"
	StatusCategorized = "categorized"
	StatusApproved    = "approved"
	StatusArchived    = "archived"
)

// Статусы оплаты.
const (
	PaymentPaid          = "paid"
	PaymentPending       = "pending"
	PaymentOverdue       = "overdue"
	PaymentNotApplicable = "not_applicable"
)

var DocumentStatuses = []interface{}{
	StatusPending, StatusScanned, StatusDigitized,
	StatusCategorized, StatusApproved, StatusArchived,
}

var PaymentStatuses = []interface{}{
	PaymentPaid, PaymentPending, PaymentOverdue, PaymentNotApplicable,
}

// Document — основной документ. Категория, тип и сущность независимо опциональны:
// документ может оставаться неклассифицированным.
type Document struct {
	ID                 int        `json:"id"`
	Title              string     `json:"title"`
	FilePath           string     `json:"filepath"`
	CategoryID         *int       `json:"category_id,omitempty"`
	DocumentTypeID     *int       `json:"document_type_id,omitempty"`
	EntityID           *int       `json:"entity_id,omitempty"`
	DocumentDate       *time.Time `json:"document_date,omitempty"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	Status             string     `json:"status"`
	PaymentStatus      string     `json:"payment_status"`
	AssignedUserIDs    []int      `json:"assigned_user_ids,omitempty"`
	CreatedBy          *int       `json:"created_by,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	Tags               string     `json:"tags,omitempty"` // через запятую
	OriginalFilename   string     `json:"original_filename,omitempty"`
	ImportedFromFolder bool       `json:"imported_from_folder"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// DocumentHistory — запись аудита смены статуса. Только добавляется,
// никогда не правится и не удаляется; каскадно удаляется вместе с документом.
type DocumentHistory struct {
	ID             int       `json:"id"`
	DocumentID     int       `json:"document_id"`
	PreviousStatus *string   `json:"previous_status,omitempty"` // NULL при создании документа
	NewStatus      string    `json:"new_status"`
	ChangedBy      *int      `json:"changed_by,omitempty"`
	ChangeReason   string    `json:"change_reason,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// DocumentDetail — документ со сводными названиями для UI.
type DocumentDetail struct {
	Document       Document          `json:"document"`
	StructuredName string            `json:"structured_name"`
	DisplayName    string            `json:"display_name"`
	History        []DocumentHistory `json:"history,omitempty"`
}

// DocumentFilter — фильтры списка документов.
type DocumentFilter struct {
	Status     string
	CategoryID *int
	EntityID   *int
	Query      string // поиск по title/notes/tags
	// Ограничение видимости: nil — видны все документы (админ/менеджер),
	// иначе только назначенные этому пользователю или созданные им.
	ViewerID *int
}

type UpdateDocumentRequest struct {
	Title          *string `json:"title,omitempty"`
	CategoryID     *int    `json:"category_id,omitempty"`
	DocumentTypeID *int    `json:"document_type_id,omitempty"`
	EntityID       *int    `json:"entity_id,omitempty"`
	DocumentDate   *string `json:"document_date,omitempty"` // YYYY-MM-DD
	DueDate        *string `json:"due_date,omitempty"`      // YYYY-MM-DD
	PaymentStatus  *string `json:"payment_status,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	Tags           *string `json:"tags,omitempty"`
	AssignedUserIDs []int  `json:"assigned_user_ids,omitempty"`
}

func (r UpdateDocumentRequest) Validate() error {
	rules := []*validation.FieldRules{}
	if r.Title != nil {
		rules = append(rules, validation.Field(&r.Title, validation.Required, validation.Length(1, 255)))
	}
	if r.PaymentStatus != nil {
		rules = append(rules, validation.Field(&r.PaymentStatus, validation.In(PaymentStatuses...)))
	}
	if r.DocumentDate != nil {
		rules = append(rules, validation.Field(&r.DocumentDate, validation.Date("2006-01-02")))
	}
	if r.DueDate != nil {
		rules = append(rules, validation.Field(&r.DueDate, validation.Date("2006-01-02")))
	}
	return validation.ValidateStruct(&r, rules...)
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (r ChangeStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.In(DocumentStatuses...)),
	)
}

// Dashboard — данные главного экрана (3 колонки: ожидающие, классификаторы, сущности).
type Dashboard struct {
	PendingDocuments []*Document    `json:"pending_documents"`
	Categories       []Category     `json:"categories"`
	DocumentTypes    []DocumentType `json:"document_types"`
	Entities         []*Entity      `json:"entities"`
	TotalDocuments   int            `json:"total_documents"`
	PendingCount     int            `json:"pending_count"`
	UsageType        string         `json:"usage_type"`
	PersonLabel      string         `json:"person_label"`
	ShowCompanies    bool           `json:"show_companies"`
}
