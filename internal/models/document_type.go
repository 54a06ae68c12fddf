package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DocumentType — тип документа внутри категории (например, «Invoice» в «Fiscal»).
// Пара (категория, код) уникальна.
type DocumentType struct {
	ID          int    `json:"id"`
	CategoryID  int    `json:"category_id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}

type CreateDocumentTypeRequest struct {
	CategoryID  int    `json:"category_id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"` // по умолчанию true
}

func (r CreateDocumentTypeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CategoryID, validation.Required),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Code,
			validation.Required,
			validation.Length(1, 50),
			validation.Match(codePattern).Error("код может содержать только буквы, цифры, _ и -"),
		),
	)
}

type UpdateDocumentTypeRequest struct {
	Name        *string `json:"name,omitempty"`
	Code        *string `json:"code,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (r UpdateDocumentTypeRequest) Validate() error {
	rules := []*validation.FieldRules{}
	if r.Name != nil {
		rules = append(rules, validation.Field(&r.Name, validation.Required, validation.Length(1, 100)))
	}
	if r.Code != nil {
		rules = append(rules, validation.Field(&r.Code,
			validation.Required,
			validation.Length(1, 50),
			validation.Match(codePattern).Error("код может содержать только буквы, цифры, _ и -"),
		))
	}
	return validation.ValidateStruct(&r, rules...)
}
