package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CodeFromName выводит короткий код из отображаемого имени:
// остаются буквы, цифры, _ и -, пробелы становятся подчёркиваниями.
func CodeFromName(name string) string {
	var b strings.Builder
	for _, c := range strings.TrimSpace(name) {
		switch {
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-':
			b.WriteRune(c)
		case c == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Category — верхнеуровневая классификация документов (например, «Fiscal»).
type Category struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"` // уникальный короткий код для имён файлов
	Description  string    `json:"description,omitempty"`
	IsActive     bool      `json:"is_active"`
	AppliesToAll bool      `json:"applies_to_all"`
	// Явный набор сущностей; учитывается только когда AppliesToAll == false.
	ApplicableEntityIDs []int     `json:"applicable_entity_ids,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type CategoryWithTypes struct {
	Category Category       `json:"category"`
	Types    []DocumentType `json:"types"`
}

type CreateCategoryRequest struct {
	Name                string `json:"name"`
	Code                string `json:"code"`
	Description         string `json:"description"`
	IsActive            *bool  `json:"is_active"`       // по умолчанию true
	AppliesToAll        *bool  `json:"applies_to_all"`  // по умолчанию true
	ApplicableEntityIDs []int  `json:"applicable_entity_ids"`
}

func (r CreateCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Code,
			validation.Required,
			validation.Length(1, 50),
			validation.Match(codePattern).Error("код может содержать только буквы, цифры, _ и -"),
		),
	)
}

type UpdateCategoryRequest struct {
	Name                *string `json:"name,omitempty"`
	Code                *string `json:"code,omitempty"`
	Description         *string `json:"description,omitempty"`
	IsActive            *bool   `json:"is_active,omitempty"`
	AppliesToAll        *bool   `json:"applies_to_all,omitempty"`
	ApplicableEntityIDs []int   `json:"applicable_entity_ids,omitempty"`
}

func (r UpdateCategoryRequest) Validate() error {
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
