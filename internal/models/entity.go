package models

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// codePattern — короткий код для имён PDF: без пробелов и спецсимволов.
var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Entity — сущность (персона, компания или департамент), к которой привязываются документы.
type Entity struct {
	ID               int       `json:"id"`
	Name             string    `json:"name"`
	Code             string    `json:"code"` // уникальный короткий код для имён файлов
	Description      string    `json:"description,omitempty"`
	IsCompany        bool      `json:"is_company"`
	IsDepartment     bool      `json:"is_department"`
	FolderPath       *string   `json:"folder_path,omitempty"` // выставляется один раз при создании папки
	AutoCreateFolder bool      `json:"auto_create_folder"`
	CreatedAt        time.Time `json:"created_at"`
}

// TypeDisplay возвращает подпись типа сущности с учётом режима использования.
func (e *Entity) TypeDisplay(usageType string) string {
	if usageType == "empresa" {
		if e.IsDepartment {
			return "Departamento"
		}
		if e.IsCompany {
			return "Empresa"
		}
		return "Externo"
	}
	if e.IsCompany {
		return "Empresa"
	}
	return "Entidad"
}

type CreateEntityRequest struct {
	Name             string `json:"name"`
	Code             string `json:"code"`
	Description      string `json:"description"`
	IsCompany        bool   `json:"is_company"`
	IsDepartment     bool   `json:"is_department"`
	AutoCreateFolder *bool  `json:"auto_create_folder"` // по умолчанию true
}

func (r CreateEntityRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Code,
			validation.Required,
			validation.Length(1, 100),
			validation.Match(codePattern).Error("код может содержать только буквы, цифры, _ и -"),
		),
	)
}

type UpdateEntityRequest struct {
	Name         *string `json:"name,omitempty"`
	Code         *string `json:"code,omitempty"`
	Description  *string `json:"description,omitempty"`
	IsCompany    *bool   `json:"is_company,omitempty"`
	IsDepartment *bool   `json:"is_department,omitempty"`
}

func (r UpdateEntityRequest) Validate() error {
	rules := []*validation.FieldRules{}
	if r.Name != nil {
		rules = append(rules, validation.Field(&r.Name, validation.Required, validation.Length(1, 200)))
	}
	if r.Code != nil {
		rules = append(rules, validation.Field(&r.Code,
			validation.Required,
			validation.Length(1, 100),
			validation.Match(codePattern).Error("код может содержать только буквы, цифры, _ и -"),
		))
	}
	return validation.ValidateStruct(&r, rules...)
}
