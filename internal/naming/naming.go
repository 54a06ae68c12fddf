// Package naming собирает структурные имена PDF-документов из коротких кодов
// классификаторов: Entidad_Categoría_TipoDocumento_Fecha.
package naming

import (
	"strings"
	"time"
	"unicode"
)

// Parts — исходные данные для построения имени. Пустое поле означает,
// что сегмент просто опускается (без заглушек).
type Parts struct {
	Title string // запасной вариант, когда нет ни одного сегмента

	EntityCode   string
	CategoryCode string
	TypeCode     string

	EntityName   string
	CategoryName string
	TypeName     string

	Date   string // YYYY-MM-DD; битая дата деградирует до строки без дефисов
	Suffix string // произвольный хвост, чистится до букв, цифр, _ и -
}

// StructuredName возвращает машинное имя вида ABC_FIS_INV_20251014.
// Если нет ни одного сегмента — возвращает Title как есть.
func StructuredName(p Parts) string {
	parts := []string{}

	if p.EntityCode != "" {
		parts = append(parts, p.EntityCode)
	}
	if p.CategoryCode != "" {
		parts = append(parts, p.CategoryCode)
	}
	if p.TypeCode != "" {
		parts = append(parts, p.TypeCode)
	}
	if p.Date != "" {
		parts = append(parts, compactDate(p.Date))
	}

	if suffix := SanitizeSuffix(p.Suffix); suffix != "" {
		parts = append(parts, suffix)
	}

	if len(parts) == 0 {
		return p.Title
	}
	return strings.Join(parts, "_")
}

// DisplayName возвращает человекочитаемый вариант с полными названиями
// и датой DD/MM/YYYY, через " - ". Это независимый вывод того же документа,
// не второй вызов движка с другими кодами.
func DisplayName(p Parts) string {
	parts := []string{}

	if p.EntityName != "" {
		parts = append(parts, p.EntityName)
	}
	if p.CategoryName != "" {
		parts = append(parts, p.CategoryName)
	}
	if p.TypeName != "" {
		parts = append(parts, p.TypeName)
	}
	if p.Date != "" {
		parts = append(parts, readableDate(p.Date))
	}

	if len(parts) == 0 {
		return p.Title
	}
	return strings.Join(parts, " - ")
}

// SanitizeSuffix оставляет только буквы, цифры (любого алфавита), _ и -.
func SanitizeSuffix(s string) string {
	var b strings.Builder
	for _, c := range s {
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '-' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// compactDate: YYYY-MM-DD → YYYYMMDD; непарсящаяся дата — как есть, без дефисов.
func compactDate(s string) string {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("20060102")
	}
	return strings.ReplaceAll(s, "-", "")
}

// readableDate: YYYY-MM-DD → DD/MM/YYYY; непарсящаяся дата возвращается как есть.
func readableDate(s string) string {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("02/01/2006")
	}
	return s
}
