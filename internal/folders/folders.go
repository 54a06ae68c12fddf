// Package folders материализует иерархию Сущность/Категория на файловой системе.
// Все операции только создают директории: ничего не удаляется и не переименовывается,
// даже если записи позже меняют имя или правила применимости.
package folders

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Sanitize превращает отображаемое имя в безопасное имя папки:
// остаются буквы и цифры (любого алфавита, включая диакритику),
// пробел, «-» и «_», остальное выбрасывается, затем пробелы заменяются
// на «_». Правило должно совпадать байт-в-байт с уже существующими
// деревьями папок.
func Sanitize(name string) string {
	var b strings.Builder
	for _, c := range name {
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == ' ' || c == '-' || c == '_' {
			b.WriteRune(c)
		}
	}
	clean := strings.TrimSpace(b.String())
	return strings.ReplaceAll(clean, " ", "_")
}

// Provisioner создаёт папки под базовым каталогом.
type Provisioner struct {
	Base string
}

func NewProvisioner(base string) *Provisioner {
	return &Provisioner{Base: base}
}

// EnsureEntityFolder создаёт (идемпотентно) папку сущности и возвращает её путь.
func (p *Provisioner) EnsureEntityFolder(entityName string) (string, error) {
	path := filepath.Join(p.Base, Sanitize(entityName))
	if err := os.MkdirAll(path, os.ModePerm); err != nil {
		return "", err
	}
	return path, nil
}

// EnsureCategoryFolder создаёт подпапку категории внутри папки сущности.
func (p *Provisioner) EnsureCategoryFolder(entityFolder, categoryName string) error {
	return os.MkdirAll(filepath.Join(entityFolder, Sanitize(categoryName)), os.ModePerm)
}
