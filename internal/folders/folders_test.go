package folders

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Empresa ABC", "Empresa_ABC"},
		{"Fiscal/2025", "Fiscal2025"},
		{"  Recursos Humanos  ", "Recursos_Humanos"},
		{"a-b_c", "a-b_c"},
		// Диакритика и не-ASCII буквы сохраняются: правило совпадает
		// с уже существующими деревьями папок.
		{"¡Año!", "Año"},
		{"María Elena Rodríguez", "María_Elena_Rodríguez"},
		{"Evaluación de Desempeño", "Evaluación_de_Desempeño"},
	}
	for _, c := range cases {
		if got := Sanitize(c.in); got != c.want {
			t.Errorf("Sanitize(%q): ожидалось %q, получено %q", c.in, c.want, got)
		}
	}
}

func TestEnsureEntityFolder(t *testing.T) {
	base := t.TempDir()
	p := NewProvisioner(base)

	path, err := p.EnsureEntityFolder("Empresa ABC")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	want := filepath.Join(base, "Empresa_ABC")
	if path != want {
		t.Errorf("ожидался путь %q, получен %q", want, path)
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		t.Errorf("папка сущности не создана: %v", err)
	}

	// Повторный вызов идемпотентен.
	if _, err := p.EnsureEntityFolder("Empresa ABC"); err != nil {
		t.Errorf("повторное создание не должно падать: %v", err)
	}
}

func TestEnsureCategoryFolder(t *testing.T) {
	base := t.TempDir()
	p := NewProvisioner(base)

	entityPath, err := p.EnsureEntityFolder("Empresa ABC")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if err := p.EnsureCategoryFolder(entityPath, "Documentos Fiscales"); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	catPath := filepath.Join(entityPath, "Documentos_Fiscales")
	if info, err := os.Stat(catPath); err != nil || !info.IsDir() {
		t.Errorf("папка категории не создана: %v", err)
	}
}
