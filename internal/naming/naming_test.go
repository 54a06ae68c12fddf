package naming

import "testing"

func TestStructuredNameAllSegments(t *testing.T) {
	got := StructuredName(Parts{
		Title:        "Factura de octubre",
		EntityCode:   "ABC",
		CategoryCode: "FIS",
		TypeCode:     "INV",
		Date:         "2025-10-14",
	})
	want := "ABC_FIS_INV_20251014"
	if got != want {
		t.Errorf("ожидалось %q, получено %q", want, got)
	}
}

func TestStructuredNameOmitsEmptySegments(t *testing.T) {
	got := StructuredName(Parts{
		Title:      "doc",
		EntityCode: "ABC",
		TypeCode:   "INV",
	})
	want := "ABC_INV"
	if got != want {
		t.Errorf("пустые сегменты должны опускаться: ожидалось %q, получено %q", want, got)
	}
}

func TestStructuredNameFallsBackToTitle(t *testing.T) {
	got := StructuredName(Parts{Title: "Factura sin clasificar"})
	if got != "Factura sin clasificar" {
		t.Errorf("без сегментов имя должно быть равно title, получено %q", got)
	}
}

func TestStructuredNameSuffixSanitized(t *testing.T) {
	got := StructuredName(Parts{
		EntityCode: "ABC",
		Suffix:     "copia #2!",
	})
	want := "ABC_copia2"
	if got != want {
		t.Errorf("суффикс должен чиститься: ожидалось %q, получено %q", want, got)
	}

	// Не-ASCII буквы в суффиксе сохраняются.
	got = StructuredName(Parts{EntityCode: "ABC", Suffix: "versión-única!"})
	want = "ABC_versión-única"
	if got != want {
		t.Errorf("буквы с диакритикой должны сохраняться: ожидалось %q, получено %q", want, got)
	}
}

func TestStructuredNameBrokenDate(t *testing.T) {
	got := StructuredName(Parts{EntityCode: "ABC", Date: "2025-13-99"})
	want := "ABC_20251399"
	if got != want {
		t.Errorf("битая дата деградирует до строки без дефисов: ожидалось %q, получено %q", want, got)
	}
}

func TestDisplayName(t *testing.T) {
	got := DisplayName(Parts{
		EntityName:   "Empresa ABC",
		CategoryName: "Fiscal",
		TypeName:     "Factura",
		Date:         "2025-10-14",
	})
	want := "Empresa ABC - Fiscal - Factura - 14/10/2025"
	if got != want {
		t.Errorf("ожидалось %q, получено %q", want, got)
	}
}

func TestDisplayNameFallsBackToTitle(t *testing.T) {
	got := DisplayName(Parts{Title: "Documento suelto"})
	if got != "Documento suelto" {
		t.Errorf("без сегментов display name равен title, получено %q", got)
	}
}
