package services

import (
	"context"
	"doctrac/internal/models"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type mockSyncUserRepo struct {
	user *models.User
}

func (m *mockSyncUserRepo) GetFirstUser(_ context.Context) (*models.User, error) {
	if m.user == nil {
		return nil, errors.New("no users")
	}
	return m.user, nil
}

func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644); err != nil {
		t.Fatalf("не удалось создать тестовый файл: %v", err)
	}
	return path
}

func newSyncFixture(t *testing.T) (*SyncService, *mockDocRepo, *mockCategoryRepo, string, string) {
	t.Helper()
	monitored := t.TempDir()
	pending := filepath.Join(t.TempDir(), "Pending")

	docRepo := newMockDocRepo()
	catRepo := newMockCategoryRepo()
	userRepo := &mockSyncUserRepo{user: &models.User{ID: 1, Username: "admin", Role: "admin"}}

	service := NewSyncService(docRepo, catRepo, userRepo, monitored, pending, "Documentos Escaneados")
	return service, docRepo, catRepo, monitored, pending
}

func TestSync_IngestsNewPDF(t *testing.T) {
	service, docRepo, catRepo, monitored, pending := newSyncFixture(t)
	writePDF(t, monitored, "invoice.pdf")

	report, err := service.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("ошибка синхронизации: %v", err)
	}
	if report.Processed != 1 || report.Skipped != 0 || report.Failed != 0 {
		t.Fatalf("неверный отчёт: %+v", report)
	}

	// Оригинал ушёл в processed/, в папке мониторинга его больше нет.
	if _, err := os.Stat(filepath.Join(monitored, "invoice.pdf")); !os.IsNotExist(err) {
		t.Error("исходный файл должен быть перемещён из папки мониторинга")
	}
	if _, err := os.Stat(filepath.Join(monitored, "processed", "invoice.pdf")); err != nil {
		t.Errorf("файл должен лежать в processed/: %v", err)
	}

	// Рабочая копия в Pending с таймстемп-префиксом.
	entries, err := os.ReadDir(pending)
	if err != nil || len(entries) != 1 {
		t.Fatalf("в Pending должна быть ровно одна копия: %v", err)
	}
	if !strings.HasSuffix(entries[0].Name(), "_invoice.pdf") {
		t.Errorf("копия должна иметь таймстемп-префикс, получено %q", entries[0].Name())
	}

	// Документ зарегистрирован со статусом pending и флагом импорта.
	if len(docRepo.docs) != 1 {
		t.Fatalf("ожидался один документ, получено %d", len(docRepo.docs))
	}
	var doc *models.Document
	for _, d := range docRepo.docs {
		doc = d
	}
	if doc.Status != models.StatusPending {
		t.Errorf("статус должен быть pending, получен %q", doc.Status)
	}
	if !doc.ImportedFromFolder {
		t.Error("документ должен быть помечен как импортированный")
	}
	if doc.Title != "invoice" {
		t.Errorf("title должен быть именем файла без расширения, получено %q", doc.Title)
	}
	if doc.OriginalFilename != "invoice.pdf" {
		t.Errorf("original_filename должен сохраняться, получено %q", doc.OriginalFilename)
	}
	if doc.CategoryID == nil {
		t.Fatal("документу должна назначаться категория по умолчанию")
	}
	cat, _ := catRepo.GetCategoryByID(context.Background(), *doc.CategoryID)
	if cat.Name != "Documentos Escaneados" {
		t.Errorf("категория по умолчанию должна называться Documentos Escaneados, получено %q", cat.Name)
	}

	if len(docRepo.history[doc.ID]) != 1 {
		t.Errorf("у импортированного документа должна быть одна строка истории")
	}

	// Повторный прогон без новых файлов ничего не делает.
	report, err = service.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("ошибка повторной синхронизации: %v", err)
	}
	if report.Processed != 0 || report.Skipped != 0 {
		t.Errorf("повторный прогон должен быть пустым: %+v", report)
	}
}

func TestSync_SkipsDuplicateFilename(t *testing.T) {
	service, docRepo, _, monitored, _ := newSyncFixture(t)
	writePDF(t, monitored, "invoice.pdf")

	if _, err := service.Run(context.Background(), false); err != nil {
		t.Fatalf("ошибка синхронизации: %v", err)
	}

	// Тот же файл появился снова: документ уже есть, файл пропускается.
	writePDF(t, monitored, "invoice.pdf")
	report, err := service.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("ошибка синхронизации: %v", err)
	}
	if report.Skipped != 1 || report.Processed != 0 {
		t.Errorf("дубликат должен пропускаться: %+v", report)
	}
	if len(docRepo.docs) != 1 {
		t.Errorf("второй документ не должен создаваться, получено %d", len(docRepo.docs))
	}
}

func TestSync_DryRunTouchesNothing(t *testing.T) {
	service, docRepo, _, monitored, pending := newSyncFixture(t)
	writePDF(t, monitored, "scan.pdf")

	report, err := service.Run(context.Background(), true)
	if err != nil {
		t.Fatalf("ошибка синхронизации: %v", err)
	}
	if !report.DryRun || report.Processed != 1 {
		t.Errorf("dry-run должен посчитать файл: %+v", report)
	}

	if _, err := os.Stat(filepath.Join(monitored, "scan.pdf")); err != nil {
		t.Error("в dry-run файл должен остаться на месте")
	}
	if _, err := os.Stat(pending); !os.IsNotExist(err) {
		t.Error("в dry-run папка Pending не должна создаваться")
	}
	if len(docRepo.docs) != 0 {
		t.Error("в dry-run документы не должны создаваться")
	}
}

func TestSync_IgnoresNonPDF(t *testing.T) {
	service, docRepo, _, monitored, _ := newSyncFixture(t)
	if err := os.WriteFile(filepath.Join(monitored, "notes.txt"), []byte("txt"), 0o644); err != nil {
		t.Fatalf("не удалось создать файл: %v", err)
	}

	report, err := service.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("ошибка синхронизации: %v", err)
	}
	if report.Processed != 0 || len(docRepo.docs) != 0 {
		t.Errorf("не-PDF файлы должны игнорироваться: %+v", report)
	}
}

func TestSync_FailsWithoutUsers(t *testing.T) {
	monitored := t.TempDir()
	writePDF(t, monitored, "invoice.pdf")

	service := NewSyncService(newMockDocRepo(), newMockCategoryRepo(), &mockSyncUserRepo{},
		monitored, filepath.Join(t.TempDir(), "Pending"), "Documentos Escaneados")

	if _, err := service.Run(context.Background(), false); err == nil {
		t.Fatal("без пользователей синхронизация должна возвращать ошибку")
	}
}

func TestSync_MissingMonitoredFolder(t *testing.T) {
	service := NewSyncService(newMockDocRepo(), newMockCategoryRepo(), &mockSyncUserRepo{},
		filepath.Join(t.TempDir(), "no-such-dir"), t.TempDir(), "Documentos Escaneados")

	if _, err := service.Run(context.Background(), false); err == nil {
		t.Fatal("отсутствующая папка мониторинга должна быть ошибкой")
	}
}
