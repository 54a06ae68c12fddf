package services

import (
	"context"
	"doctrac/internal/models"
	"errors"
	"testing"
)

func TestCreateDocumentType_RequiresCategory(t *testing.T) {
	service := NewDocumentTypeService(newMockTypeRepo(), newMockCategoryRepo())

	_, err := service.CreateDocumentType(context.Background(), &models.CreateDocumentTypeRequest{
		CategoryID: 42, Name: "Factura", Code: "INV",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("несуществующая категория должна давать ErrNotFound, получено %v", err)
	}
}

func TestCreateDocumentType_CodeUniquePerCategory(t *testing.T) {
	typeRepo := newMockTypeRepo()
	catRepo := newMockCategoryRepo()
	service := NewDocumentTypeService(typeRepo, catRepo)

	cat1, _ := catRepo.CreateCategory(context.Background(), &models.Category{Name: "Fiscal", Code: "FIS", IsActive: true})
	cat2, _ := catRepo.CreateCategory(context.Background(), &models.Category{Name: "Legal", Code: "LEG", IsActive: true})

	if _, err := service.CreateDocumentType(context.Background(), &models.CreateDocumentTypeRequest{
		CategoryID: cat1, Name: "Factura", Code: "INV",
	}); err != nil {
		t.Fatalf("ошибка создания типа: %v", err)
	}

	// Тот же код в той же категории — конфликт.
	if _, err := service.CreateDocumentType(context.Background(), &models.CreateDocumentTypeRequest{
		CategoryID: cat1, Name: "Factura 2", Code: "INV",
	}); !errors.Is(err, ErrCodeTaken) {
		t.Errorf("дубликат кода в категории должен давать ErrCodeTaken, получено %v", err)
	}

	// Тот же код в другой категории — допустим.
	if _, err := service.CreateDocumentType(context.Background(), &models.CreateDocumentTypeRequest{
		CategoryID: cat2, Name: "Factura", Code: "INV",
	}); err != nil {
		t.Errorf("одинаковый код в разных категориях должен быть допустим: %v", err)
	}
}

func TestCreateDocumentType_ActiveByDefault(t *testing.T) {
	typeRepo := newMockTypeRepo()
	catRepo := newMockCategoryRepo()
	service := NewDocumentTypeService(typeRepo, catRepo)

	catID, _ := catRepo.CreateCategory(context.Background(), &models.Category{Name: "Fiscal", Code: "FIS", IsActive: true})

	docType, err := service.CreateDocumentType(context.Background(), &models.CreateDocumentTypeRequest{
		CategoryID: catID, Name: "Factura", Code: "INV",
	})
	if err != nil {
		t.Fatalf("ошибка создания: %v", err)
	}
	if !docType.IsActive {
		t.Error("тип должен быть активным по умолчанию")
	}
}
