package services

import (
	"context"
	"doctrac/internal/logger"
	"doctrac/internal/models"
	"errors"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// Мок-репозиторий документов: хранит документы и историю в памяти,
// повторяя контракт настоящего репозитория (одна строка истории на
// создание, ни одной — при смене на тот же статус).
type mockDocRepo struct {
	docs       map[int]*models.Document
	history    map[int][]models.DocumentHistory
	nextID     int
	lastFilter models.DocumentFilter
}

func newMockDocRepo() *mockDocRepo {
	return &mockDocRepo{
		docs:    make(map[int]*models.Document),
		history: make(map[int][]models.DocumentHistory),
		nextID:  1,
	}
}

func (m *mockDocRepo) SaveDocument(_ context.Context, doc *models.Document, reason string) (int, error) {
	doc.ID = m.nextID
	m.nextID++
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt
	m.docs[doc.ID] = doc
	m.history[doc.ID] = append(m.history[doc.ID], models.DocumentHistory{
		DocumentID:   doc.ID,
		NewStatus:    doc.Status,
		ChangedBy:    doc.CreatedBy,
		ChangeReason: reason,
		CreatedAt:    doc.CreatedAt,
	})
	return doc.ID, nil
}

func (m *mockDocRepo) UpdateDocument(_ context.Context, doc *models.Document, _ bool) error {
	if _, ok := m.docs[doc.ID]; !ok {
		return errors.New("not found")
	}
	m.docs[doc.ID] = doc
	return nil
}

func (m *mockDocRepo) ChangeStatus(_ context.Context, id int, newStatus string, actorID *int, reason string) (bool, error) {
	doc, ok := m.docs[id]
	if !ok {
		return false, errors.New("not found")
	}
	if doc.Status == newStatus {
		return false, nil
	}
	prev := doc.Status
	doc.Status = newStatus
	m.history[id] = append(m.history[id], models.DocumentHistory{
		DocumentID:     id,
		PreviousStatus: &prev,
		NewStatus:      newStatus,
		ChangedBy:      actorID,
		ChangeReason:   reason,
		CreatedAt:      time.Now(),
	})
	return true, nil
}

func (m *mockDocRepo) GetDocumentByID(_ context.Context, id int) (*models.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return doc, nil
}

func (m *mockDocRepo) ListDocuments(_ context.Context, filter models.DocumentFilter, _, _ int) ([]*models.Document, int, error) {
	m.lastFilter = filter
	var out []*models.Document
	for _, doc := range m.docs {
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		out = append(out, doc)
	}
	return out, len(out), nil
}

func (m *mockDocRepo) CountDocuments(_ context.Context, _ models.DocumentFilter) (int, error) {
	return len(m.docs), nil
}

func (m *mockDocRepo) GetHistory(_ context.Context, documentID int) ([]models.DocumentHistory, error) {
	return m.history[documentID], nil
}

func (m *mockDocRepo) ExistsByOriginalFilename(_ context.Context, filename string) (bool, error) {
	for _, doc := range m.docs {
		if doc.OriginalFilename == filename {
			return true, nil
		}
	}
	return false, nil
}

type mockCategoryRepo struct {
	cats   map[int]*models.Category
	nextID int
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{cats: make(map[int]*models.Category), nextID: 1}
}

func (m *mockCategoryRepo) CreateCategory(_ context.Context, c *models.Category) (int, error) {
	c.ID = m.nextID
	m.nextID++
	m.cats[c.ID] = c
	return c.ID, nil
}

func (m *mockCategoryRepo) UpdateCategory(_ context.Context, c *models.Category) error {
	m.cats[c.ID] = c
	return nil
}

func (m *mockCategoryRepo) GetCategoryByID(_ context.Context, id int) (*models.Category, error) {
	c, ok := m.cats[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return c, nil
}

func (m *mockCategoryRepo) IsCodeTaken(_ context.Context, code string, excludeID int) (bool, error) {
	for _, c := range m.cats {
		if c.Code == code && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCategoryRepo) ListCategories(_ context.Context, onlyActive bool) ([]models.Category, error) {
	var out []models.Category
	for _, c := range m.cats {
		if onlyActive && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCategoryRepo) ListActiveForEntity(_ context.Context, entityID int) ([]models.Category, error) {
	var out []models.Category
	for _, c := range m.cats {
		if !c.IsActive {
			continue
		}
		if c.AppliesToAll {
			out = append(out, *c)
			continue
		}
		for _, id := range c.ApplicableEntityIDs {
			if id == entityID {
				out = append(out, *c)
				break
			}
		}
	}
	return out, nil
}

func (m *mockCategoryRepo) GetOrCreateByName(_ context.Context, name, description string) (*models.Category, bool, error) {
	for _, c := range m.cats {
		if c.Name == name {
			return c, false, nil
		}
	}
	c := &models.Category{
		Name:         name,
		Code:         models.CodeFromName(name),
		Description:  description,
		IsActive:     true,
		AppliesToAll: true,
	}
	c.ID = m.nextID
	m.nextID++
	m.cats[c.ID] = c
	return c, true, nil
}

type mockTypeRepo struct {
	types  map[int]*models.DocumentType
	nextID int
}

func newMockTypeRepo() *mockTypeRepo {
	return &mockTypeRepo{types: make(map[int]*models.DocumentType), nextID: 1}
}

func (m *mockTypeRepo) CreateDocumentType(_ context.Context, t *models.DocumentType) (int, error) {
	t.ID = m.nextID
	m.nextID++
	m.types[t.ID] = t
	return t.ID, nil
}

func (m *mockTypeRepo) UpdateDocumentType(_ context.Context, id int, input *models.UpdateDocumentTypeRequest) error {
	t, ok := m.types[id]
	if !ok {
		return errors.New("not found")
	}
	if input.Name != nil {
		t.Name = *input.Name
	}
	if input.Code != nil {
		t.Code = *input.Code
	}
	if input.Description != nil {
		t.Description = *input.Description
	}
	if input.IsActive != nil {
		t.IsActive = *input.IsActive
	}
	return nil
}

func (m *mockTypeRepo) DeleteDocumentType(_ context.Context, id int) error {
	delete(m.types, id)
	return nil
}

func (m *mockTypeRepo) GetDocumentTypeByID(_ context.Context, id int) (*models.DocumentType, error) {
	t, ok := m.types[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return t, nil
}

func (m *mockTypeRepo) IsCodeTaken(_ context.Context, categoryID int, code string, excludeID int) (bool, error) {
	for _, t := range m.types {
		if t.CategoryID == categoryID && t.Code == code && t.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockTypeRepo) ListDocumentTypes(_ context.Context, categoryID *int, onlyActive bool) ([]models.DocumentType, error) {
	var out []models.DocumentType
	for _, t := range m.types {
		if categoryID != nil && t.CategoryID != *categoryID {
			continue
		}
		if onlyActive && !t.IsActive {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

type mockEntityRepo struct {
	entities    map[int]*models.Entity
	nextID      int
	folderPaths map[int]string
	setPathErr  error
}

func newMockEntityRepo() *mockEntityRepo {
	return &mockEntityRepo{
		entities:    make(map[int]*models.Entity),
		nextID:      1,
		folderPaths: make(map[int]string),
	}
}

func (m *mockEntityRepo) CreateEntity(_ context.Context, e *models.Entity) (int, error) {
	e.ID = m.nextID
	m.nextID++
	e.CreatedAt = time.Now()
	m.entities[e.ID] = e
	return e.ID, nil
}

func (m *mockEntityRepo) UpdateEntity(_ context.Context, id int, input *models.UpdateEntityRequest) error {
	e, ok := m.entities[id]
	if !ok {
		return errors.New("not found")
	}
	if input.Name != nil {
		e.Name = *input.Name
	}
	if input.Code != nil {
		e.Code = *input.Code
	}
	if input.Description != nil {
		e.Description = *input.Description
	}
	return nil
}

func (m *mockEntityRepo) GetEntityByID(_ context.Context, id int) (*models.Entity, error) {
	e, ok := m.entities[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return e, nil
}

func (m *mockEntityRepo) IsCodeTaken(_ context.Context, code string, excludeID int) (bool, error) {
	for _, e := range m.entities {
		if e.Code == code && e.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEntityRepo) ListEntities(_ context.Context, _ string) ([]*models.Entity, error) {
	var out []*models.Entity
	for _, e := range m.entities {
		out = append(out, e)
	}
	return out, nil
}

func (m *mockEntityRepo) ListAutoFolderEntities(_ context.Context, ids []int) ([]*models.Entity, error) {
	var out []*models.Entity
	for _, e := range m.entities {
		if !e.AutoCreateFolder {
			continue
		}
		if len(ids) > 0 {
			found := false
			for _, id := range ids {
				if id == e.ID {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockEntityRepo) SetFolderPath(_ context.Context, id int, path string) error {
	if m.setPathErr != nil {
		return m.setPathErr
	}
	e, ok := m.entities[id]
	if !ok {
		return errors.New("not found")
	}
	if e.FolderPath == nil {
		e.FolderPath = &path
		m.folderPaths[id] = path
	}
	return nil
}

func newDocService(docRepo *mockDocRepo, catRepo *mockCategoryRepo, typeRepo *mockTypeRepo, entityRepo *mockEntityRepo) *DocumentService {
	return NewDocumentService(docRepo, catRepo, typeRepo, entityRepo)
}

func adminUser() *models.User {
	return &models.User{ID: 1, Username: "admin", Role: "admin"}
}

func plainUser(id int) *models.User {
	return &models.User{ID: id, Username: "user", Role: "user"}
}

func TestCreateDocument_DefaultsAndFirstHistoryRow(t *testing.T) {
	docRepo := newMockDocRepo()
	service := newDocService(docRepo, newMockCategoryRepo(), newMockTypeRepo(), newMockEntityRepo())

	creator := 1
	id, err := service.Create(context.Background(), &models.Document{
		Title:     "Factura",
		FilePath:  "/tmp/factura.pdf",
		CreatedBy: &creator,
	})
	if err != nil {
		t.Fatalf("ошибка создания документа: %v", err)
	}

	doc := docRepo.docs[id]
	if doc.Status != models.StatusPending {
		t.Errorf("статус по умолчанию должен быть pending, получен %q", doc.Status)
	}
	if doc.PaymentStatus != models.PaymentNotApplicable {
		t.Errorf("статус оплаты по умолчанию должен быть not_applicable, получен %q", doc.PaymentStatus)
	}

	history := docRepo.history[id]
	if len(history) != 1 {
		t.Fatalf("ожидалась одна строка истории после создания, получено %d", len(history))
	}
	if history[0].PreviousStatus != nil {
		t.Errorf("previous_status первой записи должен быть NULL")
	}
	if history[0].ChangeReason != ReasonCreated {
		t.Errorf("причина первой записи должна быть %q, получено %q", ReasonCreated, history[0].ChangeReason)
	}
}

func TestChangeStatus_WritesHistoryOncePerRealChange(t *testing.T) {
	docRepo := newMockDocRepo()
	service := newDocService(docRepo, newMockCategoryRepo(), newMockTypeRepo(), newMockEntityRepo())

	creator := 1
	id, _ := service.Create(context.Background(), &models.Document{
		Title: "doc", FilePath: "/tmp/d.pdf", CreatedBy: &creator,
	})

	changed, err := service.ChangeStatus(context.Background(), id, models.StatusScanned, "", adminUser())
	if err != nil {
		t.Fatalf("ошибка смены статуса: %v", err)
	}
	if !changed {
		t.Fatal("смена на новый статус должна вернуть changed=true")
	}

	history := docRepo.history[id]
	if len(history) != 2 {
		t.Fatalf("ожидались 2 строки истории, получено %d", len(history))
	}
	last := history[1]
	if last.PreviousStatus == nil || *last.PreviousStatus != models.StatusPending {
		t.Errorf("previous_status должен быть pending")
	}
	if last.NewStatus != models.StatusScanned {
		t.Errorf("new_status должен быть scanned, получен %q", last.NewStatus)
	}
	if last.ChangeReason != ReasonStatusUpdated {
		t.Errorf("пустая причина должна заменяться на %q, получено %q", ReasonStatusUpdated, last.ChangeReason)
	}

	// Повторная установка того же статуса не пишет историю.
	changed, err = service.ChangeStatus(context.Background(), id, models.StatusScanned, "", adminUser())
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if changed {
		t.Error("смена на тот же статус должна вернуть changed=false")
	}
	if len(docRepo.history[id]) != 2 {
		t.Errorf("история не должна расти при смене на тот же статус, получено %d строк", len(docRepo.history[id]))
	}
}

func TestGetDocument_AccessControl(t *testing.T) {
	docRepo := newMockDocRepo()
	service := newDocService(docRepo, newMockCategoryRepo(), newMockTypeRepo(), newMockEntityRepo())

	creator := 1
	id, _ := service.Create(context.Background(), &models.Document{
		Title: "doc", FilePath: "/tmp/d.pdf", CreatedBy: &creator,
		AssignedUserIDs: []int{3},
	})

	// Чужой пользователь получает ErrNotFound, а не 403: существование
	// документа не раскрывается.
	if _, err := service.Get(context.Background(), id, plainUser(2)); !errors.Is(err, ErrNotFound) {
		t.Errorf("ожидался ErrNotFound для постороннего, получено %v", err)
	}

	// Назначенный пользователь видит документ.
	if _, err := service.Get(context.Background(), id, plainUser(3)); err != nil {
		t.Errorf("назначенный пользователь должен видеть документ: %v", err)
	}

	// Создатель видит документ.
	if _, err := service.Get(context.Background(), id, plainUser(1)); err != nil {
		t.Errorf("создатель должен видеть документ: %v", err)
	}

	// Менеджер видит всё.
	manager := &models.User{ID: 9, Role: "manager"}
	if _, err := service.Get(context.Background(), id, manager); err != nil {
		t.Errorf("менеджер должен видеть документ: %v", err)
	}
}

func TestGetDocument_BuildsNames(t *testing.T) {
	docRepo := newMockDocRepo()
	catRepo := newMockCategoryRepo()
	typeRepo := newMockTypeRepo()
	entityRepo := newMockEntityRepo()
	service := newDocService(docRepo, catRepo, typeRepo, entityRepo)

	entityID, _ := entityRepo.CreateEntity(context.Background(), &models.Entity{Name: "Empresa ABC", Code: "ABC"})
	catID, _ := catRepo.CreateCategory(context.Background(), &models.Category{Name: "Fiscal", Code: "FIS", IsActive: true})
	typeID, _ := typeRepo.CreateDocumentType(context.Background(), &models.DocumentType{CategoryID: catID, Name: "Factura", Code: "INV", IsActive: true})

	date := time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)
	creator := 1
	id, _ := service.Create(context.Background(), &models.Document{
		Title: "Factura octubre", FilePath: "/tmp/f.pdf", CreatedBy: &creator,
		EntityID: &entityID, CategoryID: &catID, DocumentTypeID: &typeID,
		DocumentDate: &date,
	})

	detail, err := service.Get(context.Background(), id, adminUser())
	if err != nil {
		t.Fatalf("ошибка получения документа: %v", err)
	}
	if detail.StructuredName != "ABC_FIS_INV_20251014" {
		t.Errorf("ожидалось структурное имя ABC_FIS_INV_20251014, получено %q", detail.StructuredName)
	}
	if detail.DisplayName != "Empresa ABC - Fiscal - Factura - 14/10/2025" {
		t.Errorf("неверное отображаемое имя: %q", detail.DisplayName)
	}
}

func TestListDocuments_ViewerScope(t *testing.T) {
	docRepo := newMockDocRepo()
	service := newDocService(docRepo, newMockCategoryRepo(), newMockTypeRepo(), newMockEntityRepo())

	if _, _, err := service.List(context.Background(), models.DocumentFilter{}, plainUser(7), 10, 0); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if docRepo.lastFilter.ViewerID == nil || *docRepo.lastFilter.ViewerID != 7 {
		t.Error("для обычного пользователя список должен ограничиваться его ID")
	}

	if _, _, err := service.List(context.Background(), models.DocumentFilter{}, adminUser(), 10, 0); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if docRepo.lastFilter.ViewerID != nil {
		t.Error("админ должен видеть все документы, ViewerID должен быть nil")
	}
}

func TestUpdateDocument_DoesNotTouchStatus(t *testing.T) {
	docRepo := newMockDocRepo()
	service := newDocService(docRepo, newMockCategoryRepo(), newMockTypeRepo(), newMockEntityRepo())

	creator := 1
	id, _ := service.Create(context.Background(), &models.Document{
		Title: "doc", FilePath: "/tmp/d.pdf", CreatedBy: &creator,
	})

	newTitle := "doc v2"
	notes := "обновлено"
	doc, err := service.Update(context.Background(), id, &models.UpdateDocumentRequest{
		Title: &newTitle,
		Notes: &notes,
	}, adminUser())
	if err != nil {
		t.Fatalf("ошибка обновления: %v", err)
	}

	if doc.Title != "doc v2" || doc.Notes != "обновлено" {
		t.Errorf("поля не обновились: %+v", doc)
	}
	if doc.Status != models.StatusPending {
		t.Errorf("Update не должен менять статус, получен %q", doc.Status)
	}
	if len(docRepo.history[id]) != 1 {
		t.Errorf("Update не должен писать историю, получено %d строк", len(docRepo.history[id]))
	}
}
