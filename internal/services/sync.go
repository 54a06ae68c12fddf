package services

import (
	"context"
	"doctrac/internal/logger"
	"doctrac/internal/models"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

type SyncUserRepo interface {
	GetFirstUser(ctx context.Context) (*models.User, error)
}

// SyncReport — итог одного прогона синхронизации.
type SyncReport struct {
	Processed int  `json:"processed"`
	Skipped   int  `json:"skipped"`
	Failed    int  `json:"failed"`
	DryRun    bool `json:"dry_run"`
}

// SyncService забирает PDF из папки мониторинга и регистрирует их
// как ожидающие документы.
type SyncService struct {
	docRepo  DocumentRepo
	catRepo  CategoryRepo
	userRepo SyncUserRepo

	monitoredFolder string
	pendingFolder   string
	defaultCategory string
}

func NewSyncService(docRepo DocumentRepo, catRepo CategoryRepo, userRepo SyncUserRepo,
	monitoredFolder, pendingFolder, defaultCategory string) *SyncService {
	return &SyncService{
		docRepo:         docRepo,
		catRepo:         catRepo,
		userRepo:        userRepo,
		monitoredFolder: monitoredFolder,
		pendingFolder:   pendingFolder,
		defaultCategory: defaultCategory,
	}
}

// Run обрабатывает PDF-файлы, лежащие непосредственно в папке мониторинга
// (без рекурсии). Ошибка по одному файлу логируется и не прерывает остальные.
// В dry-run режиме файлы не трогаются, считается только их количество.
func (s *SyncService) Run(ctx context.Context, dryRun bool) (*SyncReport, error) {
	report := &SyncReport{DryRun: dryRun}

	if _, err := os.Stat(s.monitoredFolder); err != nil {
		return nil, fmt.Errorf("папка мониторинга недоступна: %w", err)
	}

	pdfFiles, err := filepath.Glob(filepath.Join(s.monitoredFolder, "*.pdf"))
	if err != nil {
		return nil, err
	}
	if len(pdfFiles) == 0 {
		logger.Log.Info("Синхронизация: новых PDF не найдено")
		return report, nil
	}

	category, created, err := s.catRepo.GetOrCreateByName(ctx, s.defaultCategory,
		"Documentos importados automáticamente desde la carpeta de monitoreo")
	if err != nil {
		return nil, err
	}
	if created {
		logger.Log.Info("Создана категория по умолчанию", zap.String("category", category.Name))
	}

	defaultUser, err := s.userRepo.GetFirstUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("в системе нет пользователей, создайте хотя бы одного: %w", err)
	}

	for _, pdfPath := range pdfFiles {
		filename := filepath.Base(pdfPath)

		exists, err := s.docRepo.ExistsByOriginalFilename(ctx, filename)
		if err != nil {
			logger.Log.Error("Синхронизация: ошибка проверки дубликата",
				zap.String("file", filename), zap.Error(err))
			report.Failed++
			continue
		}
		if exists {
			logger.Log.Warn("Синхронизация: документ уже существует, файл пропущен",
				zap.String("file", filename))
			report.Skipped++
			continue
		}

		if dryRun {
			logger.Log.Info("Синхронизация (dry-run): был бы обработан",
				zap.String("file", filename))
			report.Processed++
			continue
		}

		if err := s.ingestFile(ctx, pdfPath, filename, category.ID, defaultUser.ID); err != nil {
			logger.Log.Error("Синхронизация: ошибка обработки файла",
				zap.String("file", filename), zap.Error(err))
			report.Failed++
			continue
		}
		report.Processed++
	}

	logger.Log.Info("Синхронизация завершена",
		zap.Int("processed", report.Processed),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Bool("dry_run", dryRun))
	return report, nil
}

// ingestFile: оригинал уходит в processed/ внутри папки мониторинга,
// рабочая копия с таймстемпом — в папку Pending, и создаётся документ
// в статусе pending.
func (s *SyncService) ingestFile(ctx context.Context, pdfPath, filename string, categoryID, userID int) error {
	processedFolder := filepath.Join(s.monitoredFolder, "processed")
	if err := os.MkdirAll(processedFolder, os.ModePerm); err != nil {
		return err
	}
	if err := os.MkdirAll(s.pendingFolder, os.ModePerm); err != nil {
		return err
	}

	processedPath := filepath.Join(processedFolder, filename)
	if err := moveFile(pdfPath, processedPath); err != nil {
		return err
	}

	timestamp := time.Now().Format("20060102_150405")
	pendingPath := filepath.Join(s.pendingFolder, timestamp+"_"+filename)
	if err := copyFile(processedPath, pendingPath); err != nil {
		return err
	}

	title := strings.TrimSuffix(filename, filepath.Ext(filename))
	doc := &models.Document{
		Title:              title,
		FilePath:           pendingPath,
		CategoryID:         &categoryID,
		Status:             models.StatusPending,
		PaymentStatus:      models.PaymentNotApplicable,
		CreatedBy:          &userID,
		Notes:              "Documento escaneado importado automáticamente el " + time.Now().Format("2006-01-02 15:04"),
		OriginalFilename:   filename,
		ImportedFromFolder: true,
	}

	id, err := s.docRepo.SaveDocument(ctx, doc, ReasonCreated)
	if err != nil {
		return err
	}

	logger.Log.Info("Синхронизация: документ зарегистрирован",
		zap.String("file", filename), zap.Int("doc_id", id),
		zap.String("processed", processedPath), zap.String("pending", pendingPath))
	return nil
}

// moveFile — rename с фолбэком на копирование для случаев разных файловых систем.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
