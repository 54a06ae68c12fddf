package app

import (
	"doctrac/internal/config"
	"doctrac/internal/db"
	"doctrac/internal/folders"
	"doctrac/internal/handlers"
	"doctrac/internal/repository"
	"doctrac/internal/routes"
	"doctrac/internal/services"

	"github.com/gorilla/mux"
)

func InitApp(cfg *config.Config) (*mux.Router, error) {
	conn, err := db.NewPostgresConnection(cfg)
	if err != nil {
		return nil, err
	}

	// Репозитории
	userRepo := repository.NewUserRepository(conn)
	entityRepo := repository.NewEntityRepository(conn)
	categoryRepo := repository.NewCategoryRepository(conn)
	typeRepo := repository.NewDocumentTypeRepository(conn)
	docRepo := repository.NewDocumentRepository(conn)

	provisioner := folders.NewProvisioner(cfg.MainFolder)

	// Сервисы
	authService := services.NewAuthService(userRepo)
	entityService := services.NewEntityService(entityRepo, categoryRepo, provisioner)
	categoryService := services.NewCategoryService(categoryRepo, entityRepo, typeRepo, provisioner)
	typeService := services.NewDocumentTypeService(typeRepo, categoryRepo)
	docService := services.NewDocumentService(docRepo, categoryRepo, typeRepo, entityRepo)
	syncService := services.NewSyncService(docRepo, categoryRepo, userRepo,
		cfg.MonitoredFolder, cfg.PendingFolder(), cfg.SyncDefaultCategory)

	// Хендлеры
	authHandler := handlers.NewAuthHandler(authService)
	docHandler := handlers.NewDocumentHandler(docService, authService, cfg.MediaRoot, cfg.UsageType)
	entityHandler := handlers.NewEntityHandler(entityService, cfg.UsageType)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	typeHandler := handlers.NewDocumentTypeHandler(typeService)
	syncHandler := handlers.NewSyncHandler(syncService)

	// Маршруты
	router := mux.NewRouter()
	routes.InitRoutes(router, authHandler, docHandler, entityHandler, categoryHandler, typeHandler, syncHandler)

	return router, nil
}
