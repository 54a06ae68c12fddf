package routes

import (
	"doctrac/internal/handlers"
	"doctrac/internal/middleware"

	"github.com/gorilla/mux"
)

func InitRoutes(
	router *mux.Router,
	authHandler *handlers.AuthHandler,
	documentHandler *handlers.DocumentHandler,
	entityHandler *handlers.EntityHandler,
	categoryHandler *handlers.CategoryHandler,
	typeHandler *handlers.DocumentTypeHandler,
	syncHandler *handlers.SyncHandler,
) {
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Logging)

	api := router.PathPrefix("/api").Subrouter()

	// --- Публичные маршруты ---
	api.HandleFunc("/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/refresh", authHandler.Refresh).Methods("POST")
	api.HandleFunc("/logout", authHandler.Logout).Methods("POST")

	// --- Защищённые JWT ---
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.JWTAuth)
	protected.Use(middleware.AdminFastLane)

	protected.HandleFunc("/profile", authHandler.Profile).Methods("GET")
	protected.HandleFunc("/dashboard", documentHandler.Dashboard).Methods("GET")

	docRoutes := protected.PathPrefix("/documents").Subrouter()
	docRoutes.HandleFunc("", documentHandler.ListDocuments).Methods("GET")
	docRoutes.HandleFunc("", documentHandler.UploadDocument).Methods("POST")
	docRoutes.HandleFunc("/{id:[0-9]+}", documentHandler.GetDocument).Methods("GET")
	docRoutes.HandleFunc("/{id:[0-9]+}", documentHandler.UpdateDocument).Methods("PUT")
	docRoutes.HandleFunc("/{id:[0-9]+}/file", documentHandler.ServeDocumentFile).Methods("GET")
	docRoutes.HandleFunc("/{id:[0-9]+}/status", documentHandler.ChangeStatus).Methods("POST")
	docRoutes.HandleFunc("/{id:[0-9]+}/history", documentHandler.GetHistory).Methods("GET")

	protected.HandleFunc("/entities", entityHandler.ListEntities).Methods("GET")
	protected.HandleFunc("/entities/{id:[0-9]+}", entityHandler.GetEntity).Methods("GET")

	protected.HandleFunc("/categories", categoryHandler.ListCategories).Methods("GET")
	protected.HandleFunc("/categories/with-types", categoryHandler.ListWithTypes).Methods("GET")
	protected.HandleFunc("/categories/{id:[0-9]+}", categoryHandler.GetCategory).Methods("GET")

	protected.HandleFunc("/document-types", typeHandler.ListDocumentTypes).Methods("GET")

	// --- Админка ---
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.OnlyRole("admin"))
	admin.HandleFunc("/entities", entityHandler.CreateEntity).Methods("POST")
	admin.HandleFunc("/entities/{id:[0-9]+}", entityHandler.UpdateEntity).Methods("PUT")
	admin.HandleFunc("/categories", categoryHandler.CreateCategory).Methods("POST")
	admin.HandleFunc("/categories/{id:[0-9]+}", categoryHandler.UpdateCategory).Methods("PUT")
	admin.HandleFunc("/document-types", typeHandler.CreateDocumentType).Methods("POST")
	admin.HandleFunc("/document-types/{id:[0-9]+}", typeHandler.UpdateDocumentType).Methods("PUT")
	admin.HandleFunc("/document-types/{id:[0-9]+}", typeHandler.DeleteDocumentType).Methods("DELETE")
	admin.HandleFunc("/sync", syncHandler.RunSync).Methods("POST")
	admin.HandleFunc("/rebuild-folders", entityHandler.RebuildFolders).Methods("POST")
	admin.HandleFunc("/users", authHandler.GetUsers).Methods("GET")
	admin.HandleFunc("/users/{id}", authHandler.GetUserByID).Methods("GET")
}
