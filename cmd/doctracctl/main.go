package main

import (
	"context"
	"doctrac/internal/config"
	"doctrac/internal/db"
	"doctrac/internal/folders"
	"doctrac/internal/logger"
	"doctrac/internal/models"
	"doctrac/internal/repository"
	"doctrac/internal/services"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// doctracctl — служебная утилита: синхронизация сканов, перестроение
// дерева папок и сидинг данных без поднятия HTTP-сервера.
func main() {
	root := &cobra.Command{
		Use:   "doctracctl",
		Short: "Служебные команды DocTrac",
	}

	root.AddCommand(newSyncCmd())
	root.AddCommand(newRebuildFoldersCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newSeedDataCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup загружает конфиг, логгер и подключение к БД — общая часть всех команд.
func setup() (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger.InitLogger()

	if _, err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	conn, err := db.NewPostgresConnection(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, conn, nil
}

func newSyncCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Обработать PDF из папки мониторинга",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := setup()
			if err != nil {
				return err
			}

			syncService := services.NewSyncService(
				repository.NewDocumentRepository(conn),
				repository.NewCategoryRepository(conn),
				repository.NewUserRepository(conn),
				cfg.MonitoredFolder, cfg.PendingFolder(), cfg.SyncDefaultCategory)

			report, err := syncService.Run(context.Background(), dryRun)
			if err != nil {
				return err
			}

			fmt.Printf("processed=%d skipped=%d failed=%d dry_run=%v\n",
				report.Processed, report.Skipped, report.Failed, report.DryRun)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "только посчитать файлы, ничего не перемещая")
	return cmd
}

func newRebuildFoldersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild-folders",
		Short: "Создать недостающие папки сущностей и категорий",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := setup()
			if err != nil {
				return err
			}

			entityService := services.NewEntityService(
				repository.NewEntityRepository(conn),
				repository.NewCategoryRepository(conn),
				folders.NewProvisioner(cfg.MainFolder))

			count, err := entityService.RebuildFolders(context.Background())
			if err != nil {
				return err
			}

			fmt.Printf("entities=%d\n", count)
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var (
		username string
		password string
		fullName string
		email    string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Создать пользователя (например, первого администратора)",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := setup()
			if err != nil {
				return err
			}

			authService := services.NewAuthService(repository.NewUserRepository(conn))
			user := &models.User{
				Username: username,
				FullName: fullName,
				Email:    email,
				Role:     role,
			}

			if err := authService.CreateUser(context.Background(), user, password); err != nil {
				return err
			}

			logger.Log.Info("Пользователь создан",
				zap.String("username", username), zap.String("role", role))
			fmt.Printf("created user %q with role %q\n", username, role)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "логин (обязателен)")
	cmd.Flags().StringVar(&password, "password", "", "пароль (обязателен)")
	cmd.Flags().StringVar(&fullName, "full-name", "", "полное имя")
	cmd.Flags().StringVar(&email, "email", "", "email")
	cmd.Flags().StringVar(&role, "role", "admin", "роль: admin|manager|user")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// Стартовый набор классификаторов. Повторный запуск безопасен:
// существующие записи пропускаются.
var seedCategories = []struct {
	name        string
	code        string
	description string
	types       []struct{ name, code string }
}{
	{"Facturas", "FAC", "Facturas de proveedores y clientes", []struct{ name, code string }{
		{"Factura de Venta", "FV"},
		{"Factura de Compra", "FC"},
		{"Nota de Crédito", "NC"},
		{"Nota de Débito", "ND"},
	}},
	{"Contratos", "CON", "Contratos y acuerdos legales", []struct{ name, code string }{
		{"Contrato de Servicios", "CS"},
		{"Contrato de Compraventa", "CCV"},
		{"Contrato de Arrendamiento", "CA"},
	}},
	{"Recursos Humanos", "RH", "Documentos de personal y empleados", []struct{ name, code string }{
		{"Contrato Laboral", "CL"},
		{"Solicitud de Vacaciones", "SV"},
		{"Evaluación de Desempeño", "ED"},
	}},
	{"Finanzas", "FIN", "Estados financieros y reportes contables", []struct{ name, code string }{
		{"Estado de Cuenta", "EC"},
		{"Reporte Financiero", "RF"},
		{"Presupuesto", "PRE"},
	}},
	{"Legal", "LEG", "Documentos legales y jurídicos", []struct{ name, code string }{
		{"Escritura Pública", "EP"},
		{"Poder Notarial", "PN"},
	}},
	{"Administrativo", "ADM", "Documentos administrativos generales", []struct{ name, code string }{
		{"Oficio", "OF"},
		{"Memorándum", "MEM"},
		{"Circular", "CIR"},
		{"Acta", "ACT"},
	}},
}

// Примеры сущностей: физлица и компании для первичного наполнения.
var seedEntities = []struct {
	name      string
	code      string
	isCompany bool
}{
	{"Juan Pérez García", "JPG", false},
	{"María Elena Rodríguez", "MER", false},
	{"Carlos Alberto Martínez", "CAM", false},
	{"Tecnología y Servicios S.A. de C.V.", "TYS", true},
	{"Consultoría Integral MX", "CIMX", true},
	{"Distribuidora Nacional S.A.", "DNSA", true},
	{"Servicios Profesionales Beta", "SPB", true},
}

func newSeedDataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-data",
		Short: "Создать стартовые категории, типы документов и примеры сущностей",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := setup()
			if err != nil {
				return err
			}
			ctx := context.Background()

			entityRepo := repository.NewEntityRepository(conn)
			catRepo := repository.NewCategoryRepository(conn)
			typeRepo := repository.NewDocumentTypeRepository(conn)
			provisioner := folders.NewProvisioner(cfg.MainFolder)
			categoryService := services.NewCategoryService(catRepo, entityRepo, typeRepo, provisioner)
			typeService := services.NewDocumentTypeService(typeRepo, catRepo)

			created, skipped := 0, 0
			for _, seed := range seedCategories {
				cat, err := categoryService.CreateCategory(ctx, &models.CreateCategoryRequest{
					Name: seed.name, Code: seed.code, Description: seed.description,
				})
				switch {
				case errors.Is(err, services.ErrCodeTaken):
					cat, _, err = catRepo.GetOrCreateByName(ctx, seed.name, seed.description)
					if err != nil {
						return err
					}
					skipped++
				case err != nil:
					return err
				default:
					created++
				}

				for _, t := range seed.types {
					_, err := typeService.CreateDocumentType(ctx, &models.CreateDocumentTypeRequest{
						CategoryID: cat.ID, Name: t.name, Code: t.code,
					})
					switch {
					case errors.Is(err, services.ErrCodeTaken):
						skipped++
					case err != nil:
						return err
					default:
						created++
					}
				}
			}

			entityService := services.NewEntityService(entityRepo, catRepo, provisioner)
			for _, seed := range seedEntities {
				_, err := entityService.CreateEntity(ctx, &models.CreateEntityRequest{
					Name: seed.name, Code: seed.code, IsCompany: seed.isCompany,
				})
				switch {
				case errors.Is(err, services.ErrCodeTaken):
					skipped++
				case err != nil:
					return err
				default:
					created++
				}
			}

			fmt.Printf("created=%d skipped=%d\n", created, skipped)
			return nil
		},
	}
}
