package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"axiapac.com/attendance/attendance/core"
	"axiapac.com/attendance/attendance/store"
	"axiapac.com/attendance/attendance/web/handlers"
	"axiapac.com/attendance/config"
	database "axiapac.com/attendance/core"
	v1 "axiapac.com/attendance/datastore/v1"
	"axiapac.com/attendance/infrastructure/communication"
	"axiapac.com/attendance/infrastructure/filesystem"
	"axiapac.com/attendance/spreadsheet"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// App is the wired sync engine for one configuration.
type App struct {
	Config     *config.Config
	Reconciler *core.Reconciler
	Exporter   *core.Exporter
	Store      core.RecordStore
	Runs       handlers.RunLister
	DB         *gorm.DB

	// Files and WorkbookKey are set for the workbook backend only.
	Files       filesystem.FileSystem
	WorkbookKey string

	closers []func() error
}

// Build validates cfg and wires the sheet client, record store and notifier
// it selects.
func Build(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	a := &App{Config: cfg}

	sheet, err := a.sheetClient(ctx)
	if err != nil {
		return nil, &core.SyncError{Code: core.CodeConfig, Err: err}
	}

	if err := a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	notifier, err := a.notifier(ctx)
	if err != nil {
		a.Close()
		return nil, &core.SyncError{Code: core.CodeConfig, Err: err}
	}

	a.Reconciler = core.NewReconciler(sheet, a.Store, cfg.ReconcilerOptions(),
		core.WithLogger(logger),
		core.WithNotifier(notifier),
	)
	a.Exporter = core.NewExporter(sheet, a.Store, cfg.Source(),
		core.WithExportLogger(logger),
		core.WithExportNotifier(notifier),
		core.WithLocation(cfg.Location()),
	)
	return a, nil
}

func (a *App) sheetClient(ctx context.Context) (core.SheetClient, error) {
	cfg := a.Config
	switch cfg.SheetBackend {
	case config.BackendWorkbook:
		if cfg.WorkbookPath != "" {
			dir, file := filepath.Split(cfg.WorkbookPath)
			a.Files = filesystem.LocalFileSystem{Root: dir}
			a.WorkbookKey = file
			return spreadsheet.NewWorkbook(a.Files, file, cfg.SheetName, "file://"+cfg.WorkbookPath), nil
		}
		files, err := filesystem.NewS3FileSystem(ctx, cfg.WorkbookBucket)
		if err != nil {
			return nil, err
		}
		a.Files = files
		a.WorkbookKey = cfg.WorkbookKey
		location := fmt.Sprintf("s3://%s/%s", cfg.WorkbookBucket, cfg.WorkbookKey)
		return spreadsheet.NewWorkbook(files, cfg.WorkbookKey, cfg.SheetName, location), nil
	default:
		return spreadsheet.NewGoogleSheet(ctx, cfg.SheetID, cfg.SheetName,
			spreadsheet.CredentialsOption(cfg.GoogleCredentialsJSON, cfg.GoogleCredentialsFile))
	}
}

func (a *App) openStore(ctx context.Context) error {
	cfg := a.Config
	switch cfg.StoreDriver {
	case config.DriverREST:
		client := v1.NewDatastoreClient(cfg.DatastoreURL, cfg.DatastoreKey, cfg.DatastoreTable, "attendance_sync_runs")
		a.Store = v1.NewStore(client)
		return nil
	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.DSN, database.ParseLogLevel(cfg.DBLogLevel))
		if err != nil {
			return &core.SyncError{Code: core.CodeConfig, Err: err}
		}
		if err := store.Migrate(db); err != nil {
			return &core.SyncError{Code: core.CodeConfig, Err: err}
		}
		a.useGorm(db, func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
		return nil
	default:
		dm, err := database.New(ctx, cfg.DSN, cfg.DBMaxConnections)
		if err != nil {
			return &core.SyncError{Code: core.CodeUpstream, Err: err}
		}
		dm.LogLevel = database.ParseLogLevel(cfg.DBLogLevel)
		db, err := dm.GetDB()
		if err != nil {
			dm.Close()
			return &core.SyncError{Code: core.CodeConfig, Err: err}
		}
		a.useGorm(db, dm.Close)
		return nil
	}
}

func (a *App) useGorm(db *gorm.DB, closer func() error) {
	s := store.New(db)
	a.DB = db
	a.Store = s
	a.Runs = s
	a.closers = append(a.closers, closer)
}

func (a *App) notifier(ctx context.Context) (core.Notifier, error) {
	cfg := a.Config
	var notifiers communication.Multi
	if cfg.SlackToken != "" {
		notifiers = append(notifiers, communication.NewSlack(cfg.SlackToken, communication.SlackOption{
			InfoChannelID:  cfg.SlackInfoChannel,
			ErrorChannelID: cfg.SlackErrorChannel,
		}))
	}
	if cfg.EmailFrom != "" && len(cfg.EmailTo) > 0 {
		email, err := communication.NewEmail(ctx, cfg.EmailFrom, cfg.EmailTo)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, email)
	}
	if len(notifiers) == 0 {
		return nil, nil
	}
	return notifiers, nil
}

// Register mounts every HTTP route the app serves on api.
func (a *App) Register(api *gin.RouterGroup) {
	handlers.Register(api, a.Reconciler, a.Exporter, a.Runs)
	if a.Files != nil {
		handlers.RegisterUpload(api, a.Files, a.WorkbookKey, a.Config.SheetName)
	}
}

func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
