package cli

import (
	"github.com/felixgeelhaar/markpro/adapter/api"
	editorApp "github.com/felixgeelhaar/markpro/internal/editor/application"
	exportApp "github.com/felixgeelhaar/markpro/internal/export/application"
	"github.com/felixgeelhaar/markpro/pkg/config"
)

// App holds the CLI application dependencies.
type App struct {
	ExportService *exportApp.Service
	EditorService *editorApp.Service

	// APIServer is started by the serve command.
	APIServer *api.Server

	// Config carries broker settings for events watch.
	Config *config.Config

	// UpgradeURL is printed when a premium command runs on the free tier.
	UpgradeURL string
}

// NewApp creates a new CLI application with the provided services.
func NewApp(export *exportApp.Service, editor *editorApp.Service, upgradeURL string) *App {
	return &App{
		ExportService: export,
		EditorService: editor,
		UpgradeURL:    upgradeURL,
	}
}

// SetAPIServer updates the HTTP server used by serve.
func (a *App) SetAPIServer(s *api.Server) {
	a.APIServer = s
}

// SetConfig updates the configuration used by broker commands.
func (a *App) SetConfig(cfg *config.Config) {
	a.Config = cfg
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
