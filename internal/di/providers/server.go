package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/cardbinder/cardbinder-server/internal/api"
	"github.com/cardbinder/cardbinder-server/internal/config"
	"github.com/cardbinder/cardbinder-server/internal/logger"
	"github.com/cardbinder/cardbinder-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	setService := do.MustInvoke[*service.SetService](i)
	checklistService := do.MustInvoke[*service.ChecklistService](i)
	statsService := do.MustInvoke[*service.StatsService](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	adminService := do.MustInvoke[*service.AdminService](i)

	handler := api.NewServer(setService, checklistService, statsService, searchService, adminService, api.Options{
		AdminToken:          cfg.Admin.Token,
		ImportRatePerMinute: cfg.Import.RatePerMinute,
		ImportBurst:         cfg.Import.Burst,
		CORSOrigins:         cfg.Server.CORSOrigins,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
