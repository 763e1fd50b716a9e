package providers

import (
	"github.com/samber/do/v2"

	"github.com/cardbinder/cardbinder-server/internal/logger"
	"github.com/cardbinder/cardbinder-server/internal/service"
)

// ProvideStatsService provides the completion stats service.
func ProvideStatsService(i do.Injector) (*service.StatsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return service.NewStatsService(storeHandle.Store), nil
}

// ProvideSetService provides the set and collection service.
func ProvideSetService(i do.Injector) (*service.SetService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	stats := do.MustInvoke[*service.StatsService](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewSetService(storeHandle.Store, stats, log.Logger), nil
}

// ProvideChecklistService provides the checklist import and card service.
func ProvideChecklistService(i do.Injector) (*service.ChecklistService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	stats := do.MustInvoke[*service.StatsService](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewChecklistService(storeHandle.Store, stats, log.Logger), nil
}

// ProvideAdminService provides the reference data and account service.
func ProvideAdminService(i do.Injector) (*service.AdminService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewAdminService(storeHandle.Store, log.Logger), nil
}
