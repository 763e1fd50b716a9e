package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/cardbinder/cardbinder-server/internal/config"
	"github.com/cardbinder/cardbinder-server/internal/logger"
	"github.com/cardbinder/cardbinder-server/internal/search"
	"github.com/cardbinder/cardbinder-server/internal/service"
)

// CardIndexHandle wraps the search index with shutdown capability.
type CardIndexHandle struct {
	*search.CardIndex
}

// Shutdown implements do.Shutdownable.
func (h *CardIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideCardIndex provides the Bleve card index.
func ProvideCardIndex(i do.Injector) (*CardIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewCardIndex(search.Options{
		DataPath: cfg.SearchPath(),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &CardIndexHandle{CardIndex: index}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*CardIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewSearchService(indexHandle.CardIndex, storeHandle.Store, log.Logger)

	// Wire to store for automatic indexing
	storeHandle.SetSearchIndexer(svc)

	return svc, nil
}

// TriggerSearchReindexIfNeeded checks if reindexing is needed and triggers it.
// Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	searchService := do.MustInvoke[*service.SearchService](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := searchService.DocumentCount()
	if docCount > 0 {
		return
	}

	// Check if we have sets that would feed the index
	ctx := context.Background()
	sets, err := storeHandle.Sets.ListAll(ctx)
	if err != nil || len(sets) == 0 {
		return
	}

	log.Info("Search index is empty but sets exist, triggering initial reindex",
		"set_count", len(sets),
	)

	go func() {
		indexed, err := searchService.Reindex(context.Background())
		if err != nil {
			log.Error("Initial search reindex failed", "error", err)
			return
		}
		log.Info("Initial search reindex completed", "documents", indexed)
	}()
}
