package handlers

import (
	"context"
	"sync"
	"time"

	"p9e.in/fieldops/config"
	"p9e.in/fieldops/models"
	"p9e.in/fieldops/pkg/storage"
	"p9e.in/fieldops/pkg/workflow"
)

var (
	wireOnce    sync.Once
	recordStore *storage.GormStore
	objectStore storage.ObjectStore
	sessions    *workflow.Manager
)

// wire builds the workflow engine and its collaborators on first use.
func wire() {
	wireOnce.Do(func() {
		recordStore = storage.NewGormStore(config.DB)

		store, err := storage.NewObjectStoreFromEnv(context.Background())
		if err != nil {
			config.Logger().WithError(err).Warn("object store unavailable, falling back to local uploads")
			store = storage.NewLocalObjectStore("./uploads", "/uploads")
		}
		objectStore = store

		lifecycle := workflow.NewLifecycle(
			recordStore,
			recordStore,
			models.DefaultChecklistSchema(),
			workflow.DefaultSteps(),
			config.Logger(),
		)
		sessions = workflow.NewManager(lifecycle, workflow.DefaultSteps(), 12*time.Hour)
	})
}

// Wizard returns the shared session manager.
func Wizard() *workflow.Manager {
	wire()
	return sessions
}

// Reports returns the shared record store.
func Reports() *storage.GormStore {
	wire()
	return recordStore
}

// Objects returns the shared object store.
func Objects() storage.ObjectStore {
	wire()
	return objectStore
}
