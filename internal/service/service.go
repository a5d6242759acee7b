package service

import (
	"log/slog"

	"portfolio-catalog/internal/changefeed"
	"portfolio-catalog/internal/config"
	"portfolio-catalog/internal/repository"
	"portfolio-catalog/internal/service/auth"
	"portfolio-catalog/internal/service/catalog"
	"portfolio-catalog/internal/service/inquiry"
	"portfolio-catalog/internal/service/mutation"
	"portfolio-catalog/internal/service/upload"
	"portfolio-catalog/internal/storage"
)

type Services struct {
	Auth      auth.Service
	Catalog   catalog.Service
	Galleries *catalog.Galleries
	Upload    upload.Service
	Mutation  mutation.Service
	Inquiry   inquiry.Service
}

func NewServices(repos *repository.Repositories, feed changefeed.Feed, store storage.ObjectStore, limiter inquiry.RateLimiter, cfg *config.Config, log *slog.Logger) *Services {
	catalogService := catalog.NewService(repos.Media, feed, log)

	return &Services{
		Auth:      auth.NewService(cfg),
		Catalog:   catalogService,
		Galleries: catalog.NewGalleries(catalogService, log),
		Upload:    upload.NewService(repos.Media, store, log),
		Mutation:  mutation.NewService(repos.Media, store, log),
		Inquiry:   inquiry.NewService(cfg, limiter, log),
	}
}
