package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "github.com/de-tools/cloud-optimizer/pkg/handlers/report"
	optimizermiddleware "github.com/de-tools/cloud-optimizer/pkg/server/middleware"
	"github.com/de-tools/cloud-optimizer/pkg/models/domain"
	"github.com/de-tools/cloud-optimizer/pkg/services/optimizer"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Cfg             domain.Config
	Driver          *optimizer.Driver
}

func ConfigureRouter(logger *zerolog.Logger, config Config) *chi.Mux {
	reportHandler := handlers.NewHandler(config.Cfg, config.Driver)

	router := chi.NewRouter()

	router.Use(optimizermiddleware.Logger(logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/report", reportHandler.GetLatestReport)
		r.Post("/runs", reportHandler.TriggerRun)
		r.Get("/status", reportHandler.GetStatus)
	})

	return router
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	router := ConfigureRouter(&logger, config)

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
	}
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
