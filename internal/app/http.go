package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/akarpov/projecttodo/internal/auth"
	"github.com/akarpov/projecttodo/internal/config"
	v1 "github.com/akarpov/projecttodo/internal/delivery/http/v1"
	"github.com/akarpov/projecttodo/internal/gist"
	"github.com/akarpov/projecttodo/internal/services"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(v1.RequestTimeout(httpCfg.RequestTimeout))
	registerRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for the interrupt signal to gracefully
	// shut down the server with a timeout.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router gin.IRouter) {
	cfg := config.Global()

	userService := services.NewUserService(globalLogger, globalPostgresPool)
	projectService := services.NewProjectService(globalLogger, globalPostgresPool)
	todoService := services.NewTodoService(globalLogger, globalPostgresPool)

	gistClient := gist.NewClient(globalLogger,
		cfg.Gist.APIURL, cfg.Gist.Token, cfg.Gist.Timeout)
	exportService := services.NewExportService(globalLogger, projectService,
		gistClient, cfg.Export.Dir, cfg.Env != config.EnvProd)

	authenticator := auth.NewAuthenticator(globalLogger, userService)

	handler := v1.New(
		globalLogger,
		authenticator,
		userService,
		projectService,
		todoService,
		exportService,
	)
	v1.RegisterRoutes(router, handler)
}
