package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/infusioncare/appointment-optimizer/internal/adapters/in/http"
	"github.com/infusioncare/appointment-optimizer/internal/adapters/in/rabbitmq"
	"github.com/infusioncare/appointment-optimizer/internal/adapters/out/cache"
	"github.com/infusioncare/appointment-optimizer/internal/adapters/out/calendar"
	"github.com/infusioncare/appointment-optimizer/internal/adapters/out/logger"
	"github.com/infusioncare/appointment-optimizer/internal/adapters/out/looker"
	"github.com/infusioncare/appointment-optimizer/internal/config"
	"github.com/infusioncare/appointment-optimizer/internal/core/ports/out"
	"github.com/infusioncare/appointment-optimizer/internal/core/services/optimizer_service"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	mainLogger, err := logger.NewConsoleLogger(cfg.App.Timezone)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger := mainLogger.WithModule("Main")

	logger.Info("app.starting", out.LogFields{
		"version":         cfg.App.Version,
		"env":             cfg.App.Env,
		"timezone":        cfg.App.Timezone,
		"rabbitmqEnabled": cfg.RabbitMQ.Enabled,
		"cacheEnabled":    cfg.Cache.Enabled,
	})

	if cfg.IsNotLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	lookerAdapter := looker.NewLookerAdapter(cfg, logger.WithModule("LookerAdapter"))
	holidayCalendar := calendar.NewUSHolidayCalendar()

	var cachePort out.CachePort
	if cfg.Cache.Enabled {
		cacheAdapter, err := cache.NewCacheAdapter(cfg, mainLogger)
		if err != nil {
			logger.Error("app.cache.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		cachePort = cacheAdapter
	}

	optimizerService := optimizer_service.NewOptimizerService(
		lookerAdapter,
		cachePort,
		holidayCalendar,
		cfg,
		mainLogger,
	)

	router := gin.Default()
	controller := http.NewOptimizerController(optimizerService, cfg)
	controller.RegisterRoutes(router)

	if cfg.RabbitMQ.Enabled {
		listener, err := rabbitmq.NewAppointmentListener(
			optimizerService,
			cfg,
			logger.WithModule("RabbitMQListener"),
		)
		if err != nil {
			logger.Error("app.rabbitmq.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if err := listener.Start(ctx); err != nil {
			logger.Error("app.rabbitmq.start_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		defer func() {
			if err := listener.Stop(); err != nil {
				logger.Error("app.rabbitmq.stop_failed", out.LogFields{
					"error": err.Error(),
				})
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("app.http.starting", out.LogFields{
			"host": cfg.HTTP.Host,
			"port": cfg.HTTP.Port,
		})

		if err := router.Run(cfg.HTTP.Host + ":" + cfg.HTTP.Port); err != nil {
			logger.Error("app.http.failed", out.LogFields{
				"error": err.Error(),
			})
			sigChan <- syscall.SIGTERM
		}
	}()

	sig := <-sigChan
	logger.Info("app.shutdown.initiated", out.LogFields{
		"signal": sig.String(),
	})

	if cfg.IsLocal() {
		logger.Debug("app.config.debug", out.LogFields{
			"config": map[string]interface{}{
				"http": map[string]string{
					"host": cfg.HTTP.Host,
					"port": cfg.HTTP.Port,
				},
				"looker": map[string]string{
					"url":    cfg.Looker.URL,
					"lookId": cfg.Looker.LookID,
				},
				"rabbitmq": map[string]interface{}{
					"enabled":  cfg.RabbitMQ.Enabled,
					"url":      cfg.RabbitMQ.URL,
					"exchange": cfg.RabbitMQ.Exchange,
					"queue":    cfg.RabbitMQ.Queue,
				},
				"cache": map[string]interface{}{
					"enabled":        cfg.Cache.Enabled,
					"snapshots_size": cfg.Cache.SnapshotsSize,
				},
				"optimizer": map[string]interface{}{
					"capacityModel": cfg.Optimizer.CapacityModel,
					"tieBreak":      cfg.Optimizer.TieBreak,
					"clinicOpen":    cfg.Optimizer.ClinicOpen,
					"clinicClose":   cfg.Optimizer.ClinicClose,
				},
			},
		})
	}
}
