package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/asaskevich/EventBus"
	"github.com/carscout/carscout/internal/bot"
	"github.com/carscout/carscout/internal/clients/kleinanzeigen"
	"github.com/carscout/carscout/internal/config"
	"github.com/carscout/carscout/internal/logger"
	"github.com/carscout/carscout/internal/metrics"
	"github.com/carscout/carscout/internal/repositories"
	"github.com/carscout/carscout/internal/services"
	log "github.com/sirupsen/logrus"
)

func runPipeline(ctx context.Context, cfg *config.Config, alerts *repositories.Alerts,
	listings *repositories.Listings, users *repositories.CachedUsers, notifier services.Notifier,
	bus EventBus.Bus) {

	client := kleinanzeigen.NewClient(cfg.Scraper.RequestTimeout)
	client.SetMinRequestInterval(cfg.Scraper.PolitenessDelay)

	retriever := services.NewListingsRetriever(client, kleinanzeigen.NewAditemParser())

	processor := services.NewAlertProcessor(bus, alerts, listings, retriever, users, notifier,
		services.ProcessorOptions{
			FreshnessWindow: cfg.Scraper.FreshnessWindow,
			PagesPerCycle:   cfg.Scraper.PagesPerCycle,
			AlertDelay:      cfg.Scraper.AlertDelay,
		})

	go services.NewScheduler(processor, cfg.Scraper.CheckInterval).Run(ctx)
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer()

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	err = dbContext.Migrate()
	if err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	alerts := repositories.NewAlertsRepository(dbContext.DB)
	listings := repositories.NewListingsRepository(dbContext.DB)
	users := repositories.NewCachedUsers(repositories.NewUsersRepository(dbContext.DB))

	bus := EventBus.New()

	tgbot, err := bot.NewBot(cfg.Bot.Token, bus, bot.Repositories{Alert: alerts, User: users})
	if err != nil {
		log.Fatalf("can't create bot: %v", err)
	}
	go tgbot.Run()
	defer tgbot.Stop()

	cleaner, err := services.NewListingsCleaner(listings, cfg.Scraper.RetentionInDays)
	if err != nil {
		log.Fatalf("can't create listings cleaner: %v", err)
	}
	defer cleaner.Stop()

	runPipeline(ctx, cfg, alerts, listings, users, tgbot, bus)

	<-ctx.Done()
	log.Info("shutting down")
}
