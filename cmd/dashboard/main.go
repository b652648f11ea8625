package main

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/meters-dashboard/internal/api"
	"github.com/ANIKETSHETTY47/meters-dashboard/internal/config"
	"github.com/ANIKETSHETTY47/meters-dashboard/internal/database"
	"github.com/ANIKETSHETTY47/meters-dashboard/internal/events"
	httpHandlers "github.com/ANIKETSHETTY47/meters-dashboard/internal/http"
	"github.com/ANIKETSHETTY47/meters-dashboard/internal/repository"
	"github.com/ANIKETSHETTY47/meters-dashboard/internal/resolver"
	"github.com/ANIKETSHETTY47/meters-dashboard/internal/store"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	zerolog.SetGlobalLevel(config.LogLevel())

	client := api.New(config.MetersAPIURL(), config.HTTPTimeout())
	res := resolver.New(client, log.With().Str("component", "resolver").Logger())
	st := store.New(client, res, config.PageLimit(), log.With().Str("component", "store").Logger())

	if broker := config.MQTTBroker(); broker != "" {
		mq, err := events.Connect(broker, "meters-dashboard")
		if err != nil {
			log.Fatal().Err(err).Msg("mqtt connect")
		}
		defer mq.Disconnect(250)
		pub := events.NewPublisher(mq, config.MQTTTopic(), log.With().Str("component", "events").Logger())
		st.Subscribe(pub.Handle)
		log.Info().Str("broker", broker).Str("topic", config.MQTTTopic()).Msg("publishing store events")
	}

	h := &httpHandlers.Handlers{Store: st, Log: log.With().Str("component", "http").Logger()}
	if dsn := config.DBDSN(); dsn != "" {
		db, repos, err := openJournal(context.Background(), config.DBDriver(), dsn)
		if err != nil {
			log.Warn().Err(err).Msg("event journal unavailable")
		} else {
			defer db.Close()
			h.Events = repos
		}
	}

	if _, err := st.FetchPage(context.Background()); err != nil {
		log.Warn().Err(err).Msg("initial meters fetch failed")
	}

	app := fiber.New()
	httpHandlers.Register(app, h)

	addr := config.DashboardAddr()
	log.Info().Str("addr", addr).Str("upstream", config.MetersAPIURL()).Msg("dashboard listening")
	log.Fatal().Err(app.Listen(addr)).Msg("server exit")
}

// openJournal connects to the event journal and creates its table if missing, so
// /api/events works before the ingestor has ever run.
func openJournal(ctx context.Context, driver, dsn string) (*sqlx.DB, *repository.Repos, error) {
	db, err := database.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}
	repos := repository.New(db)
	if err := repos.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate journal: %w", err)
	}
	return db, repos, nil
}
