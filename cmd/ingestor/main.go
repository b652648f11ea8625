package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/meters-dashboard/internal/config"
	"github.com/ANIKETSHETTY47/meters-dashboard/internal/database"
	"github.com/ANIKETSHETTY47/meters-dashboard/internal/events"
	"github.com/ANIKETSHETTY47/meters-dashboard/internal/service"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.DBDSN() == "" {
		log.Fatal().Msg("DB_DSN is not set")
	}
	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	svcs := service.New(db)
	if err := svcs.Repos.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	broker := config.MQTTBroker()
	if broker == "" {
		log.Fatal().Msg("MQTT_BROKER is not set")
	}
	client, err := events.Connect(broker, "meters-ingestor")
	if err != nil {
		log.Fatal().Err(err).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		if err := svcs.Events.FromMQTT(ctx, msg.Topic(), msg.Payload()); err != nil {
			log.Error().Err(err).Msg("ingest failed")
		}
	}

	topic := config.MQTTTopic()
	if token := client.Subscribe(topic, 0, handler); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("subscribe failed")
	}

	log.Info().Str("topic", topic).Msg("ingestor running; Ctrl+C to stop")
	<-ctx.Done()
	log.Info().Msg("ingestor stopped")
}
