package service

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/meters-dashboard/internal/events"
	"github.com/ANIKETSHETTY47/meters-dashboard/internal/repository"
)

type Services struct {
	Repos  *repository.Repos
	Events *EventService
}

func New(db *sqlx.DB) *Services {
	repos := repository.New(db)
	return &Services{
		Repos:  repos,
		Events: &EventService{repos: repos},
	}
}

// EventService journals store events received from MQTT.
type EventService struct {
	repos *repository.Repos
}

func (s *EventService) FromMQTT(ctx context.Context, topic string, payload []byte) error {
	ev, err := events.Decode(payload)
	if err != nil {
		return err
	}
	return s.repos.InsertEvent(ctx, &ev)
}
