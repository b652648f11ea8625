// Package simulator serves a fake upstream meters API over an in-memory data set.
package simulator

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ANIKETSHETTY47/meters-dashboard/internal/domain"
)

var meterTypes = [][]string{
	{"ColdWaterAreaMeter"},
	{"HotWaterAreaMeter"},
	{"ColdWaterAreaMeter"},
	{"ElectricAreaMeter", "AreaMeter"},
}

var streets = []string{
	"ул. Ленина, д. 1",
	"пр. Мира, д. 14",
	"ул. Садовая, д. 7",
	"наб. Фонтанки, д. 22",
}

type Backend struct {
	mu     sync.RWMutex
	meters []domain.Meter
	areas  map[string]domain.Address
	log    zerolog.Logger
}

// NewBackend generates n meters spread over roughly n/2 areas, so pages reference
// the same area more than once.
func NewBackend(n int, seed int64, logger zerolog.Logger) *Backend {
	rng := rand.New(rand.NewSource(seed))
	areaCount := n/2 + 1
	b := &Backend{
		meters: make([]domain.Meter, 0, n),
		areas:  make(map[string]domain.Address, areaCount),
		log:    logger,
	}

	for i := 0; i < areaCount; i++ {
		id := fmt.Sprintf("area-%03d", i+1)
		b.areas[id] = domain.Address{
			ID:        id,
			House:     domain.House{Address: streets[i%len(streets)]},
			StrNumber: fmt.Sprintf("%d", i+1),
		}
	}

	installed := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		m := domain.Meter{
			ID:               fmt.Sprintf("meter-%04d", i+1),
			Types:            meterTypes[i%len(meterTypes)],
			Area:             domain.AreaRef{ID: fmt.Sprintf("area-%03d", rng.Intn(areaCount)+1)},
			IsAutomatic:      i%3 == 0,
			Communication:    "manual",
			SerialNumber:     fmt.Sprintf("SN%08d", rng.Intn(100000000)),
			InstallationDate: installed.AddDate(0, 0, i*9).Format(time.RFC3339),
			BrandName:        "Декаст",
			ModelName:        "ВСКМ 90",
			InitialValues:    []float64{float64(rng.Intn(5000)) / 10},
		}
		if i%4 == 0 {
			m.Description = "поверка до " + installed.AddDate(6, 0, i).Format("2006")
		}
		b.meters = append(b.meters, m)
	}
	return b
}

func (b *Backend) Register(app *fiber.App) {
	app.Get("/meters", b.listMeters)
	app.Delete("/meters/:id", b.deleteMeter)
	app.Get("/areas", b.listAreas)
}

func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.meters)
}

func (b *Backend) listMeters(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit < 0 || offset < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit and offset must be >= 0"})
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	start := min(offset, len(b.meters))
	end := min(start+limit, len(b.meters))
	page := make([]domain.Meter, end-start)
	copy(page, b.meters[start:end])

	return c.JSON(fiber.Map{"count": len(b.meters), "results": page})
}

func (b *Backend) listAreas(c *fiber.Ctx) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := []domain.Address{}
	for _, id := range strings.Split(c.Query("id__in"), ",") {
		if a, ok := b.areas[strings.TrimSpace(id)]; ok {
			out = append(out, a)
		}
	}
	return c.JSON(fiber.Map{"results": out})
}

func (b *Backend) deleteMeter(c *fiber.Ctx) error {
	id := c.Params("id")

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, m := range b.meters {
		if m.ID == id {
			b.meters = append(b.meters[:i], b.meters[i+1:]...)
			b.log.Info().Str("meter_id", id).Int("remaining", len(b.meters)).Msg("meter deleted")
			return c.SendStatus(fiber.StatusNoContent)
		}
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "meter not found"})
}
