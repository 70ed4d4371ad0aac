package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"punchin/internal/config"
	"punchin/internal/database"
	"punchin/internal/domain"
	jwtsvc "punchin/internal/pkg/jwt"
	"punchin/internal/pkg/logger"
	"punchin/internal/repository"
	"punchin/internal/repository/mongostore"
)

type seeder interface {
	SaveStudio(ctx context.Context, s *domain.Studio) error
	SaveRoom(ctx context.Context, r *domain.Room) error
	SaveProfile(ctx context.Context, p *domain.UserProfile) error
	CreateAvailability(ctx context.Context, e *domain.AvailabilityEntry) error
}

type sqlSeeder struct {
	*repository.StudioRepository
	*repository.ProfileRepository
	*repository.AvailabilityRepository
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	zl, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatal(err)
	}

	var store seeder
	if cfg.DBDriver == config.DriverMongo {
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatal("Mongo connection failed:", err)
		}
		defer func() { _ = client.Disconnect(ctx) }()
		store = mongostore.New(client, cfg.MongoDB, cfg.BookingCurrency, zl)
	} else {
		db, err := database.Connect(cfg.DatabaseURL, zl)
		if err != nil {
			log.Fatal("DB connection failed:", err)
		}
		log.Println("Running migrations...")
		if err := repository.Migrate(db); err != nil {
			log.Fatal("Migrate failed:", err)
		}
		store = sqlSeeder{
			StudioRepository:       repository.NewStudioRepository(db),
			ProfileRepository:      repository.NewProfileRepository(db),
			AvailabilityRepository: repository.NewAvailabilityRepository(db, zl),
		}
	}

	// ================== PROFILES ==================
	log.Println("Creating profiles...")
	owner := domain.UserProfile{ID: "owner-demo", DisplayName: "Rosa Vega", Role: domain.RoleStudio}
	artist := domain.UserProfile{ID: "artist-demo", DisplayName: "June Park", Role: domain.RoleArtist}
	engineer := domain.UserProfile{
		ID:          "engineer-demo",
		DisplayName: "Marcus Hill",
		Role:        domain.RoleEngineer,
		Engineer: domain.EngineerSettings{
			IsPremium:                     true,
			InstantBookEnabled:            true,
			MainStudioID:                  "studio-demo",
			DefaultSessionDurationMinutes: 120,
		},
	}
	for _, p := range []*domain.UserProfile{&owner, &artist, &engineer} {
		must(store.SaveProfile(ctx, p))
	}

	// ================== STUDIO ==================
	log.Println("Creating studio and rooms...")
	studioRate := 60.0
	var hours []domain.RecurringTimeRange
	for day := 1; day <= 5; day++ {
		hours = append(hours, domain.RecurringTimeRange{Weekday: day, StartMinutes: 10 * 60, DurationMinutes: 12 * 60})
	}
	hours = append(hours, domain.RecurringTimeRange{Weekday: 6, StartMinutes: 12 * 60, DurationMinutes: 8 * 60})

	studio := domain.Studio{
		ID:                  "studio-demo",
		OwnerID:             owner.ID,
		Name:                "Night Shift Sound",
		City:                "Brooklyn",
		Address:             "88 Kent Ave",
		HourlyRate:          &studioRate,
		ApprovedEngineerIDs: []string{engineer.ID},
		OperatingSchedule: domain.OperatingSchedule{
			TimeZone:       "America/New_York",
			RecurringHours: hours,
			BlackoutDates:  []string{fmt.Sprintf("%d-12-25", time.Now().Year())},
		},
	}
	must(store.SaveStudio(ctx, &studio))

	roomARate := 85.0
	capacity := 6
	rooms := []domain.Room{
		{ID: "room-a", StudioID: studio.ID, Name: "Room A", HourlyRate: &roomARate, Capacity: &capacity, Amenities: []string{"SSL console", "vocal booth"}, IsDefault: true},
		{ID: "room-b", StudioID: studio.ID, Name: "Room B", Amenities: []string{"mix room"}},
	}
	for i := range rooms {
		must(store.SaveRoom(ctx, &rooms[i]))
	}

	// ================== AVAILABILITY ==================
	log.Println("Creating availability...")
	lunch, err := domain.NewRecurringEntry(domain.EntryHeader{
		ID:         uuid.New().String(),
		Kind:       domain.AvailabilityBlock,
		Scope:      domain.ScopeEngineer,
		OwnerID:    engineer.ID,
		EngineerID: engineer.ID,
		CreatedBy:  engineer.ID,
		Note:       "lunch",
	}, domain.RecurringWindow{Weekday: 3, StartMinutes: 13 * 60, DurationMinutes: 60})
	must(err)
	must(store.CreateAvailability(ctx, &lunch))

	// ================== TOKENS ==================
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	for _, p := range []domain.UserProfile{owner, artist, engineer} {
		token, err := j.GenerateToken(p.ID, string(p.Role))
		must(err)
		fmt.Printf("%-14s %s\n", p.Role, token)
	}
	log.Println("Seed completed")
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
