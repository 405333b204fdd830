package main

import (
	"context"
	"errors"
	"log"

	"oloustream/internal/config"
	"oloustream/internal/database"
	"oloustream/internal/domain/account"
	"oloustream/internal/domain/catalog"
	"oloustream/internal/domain/partner"
	"oloustream/internal/domain/training"
	"oloustream/internal/mailer"
)

// seed loads demo data. Running it twice leaves existing rows untouched.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}

	var models []any
	models = append(models, account.Models()...)
	models = append(models, catalog.Models()...)
	models = append(models, partner.Models()...)
	models = append(models, training.Models()...)
	if err := database.Migrate(db, models...); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	ctx := context.Background()
	accounts := account.NewService(account.NewRepository(db), nil)
	cat := catalog.NewService(catalog.NewRepository(db))
	partners := partner.NewService(db, nil, accounts, mailer.LogEnqueuer{}, cfg.PartnerDefaultRate)

	// ================== USERS ==================
	users := []account.NewUser{
		{Email: "admin@oloustream.bf", Password: "admin12345", FirstName: "Admin", LastName: "Oloustream", Role: account.RoleSuperAdmin},
		{Email: "manager@oloustream.bf", Password: "manager12345", FirstName: "Awa", LastName: "Traoré", Role: account.RoleManager},
		{Email: "tech@oloustream.bf", Password: "tech12345", FirstName: "Moussa", LastName: "Kaboré", Role: account.RoleTechnician},
		{Email: "client@oloustream.bf", Password: "client12345", FirstName: "Salif", LastName: "Ouédraogo", Phone: "+22670112233", Role: account.RoleClient},
	}
	for _, u := range users {
		_, err := accounts.CreateUser(ctx, u)
		switch {
		case errors.Is(err, account.ErrEmailAlreadyExists):
			log.Printf("user exists: %s", u.Email)
		case err != nil:
			log.Fatalf("create user %s: %v", u.Email, err)
		default:
			log.Printf("user created: %s / %s (%s)", u.Email, u.Password, u.Role)
		}
	}

	// ================== STUDIOS ==================
	studios := []catalog.StudioRequest{
		{Name: "Plateau A", Code: "PLA-A", Type: catalog.StudioVideo, City: "Ouagadougou", HourlyRate: 2500000, LengthCM: 1200, WidthCM: 800, Capacity: 15},
		{Name: "Cabine son", Code: "AUD-1", Type: catalog.StudioAudio, City: "Ouagadougou", HourlyRate: 1000000, LengthCM: 400, WidthCM: 300, Capacity: 4},
		{Name: "Studio photo", Code: "PHO-1", Type: catalog.StudioPhoto, City: "Bobo-Dioulasso", HourlyRate: 1500000, LengthCM: 700, WidthCM: 600, Capacity: 8},
	}
	var firstStudio *catalog.Studio
	for _, s := range studios {
		st, err := cat.CreateStudio(ctx, s)
		if errors.Is(err, catalog.ErrDuplicateCode) {
			log.Printf("studio exists: %s", s.Code)
			continue
		}
		if err != nil {
			log.Fatalf("create studio %s: %v", s.Code, err)
		}
		if firstStudio == nil {
			firstStudio = st
		}
		log.Printf("studio created: %s", st.Code)
	}

	// ================== EQUIPMENT ==================
	categories, err := cat.ListCategories(ctx)
	if err != nil {
		log.Fatalf("list categories: %v", err)
	}
	if len(categories) == 0 {
		for _, name := range []string{"Caméras", "Éclairage", "Son"} {
			c, err := cat.CreateCategory(ctx, catalog.CategoryRequest{Name: name})
			if err != nil {
				log.Fatalf("create category %s: %v", name, err)
			}
			categories = append(categories, *c)
		}
	}

	equipment := []catalog.EquipmentRequest{
		{Name: "Sony FX6", CategoryID: &categories[0].ID, Brand: "Sony", SerialNumber: "FX6-001", IsAvailableForRent: true, DailyRentalPrice: 7500000},
		{Name: "Aputure 600d", CategoryID: &categories[1%len(categories)].ID, Brand: "Aputure", SerialNumber: "AP600-01", IsAvailableForRent: true, DailyRentalPrice: 2000000},
		{Name: "Shure SM7B", CategoryID: &categories[2%len(categories)].ID, Brand: "Shure", SerialNumber: "SM7B-01"},
	}
	for _, e := range equipment {
		if firstStudio != nil && !e.IsAvailableForRent {
			e.StudioID = &firstStudio.ID
		}
		_, err := cat.CreateEquipment(ctx, e)
		if errors.Is(err, catalog.ErrDuplicateCode) {
			continue
		}
		if err != nil {
			log.Fatalf("create equipment %s: %v", e.Name, err)
		}
	}

	// ================== SERVICES ==================
	services := []catalog.ServiceRequest{
		{Name: "Tournage clip vidéo", BasePrice: 25000000, RequiresStudio: true},
		{Name: "Enregistrement podcast", BasePrice: 5000000, RequiresStudio: true},
		{Name: "Location de matériel", RequiresEquipment: true},
		{Name: "Couverture événementielle", BasePrice: 40000000},
	}
	for _, s := range services {
		_, err := cat.CreateService(ctx, s)
		if errors.Is(err, catalog.ErrDuplicateCode) {
			continue
		}
		if err != nil {
			log.Fatalf("create service %s: %v", s.Name, err)
		}
	}

	// ================== PARTNER REGIONS ==================
	existing, err := partners.ListRegions(ctx)
	if err != nil {
		log.Fatalf("list regions: %v", err)
	}
	have := make(map[string]bool, len(existing))
	for _, r := range existing {
		have[r.Name] = true
	}
	for i, name := range []string{"Ouagadougou", "Bobo-Dioulasso", "Koudougou", "Ouahigouya", "Banfora"} {
		if have[name] {
			continue
		}
		if _, err := partners.CreateRegion(ctx, partner.RegionRequest{Name: name, IsPriority: i < 2}); err != nil {
			log.Fatalf("create region %s: %v", name, err)
		}
	}

	// ================== TRAININGS ==================
	trainings := training.NewService(db, nil, nil)
	current, err := trainings.ListTrainings(ctx, false, 0)
	if err != nil {
		log.Fatalf("list trainings: %v", err)
	}
	if len(current) == 0 {
		tc, err := trainings.CreateCategory(ctx, training.CategoryRequest{Name: "Audiovisuel"})
		if err != nil {
			log.Fatalf("create training category: %v", err)
		}
		seats := 12
		for _, req := range []training.TrainingRequest{
			{Title: "Montage vidéo sur DaVinci Resolve", CategoryID: &tc.ID, Level: training.LevelBeginner, MaxSeats: &seats},
			{Title: "Prise de son en tournage", CategoryID: &tc.ID, Level: training.LevelIntermediate, Mode: training.ModeHybrid},
		} {
			t, err := trainings.CreateTraining(ctx, req)
			if err != nil {
				log.Fatalf("create training %s: %v", req.Title, err)
			}
			log.Printf("training created: %s", t.Slug)
		}
	}

	log.Println("seed completed")
}
