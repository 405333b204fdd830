package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oloustream/internal/database"
)

func setupTestService(t *testing.T) *CatalogService {
	t.Helper()
	dsn := fmt.Sprintf("file:catalog_test_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn, database.Silent())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, Models()...))
	return NewService(NewRepository(db))
}

func TestCreateStudio_ComputesAreaAndRejectsDuplicateCode(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	studio, err := svc.CreateStudio(ctx, StudioRequest{
		Name:     "Plateau A",
		Code:     "pla-a",
		Type:     StudioVideo,
		LengthCM: 1200,
		WidthCM:  800,
	})
	require.NoError(t, err)
	assert.Equal(t, "PLA-A", studio.Code)
	assert.Equal(t, int64(960000), studio.AreaSqCM)
	assert.Equal(t, StudioAvailable, studio.Status)
	assert.Equal(t, 1, studio.Capacity)
	assert.True(t, studio.Bookable())

	_, err = svc.CreateStudio(ctx, StudioRequest{Name: "Copy", Code: "PLA-A"})
	assert.ErrorIs(t, err, ErrDuplicateCode)

	_, err = svc.GetStudio(ctx, 9999)
	assert.ErrorIs(t, err, ErrStudioNotFound)
}

func TestUpdateStudio_KeepsExplicitArea(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	studio, err := svc.CreateStudio(ctx, StudioRequest{Name: "Cabine son", Code: "AUD-1", Type: StudioAudio})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.UpdateStudio(ctx, studio.ID, StudioRequest{
		Name:     "Cabine son 1",
		Code:     "AUD-1",
		AreaSqCM: 50000,
		LengthCM: 300,
		WidthCM:  300,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(50000), updated.AreaSqCM)
	assert.Equal(t, StudioAudio, updated.Type)
	assert.False(t, updated.Bookable())

	active := true
	list, err := svc.ListStudios(ctx, StudioFilters{Active: &active})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListEquipment_RentOnly(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, CategoryRequest{Name: "Caméras"})
	require.NoError(t, err)

	rentable, err := svc.CreateEquipment(ctx, EquipmentRequest{
		Name:               "Sony FX6",
		CategoryID:         &cat.ID,
		Brand:              "Sony",
		SerialNumber:       "FX6-001",
		IsAvailableForRent: true,
		DailyRentalPrice:   7500000,
	})
	require.NoError(t, err)
	require.NotNil(t, rentable.Category)
	assert.Equal(t, "Caméras", rentable.Category.Name)
	assert.True(t, rentable.Rentable())

	_, err = svc.CreateEquipment(ctx, EquipmentRequest{
		Name:               "Blackmagic 6K",
		IsAvailableForRent: true,
		Status:             EquipmentMaintenance,
	})
	require.NoError(t, err)
	_, err = svc.CreateEquipment(ctx, EquipmentRequest{Name: "Régie interne"})
	require.NoError(t, err)

	list, err := svc.ListEquipment(ctx, EquipmentFilters{RentOnly: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, rentable.ID, list[0].ID)

	all, err := svc.ListEquipment(ctx, EquipmentFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.CreateEquipment(ctx, EquipmentRequest{Name: "Dup", SerialNumber: "FX6-001"})
	assert.ErrorIs(t, err, ErrDuplicateCode)
}

func TestCreateEquipment_Validation(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	missing := int64(42)
	_, err := svc.CreateEquipment(ctx, EquipmentRequest{Name: "Orphan", CategoryID: &missing})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	_, err = svc.CreateEquipment(ctx, EquipmentRequest{Name: "Nowhere", StudioID: &missing})
	assert.ErrorIs(t, err, ErrStudioNotFound)

	last := time.Now()
	next := last.Add(-24 * time.Hour)
	_, err = svc.CreateEquipment(ctx, EquipmentRequest{Name: "Lamp", LastMaintenanceDate: &last, NextMaintenanceDate: &next})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNeedsMaintenance(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, (&Equipment{}).NeedsMaintenance(now))
	assert.True(t, (&Equipment{NextMaintenanceDate: &past}).NeedsMaintenance(now))
	assert.False(t, (&Equipment{NextMaintenanceDate: &future}).NeedsMaintenance(now))
}

func TestCreateService_Slug(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	s, err := svc.CreateService(ctx, ServiceRequest{Name: "Clip vidéo & Montage", BasePrice: 25000000, RequiresStudio: true})
	require.NoError(t, err)
	assert.Equal(t, "clip-video-montage", s.Slug)
	assert.True(t, s.IsActive)

	_, err = svc.CreateService(ctx, ServiceRequest{Name: "Other", Slug: "Clip Vidéo Montage"})
	assert.ErrorIs(t, err, ErrDuplicateCode)

	_, err = svc.CreateService(ctx, ServiceRequest{Name: "!!!"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	list, err := svc.ListServices(ctx, true)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUniqueSlug(t *testing.T) {
	used := map[string]bool{"montage-video": true, "montage-video-2": true}
	taken := func(_ context.Context, s string) (bool, error) { return used[s], nil }

	got, err := UniqueSlug(context.Background(), "Montage Vidéo", "offre", taken)
	require.NoError(t, err)
	assert.Equal(t, "montage-video-3", got)

	got, err = UniqueSlug(context.Background(), "!!", "offre", taken)
	require.NoError(t, err)
	assert.Equal(t, "offre", got)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"  Podcast Studio ": "podcast-studio",
		"Élaboration":       "elaboration",
		"Photo--Shoot!!":    "photo-shoot",
		"Œuvre":             "oeuvre",
		"Señor Studio":      "senor-studio",
		"Son & Lumière":     "son-and-lumiere",
		"":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}
