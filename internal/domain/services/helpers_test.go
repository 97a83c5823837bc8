package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"resident-directory-service/internal/domain/models"
	"resident-directory-service/internal/infrastructure/config"
	"resident-directory-service/internal/infrastructure/database/dbtest"
	"resident-directory-service/internal/infrastructure/storage"
)

type testEnv struct {
	db        *gorm.DB
	cfg       *config.Config
	store     *storage.LocalStorage
	residents InterfaceResidentService
	photos    InterfacePhotoService
	users     InterfaceUserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := dbtest.Config(t)
	db := dbtest.Open(t, cfg).DB
	store, err := storage.NewLocalStorage(cfg.MediaRoot, cfg.MediaURL)
	require.NoError(t, err)
	return &testEnv{
		db:        db,
		cfg:       cfg,
		store:     store,
		residents: NewResidentService(db, cfg, store),
		photos:    NewPhotoService(db, cfg, store),
		users:     NewUserService(db, cfg),
	}
}

func (e *testEnv) resident(t *testing.T, first, last, apartment string) *models.Resident {
	t.Helper()
	r := &models.Resident{
		FirstName: first,
		LastName:  last,
		Apartment: apartment,
		Phone:     "555-0100",
		Email:     first + "@example.com",
		IsActive:  true,
	}
	require.NoError(t, e.db.Create(r).Error)
	return r
}

func (e *testEnv) primaryCount(t *testing.T, residentID uint) int64 {
	t.Helper()
	n, err := models.CountPrimaries(e.db, residentID)
	require.NoError(t, err)
	return n
}

func pngBytes(t testing.TB) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func pngUpload(t testing.TB, name string, primary bool) PhotoUpload {
	data := pngBytes(t)
	return PhotoUpload{Filename: name, Size: int64(len(data)), Content: bytes.NewReader(data), IsPrimary: primary}
}
