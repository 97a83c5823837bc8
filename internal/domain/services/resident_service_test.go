package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"resident-directory-service/internal/domain/models"
)

func names(residents []models.Resident) []string {
	out := make([]string, len(residents))
	for i, r := range residents {
		out[i] = r.FirstName + " " + r.LastName
	}
	return out
}

func firstPage(size int) models.PaginationQuery {
	return models.PaginationQuery{Page: 1, PageSize: size}
}

func TestListResidents_Filters(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.resident(t, "Ann", "Lee", "4B")
	e.resident(t, "Bob", "Lee", "4B")
	e.resident(t, "Cat", "Smith", "2A")

	tests := []struct {
		name   string
		filter ResidentFilter
		want   []string
	}{
		{"no filter", ResidentFilter{}, []string{"Ann Lee", "Bob Lee", "Cat Smith"}},
		{"q is case-insensitive", ResidentFilter{Query: "lee"}, []string{"Ann Lee", "Bob Lee"}},
		{"q matches email", ResidentFilter{Query: "CAT@EXAMPLE"}, []string{"Cat Smith"}},
		{"apartment exact", ResidentFilter{Apartment: "4B"}, []string{"Ann Lee", "Bob Lee"}},
		{"apartment is case-sensitive", ResidentFilter{Apartment: "4b"}, []string{}},
		{"conjunction", ResidentFilter{Query: "lee", Apartment: "2A"}, []string{}},
		{"wildcards are literal", ResidentFilter{Query: "%"}, []string{}},
		{"q keeps surrounding spaces", ResidentFilter{Query: "ann "}, []string{}},
		{"whitespace q still filters", ResidentFilter{Query: " "}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			residents, total, err := e.residents.ListResidents(ctx, tt.filter, firstPage(10))
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(residents))
			assert.EqualValues(t, len(tt.want), total)
		})
	}
}

func TestApplyResidentFilter_MySQLApartmentIsBinary(t *testing.T) {
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "user:pass@tcp(127.0.0.1:3306)/residents?parseTime=True",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	var residents []models.Resident
	stmt := ApplyResidentFilter(db.Model(&models.Resident{}), ResidentFilter{Apartment: "4b"}).Find(&residents).Statement
	assert.Contains(t, stmt.SQL.String(), "BINARY apartment = ?")
	assert.Equal(t, []interface{}{"4b"}, stmt.Vars)
}

func TestListResidents_IsActiveFilter(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.resident(t, "Ann", "Lee", "4B")
	inactive := e.resident(t, "Bob", "Lee", "4B")
	require.NoError(t, e.db.Model(inactive).Update("is_active", false).Error)

	yes, no := true, false
	active, _, err := e.residents.ListResidents(ctx, ResidentFilter{IsActive: &yes}, firstPage(10))
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann Lee"}, names(active))

	off, _, err := e.residents.ListResidents(ctx, ResidentFilter{IsActive: &no}, firstPage(10))
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob Lee"}, names(off))

	all, _, err := e.residents.ListResidents(ctx, ResidentFilter{Query: "lee"}, firstPage(10))
	require.NoError(t, err)
	assert.Len(t, all, 2, "inactive residents stay searchable")
}

func TestListResidents_OrderingAndPages(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.resident(t, "Zed", "Adams", "1A")
	e.resident(t, "Amy", "Brown", "1B")
	e.resident(t, "Amy", "Adams", "1C")
	e.resident(t, "Amy", "Adams", "1D")

	page1, total, err := e.residents.ListResidents(ctx, ResidentFilter{}, models.PaginationQuery{Page: 1, PageSize: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Equal(t, []string{"Amy Adams", "Amy Adams", "Zed Adams"}, names(page1))
	assert.Less(t, page1[0].ID, page1[1].ID, "ties are broken by id")

	page2, _, err := e.residents.ListResidents(ctx, ResidentFilter{}, models.PaginationQuery{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"Amy Brown"}, names(page2))

	_, _, err = e.residents.ListResidents(ctx, ResidentFilter{}, models.PaginationQuery{Page: 3, PageSize: 3})
	assert.ErrorIs(t, err, ErrInvalidPage)
	_, _, err = e.residents.ListResidents(ctx, ResidentFilter{}, models.PaginationQuery{Page: 0, PageSize: 3})
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestListResidents_EmptyFirstPage(t *testing.T) {
	e := newTestEnv(t)
	residents, total, err := e.residents.ListResidents(context.Background(), ResidentFilter{}, firstPage(10))
	require.NoError(t, err)
	assert.Empty(t, residents)
	assert.NotNil(t, residents)
	assert.Zero(t, total)
}

func TestCreateAndUpdateResident(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	r := &models.Resident{FirstName: "Ann", LastName: "Lee", Apartment: "4B", Phone: "1", Email: "ann@example.com", IsActive: true}
	require.NoError(t, e.residents.CreateResident(ctx, r))
	require.NotZero(t, r.ID)
	assert.Empty(t, r.Photos)

	updated, err := e.residents.UpdateResident(ctx, r.ID, map[string]interface{}{"apartment": "5C", "is_active": false, "notes": ""})
	require.NoError(t, err)
	assert.Equal(t, "5C", updated.Apartment)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Ann", updated.FirstName)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	_, err = e.residents.UpdateResident(ctx, 999, map[string]interface{}{"apartment": "1A"})
	assert.ErrorIs(t, err, ErrResidentNotFound)
}

func TestDeleteResident_CascadesPhotos(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	r := e.resident(t, "Ann", "Lee", "4B")
	other := e.resident(t, "Cat", "Smith", "2A")

	var saved []string
	for i := 0; i < 3; i++ {
		p, err := e.photos.UploadPhoto(ctx, r.ID, pngUpload(t, "a.png", i == 0))
		require.NoError(t, err)
		saved = append(saved, p.Image)
	}
	_, err := e.photos.UploadPhoto(ctx, other.ID, pngUpload(t, "c.png", true))
	require.NoError(t, err)

	require.NoError(t, e.residents.DeleteResident(ctx, r.ID))

	var orphans int64
	require.NoError(t, e.db.Model(&models.Photo{}).Where("resident_id = ?", r.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)
	for _, name := range saved {
		exists, err := e.store.Exists(ctx, name)
		require.NoError(t, err)
		assert.False(t, exists, name)
	}

	var remaining int64
	require.NoError(t, e.db.Model(&models.Photo{}).Count(&remaining).Error)
	assert.EqualValues(t, 1, remaining)

	_, err = e.residents.GetResidentByID(ctx, r.ID)
	assert.ErrorIs(t, err, ErrResidentNotFound)
	assert.ErrorIs(t, e.residents.DeleteResident(ctx, r.ID), ErrResidentNotFound)
}

func TestGetResident_PhotosNewestFirst(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	r := e.resident(t, "Ann", "Lee", "4B")

	first, err := e.photos.UploadPhoto(ctx, r.ID, pngUpload(t, "first.png", true))
	require.NoError(t, err)
	second, err := e.photos.UploadPhoto(ctx, r.ID, pngUpload(t, "second.png", false))
	require.NoError(t, err)

	got, err := e.residents.GetResidentByID(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, got.Photos, 2)
	assert.Equal(t, second.ID, got.Photos[0].ID)
	require.NotNil(t, got.PrimaryPhoto())
	assert.Equal(t, first.ID, got.PrimaryPhoto().ID)
	assert.True(t, strings.HasPrefix(got.PrimaryPhoto().Image, "residents/"))
}
