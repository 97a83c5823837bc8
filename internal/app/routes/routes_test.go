package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"resident-directory-service/internal/app/middleware"
	"resident-directory-service/internal/domain/models"
	"resident-directory-service/internal/domain/services"
	"resident-directory-service/internal/domain/services/container"
	"resident-directory-service/internal/error/code"
	"resident-directory-service/internal/infrastructure/config"
	"resident-directory-service/internal/infrastructure/database/dbtest"
	"resident-directory-service/internal/infrastructure/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiFixture struct {
	t      *testing.T
	cfg    *config.Config
	db     *gorm.DB
	router *gin.Engine
	jwt    services.InterfaceJWTService

	userToken  string
	staffToken string
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newAPIFixture(t *testing.T, configure ...func(*config.Config)) *apiFixture {
	t.Helper()
	cfg := dbtest.Config(t)
	for _, fn := range configure {
		fn(cfg)
	}
	db := dbtest.Open(t, cfg).DB
	store, err := storage.NewLocalStorage(cfg.MediaRoot, cfg.MediaURL)
	require.NoError(t, err)

	c := container.NewServiceContainer(db, cfg, store, nil)
	f := &apiFixture{
		t:      t,
		cfg:    cfg,
		db:     db,
		router: SetupRouter(c, nil),
		jwt:    c.GetService("jwt").(services.InterfaceJWTService),
	}

	user := &models.User{Username: "ann", IsActive: true}
	staff := &models.User{Username: "boss", IsActive: true, IsStaff: true}
	require.NoError(t, user.SetPassword("ann-pass"))
	require.NoError(t, staff.SetPassword("boss-pass"))
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(staff).Error)
	f.userToken = f.token(user)
	f.staffToken = f.token(staff)
	return f
}

func (f *apiFixture) token(u *models.User) string {
	f.t.Helper()
	tok, err := f.jwt.GenerateToken(u, services.TokenTypeAccess)
	require.NoError(f.t, err)
	return tok
}

func (f *apiFixture) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(f.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return f.send(req, token)
}

func (f *apiFixture) upload(residentID uint, token, filename string, content []byte, isPrimary bool) *httptest.ResponseRecorder {
	f.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if content != nil {
		part, err := w.CreateFormFile("image", filename)
		require.NoError(f.t, err)
		_, err = part.Write(content)
		require.NoError(f.t, err)
	}
	if isPrimary {
		require.NoError(f.t, w.WriteField("is_primary", "true"))
	}
	require.NoError(f.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/residents/%d/photos/", residentID), &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return f.send(req, token)
}

func (f *apiFixture) resident(first, last, apartment string) *models.Resident {
	f.t.Helper()
	r := &models.Resident{
		FirstName: first,
		LastName:  last,
		Apartment: apartment,
		Phone:     "555-0100",
		Email:     strings.ToLower(first) + "@example.com",
		IsActive:  true,
	}
	require.NoError(f.t, f.db.Create(r).Error)
	return r
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(env.Data))
	}
	return env
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func primaryCount(t *testing.T, db *gorm.DB, residentID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Photo{}).Where("resident_id = ? AND is_primary = ?", residentID, true).Count(&n).Error)
	return n
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodGet, "/api/health/", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var data map[string]string
	decode(t, rec, &data)
	assert.Equal(t, "Server is up!", data["message"])
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestAccessMatrix(t *testing.T) {
	f := newAPIFixture(t)
	r := f.resident("Ann", "Lee", "4B")

	// 匿名用户不能查看列表
	rec := f.do(http.MethodGet, "/api/residents/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, code.ErrNotAuthenticated, decode(t, rec, nil).Code)

	// 普通用户可以查看，但不能删除或查看统计
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/residents/", f.userToken, nil).Code)
	rec = f.do(http.MethodDelete, fmt.Sprintf("/api/residents/%d/", r.ID), f.userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/admin/summary/", f.userToken, nil).Code)

	var count int64
	require.NoError(t, f.db.Model(&models.Resident{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// 员工可以删除
	rec = f.do(http.MethodDelete, fmt.Sprintf("/api/residents/%d/", r.ID), f.staffToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, fmt.Sprintf("/api/residents/%d/", r.ID), f.userToken, nil).Code)
}

func TestAdminSummary(t *testing.T) {
	f := newAPIFixture(t)
	f.resident("Ann", "Lee", "4B")
	inactive := f.resident("Bob", "Lee", "4B")
	require.NoError(t, f.db.Model(inactive).Update("is_active", false).Error)

	rec := f.do(http.MethodGet, "/api/admin/summary/", f.staffToken, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var summary services.Summary
	decode(t, rec, &summary)
	assert.Equal(t, int64(2), summary.Residents.Total)
	assert.Equal(t, int64(1), summary.Residents.Active)
	assert.Equal(t, int64(1), summary.Residents.Inactive)
	assert.Equal(t, int64(0), summary.Photos.Total)
}

func TestRegister(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodPost, "/api/auth/register/", "", map[string]string{"username": "carol", "password": "pw", "email": "carol@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var data map[string]interface{}
	decode(t, rec, &data)
	assert.Equal(t, true, data["success"])
	assert.Equal(t, "carol", data["username"])

	// 重复用户名
	rec = f.do(http.MethodPost, "/api/auth/register/", "", map[string]string{"username": "carol", "password": "other"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var fields map[string]string
	decode(t, rec, &fields)
	assert.Contains(t, fields, "username")

	var count int64
	require.NoError(t, f.db.Model(&models.User{}).Where("username = ?", "carol").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegister_ValidationErrors(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodPost, "/api/auth/register/", "", map[string]string{"email": "nope"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var fields map[string]string
	decode(t, rec, &fields)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "email")
}

func TestLoginAndRefresh(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodPost, "/api/auth/login/", "", map[string]string{"username": "ann", "password": "ann-pass"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var pair services.TokenPair
	decode(t, rec, &pair)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/residents/", pair.Access, nil).Code)
	// refresh 令牌不能用于访问接口
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/residents/", pair.Refresh, nil).Code)

	rec = f.do(http.MethodPost, "/api/auth/refresh/", "", map[string]string{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	var refreshed map[string]string
	decode(t, rec, &refreshed)
	assert.NotEmpty(t, refreshed["access"])

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodPost, "/api/auth/refresh/", "", map[string]string{"refresh": pair.Access}).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodPost, "/api/auth/login/", "", map[string]string{"username": "ann", "password": "wrong"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/auth/login/", "", map[string]string{"username": "ann"}).Code)
}

func TestListResidents_Filters(t *testing.T) {
	f := newAPIFixture(t)
	f.resident("Ann", "Lee", "4B")
	f.resident("Bob", "Lee", "4B")
	f.resident("Cat", "Smith", "2A")

	names := func(query string) []string {
		rec := f.do(http.MethodGet, "/api/residents/"+query, f.userToken, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var page struct {
			Count   int64 `json:"count"`
			Results []struct {
				FirstName string `json:"first_name"`
			} `json:"results"`
		}
		decode(t, rec, &page)
		out := []string{}
		for _, r := range page.Results {
			out = append(out, r.FirstName)
		}
		assert.Equal(t, int64(len(out)), page.Count)
		return out
	}

	assert.Equal(t, []string{"Ann", "Bob"}, names("?q=lee"))
	assert.Equal(t, []string{"Ann", "Bob"}, names("?apartment=4B"))
	assert.Empty(t, names("?q=lee&apartment=2A"))
	assert.Equal(t, []string{"Ann", "Bob", "Cat"}, names(""))
	assert.Empty(t, names("?is_active=false"))
}

func TestListResidents_Pagination(t *testing.T) {
	f := newAPIFixture(t)
	for i := 0; i < 3; i++ {
		f.resident(fmt.Sprintf("R%d", i), "Lee", "1A")
	}

	rec := f.do(http.MethodGet, "/api/residents/?page_size=2&q=lee", f.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Count      int64   `json:"count"`
		TotalPages int     `json:"total_pages"`
		Next       *string `json:"next"`
		Previous   *string `json:"previous"`
		Results    []json.RawMessage
	}
	decode(t, rec, &page)
	assert.Equal(t, int64(3), page.Count)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Results, 2)
	require.NotNil(t, page.Next)
	assert.Equal(t, "http://example.com/api/residents/?page=2&page_size=2&q=lee", *page.Next)
	assert.Nil(t, page.Previous)

	rec = f.do(http.MethodGet, "/api/residents/?page=2&page_size=2&q=lee", f.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &page)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://example.com/api/residents/?page_size=2&q=lee", *page.Previous)
	assert.Nil(t, page.Next)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/residents/?page=3&page_size=2", f.userToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/residents/?page=zero", f.userToken, nil).Code)
	// 未配置受信任代理时忽略客户端伪造的转发头
	req := httptest.NewRequest(http.MethodGet, "/api/residents/?page_size=2&q=lee", nil)
	req.Header.Set("X-Forwarded-Host", "evil.example")
	req.Header.Set("X-Forwarded-Proto", "https")
	rec = f.send(req, f.userToken)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &page)
	require.NotNil(t, page.Next)
	assert.Equal(t, "http://example.com/api/residents/?page=2&page_size=2&q=lee", *page.Next)

	// 非法的 page_size 使用默认值
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/residents/?page_size=-4", f.userToken, nil).Code)
}

func TestForwardedHeadersFromTrustedProxy(t *testing.T) {
	f := newAPIFixture(t, func(cfg *config.Config) { cfg.TrustedProxies = []string{"192.0.2.0/24"} })
	for i := 0; i < 3; i++ {
		f.resident(fmt.Sprintf("R%d", i), "Lee", "1A")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/residents/?page_size=2", nil)
	req.Header.Set("X-Forwarded-Host", "dir.example.org")
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := f.send(req, f.userToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Next *string `json:"next"`
	}
	decode(t, rec, &page)
	require.NotNil(t, page.Next)
	assert.Equal(t, "https://dir.example.org/api/residents/?page=2&page_size=2", *page.Next)
}

func TestCreateResident(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodPost, "/api/residents/", f.userToken, map[string]interface{}{
		"first_name": "Ann",
		"last_name":  "Lee",
		"apartment":  "4B",
		"phone":      "555-0100",
		"email":      "ann@example.com",
		"dob":        "1990-04-01",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var data map[string]interface{}
	decode(t, rec, &data)
	assert.Equal(t, "", data["notes"])
	assert.Equal(t, true, data["is_active"])
	assert.Equal(t, "1990-04-01", data["dob"])
	assert.Nil(t, data["primary_photo_url"])
	assert.Equal(t, []interface{}{}, data["photos"])
}

func TestCreateResident_ValidationErrors(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodPost, "/api/residents/", f.userToken, map[string]interface{}{
		"first_name": "Ann",
		"email":      "not-an-email",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var fields map[string]string
	decode(t, rec, &fields)
	for _, key := range []string{"last_name", "apartment", "phone", "email"} {
		assert.Contains(t, fields, key)
	}
	assert.NotContains(t, fields, "first_name")

	rec = f.do(http.MethodPost, "/api/residents/", f.userToken, map[string]interface{}{
		"first_name": "Ann", "last_name": "Lee", "apartment": "4B", "phone": "1", "email": "a@example.com", "dob": "01/04/1990",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	decode(t, rec, &fields)
	assert.Contains(t, fields, "dob")
}

func TestUpdateResident_Put(t *testing.T) {
	f := newAPIFixture(t)
	r := f.resident("Ann", "Lee", "4B")
	require.NoError(t, f.db.Model(r).Update("notes", "keep me").Error)
	path := fmt.Sprintf("/api/residents/%d/", r.ID)

	// 缺少必填字段
	rec := f.do(http.MethodPut, path, f.userToken, map[string]interface{}{"first_name": "Ann"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPut, path, f.userToken, map[string]interface{}{
		"first_name": "Anne",
		"last_name":  "Lee",
		"apartment":  "5C",
		"phone":      "555-0199",
		"email":      "anne@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var data map[string]interface{}
	decode(t, rec, &data)
	assert.Equal(t, "Anne", data["first_name"])
	assert.Equal(t, "5C", data["apartment"])
	assert.Equal(t, "keep me", data["notes"])
	assert.Equal(t, true, data["is_active"])
}

func TestUpdateResident_Patch(t *testing.T) {
	f := newAPIFixture(t)
	r := f.resident("Ann", "Lee", "4B")
	path := fmt.Sprintf("/api/residents/%d/", r.ID)

	rec := f.do(http.MethodPatch, path, f.userToken, map[string]interface{}{"is_active": false, "dob": "1985-12-31"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var data map[string]interface{}
	decode(t, rec, &data)
	assert.Equal(t, false, data["is_active"])
	assert.Equal(t, "1985-12-31", data["dob"])
	assert.Equal(t, "Ann", data["first_name"])

	rec = f.do(http.MethodPatch, path, f.userToken, `{"dob": null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &data)
	assert.Nil(t, data["dob"])

	rec = f.do(http.MethodPatch, path, f.userToken, map[string]interface{}{"first_name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPatch, "/api/residents/999/", f.userToken, map[string]interface{}{"notes": "x"}).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/residents/abc/", f.userToken, nil).Code)
}

func TestPhotoLifecycle(t *testing.T) {
	f := newAPIFixture(t)
	r := f.resident("Ann", "Lee", "4B")
	img := pngBytes(t)

	rec := f.upload(r.ID, f.userToken, "first photo.png", img, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var first struct {
		ID        uint    `json:"id"`
		Resident  uint    `json:"resident"`
		Image     string  `json:"image"`
		ImageURL  *string `json:"image_url"`
		IsPrimary bool    `json:"is_primary"`
	}
	decode(t, rec, &first)
	assert.True(t, first.IsPrimary)
	assert.Equal(t, r.ID, first.Resident)
	assert.Contains(t, first.Image, "first_photo.png")
	require.NotNil(t, first.ImageURL)
	assert.True(t, strings.HasPrefix(*first.ImageURL, "http://example.com/media/residents/"))

	// 第二张主照片会降级第一张
	rec = f.upload(r.ID, f.userToken, "second.png", img, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	var second struct {
		ID uint `json:"id"`
	}
	decode(t, rec, &second)
	assert.Equal(t, int64(1), primaryCount(t, f.db, r.ID))

	rec = f.do(http.MethodGet, fmt.Sprintf("/api/photos/%d/", first.ID), f.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched map[string]interface{}
	decode(t, rec, &fetched)
	assert.Equal(t, false, fetched["is_primary"])

	// set_primary 幂等
	for i := 0; i < 2; i++ {
		rec = f.do(http.MethodPost, fmt.Sprintf("/api/photos/%d/set_primary/", first.ID), f.userToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(1), primaryCount(t, f.db, r.ID))
	}

	rec = f.do(http.MethodGet, fmt.Sprintf("/api/residents/%d/photos/", r.ID), f.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var photos []map[string]interface{}
	decode(t, rec, &photos)
	assert.Len(t, photos, 2)

	rec = f.do(http.MethodGet, fmt.Sprintf("/api/residents/%d/", r.ID), f.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail map[string]interface{}
	decode(t, rec, &detail)
	assert.NotNil(t, detail["primary_photo_url"])

	// PATCH 设为主照片
	rec = f.do(http.MethodPatch, fmt.Sprintf("/api/photos/%d/", second.ID), f.userToken, map[string]interface{}{"is_primary": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), primaryCount(t, f.db, r.ID))

	rec = f.do(http.MethodDelete, fmt.Sprintf("/api/photos/%d/", second.ID), f.userToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, fmt.Sprintf("/api/photos/%d/", second.ID), f.userToken, nil).Code)
	assert.Equal(t, int64(0), primaryCount(t, f.db, r.ID))
}

func TestUploadPhoto_Rejections(t *testing.T) {
	f := newAPIFixture(t, func(cfg *config.Config) { cfg.MaxUploadSize = 1024 })
	r := f.resident("Ann", "Lee", "4B")

	rec := f.upload(r.ID, f.userToken, "", nil, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var fields map[string]string
	decode(t, rec, &fields)
	assert.Contains(t, fields, "image")

	rec = f.upload(r.ID, f.userToken, "notes.txt", []byte("plain text, not an image"), false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	decode(t, rec, &fields)
	assert.Contains(t, fields, "image")

	rec = f.upload(r.ID, f.userToken, "big.png", bytes.Repeat([]byte{0x89}, 4096), false)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	assert.Equal(t, http.StatusNotFound, f.upload(999, f.userToken, "a.png", pngBytes(t), false).Code)
	assert.Equal(t, http.StatusUnauthorized, f.upload(r.ID, "", "a.png", pngBytes(t), false).Code)

	var count int64
	require.NoError(t, f.db.Model(&models.Photo{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteResident_RemovesPhotos(t *testing.T) {
	f := newAPIFixture(t)
	r := f.resident("Ann", "Lee", "4B")
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusCreated, f.upload(r.ID, f.userToken, "p.png", pngBytes(t), i == 0).Code)
	}

	rec := f.do(http.MethodDelete, fmt.Sprintf("/api/residents/%d/", r.ID), f.staffToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	require.NoError(t, f.db.Model(&models.Photo{}).Where("resident_id = ?", r.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRateLimit(t *testing.T) {
	cfg := dbtest.Config(t)
	db := dbtest.Open(t, cfg).DB
	store, err := storage.NewLocalStorage(cfg.MediaRoot, cfg.MediaURL)
	require.NoError(t, err)
	limiter := middleware.NewMemoryLimiter(middleware.RateLimiterConfig{Rate: 0.001, Burst: 1, ExpiryTime: time.Minute})
	router := SetupRouter(container.NewServiceContainer(db, cfg, store, nil), limiter)

	statuses := make([]int, 2)
	for i := range statuses {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/", nil))
		statuses[i] = rec.Code
		if rec.Code == http.StatusTooManyRequests {
			assert.Equal(t, "1", rec.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, statuses)
}

func TestMetricsAndDocs(t *testing.T) {
	f := newAPIFixture(t, func(cfg *config.Config) { cfg.MetricsEnabled = true })
	f.do(http.MethodGet, "/api/health/", "", nil)

	rec := f.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `resident_directory_http_requests_total{method="GET",route="/api/health/",status="200"} 1`)

	rec = f.do(http.MethodGet, "/docs/", "", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/swagger/index.html", rec.Header().Get("Location"))

	rec = f.do(http.MethodGet, "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/residents/{id}/photos/")
}

func TestMediaServedInDebug(t *testing.T) {
	f := newAPIFixture(t)
	r := f.resident("Ann", "Lee", "4B")
	img := pngBytes(t)
	rec := f.upload(r.ID, f.userToken, "face.png", img, false)
	require.Equal(t, http.StatusCreated, rec.Code)
	var photo struct {
		Image string `json:"image"`
	}
	decode(t, rec, &photo)

	rec = f.do(http.MethodGet, "/media/"+photo.Image, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, img, rec.Body.Bytes())
}
