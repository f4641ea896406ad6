package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dramahub/internal/catalog/tmdb"
	"dramahub/internal/config"
	"dramahub/internal/http-api/dto"
	"dramahub/internal/http-api/models"
	"dramahub/internal/http-api/repository"
)

// --- MOCKS ---

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetByTMDBID(ctx context.Context, tmdbID int64) (*models.Drama, error) {
	args := m.Called(ctx, tmdbID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Drama), args.Error(1)
}

func (m *MockStore) IsFresh(ctx context.Context, tmdbID int64, maxAgeDays int) (bool, error) {
	args := m.Called(ctx, tmdbID, maxAgeDays)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) UpsertDrama(ctx context.Context, d *models.Drama) (repository.UpsertOutcome, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(repository.UpsertOutcome), args.Error(1)
}

func (m *MockStore) ReplaceCast(ctx context.Context, dramaID int64, rows []models.CastMember) error {
	args := m.Called(ctx, dramaID, rows)
	return args.Error(0)
}

func (m *MockStore) ReplaceVideos(ctx context.Context, dramaID int64, rows []models.Video) error {
	args := m.Called(ctx, dramaID, rows)
	return args.Error(0)
}

func (m *MockStore) ReplaceImages(ctx context.Context, dramaID int64, rows []models.Image) error {
	args := m.Called(ctx, dramaID, rows)
	return args.Error(0)
}

func (m *MockStore) ReplaceSeasons(ctx context.Context, dramaID int64, rows []models.Season) error {
	args := m.Called(ctx, dramaID, rows)
	return args.Error(0)
}

func (m *MockStore) ListPopular(ctx context.Context, limit int) ([]models.Drama, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Drama), args.Error(1)
}

func (m *MockStore) ListStale(ctx context.Context, maxAgeDays, limit int) ([]models.Drama, error) {
	args := m.Called(ctx, maxAgeDays, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Drama), args.Error(1)
}

func (m *MockStore) RetentionSweep(ctx context.Context, olderThanDays int) (int64, error) {
	args := m.Called(ctx, olderThanDays)
	return args.Get(0).(int64), args.Error(1)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetDramaDetail(ctx context.Context, id int64, language string) (*tmdb.DramaDetails, error) {
	args := m.Called(ctx, id, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmdb.DramaDetails), args.Error(1)
}

func (m *MockCatalog) GetCredits(ctx context.Context, id int64, language string) (*tmdb.CreditsResponse, error) {
	args := m.Called(ctx, id, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmdb.CreditsResponse), args.Error(1)
}

func (m *MockCatalog) GetVideos(ctx context.Context, id int64, language string) (*tmdb.VideosResponse, error) {
	args := m.Called(ctx, id, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmdb.VideosResponse), args.Error(1)
}

func (m *MockCatalog) GetImages(ctx context.Context, id int64) (*tmdb.ImagesResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmdb.ImagesResponse), args.Error(1)
}

func (m *MockCatalog) GetSeasonDetail(ctx context.Context, id int64, seasonNumber int, language string) (*tmdb.SeasonDetails, error) {
	args := m.Called(ctx, id, seasonNumber, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmdb.SeasonDetails), args.Error(1)
}

func (m *MockCatalog) SearchDramas(ctx context.Context, query string, page int, language string) (*tmdb.PagedResults, error) {
	args := m.Called(ctx, query, page, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmdb.PagedResults), args.Error(1)
}

func (m *MockCatalog) GetPopular(ctx context.Context, page int, language string) (*tmdb.PagedResults, error) {
	args := m.Called(ctx, page, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmdb.PagedResults), args.Error(1)
}

func (m *MockCatalog) GetTrending(ctx context.Context, language string) (*tmdb.PagedResults, error) {
	args := m.Called(ctx, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmdb.PagedResults), args.Error(1)
}

func (m *MockCatalog) GetWatchProviders(ctx context.Context, id int64) (*tmdb.WatchProvidersResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmdb.WatchProvidersResponse), args.Error(1)
}

// noopHotCache always misses; live endpoints under test work against the
// catalog directly.
type noopHotCache struct{}

func (noopHotCache) GetJSON(ctx context.Context, key string, target interface{}) bool { return false }
func (noopHotCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
}

// --- SETUP ---

func testConfig() *config.Config {
	return &config.Config{
		PrimaryLanguage:   "en-US",
		CacheMaxAgeDays:   7,
		PopulateTopN:      10,
		RetentionSweepAge: 90,
		ProviderCountries: []string{"KR", "US"},
		HotCacheTTL:       time.Minute,
	}
}

func newTestService(store *MockStore, catalog *MockCatalog) *dramaService {
	svc := NewDramaService(store, catalog, noopHotCache{}, NewNotifier(""), testConfig())
	return svc.(*dramaService)
}

func cachedDrama(tmdbID int64) *models.Drama {
	return &models.Drama{
		ID:         3,
		TMDBID:     tmdbID,
		Name:       "Crash Landing on You",
		LastUpdate: time.Now().UTC(),
		Images:     []models.Image{{FilePath: "/b.jpg", Type: models.ImageTypeBackdrop}},
	}
}

// --- TESTS ---

func TestGetByTMDBID_FreshCacheHit(t *testing.T) {
	store := new(MockStore)
	catalog := new(MockCatalog)
	svc := newTestService(store, catalog)

	store.On("GetByTMDBID", mock.Anything, int64(94796)).Return(cachedDrama(94796), nil).Once()
	store.On("IsFresh", mock.Anything, int64(94796), 7).Return(true, nil).Once()

	resp, err := svc.GetByTMDBID(context.Background(), 94796, false, "")
	require.NoError(t, err)
	assert.Equal(t, dto.SourceCacheHit, resp.Source)
	assert.Equal(t, int64(94796), resp.TMDBID)

	store.AssertExpectations(t)
	catalog.AssertNotCalled(t, "GetDramaDetail", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetByTMDBID_ImageSelfHeal(t *testing.T) {
	store := new(MockStore)
	catalog := new(MockCatalog)
	svc := newTestService(store, catalog)

	bare := cachedDrama(94796)
	bare.Images = nil
	healed := cachedDrama(94796)

	store.On("GetByTMDBID", mock.Anything, int64(94796)).Return(bare, nil).Once()
	store.On("IsFresh", mock.Anything, int64(94796), 7).Return(true, nil).Once()
	catalog.On("GetImages", mock.Anything, int64(94796)).
		Return(&tmdb.ImagesResponse{Backdrops: []tmdb.ImageInfo{{FilePath: "/b.jpg", Width: 1280, Height: 720}}}, nil).Once()
	store.On("ReplaceImages", mock.Anything, int64(3), mock.Anything).Return(nil).Once()
	store.On("GetByTMDBID", mock.Anything, int64(94796)).Return(healed, nil).Once()

	resp, err := svc.GetByTMDBID(context.Background(), 94796, false, "")
	require.NoError(t, err)
	assert.Equal(t, dto.SourceCacheHit, resp.Source)
	assert.Len(t, resp.Images.Backdrops, 1)

	store.AssertExpectations(t)
	catalog.AssertNumberOfCalls(t, "GetImages", 1)
}

func TestGetByTMDBID_StaleRefreshed(t *testing.T) {
	store := new(MockStore)
	catalog := new(MockCatalog)
	svc := newTestService(store, catalog)

	prior := cachedDrama(94796)
	detail := &tmdb.DramaDetails{ID: 94796, Name: "Crash Landing on You", FirstAirDate: "2019-12-14"}

	store.On("GetByTMDBID", mock.Anything, int64(94796)).Return(prior, nil)
	store.On("IsFresh", mock.Anything, int64(94796), 7).Return(false, nil).Once()
	catalog.On("GetDramaDetail", mock.Anything, int64(94796), "en-US").Return(detail, nil).Once()
	store.On("UpsertDrama", mock.Anything, mock.Anything).
		Return(repository.UpsertOutcome{ID: 3, Path: repository.UpsertPathRPC}, nil).Once()

	catalog.On("GetCredits", mock.Anything, int64(94796), "en-US").
		Return(&tmdb.CreditsResponse{Cast: []tmdb.CastCredit{{ID: 1, Name: "Son Ye-jin"}}}, nil).Once()
	catalog.On("GetVideos", mock.Anything, int64(94796), "en-US").
		Return(nil, errors.New("videos down")).Once()
	catalog.On("GetImages", mock.Anything, int64(94796)).
		Return(nil, errors.New("images down")).Once()
	store.On("ReplaceCast", mock.Anything, int64(3), mock.Anything).Return(nil).Once()

	resp, err := svc.GetByTMDBID(context.Background(), 94796, false, "")
	require.NoError(t, err)
	assert.Equal(t, dto.SourceStaleRefreshed, resp.Source)

	// a failed sibling fetch must not trigger a destructive write
	store.AssertNotCalled(t, "ReplaceVideos", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "ReplaceImages", mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestGetByTMDBID_MissSaved(t *testing.T) {
	store := new(MockStore)
	catalog := new(MockCatalog)
	svc := newTestService(store, catalog)

	detail := &tmdb.DramaDetails{ID: 555, Name: "New Show"}
	stored := &models.Drama{ID: 9, TMDBID: 555, Name: "New Show", LastUpdate: time.Now().UTC()}

	store.On("GetByTMDBID", mock.Anything, int64(555)).Return(nil, repository.ErrNotFound).Twice()
	catalog.On("GetDramaDetail", mock.Anything, int64(555), "en-US").Return(detail, nil).Once()
	store.On("UpsertDrama", mock.Anything, mock.Anything).
		Return(repository.UpsertOutcome{ID: 9, Path: repository.UpsertPathTable}, nil).Once()
	catalog.On("GetCredits", mock.Anything, int64(555), "en-US").Return(nil, errors.New("down"))
	catalog.On("GetVideos", mock.Anything, int64(555), "en-US").Return(nil, errors.New("down"))
	catalog.On("GetImages", mock.Anything, int64(555)).Return(nil, errors.New("down"))
	store.On("GetByTMDBID", mock.Anything, int64(555)).Return(stored, nil).Once()

	resp, err := svc.GetByTMDBID(context.Background(), 555, false, "")
	require.NoError(t, err)
	assert.Equal(t, dto.SourceMissSaved, resp.Source)
	assert.Equal(t, int64(9), resp.ID)
}

func TestGetByTMDBID_StaleServedWhenUpstreamFails(t *testing.T) {
	store := new(MockStore)
	catalog := new(MockCatalog)
	svc := newTestService(store, catalog)

	prior := cachedDrama(94796)
	store.On("GetByTMDBID", mock.Anything, int64(94796)).Return(prior, nil)
	store.On("IsFresh", mock.Anything, int64(94796), 7).Return(false, nil).Once()
	catalog.On("GetDramaDetail", mock.Anything, int64(94796), "en-US").
		Return(nil, errors.New("tmdb outage")).Once()

	resp, err := svc.GetByTMDBID(context.Background(), 94796, false, "")
	require.NoError(t, err)
	assert.Equal(t, dto.SourceCacheAfterError, resp.Source)
	assert.Equal(t, "Crash Landing on You", resp.Name)

	store.AssertNotCalled(t, "UpsertDrama", mock.Anything, mock.Anything)
}

func TestGetByTMDBID_TerminalWhenNothingToServe(t *testing.T) {
	store := new(MockStore)
	catalog := new(MockCatalog)
	svc := newTestService(store, catalog)

	store.On("GetByTMDBID", mock.Anything, int64(404404)).Return(nil, repository.ErrNotFound).Twice()
	catalog.On("GetDramaDetail", mock.Anything, int64(404404), "en-US").
		Return(nil, errors.New("tmdb outage")).Once()

	_, err := svc.GetByTMDBID(context.Background(), 404404, false, "")
	assert.ErrorIs(t, err, ErrDramaUnavailable)
}

func TestGetByTMDBID_SaveFailureServesStale(t *testing.T) {
	store := new(MockStore)
	catalog := new(MockCatalog)
	svc := newTestService(store, catalog)

	prior := cachedDrama(94796)
	detail := &tmdb.DramaDetails{ID: 94796, Name: "Crash Landing on You"}

	store.On("GetByTMDBID", mock.Anything, int64(94796)).Return(prior, nil)
	store.On("IsFresh", mock.Anything, int64(94796), 7).Return(false, nil).Once()
	catalog.On("GetDramaDetail", mock.Anything, int64(94796), "en-US").Return(detail, nil).Once()
	store.On("UpsertDrama", mock.Anything, mock.Anything).
		Return(repository.UpsertOutcome{}, errors.New("db down")).Once()

	resp, err := svc.GetByTMDBID(context.Background(), 94796, false, "")
	require.NoError(t, err)
	assert.Equal(t, dto.SourceCacheAfterError, resp.Source)
}

func TestGetByTMDBID_LocaleBypassSkipsCache(t *testing.T) {
	store := new(MockStore)
	catalog := new(MockCatalog)
	svc := newTestService(store, catalog)

	detail := &tmdb.DramaDetails{ID: 94796, Name: "사랑의 불시착"}
	catalog.On("GetDramaDetail", mock.Anything, int64(94796), "ko-KR").Return(detail, nil).Once()
	catalog.On("GetCredits", mock.Anything, int64(94796), "ko-KR").Return(nil, errors.New("skip"))
	catalog.On("GetVideos", mock.Anything, int64(94796), "ko-KR").Return(nil, errors.New("skip"))
	catalog.On("GetImages", mock.Anything, int64(94796)).Return(nil, errors.New("skip"))

	resp, err := svc.GetByTMDBID(context.Background(), 94796, false, "ko-KR")
	require.NoError(t, err)
	assert.Equal(t, dto.SourceUpstreamDirect, resp.Source)

	store.AssertNotCalled(t, "GetByTMDBID", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "UpsertDrama", mock.Anything, mock.Anything)
}

func TestGetByTMDBID_ForceRefresh(t *testing.T) {
	store := new(MockStore)
	catalog := new(MockCatalog)
	svc := newTestService(store, catalog)

	prior := cachedDrama(94796)
	detail := &tmdb.DramaDetails{ID: 94796, Name: "Crash Landing on You"}

	store.On("GetByTMDBID", mock.Anything, int64(94796)).Return(prior, nil)
	catalog.On("GetDramaDetail", mock.Anything, int64(94796), "en-US").Return(detail, nil).Once()
	store.On("UpsertDrama", mock.Anything, mock.Anything).
		Return(repository.UpsertOutcome{ID: 3, Path: repository.UpsertPathRPC}, nil).Once()
	catalog.On("GetCredits", mock.Anything, int64(94796), "en-US").Return(nil, errors.New("skip"))
	catalog.On("GetVideos", mock.Anything, int64(94796), "en-US").Return(nil, errors.New("skip"))
	catalog.On("GetImages", mock.Anything, int64(94796)).Return(nil, errors.New("skip"))

	resp, err := svc.GetByTMDBID(context.Background(), 94796, true, "")
	require.NoError(t, err)
	assert.Equal(t, dto.SourceStaleRefreshed, resp.Source)

	store.AssertNotCalled(t, "IsFresh", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshStale(t *testing.T) {
	store := new(MockStore)
	catalog := new(MockCatalog)
	svc := newTestService(store, catalog)

	store.On("ListStale", mock.Anything, 7, 10).Return(nil, errors.New("db down")).Once()
	assert.Error(t, svc.RefreshStale(context.Background()))

	store.On("ListStale", mock.Anything, 7, 10).Return([]models.Drama{}, nil).Once()
	assert.NoError(t, svc.RefreshStale(context.Background()))
}

func TestSweepRetention(t *testing.T) {
	store := new(MockStore)
	catalog := new(MockCatalog)
	svc := newTestService(store, catalog)

	store.On("RetentionSweep", mock.Anything, 90).Return(int64(4), nil).Once()
	deleted, err := svc.SweepRetention(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
}
