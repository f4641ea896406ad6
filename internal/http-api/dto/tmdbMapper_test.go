package dto

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dramahub/internal/catalog/tmdb"
	"dramahub/internal/http-api/models"
)

func TestNormalizeImagePath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *string
	}{
		{"empty maps to nil", "", nil},
		{"leading slash kept", "/poster.jpg", strPtr("/poster.jpg")},
		{"missing slash added", "poster.jpg", strPtr("/poster.jpg")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeImagePath(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestFromTMDBDetail(t *testing.T) {
	doc := tmdb.DramaDetails{
		ID:             94796,
		Name:           "Crash Landing on You",
		OriginalName:   "사랑의 불시착",
		Overview:       "A paragliding mishap.",
		FirstAirDate:   "2019-12-14",
		VoteAverage:    8.7,
		VoteCount:      1500,
		Popularity:     120.5,
		Status:         "Ended",
		Genres:         []tmdb.Genre{{ID: 18, Name: "Drama"}, {ID: 35, Name: "Comedy"}},
		OriginCountry:  []string{"KR"},
		EpisodeRunTime: []int{70, 110},
		PosterPath:     "poster.jpg",
	}

	d := FromTMDBDetail(doc)

	assert.Equal(t, int64(94796), d.TMDBID)
	assert.Equal(t, "Crash Landing on You", d.Name)
	require.NotNil(t, d.Year)
	assert.Equal(t, 2019, *d.Year)
	assert.Equal(t, []int64{18, 35}, d.GenreIDs)
	require.NotNil(t, d.EpisodeRunTime)
	assert.Equal(t, 70, *d.EpisodeRunTime, "first runtime entry wins")
	require.NotNil(t, d.PosterPath)
	assert.Equal(t, "/poster.jpg", *d.PosterPath)
	assert.False(t, d.LastUpdate.IsZero())

	// zero-valued optionals stay nil so they can be omitted on the wire
	assert.Nil(t, d.LastAirDate)
	assert.Nil(t, d.Tagline)
}

func TestFromTMDBDetailGenreIDShape(t *testing.T) {
	// list endpoints send raw genre ids instead of genre objects
	doc := tmdb.DramaDetails{ID: 1, Name: "x", GenreIDs: []int64{18, 10759}}
	d := FromTMDBDetail(doc)
	assert.Equal(t, []int64{18, 10759}, d.GenreIDs)

	// neither shape present still yields a non-nil slice
	d = FromTMDBDetail(tmdb.DramaDetails{ID: 2, Name: "y"})
	assert.NotNil(t, d.GenreIDs)
	assert.Empty(t, d.GenreIDs)
}

func TestYearFromAirDate(t *testing.T) {
	assert.Nil(t, yearFromAirDate(""))
	assert.Nil(t, yearFromAirDate("20"))
	assert.Nil(t, yearFromAirDate("abcd-01-01"))
	require.NotNil(t, yearFromAirDate("2016-12-02"))
	assert.Equal(t, 2016, *yearFromAirDate("2016-12-02"))
}

func TestFromTMDBCredits(t *testing.T) {
	credits := tmdb.CreditsResponse{Cast: []tmdb.CastCredit{
		{ID: 1, Name: "Son Ye-jin", Character: "Yoon Se-ri", Order: 0, ProfilePath: "p1.jpg"},
		{ID: 2, Name: "", Character: "ghost entry"},
		{ID: 3, Name: "Hyun Bin", Character: "Ri Jeong-hyeok", Order: 1},
	}}

	rows := FromTMDBCredits(7, credits)
	require.Len(t, rows, 2, "nameless credits are dropped")
	assert.Equal(t, int64(7), rows[0].DramaID)
	assert.Equal(t, int64(1), rows[0].PersonID)
	assert.Equal(t, 0, rows[0].CastOrder)
	require.NotNil(t, rows[0].ProfilePath)
	assert.Equal(t, "/p1.jpg", *rows[0].ProfilePath)
	assert.Equal(t, "Hyun Bin", rows[1].Name)
}

func TestFromTMDBVideosAllowList(t *testing.T) {
	videos := tmdb.VideosResponse{Results: []tmdb.VideoResult{
		{ID: "a", Key: "k1", Site: "YouTube", Type: "Trailer"},
		{ID: "b", Key: "k2", Site: "YouTube", Type: "Teaser"},
		{ID: "c", Key: "k3", Site: "YouTube", Type: "Behind the Scenes"},
		{ID: "d", Key: "", Site: "YouTube", Type: "Trailer"},
	}}

	rows := FromTMDBVideos(7, videos)
	require.Len(t, rows, 2)
	assert.Equal(t, "Trailer", rows[0].Type)
	assert.Equal(t, "Teaser", rows[1].Type)
}

func TestFromTMDBImagesCapAndRatio(t *testing.T) {
	var backdrops []tmdb.ImageInfo
	for i := 0; i < models.ImagesPerTypeCap+5; i++ {
		backdrops = append(backdrops, tmdb.ImageInfo{
			FilePath: fmt.Sprintf("/b%d.jpg", i),
			Width:    1280, Height: 720,
		})
	}
	images := tmdb.ImagesResponse{
		Backdrops: backdrops,
		Posters:   []tmdb.ImageInfo{{FilePath: "/p.jpg", Width: 500, Height: 750, AspectRatio: 0.667}},
		Logos:     []tmdb.ImageInfo{{FilePath: ""}},
	}

	rows := FromTMDBImages(7, images)

	var byType = map[string]int{}
	for _, r := range rows {
		byType[r.Type]++
	}
	assert.Equal(t, models.ImagesPerTypeCap, byType[models.ImageTypeBackdrop])
	assert.Equal(t, 1, byType[models.ImageTypePoster])
	assert.Zero(t, byType[models.ImageTypeLogo], "pathless images are dropped")

	// ratio computed from dimensions when upstream omits it
	assert.InDelta(t, 1280.0/720.0, rows[0].AspectRatio, 0.001)
	// upstream ratio kept when present
	last := rows[len(rows)-1]
	assert.Equal(t, models.ImageTypePoster, last.Type)
	assert.InDelta(t, 0.667, last.AspectRatio, 0.001)
}

func TestFromTMDBSeasons(t *testing.T) {
	seasons := []tmdb.SeasonSummary{
		{ID: 100, SeasonNumber: 1, Name: "Season 1", EpisodeCount: 16},
		{ID: 0, SeasonNumber: 2, Name: "placeholder"},
	}

	rows := FromTMDBSeasons(7, seasons)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(100), rows[0].TMDBSeasonID)
	require.NotNil(t, rows[0].EpisodeCount)
	assert.Equal(t, 16, *rows[0].EpisodeCount)
}

func strPtr(s string) *string { return &s }
