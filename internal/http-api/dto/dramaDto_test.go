package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dramahub/internal/http-api/models"
)

func TestFromModelToDetailResponse(t *testing.T) {
	overview := "synopsis"
	character := "Yoon Se-ri"
	now := time.Now().UTC()

	d := models.Drama{
		ID:            3,
		TMDBID:        94796,
		Name:          "Crash Landing on You",
		Overview:      &overview,
		GenreIDs:      []int64{18},
		OriginCountry: []string{"KR"},
		LastUpdate:    now,
		Cast: []models.CastMember{
			{PersonID: 1, Name: "Son Ye-jin", Character: &character, CastOrder: 0},
		},
		Videos: []models.Video{
			{TMDBVideoID: "v1", Key: "abc", Site: "YouTube", Type: models.VideoTypeTrailer, Official: true},
		},
		Images: []models.Image{
			{FilePath: "/b.jpg", Type: models.ImageTypeBackdrop},
			{FilePath: "/p.jpg", Type: models.ImageTypePoster},
			{FilePath: "/l.png", Type: models.ImageTypeLogo},
			{FilePath: "/junk.jpg", Type: "still"},
		},
		Seasons: []models.Season{
			{TMDBSeasonID: 100, SeasonNumber: 1},
		},
	}

	resp := FromModelToDetailResponse(d)

	assert.Equal(t, int64(94796), resp.TMDBID)
	assert.Equal(t, now, resp.LastUpdate)

	require.Len(t, resp.Cast, 1)
	assert.Equal(t, "Son Ye-jin", resp.Cast[0].Name)
	assert.Equal(t, 0, resp.Cast[0].Order)

	require.Len(t, resp.Videos.Results, 1)
	assert.Equal(t, "abc", resp.Videos.Results[0].Key)
	assert.True(t, resp.Videos.Results[0].Official)

	assert.Len(t, resp.Images.Backdrops, 1)
	assert.Len(t, resp.Images.Posters, 1)
	assert.Len(t, resp.Images.Logos, 1)

	require.Len(t, resp.Seasons, 1)
	assert.Equal(t, int64(100), resp.Seasons[0].TMDBSeasonID)
}

func TestFromModelToDetailResponseEmptyCollections(t *testing.T) {
	resp := FromModelToDetailResponse(models.Drama{ID: 1, TMDBID: 2, Name: "bare"})

	// collections must serialize as [] / {} rather than null
	assert.NotNil(t, resp.Cast)
	assert.NotNil(t, resp.Videos.Results)
	assert.NotNil(t, resp.Images.Backdrops)
	assert.NotNil(t, resp.Images.Posters)
	assert.NotNil(t, resp.Images.Logos)
	assert.NotNil(t, resp.Seasons)
	assert.NotNil(t, resp.GenreIDs)
	assert.NotNil(t, resp.OriginCountry)
}

func TestFromModelToBasicResponse(t *testing.T) {
	year := 2019
	d := models.Drama{ID: 3, TMDBID: 94796, Name: "Crash Landing on You", Year: &year}

	basic := FromModelToBasicResponse(d)
	assert.Equal(t, int64(3), basic.ID)
	assert.Equal(t, int64(94796), basic.TMDBID)
	require.NotNil(t, basic.Year)
	assert.Equal(t, 2019, *basic.Year)
}
