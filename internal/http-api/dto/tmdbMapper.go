package dto

import (
	"strconv"
	"strings"
	"time"

	"dramahub/internal/catalog/tmdb"
	"dramahub/internal/http-api/models"
)

// NormalizeImagePath guarantees a leading slash on TMDB file paths. Empty
// input maps to nil rather than an error: upstream frequently omits artwork.
func NormalizeImagePath(path string) *string {
	if path == "" {
		return nil
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return &path
}

// FromTMDBDetail maps an upstream detail document onto the cached row shape.
// Genre ids are derived from whichever of the two upstream shapes is present.
func FromTMDBDetail(doc tmdb.DramaDetails) models.Drama {
	d := models.Drama{
		TMDBID:           doc.ID,
		Name:             doc.Name,
		OriginalName:     optString(doc.OriginalName),
		Overview:         optString(doc.Overview),
		PosterPath:       NormalizeImagePath(doc.PosterPath),
		BackdropPath:     NormalizeImagePath(doc.BackdropPath),
		FirstAirDate:     optString(doc.FirstAirDate),
		LastAirDate:      optString(doc.LastAirDate),
		Year:             yearFromAirDate(doc.FirstAirDate),
		VoteAverage:      optFloat(doc.VoteAverage),
		VoteCount:        optInt(doc.VoteCount),
		Popularity:       optFloat(doc.Popularity),
		Status:           optString(doc.Status),
		GenreIDs:         genreIDs(doc),
		OriginCountry:    doc.OriginCountry,
		OriginalLanguage: optString(doc.OriginalLanguage),
		Homepage:         optString(doc.Homepage),
		Tagline:          optString(doc.Tagline),
		LastUpdate:       time.Now().UTC(),
	}
	if len(doc.EpisodeRunTime) > 0 {
		d.EpisodeRunTime = optInt(doc.EpisodeRunTime[0])
	}
	if d.OriginCountry == nil {
		d.OriginCountry = []string{}
	}
	return d
}

// genreIDs supports both upstream genre shapes: the object array of detail
// responses and the raw id array of list responses.
func genreIDs(doc tmdb.DramaDetails) []int64 {
	if len(doc.Genres) > 0 {
		ids := make([]int64, 0, len(doc.Genres))
		for _, g := range doc.Genres {
			ids = append(ids, g.ID)
		}
		return ids
	}
	if doc.GenreIDs != nil {
		return doc.GenreIDs
	}
	return []int64{}
}

// FromTMDBCredits maps the credits payload to cast rows, preserving billing
// order.
func FromTMDBCredits(dramaID int64, credits tmdb.CreditsResponse) []models.CastMember {
	rows := make([]models.CastMember, 0, len(credits.Cast))
	for _, c := range credits.Cast {
		if c.Name == "" {
			continue
		}
		rows = append(rows, models.CastMember{
			DramaID:            dramaID,
			PersonID:           c.ID,
			Name:               c.Name,
			Character:          optString(c.Character),
			ProfilePath:        NormalizeImagePath(c.ProfilePath),
			CastOrder:          c.Order,
			KnownForDepartment: optString(c.KnownForDepartment),
		})
	}
	return rows
}

// FromTMDBVideos maps the videos payload to rows, keeping only the allow-listed
// types (trailers and teasers).
func FromTMDBVideos(dramaID int64, videos tmdb.VideosResponse) []models.Video {
	rows := make([]models.Video, 0, len(videos.Results))
	for _, v := range videos.Results {
		if v.Key == "" {
			continue
		}
		if v.Type != models.VideoTypeTrailer && v.Type != models.VideoTypeTeaser {
			continue
		}
		rows = append(rows, models.Video{
			DramaID:     dramaID,
			TMDBVideoID: v.ID,
			Key:         v.Key,
			Site:        v.Site,
			Type:        v.Type,
			Name:        optString(v.Name),
			Size:        optInt(v.Size),
			Official:    v.Official,
			PublishedAt: optString(v.PublishedAt),
		})
	}
	return rows
}

// FromTMDBImages maps the image buckets to flat rows, capping each type and
// computing the aspect ratio when upstream omits it.
func FromTMDBImages(dramaID int64, images tmdb.ImagesResponse) []models.Image {
	var rows []models.Image
	rows = appendImageRows(rows, dramaID, models.ImageTypeBackdrop, images.Backdrops)
	rows = appendImageRows(rows, dramaID, models.ImageTypePoster, images.Posters)
	rows = appendImageRows(rows, dramaID, models.ImageTypeLogo, images.Logos)
	return rows
}

func appendImageRows(rows []models.Image, dramaID int64, imageType string, infos []tmdb.ImageInfo) []models.Image {
	count := 0
	for _, info := range infos {
		if count >= models.ImagesPerTypeCap {
			break
		}
		path := NormalizeImagePath(info.FilePath)
		if path == nil {
			continue
		}
		ratio := info.AspectRatio
		if ratio == 0 && info.Height > 0 {
			ratio = float64(info.Width) / float64(info.Height)
		}
		rows = append(rows, models.Image{
			DramaID:     dramaID,
			FilePath:    *path,
			Type:        imageType,
			Width:       info.Width,
			Height:      info.Height,
			AspectRatio: ratio,
			VoteCount:   info.VoteCount,
			VoteAverage: info.VoteAverage,
			Language:    optString(info.ISO639_1),
		})
		count++
	}
	return rows
}

// FromTMDBSeasons maps inline season summaries to rows. Enrichment of missing
// overviews and episode counts happens before this call; the mapper persists
// whatever fields are available.
func FromTMDBSeasons(dramaID int64, seasons []tmdb.SeasonSummary) []models.Season {
	rows := make([]models.Season, 0, len(seasons))
	for _, s := range seasons {
		if s.ID == 0 {
			continue
		}
		row := models.Season{
			DramaID:      dramaID,
			TMDBSeasonID: s.ID,
			SeasonNumber: s.SeasonNumber,
			Name:         optString(s.Name),
			Overview:     optString(s.Overview),
			PosterPath:   NormalizeImagePath(s.PosterPath),
			AirDate:      optString(s.AirDate),
		}
		if s.EpisodeCount > 0 {
			row.EpisodeCount = optInt(s.EpisodeCount)
		}
		rows = append(rows, row)
	}
	return rows
}

// FromTMDBToBasicResponse maps an upstream list entry straight to the list
// shape, bypassing the cache row entirely.
func FromTMDBToBasicResponse(doc tmdb.DramaDetails) DramaBasicResponse {
	return DramaBasicResponse{
		TMDBID:       doc.ID,
		Name:         doc.Name,
		PosterPath:   NormalizeImagePath(doc.PosterPath),
		BackdropPath: NormalizeImagePath(doc.BackdropPath),
		FirstAirDate: optString(doc.FirstAirDate),
		Year:         yearFromAirDate(doc.FirstAirDate),
		VoteAverage:  optFloat(doc.VoteAverage),
		Popularity:   optFloat(doc.Popularity),
		Overview:     optString(doc.Overview),
	}
}

// FromTMDBToDetailResponse builds the full nested response for locale-bypass
// requests that never touch the cache.
func FromTMDBToDetailResponse(detail tmdb.DramaDetails, credits *tmdb.CreditsResponse, videos *tmdb.VideosResponse, images *tmdb.ImagesResponse) DramaDetailResponse {
	row := FromTMDBDetail(detail)
	if credits != nil {
		row.Cast = FromTMDBCredits(0, *credits)
	}
	if videos != nil {
		row.Videos = FromTMDBVideos(0, *videos)
	}
	if images != nil {
		row.Images = FromTMDBImages(0, *images)
	}
	row.Seasons = FromTMDBSeasons(0, detail.Seasons)
	return FromModelToDetailResponse(row)
}

func yearFromAirDate(airDate string) *int {
	if len(airDate) < 4 {
		return nil
	}
	year, err := strconv.Atoi(airDate[:4])
	if err != nil {
		return nil
	}
	return &year
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optInt(i int) *int {
	if i == 0 {
		return nil
	}
	return &i
}

func optFloat(f float64) *float64 {
	if f == 0 {
		return nil
	}
	return &f
}
