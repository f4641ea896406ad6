package tmdb

// TMDB API response types

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DramaDetails is the /tv/{id} detail response. Genre information arrives
// either as genre objects (detail endpoint) or a raw id array (list
// endpoints); both fields are kept so the mapper can handle either shape.
type DramaDetails struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	OriginalName     string          `json:"original_name"`
	Overview         string          `json:"overview"`
	Tagline          string          `json:"tagline"`
	Homepage         string          `json:"homepage"`
	Status           string          `json:"status"`
	FirstAirDate     string          `json:"first_air_date"`
	LastAirDate      string          `json:"last_air_date"`
	VoteAverage      float64         `json:"vote_average"`
	VoteCount        int             `json:"vote_count"`
	Popularity       float64         `json:"popularity"`
	Genres           []Genre         `json:"genres,omitempty"`
	GenreIDs         []int64         `json:"genre_ids,omitempty"`
	OriginCountry    []string        `json:"origin_country"`
	EpisodeRunTime   []int           `json:"episode_run_time"`
	OriginalLanguage string          `json:"original_language"`
	PosterPath       string          `json:"poster_path"`
	BackdropPath     string          `json:"backdrop_path"`
	NumberOfSeasons  int             `json:"number_of_seasons"`
	NumberOfEpisodes int             `json:"number_of_episodes"`
	Seasons          []SeasonSummary `json:"seasons,omitempty"`
}

// SeasonSummary is the inline season entry of a detail response. Overview and
// episode count are often missing here and get backfilled from the season
// detail endpoint.
type SeasonSummary struct {
	ID           int64  `json:"id"`
	SeasonNumber int    `json:"season_number"`
	Name         string `json:"name"`
	Overview     string `json:"overview"`
	PosterPath   string `json:"poster_path"`
	AirDate      string `json:"air_date"`
	EpisodeCount int    `json:"episode_count"`
}

// SeasonDetails is the /tv/{id}/season/{n} response.
type SeasonDetails struct {
	ID           int64            `json:"id"`
	SeasonNumber int              `json:"season_number"`
	Name         string           `json:"name"`
	Overview     string           `json:"overview"`
	PosterPath   string           `json:"poster_path"`
	AirDate      string           `json:"air_date"`
	Episodes     []EpisodeSummary `json:"episodes"`
}

type EpisodeSummary struct {
	ID            int64  `json:"id"`
	EpisodeNumber int    `json:"episode_number"`
	Name          string `json:"name"`
	AirDate       string `json:"air_date"`
}

// CreditsResponse is the /tv/{id}/credits response.
type CreditsResponse struct {
	ID   int64        `json:"id"`
	Cast []CastCredit `json:"cast"`
}

type CastCredit struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Character          string `json:"character"`
	ProfilePath        string `json:"profile_path"`
	Order              int    `json:"order"`
	KnownForDepartment string `json:"known_for_department"`
}

// VideosResponse is the /tv/{id}/videos response.
type VideosResponse struct {
	ID      int64         `json:"id"`
	Results []VideoResult `json:"results"`
}

type VideoResult struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Site        string `json:"site"`
	Size        int    `json:"size"`
	Type        string `json:"type"`
	Official    bool   `json:"official"`
	PublishedAt string `json:"published_at"`
}

// ImagesResponse is the /tv/{id}/images response.
type ImagesResponse struct {
	ID        int64       `json:"id"`
	Backdrops []ImageInfo `json:"backdrops"`
	Posters   []ImageInfo `json:"posters"`
	Logos     []ImageInfo `json:"logos"`
}

type ImageInfo struct {
	FilePath    string  `json:"file_path"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	ISO639_1    string  `json:"iso_639_1,omitempty"`
}

// PagedResults is the shared shape of /search/tv, /tv/popular and
// /trending/tv responses.
type PagedResults struct {
	Page         int            `json:"page"`
	Results      []DramaDetails `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// WatchProvidersResponse is the /tv/{id}/watch/providers response, keyed by
// country code.
type WatchProvidersResponse struct {
	ID      int64                       `json:"id"`
	Results map[string]CountryProviders `json:"results"`
}

type CountryProviders struct {
	Link     string     `json:"link"`
	Flatrate []Provider `json:"flatrate,omitempty"`
	Rent     []Provider `json:"rent,omitempty"`
	Buy      []Provider `json:"buy,omitempty"`
}

type Provider struct {
	ProviderID      int64  `json:"provider_id"`
	ProviderName    string `json:"provider_name"`
	LogoPath        string `json:"logo_path"`
	DisplayPriority int    `json:"display_priority"`
}
