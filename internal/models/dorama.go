package models

import "strings"

// Статусы дорамы в формате приложения.
const (
	DoramaWatching    = "Watching"
	DoramaCompleted   = "Completed"
	DoramaPlanToWatch = "Plan to Watch"
)

// Списки, в которые клиент добавляет дорамы.
const (
	ListWatching  = "watching"
	ListFavorites = "favorites"
	ListCompleted = "completed"
)

// Значения по умолчанию для прогресса просмотра.
const (
	DefaultEpisodesWatched = 1
	DefaultTotalEpisodes   = 16
	DefaultSeason          = 1
	DefaultGenre           = "Dorama"
)

// Dorama элемент списка просмотра клиента.
type Dorama struct {
	ID              string `json:"id"`
	Title           string `json:"title" validate:"required"`
	Genre           string `json:"genre"`
	Thumbnail       string `json:"thumbnail"`
	Status          string `json:"status"`
	EpisodesWatched int    `json:"episodes_watched"`
	TotalEpisodes   int    `json:"total_episodes"`
	Season          int    `json:"season"`
	Rating          int    `json:"rating"`
}

// DoramaLists списки клиента, разложенные по статусу.
type DoramaLists struct {
	Watching  []Dorama `json:"watching"`
	Favorites []Dorama `json:"favorites"`
	Completed []Dorama `json:"completed"`
}

// All возвращает все элементы списков одним срезом.
func (l DoramaLists) All() []Dorama {
	all := make([]Dorama, 0, len(l.Watching)+len(l.Favorites)+len(l.Completed))
	all = append(all, l.Watching...)
	all = append(all, l.Favorites...)
	return append(all, l.Completed...)
}

// Статусы дорамы в хранилище.
const (
	dbWatching    = "watching"
	dbCompleted   = "completed"
	dbPlanToWatch = "plan_to_watch"
)

// StatusFromDB приводит статус из хранилища к формату приложения.
// Неизвестные значения считаются "Plan to Watch".
func StatusFromDB(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case dbWatching, "assistindo":
		return DoramaWatching
	case dbCompleted, "finalizado":
		return DoramaCompleted
	default:
		return DoramaPlanToWatch
	}
}

// StatusToDB приводит статус приложения к значению хранилища.
func StatusToDB(status string) string {
	switch status {
	case DoramaWatching:
		return dbWatching
	case DoramaCompleted:
		return dbCompleted
	default:
		return dbPlanToWatch
	}
}

// StatusForList возвращает статус приложения для списка клиента.
func StatusForList(list string) string {
	switch list {
	case ListWatching:
		return DoramaWatching
	case ListCompleted:
		return DoramaCompleted
	default:
		return DoramaPlanToWatch
	}
}

// Group раскладывает элементы по спискам согласно статусу.
func Group(items []Dorama) DoramaLists {
	lists := DoramaLists{Watching: []Dorama{}, Favorites: []Dorama{}, Completed: []Dorama{}}
	for _, d := range items {
		switch d.Status {
		case DoramaWatching:
			lists.Watching = append(lists.Watching, d)
		case DoramaCompleted:
			lists.Completed = append(lists.Completed, d)
		default:
			lists.Favorites = append(lists.Favorites, d)
		}
	}
	return lists
}

// WithDefaults заполняет незаданные поля прогресса значениями по умолчанию.
func (d Dorama) WithDefaults() Dorama {
	if d.Genre == "" {
		d.Genre = DefaultGenre
	}
	if d.EpisodesWatched <= 0 {
		d.EpisodesWatched = DefaultEpisodesWatched
	}
	if d.TotalEpisodes <= 0 {
		d.TotalEpisodes = DefaultTotalEpisodes
	}
	if d.Season <= 0 {
		d.Season = DefaultSeason
	}
	return d
}
