package models

import (
	"time"

	"github.com/google/uuid"
)

// WatchStatus — статус просмотра фильма.
type WatchStatus string

const (
	WatchStatusNotWatched WatchStatus = "Not Watched"
	WatchStatusWatching   WatchStatus = "Watching"
	WatchStatusWatched    WatchStatus = "Watched"
)

// Valid сообщает, входит ли значение в допустимое множество статусов.
func (ws WatchStatus) Valid() bool {
	switch ws {
	case WatchStatusNotWatched, WatchStatusWatching, WatchStatusWatched:
		return true
	default:
		return false
	}
}

// Movie — запись о фильме в личном трекере.
//
// Важно:
//   - OwnerID назначается из аутентифицированного актора при создании
//     и после этого неизменяем; клиентский ввод на него не влияет.
//   - Rating хранится в БД как NUMERIC(3,2): диапазон 0.00..9.99,
//     не более двух знаков после запятой.
//   - PosterKey/PosterURL — ключ и публичная ссылка постера в объектном
//     хранилище; пустые строки, если постер не загружен.
//   - CreatedAt выставляется один раз и не обновляется.
type Movie struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Title       string
	Description string
	ReleaseYear int32
	Rating      float64
	Favorite    bool
	WatchStatus WatchStatus
	PosterKey   string
	PosterURL   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
