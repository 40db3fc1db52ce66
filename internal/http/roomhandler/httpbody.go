package roomhandler

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse

type ListRoundsQuery struct {
	Limit int `form:"limit,default=20" binding:"gte=0,lte=100"`
} // @name ListRoundsQuery

type BuzzEntryResponse struct {
	Name string `json:"name" example:"Bob"`
} // @name BuzzEntry

type RoundResponse struct {
	RoomCode  string              `json:"roomCode"  example:"AB12CD"`
	Round     int                 `json:"round"     example:"3"`
	BuzzOrder []BuzzEntryResponse `json:"buzzOrder"`
	ClosedAt  time.Time           `json:"closedAt"  example:"2025-07-27T16:05:05Z"`
} // @name Round
