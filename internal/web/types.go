package web

type RoomRow struct {
	Code    string
	Status  string
	Players int
	Active  int
	Round   int
}
