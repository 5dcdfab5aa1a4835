package mapper

import "github.com/wallfeed/wall-service/internal/domain/models"

func EventsToIds(events []models.Event) []string {
	length := len(events)
	res := make([]string, length)

	for i := 0; i < length; i++ {
		res[i] = events[i].Id
	}

	return res
}
