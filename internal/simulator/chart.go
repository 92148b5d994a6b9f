package simulator

import models "github.com/RoGogDBD/social-pulse/internal/model"

// Engagement объединяет истории лайков и комментариев по индексу.
//
// Метка времени берётся из истории лайков; если комментариев меньше,
// недостающие значения равны нулю. Длина результата равна длине likes.
func Engagement(likes, comments []models.HistoryPoint) []models.EngagementPoint {
	out := make([]models.EngagementPoint, len(likes))
	for i, p := range likes {
		out[i] = models.EngagementPoint{Time: p.Time, Likes: p.Value}
		if i < len(comments) {
			out[i].Comments = comments[i].Value
		}
	}
	return out
}
