package crm

import (
	"time"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
)

// ComputeAnalytics agrega las conversaciones del periodo en el informe
// cuantitativo del panel. Recibe las conversaciones ya acotadas a los
// últimos `days` días; aquí solo se cuenta.
func ComputeAnalytics(convs []entity.Conversation, days int, now time.Time) *entity.AnalyticsReport {
	if days <= 0 {
		days = 7
	}

	report := &entity.AnalyticsReport{
		TotalConversations:  len(convs),
		ConversationsPerDay: make([]entity.DayCount, days),
		MessagesByHour:      make([]entity.HourCount, 24),
	}

	// los buckets por día van del más antiguo al de hoy
	dayIndex := map[string]int{}
	for i := 0; i < days; i++ {
		date := now.AddDate(0, 0, i-days+1).Format("2006-01-02")
		report.ConversationsPerDay[i] = entity.DayCount{Date: date}
		dayIndex[date] = i
	}
	for h := 0; h < 24; h++ {
		report.MessagesByHour[h] = entity.HourCount{Hour: h}
	}

	var responseTotal time.Duration
	var responseCount int

	for _, conv := range convs {
		if i, ok := dayIndex[conv.StartedAt.Format("2006-01-02")]; ok {
			report.ConversationsPerDay[i].Count++
		}

		var lastUserAt time.Time
		for _, msg := range conv.Messages {
			report.TotalMessages++
			report.MessagesByHour[msg.Timestamp.Hour()].Count++

			switch msg.Role {
			case entity.RoleUser:
				lastUserAt = msg.Timestamp
			case entity.RoleAssistant:
				report.GlobalTotalResponses++
				if !lastUserAt.IsZero() && msg.Timestamp.After(lastUserAt) {
					responseTotal += msg.Timestamp.Sub(lastUserAt)
					responseCount++
					lastUserAt = time.Time{}
				}
			}
		}
	}

	if report.TotalConversations > 0 {
		report.AvgMessagesPerConversation = float64(report.TotalMessages) / float64(report.TotalConversations)
	}
	if responseCount > 0 {
		report.AvgResponseTimeMs = int(responseTotal.Milliseconds() / int64(responseCount))
	}

	peak := 0
	for h, bucket := range report.MessagesByHour {
		if bucket.Count > report.MessagesByHour[peak].Count {
			peak = h
		}
	}
	report.PeakHour = peak

	return report
}
