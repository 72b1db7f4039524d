package entity

import "context"

type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

type HourCount struct {
	Hour  int `json:"hour"` // 0-23
	Count int `json:"count"`
}

// AnalyticsReport son las métricas cuantitativas de un cliente/canal.
type AnalyticsReport struct {
	TotalConversations         int        `json:"totalConversations"`
	TotalMessages              int        `json:"totalMessages"`
	AvgMessagesPerConversation float64    `json:"avgMessagesPerConversation"`
	AvgResponseTimeMs          int        `json:"avgResponseTimeMs"`
	PeakHour                   int        `json:"peakHour"`
	ConversationsPerDay        []DayCount `json:"conversationsPerDay"`
	MessagesByHour             []HourCount `json:"messagesByHour"`
	GlobalTotalResponses       int        `json:"globalTotalResponses"`
}

type Topic struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Sentiment struct {
	Positive int    `json:"positive"`
	Neutral  int    `json:"neutral"`
	Negative int    `json:"negative"`
	Trend    string `json:"trend"` // positive | neutral | negative
}

// QualitativeReport is produced offline by the analysis pipeline; this
// repository only reads the latest stored snapshot.
type QualitativeReport struct {
	MainTopics        []Topic   `json:"mainTopics"`
	ActionSuggestions []string  `json:"actionSuggestions"`
	SentimentAnalysis Sentiment `json:"sentimentAnalysis"`
}

type AnalyticsRepository interface {
	Quantitative(ctx context.Context, clientID, channel string, days int) (*AnalyticsReport, error)
	Qualitative(ctx context.Context, clientID, channel string) (*QualitativeReport, error)
}
