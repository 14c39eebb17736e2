package ws

import (
	"encoding/json"
	"time"

	"jobscout/internal/domain/scrape"
)

// SessionEvent is the frame pushed to match-feed clients when a scraping
// session completes.
type SessionEvent struct {
	Type       string   `json:"type"`
	SessionID  string   `json:"session_id"`
	FocusAreas []string `json:"focus_areas"`
	TotalFound int      `json:"total_found"`
	TotalSaved int      `json:"total_saved"`
	Success    bool     `json:"success"`
	Timestamp  string   `json:"timestamp"`
}

// SessionNotifier adapts the hub to the coordinator's notification hook.
type SessionNotifier struct {
	hub *Hub
}

func NewSessionNotifier(hub *Hub) *SessionNotifier {
	return &SessionNotifier{hub: hub}
}

func (n *SessionNotifier) SessionCompleted(s scrape.Session) {
	if n == nil || n.hub == nil {
		return
	}
	evt := SessionEvent{
		Type:       "session_completed",
		SessionID:  s.ID,
		FocusAreas: s.FocusAreas,
		TotalFound: s.TotalFound,
		TotalSaved: s.TotalSaved,
		Success:    s.Success,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	n.hub.Broadcast(b)
}

// MatchEvent is the frame pushed when a fresh ranking run yields matches at
// or above the high-score threshold.
type MatchEvent struct {
	Type        string  `json:"type"`
	HighMatches int     `json:"high_matches"`
	TopScore    float64 `json:"top_score"`
	Timestamp   string  `json:"timestamp"`
}

func (n *SessionNotifier) HighMatches(count int, topScore float64) {
	if n == nil || n.hub == nil || count == 0 {
		return
	}
	evt := MatchEvent{
		Type:        "high_matches",
		HighMatches: count,
		TopScore:    topScore,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	n.hub.Broadcast(b)
}
