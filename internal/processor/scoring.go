package processor

import (
	"strings"
	"time"

	"github.com/davidbz/searchmesh/internal/domain"
)

const (
	baseWeight = 0.6

	clientMatchBonus = 0.10
	assigneeBonus    = 0.05
	longContentBonus = 0.05
	statusBonus      = 0.05
	maxContextBonus  = 0.20

	missingTitlePenalty   = 0.05
	missingContentPenalty = 0.10
	shortContentPenalty   = 0.05

	longContentRunes  = 100
	shortContentRunes = 20
)

// freshnessSteps maps a maximum age in days to its bonus, youngest first.
var freshnessSteps = []struct {
	maxDays float64
	bonus   float64
}{
	{maxDays: 7, bonus: 0.20},
	{maxDays: 30, bonus: 0.15},
	{maxDays: 90, bonus: 0.10},
	{maxDays: 180, bonus: 0.05},
}

// ScoringContext carries request-level signals used by CompositeScore.
type ScoringContext struct {
	// ClientID is the requester's client or tenant identifier, if any.
	ClientID string
	// Now anchors freshness; zero means time.Now.
	Now time.Time
}

// CompositeScore blends the base similarity score with freshness and context signals:
// 0.6*base + freshness + context bonus - penalties, clamped to [0, 1].
func CompositeScore(r domain.SearchResult, sc ScoringContext) float64 {
	now := sc.Now
	if now.IsZero() {
		now = time.Now()
	}

	score := baseWeight*r.Score +
		FreshnessBonus(r.Payload, now) +
		contextBonus(r.Payload, sc.ClientID) -
		penalties(r.Payload)

	return min(max(score, 0), 1)
}

// FreshnessBonus returns the step bonus for the age of the result's date.
// Undated results get no bonus.
func FreshnessBonus(payload map[string]any, now time.Time) float64 {
	date, ok := ResultDate(payload)
	if !ok {
		return 0
	}

	ageDays := max(now.Sub(date).Hours()/24, 0)
	for _, step := range freshnessSteps {
		if ageDays <= step.maxDays {
			return step.bonus
		}
	}
	return 0
}

func contextBonus(payload map[string]any, clientID string) float64 {
	var bonus float64

	if clientID != "" {
		for _, field := range clientFields {
			if strings.EqualFold(stringify(payload[field]), clientID) {
				bonus += clientMatchBonus
				break
			}
		}
	}
	if hasAny(payload, assigneeFields) {
		bonus += assigneeBonus
	}
	if len([]rune(firstText(payload, contentFields))) > longContentRunes {
		bonus += longContentBonus
	}
	if hasAny(payload, statusFields) {
		bonus += statusBonus
	}

	return min(bonus, maxContextBonus)
}

func penalties(payload map[string]any) float64 {
	var penalty float64

	if !hasAny(payload, titleFields) {
		penalty += missingTitlePenalty
	}

	content := firstText(payload, contentFields)
	switch n := len([]rune(content)); {
	case n == 0:
		penalty += missingContentPenalty
	case n < shortContentRunes:
		penalty += shortContentPenalty
	}

	return penalty
}
