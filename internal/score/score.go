package score

import (
	"math"
	"strings"
	"time"

	"greenpantry/internal/models"
)

// Score bounds and cold-start values
const (
	BaseScore = 300
	MinScore  = 300
	MaxScore  = 1000

	ColdStartScore = 350
	ColdStartBadge = "Eco-Starter"

	// Sub-score tuning
	highImpactPenalty   = 25
	financialCap        = 100
	consistencyCap      = 75
	consistencyPerDay   = 5
	streakCap           = 30
	streakPerDay        = 2
	minHistoryForScore  = 3
	pantryProMinItems   = 10
	pantryProMinUseRate = 0.95
	streakKeeperMin     = 20
)

// Badge tier thresholds on the final score
const (
	badgeLegend   = 850
	badgeChampion = 700
	badgeNovice   = 500
)

// High-impact waste keywords; incidents containing these items carry the
// behavioral penalty. A content list, not a taxonomy.
var highImpactKeywords = []string{
	"chicken", "pork", "beef", "meat", "turkey", "duck", "lamb", "poultry",
}

// Compute derives the composite Green Score from the raw event history.
// With fewer than three archived items and three waste events it returns a
// fixed starter snapshot rather than a volatile, misleadingly precise score.
// The result is always clamped to [300, 1000].
func Compute(wasteEvents []models.WasteEvent, archivedItems []models.InventoryItem, savingsEvents []models.SavingsEvent, now time.Time) models.GreenScoreSnapshot {
	if len(archivedItems) < minHistoryForScore && len(wasteEvents) < minHistoryForScore {
		return models.GreenScoreSnapshot{
			GeneratedAt: now,
			Score:       ColdStartScore,
			Badges:      []string{ColdStartBadge},
		}
	}

	behavioral, useRate := behavioralScore(wasteEvents, archivedItems)
	financial := financialScore(wasteEvents, savingsEvents)
	engagement, streakPoints := engagementScore(wasteEvents, now)

	total := BaseScore + behavioral + financial + engagement
	if total < MinScore {
		total = MinScore
	}
	if total > MaxScore {
		total = MaxScore
	}

	return models.GreenScoreSnapshot{
		GeneratedAt: now,
		Score:       total,
		Behavioral:  behavioral,
		Financial:   financial,
		Engagement:  engagement,
		Badges:      badges(total, useRate, len(archivedItems), streakPoints),
	}
}

// behavioralScore rewards the global use rate and penalizes waste incidents
// containing high-impact items, floored at zero.
func behavioralScore(wasteEvents []models.WasteEvent, archivedItems []models.InventoryItem) (int, float64) {
	var usedCount, wastedCount int
	for _, item := range archivedItems {
		switch item.State {
		case models.StateUsed:
			usedCount++
		case models.StateWasted:
			wastedCount++
		}
	}
	useRate := 1.0
	if usedCount+wastedCount > 0 {
		useRate = float64(usedCount) / float64(usedCount+wastedCount)
	}

	points := int(math.Round(useRate * 300))
	for _, event := range wasteEvents {
		if hasHighImpactItem(event) {
			points -= highImpactPenalty
		}
	}
	if points < 0 {
		points = 0
	}
	return points, useRate
}

func hasHighImpactItem(event models.WasteEvent) bool {
	for _, item := range event.Items {
		name := strings.ToLower(item.Name)
		for _, keyword := range highImpactKeywords {
			if strings.Contains(name, keyword) {
				return true
			}
		}
	}
	return false
}

// financialScore converts the savings-to-waste ratio into up to 100 points.
// With no recorded waste the ratio counts as 1.
func financialScore(wasteEvents []models.WasteEvent, savingsEvents []models.SavingsEvent) int {
	var totalWaste, totalSavings float64
	for _, event := range wasteEvents {
		totalWaste += event.TotalValue
	}
	for _, event := range savingsEvents {
		totalSavings += event.Amount
	}

	ratio := 1.0
	if totalWaste > 0 {
		ratio = totalSavings / totalWaste
	}
	points := int(math.Round(ratio * 100))
	if points > financialCap {
		points = financialCap
	}
	return points
}

// engagementScore rewards logging consistency and the current no-waste
// streak. Returns the streak points separately for badge derivation.
func engagementScore(wasteEvents []models.WasteEvent, now time.Time) (int, int) {
	days := make(map[string]bool)
	var lastWaste time.Time
	for _, event := range wasteEvents {
		days[event.Timestamp.Format("2006-01-02")] = true
		if event.Timestamp.After(lastWaste) {
			lastWaste = event.Timestamp
		}
	}

	consistencyPoints := len(days) * consistencyPerDay
	if consistencyPoints > consistencyCap {
		consistencyPoints = consistencyCap
	}

	streakPoints := streakCap
	if !lastWaste.IsZero() {
		daysSince := int(now.Sub(lastWaste).Hours() / 24)
		if daysSince < 0 {
			daysSince = 0
		}
		streakPoints = daysSince * streakPerDay
		if streakPoints > streakCap {
			streakPoints = streakCap
		}
	}

	return consistencyPoints + streakPoints, streakPoints
}

// badges returns every badge the history qualifies for, tiers and
// achievements alike.
func badges(total int, useRate float64, archivedCount, streakPoints int) []string {
	var earned []string
	if total >= badgeLegend {
		earned = append(earned, "Legend")
	}
	if total >= badgeChampion {
		earned = append(earned, "Champion")
	}
	if total >= badgeNovice {
		earned = append(earned, "Novice")
	}
	if useRate >= pantryProMinUseRate && archivedCount > pantryProMinItems {
		earned = append(earned, "Pantry Pro")
	}
	if streakPoints >= streakKeeperMin {
		earned = append(earned, "Streak Keeper")
	}
	return earned
}
