package api

import (
	"errors"
	"net/http"
	"time"

	"greenpantry/internal/analytics"
	"greenpantry/internal/database"
	"greenpantry/internal/deduction"
	"greenpantry/internal/models"
	"greenpantry/internal/monitoring"
	"greenpantry/internal/savings"
	"greenpantry/internal/score"

	"github.com/gin-gonic/gin"
)

// PantryAPI represents the main API handler for the pantry tracker
type PantryAPI struct {
	Router  *gin.Engine
	Store   *database.Store
	Metrics *monitoring.Collector
	Monitor *monitoring.Monitor
}

// NewPantryAPI creates a new pantry API instance
func NewPantryAPI(store *database.Store, metrics *monitoring.Collector, monitor *monitoring.Monitor, jwtSecret string) *PantryAPI {
	router := gin.Default()

	api := &PantryAPI{
		Router:  router,
		Store:   store,
		Metrics: metrics,
		Monitor: monitor,
	}

	api.setupRoutes(jwtSecret)
	return api
}

// setupRoutes configures all API endpoints
func (p *PantryAPI) setupRoutes(jwtSecret string) {
	// Health check and operational counters
	p.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "GreenPantry API is running"})
	})
	p.Router.GET("/status", p.GetStatus)

	v1 := p.Router.Group("/api/v1")
	v1.Use(AuthMiddleware(jwtSecret))
	{
		// Inventory management
		v1.GET("/inventory", p.GetInventory)
		v1.POST("/inventory", p.AddInventoryItem)
		v1.POST("/inventory/:id/consume", p.ConsumeItem)
		v1.POST("/inventory/:id/waste", p.WasteItem)

		// Waste logging
		v1.GET("/waste", p.GetWasteEvents)
		v1.POST("/waste", p.RecordWasteEvent)

		// Savings attribution
		v1.GET("/savings", p.GetSavingsEvents)
		v1.POST("/savings/recipe", p.RecipeCooked)
		v1.POST("/savings/weekly-bonus", p.ClaimWeeklyBonus)

		// Derived snapshots
		v1.GET("/analytics", p.GetAnalytics)
		v1.GET("/score", p.GetGreenScore)

		// Recipe deduction
		v1.POST("/recipes/deduct", p.DeductIngredients)
	}
}

// GetStatus reports the in-process operational counters: per-kind snapshot
// computations, per-user activity, and uptime.
func (p *PantryAPI) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, p.Monitor.GetMetrics())
}

// Inventory management handlers

func (p *PantryAPI) GetInventory(c *gin.Context) {
	items, err := p.Store.LiveItems(userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (p *PantryAPI) AddInventoryItem(c *gin.Context) {
	var item models.InventoryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := p.Store.AddItem(userID(c), item)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// ConsumeItem archives a live item as used and runs avoided-expiry
// attribution for it. Attribution that emits nothing is still a success;
// the action just earned no savings.
func (p *PantryAPI) ConsumeItem(c *gin.Context) {
	var req struct {
		UsageEfficiency float64 `json:"usage_efficiency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UsageEfficiency == 0 {
		req.UsageEfficiency = 1.0
	}

	user := userID(c)
	itemID := c.Param("id")
	now := time.Now()

	item, err := p.Store.GetItem(user, itemID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	if err := p.Store.MarkItemUsed(user, itemID, now); err != nil {
		if errors.Is(err, database.ErrAlreadyArchived) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	event, err := p.attributeAvoidedExpiry(user, item, req.UsageEfficiency, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if event == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Item consumed, no savings attributed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item consumed", "savings": event})
}

func (p *PantryAPI) WasteItem(c *gin.Context) {
	if err := p.Store.MarkItemWasted(userID(c), c.Param("id"), time.Now()); err != nil {
		if errors.Is(err, database.ErrAlreadyArchived) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item marked as wasted"})
}

// Waste logging handlers

func (p *PantryAPI) GetWasteEvents(c *gin.Context) {
	events, err := p.Store.ListWasteEvents(userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, events)
}

func (p *PantryAPI) RecordWasteEvent(c *gin.Context) {
	var event models.WasteEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := p.Store.RecordWasteEvent(userID(c), event)
	if err != nil {
		if errors.Is(err, database.ErrInconsistentTotals) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// Savings attribution handlers

func (p *PantryAPI) GetSavingsEvents(c *gin.Context) {
	events, err := p.Store.ListSavingsEvents(userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, events)
}

func (p *PantryAPI) RecipeCooked(c *gin.Context) {
	var recipe models.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := savings.RecipeFollowedSavings(recipe, time.Now())
	if event == nil {
		p.Metrics.RecordSkippedAttribution(models.SavingsRecipeFollowed)
		c.JSON(http.StatusOK, gin.H{"message": "No savings attributed for this recipe"})
		return
	}

	id, err := p.Store.AppendSavingsEvent(userID(c), *event)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	event.ID = id
	p.Metrics.RecordSavingsEvent(event)
	c.JSON(http.StatusCreated, event)
}

// ClaimWeeklyBonus compares this week's waste against last week's and
// appends a reduction bonus. The store's weekly claim guard makes the call
// idempotent per ISO week.
func (p *PantryAPI) ClaimWeeklyBonus(c *gin.Context) {
	user := userID(c)
	now := time.Now()

	wasteEvents, err := p.Store.ListWasteEvents(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var thisWeek, lastWeek float64
	weekStart := now.AddDate(0, 0, -7)
	lastWeekStart := now.AddDate(0, 0, -14)
	for _, event := range wasteEvents {
		switch {
		case !event.Timestamp.Before(weekStart) && event.Timestamp.Before(now):
			thisWeek += event.TotalValue
		case !event.Timestamp.Before(lastWeekStart) && event.Timestamp.Before(weekStart):
			lastWeek += event.TotalValue
		}
	}

	event := savings.WeeklyReductionBonus(thisWeek, lastWeek, savings.WeekID(now), now)
	if event == nil {
		p.Metrics.RecordSkippedAttribution(models.SavingsWeeklyBonus)
		c.JSON(http.StatusOK, gin.H{"message": "No reduction this week, no bonus"})
		return
	}

	id, err := p.Store.AppendSavingsEvent(user, *event)
	if err != nil {
		if errors.Is(err, database.ErrWeeklyBonusClaimed) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	event.ID = id
	p.Metrics.RecordSavingsEvent(event)
	c.JSON(http.StatusCreated, event)
}

// Snapshot handlers

func (p *PantryAPI) GetAnalytics(c *gin.Context) {
	user := userID(c)
	started := time.Now()

	snapshot, err := p.computeAnalytics(user, started)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	p.Metrics.RecordAnalytics(user, snapshot)
	p.Monitor.RecordSnapshot(user, "analytics", time.Since(started))
	c.JSON(http.StatusOK, snapshot)
}

func (p *PantryAPI) GetGreenScore(c *gin.Context) {
	user := userID(c)
	started := time.Now()

	wasteEvents, err := p.Store.ListWasteEvents(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	archived, err := p.Store.ArchivedItems(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	savingsEvents, err := p.Store.ListSavingsEvents(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	snapshot := score.Compute(wasteEvents, archived, savingsEvents, started)
	p.Metrics.RecordGreenScore(user, snapshot)
	p.Monitor.RecordSnapshot(user, "score", time.Since(started))
	c.JSON(http.StatusOK, snapshot)
}

// Recipe deduction handler

// DeductIngredients decrements pantry quantities for a recipe's owned
// ingredients and attributes avoided-expiry savings for items it fully
// drained.
func (p *PantryAPI) DeductIngredients(c *gin.Context) {
	var req struct {
		Ingredients []models.Ingredient `json:"ingredients"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := userID(c)
	now := time.Now()

	liveItems, err := p.Store.LiveItems(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	pointers := make([]*models.InventoryItem, len(liveItems))
	for i := range liveItems {
		pointers[i] = &liveItems[i]
	}

	result := deduction.Deduct(req.Ingredients, pointers, now)

	var attributed []*models.SavingsEvent
	for _, item := range result.Deducted {
		if item.State == models.StateUsed {
			// Persist the drained quantity before archiving so the record
			// does not keep its pre-deduction amount
			if err := p.Store.SetInventoryQuantity(user, item.ID, item.Quantity); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if err := p.Store.MarkItemUsed(user, item.ID, now); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			event, err := p.attributeAvoidedExpiry(user, *item, 1.0, now)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if event != nil {
				attributed = append(attributed, event)
			}
			continue
		}
		if err := p.Store.SetInventoryQuantity(user, item.ID, item.Quantity); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"deducted": result.Deducted,
		"missing":  result.Missing,
		"savings":  attributed,
	})
}

// Private helper methods

// attributeAvoidedExpiry runs the avoided-expiry engine with the user's
// historical waste rate and persists any emitted event.
func (p *PantryAPI) attributeAvoidedExpiry(user string, item models.InventoryItem, usageEfficiency float64, now time.Time) (*models.SavingsEvent, error) {
	archived, err := p.Store.ArchivedItems(user)
	if err != nil {
		return nil, err
	}
	logCount, err := p.Store.WasteLogCount(user)
	if err != nil {
		return nil, err
	}

	event, err := savings.AvoidedExpirySavings(item, usageEfficiency, historicalWasteRate(archived), logCount, now)
	if err != nil {
		return nil, err
	}
	if event == nil {
		p.Metrics.RecordSkippedAttribution(models.SavingsAvoidedExpiry)
		return nil, nil
	}

	id, err := p.Store.AppendSavingsEvent(user, *event)
	if err != nil {
		return nil, err
	}
	event.ID = id
	p.Metrics.RecordSavingsEvent(event)
	return event, nil
}

// historicalWasteRate derives the user's waste probability from archived
// item outcomes. Zero history yields zero; the engine substitutes its
// cold-start prior in that case.
func historicalWasteRate(archived []models.InventoryItem) float64 {
	var used, wasted int
	for _, item := range archived {
		switch item.State {
		case models.StateUsed:
			used++
		case models.StateWasted:
			wasted++
		}
	}
	if used+wasted == 0 {
		return 0
	}
	return float64(wasted) / float64(used+wasted)
}

// computeAnalytics loads the user's collections and aggregates a snapshot.
func (p *PantryAPI) computeAnalytics(user string, now time.Time) (models.AnalyticsSnapshot, error) {
	wasteEvents, err := p.Store.ListWasteEvents(user)
	if err != nil {
		return models.AnalyticsSnapshot{}, err
	}
	liveItems, err := p.Store.LiveItems(user)
	if err != nil {
		return models.AnalyticsSnapshot{}, err
	}
	archived, err := p.Store.ArchivedItems(user)
	if err != nil {
		return models.AnalyticsSnapshot{}, err
	}
	savingsEvents, err := p.Store.ListSavingsEvents(user)
	if err != nil {
		return models.AnalyticsSnapshot{}, err
	}
	return analytics.Aggregate(wasteEvents, liveItems, archived, savingsEvents, now), nil
}
