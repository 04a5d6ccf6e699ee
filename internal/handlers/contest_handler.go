package handlers

import (
	"net/http"
	"strconv"

	"trading-contests/internal/auth"
	"trading-contests/internal/models"
	"trading-contests/internal/repository"
	"trading-contests/internal/services"

	"github.com/gin-gonic/gin"
)

type ContestHandler struct {
	contestService *services.ContestService
	repo           *repository.Repository
}

func NewContestHandler(contestService *services.ContestService, repo *repository.Repository) *ContestHandler {
	return &ContestHandler{
		contestService: contestService,
		repo:           repo,
	}
}

// ListContests lists contests, optionally filtered by status
// GET /api/contests?status=ACTIVE&limit=20
func (h *ContestHandler) ListContests(c *gin.Context) {
	status := models.ContestStatus(c.Query("status"))
	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	contests, err := h.contestService.ListContests(status, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contests": contests})
}

// GetContest retrieves one contest
// GET /api/contests/:id
func (h *ContestHandler) GetContest(c *gin.Context) {
	contestID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contest id"})
		return
	}

	contest, err := h.contestService.GetContest(contestID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contest)
}

// GetLeaderboard returns live standings, or the final snapshot once completed
// GET /api/contests/:id/leaderboard
func (h *ContestHandler) GetLeaderboard(c *gin.Context) {
	contestID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contest id"})
		return
	}

	standings, err := h.contestService.GetLeaderboard(contestID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"standings": standings})
}

// Join enters the authenticated user into a contest
// POST /api/contests/:id/join
func (h *ContestHandler) Join(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	contestID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contest id"})
		return
	}

	participant, err := h.contestService.Join(c.Request.Context(), contestID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, participant)
}

// GetMyEntry returns the user's participant record for a contest
// GET /api/contests/:id/me
func (h *ContestHandler) GetMyEntry(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	contestID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contest id"})
		return
	}

	participant, err := h.repo.GetParticipant(c.Request.Context(), contestID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not a participant"})
		return
	}
	c.JSON(http.StatusOK, participant)
}

// GetMyContests lists contests the user has entered
// GET /api/contests/mine
func (h *ContestHandler) GetMyContests(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := parsePagination(c)
	entries, total, err := h.repo.GetUserContests(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list contests"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "total": total})
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	return uint(id), err
}

func parsePagination(c *gin.Context) (int, int) {
	limit := 20
	offset := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}
	return limit, offset
}
