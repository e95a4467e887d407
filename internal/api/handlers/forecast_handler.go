package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/craftline/forecast-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

// GetSummaries returns the forecast summary for every material with an
// active snapshot.
func (h *ForecastHandler) GetSummaries(c *gin.Context) {
	summaries, err := h.service.GetSummaries(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load forecast summaries")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load forecast summaries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  summaries,
		"count": len(summaries),
	})
}

// GetMaterialForecast returns one material's summary.
func (h *ForecastHandler) GetMaterialForecast(c *gin.Context) {
	materialID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || materialID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid material id"})
		return
	}

	summary, err := h.service.GetSummary(c.Request.Context(), materialID)
	if err != nil {
		if errors.Is(err, service.ErrNoForecast) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no forecast for material"})
			return
		}
		log.Error().Err(err).Int64("material_id", materialID).Msg("Failed to load material forecast")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load material forecast"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// GetSchedule returns the replenishment schedule grouped by urgency.
func (h *ForecastHandler) GetSchedule(c *gin.Context) {
	schedule, diagnostics, err := h.service.GetReplenishmentSchedule(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to build replenishment schedule")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build replenishment schedule"})
		return
	}

	response := gin.H{"data": schedule}
	if len(diagnostics) > 0 {
		response["skipped"] = diagnostics
	}
	c.JSON(http.StatusOK, response)
}

// RunForecast triggers a forecast run. An optional material_ids query param
// (repeated or comma-separated) restricts the run to those materials.
func (h *ForecastHandler) RunForecast(c *gin.Context) {
	materialIDs, err := parseMaterialIDs(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.RunForecast(c.Request.Context(), materialIDs...)
	if err != nil {
		log.Error().Err(err).Msg("Forecast run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "forecast run failed"})
		return
	}

	response := gin.H{
		"run":       result.Run,
		"processed": len(result.Results),
	}
	if len(result.Diagnostics) > 0 {
		response["skipped"] = result.Diagnostics
	}
	c.JSON(http.StatusOK, response)
}

// GetLatestRun reports the most recent forecast run.
func (h *ForecastHandler) GetLatestRun(c *gin.Context) {
	run, err := h.service.LatestRun(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoForecast) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no forecast run recorded"})
			return
		}
		log.Error().Err(err).Msg("Failed to load latest forecast run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load latest run"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": run})
}

// parseMaterialIDs supports both repeated params and a comma-separated list:
//
//	?material_ids=1&material_ids=2
//	?material_ids=1,2
func parseMaterialIDs(c *gin.Context) ([]int64, error) {
	raw := c.QueryArray("material_ids")
	if len(raw) == 0 {
		if single := strings.TrimSpace(c.Query("material_ids")); single != "" {
			raw = strings.Split(single, ",")
		}
	}

	var ids []int64
	seen := make(map[int64]struct{})
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return nil, errors.New("invalid material id: " + part)
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
