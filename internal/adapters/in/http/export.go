package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/infusioncare/appointment-optimizer/internal/core/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var exportHeaders = []string{"Date", "Chair", "Next Available", "Remaining Minutes", "Utilization %"}

func (c *OptimizerController) exportSlots(ctx *gin.Context) {
	location := ctx.Query("location")
	if location == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "location is required"})
		return
	}

	duration, err := strconv.Atoi(ctx.Query("durationMinutes"))
	if err != nil || duration <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "durationMinutes must be a positive integer"})
		return
	}

	ranked, err := c.useCase.FindSlots(ctx.Request.Context(), domain.SlotQuery{
		Location:        location,
		ChairID:         ctx.Query("chairId"),
		DurationMinutes: duration,
	})
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	file, err := buildSlotsWorkbook(ranked)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	filename := fmt.Sprintf("slots_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Header("Content-Type", xlsxContentType)
	ctx.Status(http.StatusOK)

	if err := file.Write(ctx.Writer); err != nil {
		// Headers are gone by now, nothing more to tell the client
		return
	}
}

func buildSlotsWorkbook(ranked domain.RankedSlots) (*excelize.File, error) {
	file := excelize.NewFile()
	sheet := file.GetSheetName(0)

	for i, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for row, slot := range ranked.Slots {
		values := []interface{}{
			slot.Date.Format("2006-01-02"),
			slot.ChairID,
			slot.NextAvailable.Format("15:04"),
			slot.RemainingMinutes,
			slot.UtilizationPct,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	return file, nil
}
