package main

import (
	"net/http"
	"time"
)

type DailyReportRequest struct {
	Day string `json:"day" validate:"omitempty,datetime=2006-01-02"`
}

// requestDailyReportHandler godoc
//
//	@Summary		Request a daily sales report
//	@Description	Queues a report request for the aggregation job; defaults to today when no day is given
//	@Tags			reports
//	@Accept			json
//	@Produce		json
//	@Param			request	body		DailyReportRequest	false	"Report day"
//	@Success		202		{object}	map[string]string
//	@Failure		400		{object}	map[string]string
//	@Router			/reports/daily [post]
func (app *application) requestDailyReportHandler(w http.ResponseWriter, r *http.Request) {
	var req DailyReportRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	day := time.Now()
	if req.Day != "" {
		parsed, err := time.Parse("2006-01-02", req.Day)
		if err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
		day = parsed
	}

	requestedBy := roleFromContext(r.Context())
	if err := app.reportService.RequestDailyReport(r.Context(), day, requestedBy); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusAccepted, map[string]string{"status": "queued"}); err != nil {
		app.internalServerError(w, r, err)
	}
}
