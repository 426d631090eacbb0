// internal/server/handlers.go
package server

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"mcp-tpn-planner/internal/render"
)

func (s *PlannerServer) RegisterRoutes(api *echo.Group) {
	api.POST("/schedules", s.CreateSchedule)
	api.GET("/schedules", s.ListSchedules)
	api.GET("/schedules/:id", s.GetSchedule)
	api.GET("/schedules/:id/chart", s.GetScheduleChart)
	api.GET("/schedules/:id/csv", s.GetScheduleCSV)
	api.GET("/conditions", s.ListConditions)
}

// CreateSchedule resolves a schedule from the JSON body. It is stored when
// "save" is set, which also makes the response 201.
func (s *PlannerServer) CreateSchedule(c echo.Context) error {
	var params ResolvePlanParams
	if err := c.Bind(&params); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sched, err := s.resolve(c.Request().Context(), &params)
	if err != nil {
		return toHTTPError(err)
	}
	status := http.StatusOK
	if params.Save {
		status = http.StatusCreated
	}
	return c.JSON(status, sched)
}

func (s *PlannerServer) GetSchedule(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sched, err := s.storage.GetSchedule(id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, sched)
}

// GetScheduleChart renders a stored schedule as an HTML chart page.
func (s *PlannerServer) GetScheduleChart(c echo.Context) error {
	return s.renderStored(c, render.FormatHTML, echo.MIMETextHTMLCharsetUTF8)
}

func (s *PlannerServer) GetScheduleCSV(c echo.Context) error {
	return s.renderStored(c, render.FormatCSV, "text/csv; charset=UTF-8")
}

func (s *PlannerServer) renderStored(c echo.Context, f render.Format, contentType string) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sched, err := s.storage.GetSchedule(id)
	if err != nil {
		return toHTTPError(err)
	}
	var buf bytes.Buffer
	if err := render.Write(&buf, f, sched); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

func (s *PlannerServer) ListSchedules(c echo.Context) error {
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}
	schedules, err := s.storage.ListSchedules(c.QueryParam("patient"), c.QueryParam("variant"), limit)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, schedules)
}

func (s *PlannerServer) ListConditions(c echo.Context) error {
	infos, err := s.listConditions(c.QueryParam("population"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, infos)
}
