package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"axiapac.com/attendance/attendance/core"
	"axiapac.com/attendance/attendance/model"
	"axiapac.com/attendance/web/common"
	"axiapac.com/attendance/web/middlewares"
	"github.com/gin-gonic/gin"
)

type InboundSyncer interface {
	Sync(ctx context.Context) (*core.InboundResult, error)
	Reimport(ctx context.Context) (*core.InboundResult, error)
}

type OutboundExporter interface {
	Export(ctx context.Context, start, end string) (*core.OutboundResult, error)
}

type RunLister interface {
	RecentRuns(ctx context.Context, direction model.SyncDirection, limit int) ([]model.SyncRun, error)
}

type Endpoint struct {
	inbound  InboundSyncer
	outbound OutboundExporter
	runs     RunLister
	logger   *log.Logger
}

// Register mounts the sync routes on r. runs may be nil when the store keeps
// no run history.
func Register(r *gin.RouterGroup, inbound InboundSyncer, outbound OutboundExporter, runs RunLister) {
	endpoint := &Endpoint{
		inbound:  inbound,
		outbound: outbound,
		runs:     runs,
		logger:   log.New(os.Stderr, "[http] ", log.LstdFlags),
	}
	r.POST("/sync/inbound", endpoint.Inbound)
	r.POST("/sync/outbound", endpoint.Outbound)
	r.OPTIONS("/sync/inbound", Options)
	r.OPTIONS("/sync/outbound", Options)
	if runs != nil {
		r.GET("/sync/runs", endpoint.Runs)
	}
}

func Options(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// StatusFor maps a sync error code to an HTTP status.
func StatusFor(code core.ErrorCode) int {
	switch code {
	case core.CodeValidation:
		return http.StatusBadRequest
	case core.CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Outcome maps the result of a sync run to an HTTP status and response body.
// A PARTIAL error still returns 200 with success true so callers can read the
// details.
func Outcome(message string, details interface{}, err error) (int, interface{}) {
	if err == nil {
		return http.StatusOK, common.NewSuccessResponse(message, details)
	}

	code := core.CodeOf(err)
	if code == core.CodePartial {
		res := common.NewSuccessResponse(message, details)
		res.Code = string(code)
		return http.StatusOK, res
	}

	var se *core.SyncError
	msg := err.Error()
	if errors.As(err, &se) {
		msg = se.Err.Error()
	}
	return StatusFor(code), common.NewCodedErrorResponse(string(code), msg)
}

func respond(c *gin.Context, message string, details interface{}, err error) {
	c.JSON(Outcome(message, details, err))
}

func (ep *Endpoint) Inbound(c *gin.Context) {
	run := ep.inbound.Sync
	if c.Query("reimport") == "true" {
		if _, ok := c.Get(middlewares.ClaimsKey); !ok {
			c.JSON(http.StatusForbidden, common.NewCodedErrorResponse(string(core.CodeValidation), "reimport requires an authenticated request"))
			return
		}
		run = ep.inbound.Reimport
	}

	result, err := run(c.Request.Context())
	if result == nil {
		respond(c, "", nil, err)
		return
	}
	respond(c, result.Message(), result, err)
}

type OutboundRequest struct {
	StartDate      string `json:"startDate"`
	StartDateSnake string `json:"start_date"`
	EndDate        string `json:"endDate"`
	EndDateSnake   string `json:"end_date"`
}

func (r OutboundRequest) Range() (string, string) {
	start, end := r.StartDate, r.EndDate
	if start == "" {
		start = r.StartDateSnake
	}
	if end == "" {
		end = r.EndDateSnake
	}
	return start, end
}

func (ep *Endpoint) Outbound(c *gin.Context) {
	var req OutboundRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			ep.logger.Printf("[WARN] Ignoring outbound request body: %s", common.FormatBindingError(err))
			req = OutboundRequest{}
		}
	}

	start, end := req.Range()
	result, err := ep.outbound.Export(c.Request.Context(), start, end)
	if result == nil {
		respond(c, "", nil, err)
		return
	}
	respond(c, result.Message(), result, err)
}

type RunsQuery struct {
	Direction string `form:"direction" json:"direction" binding:"omitempty,oneof=inbound outbound"`
	Limit     int    `form:"limit" json:"limit" binding:"omitempty,min=1,max=200"`
}

func (ep *Endpoint) Runs(c *gin.Context) {
	var q RunsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, common.NewCodedErrorResponse(string(core.CodeValidation), common.FormatBindingError(err)))
		return
	}
	if q.Limit == 0 {
		q.Limit = 20
	}

	runs, err := ep.runs.RecentRuns(c.Request.Context(), model.SyncDirection(q.Direction), q.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewCodedErrorResponse(string(core.CodeUpstream), err.Error()))
		return
	}
	c.JSON(http.StatusOK, common.NewSearchResponse(runs, int64(len(runs)), q.Limit))
}
