package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bakery/internal/core"
	"bakery/internal/log"
	"bakery/internal/summary"
)

func (s *Server) handleListTransactions(c *gin.Context) {
	txns, err := s.api.ListAll(c.Request.Context())
	if err != nil {
		s.fail(c, log.OpList, err)
		return
	}
	success(c, txns)
}

func (s *Server) handleCreateTransaction(c *gin.Context) {
	fields, err := bindFields(c)
	if err != nil {
		s.fail(c, log.OpCreate, err)
		return
	}
	t, err := s.api.Create(c.Request.Context(), fields)
	if err != nil {
		s.fail(c, log.OpCreate, err)
		return
	}
	success(c, t)
}

func (s *Server) handleUpdateTransaction(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		s.fail(c, log.OpUpdate, err)
		return
	}
	fields, err := bindFields(c)
	if err != nil {
		s.fail(c, log.OpUpdate, err)
		return
	}
	t, err := s.api.Update(c.Request.Context(), id, fields)
	if err != nil {
		s.fail(c, log.OpUpdate, err)
		return
	}
	success(c, t)
}

func (s *Server) handleDeleteTransaction(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		s.fail(c, log.OpDelete, err)
		return
	}
	if err := s.api.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, log.OpDelete, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// handleDashboard serves the aggregated view for ?month=YYYY-MM&type=all|income|expense.
// Both parameters are optional and default to the current month and all types.
func (s *Server) handleDashboard(c *gin.Context) {
	view := s.api.DefaultView()
	if m := c.Query("month"); m != "" {
		month, err := summary.ParseMonth(m)
		if err != nil {
			s.fail(c, log.OpDashboard, err)
			return
		}
		view.Month = month
	}
	filter, err := summary.ParseTypeFilter(c.Query("type"))
	if err != nil {
		s.fail(c, log.OpDashboard, err)
		return
	}
	view.Type = filter

	d, err := s.api.Dashboard(c.Request.Context(), view)
	if err != nil {
		s.fail(c, log.OpDashboard, err)
		return
	}
	success(c, d)
}

func (s *Server) handleCategories(c *gin.Context) {
	success(c, gin.H{
		string(core.Income):  core.SuggestedCategories(core.Income),
		string(core.Expense): core.SuggestedCategories(core.Expense),
	})
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports not ready when the store cannot be reached.
func (s *Server) handleReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := s.api.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"checks": gin.H{"storage": fmt.Sprintf("failed: %v", err)},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"checks": gin.H{
			"storage":      "ok",
			"rate_limiter": gin.H{"active_clients": s.limiter.ActiveClients()},
		},
	})
}

// handleMetrics writes the middleware counters as plain text.
func (s *Server) handleMetrics(c *gin.Context) {
	tm := s.tracer.GetMetrics()
	rm := s.limiter.GetMetrics()

	var b strings.Builder
	fmt.Fprintf(&b, "requests_total %d\n", tm.TotalRequests)
	fmt.Fprintf(&b, "last_response_micros %d\n", tm.LastResponseMicros)
	fmt.Fprintf(&b, "rate_limit_rejected_total %d\n", rm.Rejected)
	fmt.Fprintf(&b, "rate_limit_active_clients %d\n", rm.ClientCount)
	fmt.Fprintf(&b, "suspicious_requests_total %d\n", s.detector.Suspicious())
	fmt.Fprintf(&b, "uptime_seconds %d\n", int64(time.Since(s.started).Seconds()))
	c.String(http.StatusOK, b.String())
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid transaction id %q", c.Param("id"))
	}
	return id, nil
}

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"message": "success", "data": data})
}

// fail logs err and writes {error}. Unknown ids are 404; everything else,
// including storage faults, is 400.
func (s *Server) fail(c *gin.Context, op string, err error) {
	status := http.StatusBadRequest
	errType := log.ErrorTypeValidation
	if errors.Is(err, core.ErrNotFound) {
		status = http.StatusNotFound
		errType = log.ErrorTypeNotFound
	}
	_ = c.Error(err)

	ctx := c.Request.Context()
	log.FromContext(ctx).WithComponent(log.ComponentHTTP).WarnContext(ctx, "Request failed",
		log.NewFields().
			WithOperation(op).
			WithError(err).
			WithErrorType(errType).
			ToSlice()...)

	c.JSON(status, gin.H{"error": err.Error()})
}
