package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"

	"github.com/sjperalta/bailbooks-api/internal/middleware"
	"github.com/sjperalta/bailbooks-api/internal/repository"
	"github.com/sjperalta/bailbooks-api/internal/services"
)

const dateLayout = "2006-01-02"

// Handlers holds all handler instances
type Handlers struct {
	Health      *HealthHandler
	Case        *CaseHandler
	Quote       *QuoteHandler
	Plan        *PlanHandler
	Installment *InstallmentHandler
	Books       *BooksHandler
	Report      *ReportHandler
	Audit       *AuditHandler
	Job         *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(),
		Case:        NewCaseHandler(svcs.Case, svcs.Quote),
		Quote:       NewQuoteHandler(svcs.Quote),
		Plan:        NewPlanHandler(svcs.Plan),
		Installment: NewInstallmentHandler(svcs.Ledger),
		Books:       NewBooksHandler(svcs.Books),
		Report:      NewReportHandler(svcs.Report, svcs.Export),
		Audit:       NewAuditHandler(svcs.Audit),
		Job:         NewJobHandler(svcs.Job),
	}
}

// respondError maps service errors to HTTP statuses. Unexpected errors are
// reported to Sentry when the request carries a hub.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidPlanInput), errors.Is(err, services.ErrInvalidPaymentInput):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrDuplicate):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// paramID reads a positive numeric path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// actor identifies the caller for the audit trail.
func actor(c *gin.Context) services.Actor {
	return services.Actor{
		ID:        middleware.GetUserID(c),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// listQuery reads paging, search, sort (field-direction) and the named filters.
func listQuery(c *gin.Context, filters ...string) *repository.ListQuery {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PerPage < 1 || query.PerPage > 200 {
		query.PerPage = 20
	}
	query.Search = c.Query("search")

	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}
	for _, f := range filters {
		query.Filters[f] = c.Query(f)
	}
	return query
}

func pagination(query *repository.ListQuery, total int64) gin.H {
	return gin.H{
		"page":        query.Page,
		"per_page":    query.PerPage,
		"total":       total,
		"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
	}
}

// parseDate reads a YYYY-MM-DD value. An empty string yields the zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, errors.New("dates must be YYYY-MM-DD")
	}
	return t, nil
}

// parseOptionalDate is parseDate for optional body fields.
func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// dateRange reads start_date and end_date, defaulting to the current month.
func dateRange(c *gin.Context, today time.Time) (time.Time, time.Time, bool) {
	start, err := parseDate(c.Query("start_date"))
	if err != nil {
		badRequest(c, err.Error())
		return start, start, false
	}
	end, err := parseDate(c.Query("end_date"))
	if err != nil {
		badRequest(c, err.Error())
		return start, end, false
	}
	if start.IsZero() {
		start = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	if end.IsZero() {
		end = today
	}
	return start, end, true
}

func attachment(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}
