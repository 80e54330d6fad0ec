package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/clinic-access-core/internal/api/dto"
	"github.com/kingrain94/clinic-access-core/internal/apperror"
	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/tenancy"
	"github.com/kingrain94/clinic-access-core/pkg/utils"
)

//go:generate mockery --name AuditLogService --output ../mocks
type AuditLogService interface {
	Query(ctx context.Context, userID string, limit int) ([]domain.AuditLog, error)
	QueryAll(ctx context.Context, operatorID string, limit int) ([]domain.AuditLog, error)
	QueryTenant(ctx context.Context, scope tenancy.Scope, limit int) ([]domain.AuditLog, error)
	Search(ctx context.Context, scope tenancy.Scope, filter domain.AuditLogFilter) ([]domain.AuditLog, error)
	ScheduleArchive(ctx context.Context, scope tenancy.Scope, requestedBy string, start, end time.Time) error
}

type AuditLogHandler struct {
	*BaseHandler
	service AuditLogService
}

func NewAuditLogHandler(service AuditLogService) *AuditLogHandler {
	return &AuditLogHandler{service: service}
}

// ListLogs Get the audit trail, newest first
// @Summary List audit logs
// @Description Clinic admins see their clinic's entries; the platform bootstrap admin sees every entry while its account exists. Any filter switches to search.
// @Tags    audit_logs
// @Produce json
// @Security BearerAuth
// @Param   limit query int false "Maximum entries (default 50, max 500)"
// @Param   user_id query string false "Filter by user ID"
// @Param   action query string false "Filter by action"
// @Param   resource query string false "Filter by resource"
// @Param   start_time query string false "Filter by start time (RFC3339 or YYYY-MM-DD)"
// @Param   end_time query string false "Filter by end time (RFC3339 or YYYY-MM-DD)"
// @Success 200 {array} dto.AuditLogResponse
// @Failure 400 {object} dto.Error
// @Failure 401 {object} dto.Error
// @Failure 403 {object} dto.Error
// @Router  /audit-logs [get]
func (h *AuditLogHandler) ListLogs(c *gin.Context) {
	claims, ok := h.Claims(c)
	if !ok {
		return
	}
	ctx := h.RequestCtx(c)
	limit := queryInt(c, "limit", 0)

	if claims.TenantID == "" {
		logs, err := h.service.QueryAll(ctx, claims.UserID, limit)
		if err != nil {
			h.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.FromAuditLogs(logs))
		return
	}

	scope, err := tenancy.FromClaims(claims)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	filter, err := getFilterFromQuery(c, limit)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	var logs []domain.AuditLog
	if filter.HasCriteria() {
		logs, err = h.service.Search(ctx, scope, filter)
	} else {
		logs, err = h.service.QueryTenant(ctx, scope, limit)
	}
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromAuditLogs(logs))
}

// ListMyLogs Get the caller's own audit entries
// @Summary List my audit logs
// @Tags    audit_logs
// @Produce json
// @Security BearerAuth
// @Param   limit query int false "Maximum entries (default 50, max 500)"
// @Success 200 {array} dto.AuditLogResponse
// @Failure 401 {object} dto.Error
// @Router  /audit-logs/mine [get]
func (h *AuditLogHandler) ListMyLogs(c *gin.Context) {
	claims, ok := h.Claims(c)
	if !ok {
		return
	}

	logs, err := h.service.Query(h.RequestCtx(c), claims.UserID, queryInt(c, "limit", 0))
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromAuditLogs(logs))
}

// Archive Schedule an S3 export of the clinic's audit logs
// @Summary Schedule archive
// @Description Enqueues an archive job for entries in the given range. Entries are exported, never deleted.
// @Tags    audit_logs
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   body body dto.ArchiveAuditLogsRequest true "Range"
// @Success 202 {object} dto.MessageResponse
// @Failure 400 {object} dto.Error
// @Failure 403 {object} dto.Error
// @Failure 503 {object} dto.Error
// @Router  /audit-logs/archive [post]
func (h *AuditLogHandler) Archive(c *gin.Context) {
	claims, ok := h.Claims(c)
	if !ok {
		return
	}
	var req dto.ArchiveAuditLogsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	scope, err := tenancy.FromClaims(claims)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	start, err := utils.ParseUserTime(req.StartTime, false)
	if err != nil {
		h.RespondError(c, apperror.Wrap(apperror.KindInvalidInput, err.Error(), err))
		return
	}
	end, err := utils.ParseUserTime(req.EndTime, true)
	if err != nil {
		h.RespondError(c, apperror.Wrap(apperror.KindInvalidInput, err.Error(), err))
		return
	}

	if err := h.service.ScheduleArchive(h.RequestCtx(c), scope, claims.UserID, start, end); err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.MessageResponse{Message: "Archive scheduled"})
}

func getFilterFromQuery(c *gin.Context, limit int) (domain.AuditLogFilter, error) {
	filter := domain.AuditLogFilter{
		UserID:   c.Query("user_id"),
		Action:   domain.AuditAction(c.Query("action")),
		Resource: c.Query("resource"),
		Limit:    limit,
	}

	if startTime := c.Query("start_time"); startTime != "" {
		t, err := utils.ParseUserTime(startTime, false)
		if err != nil {
			return filter, apperror.Wrap(apperror.KindInvalidInput, err.Error(), err)
		}
		filter.StartTime = t
	}
	if endTime := c.Query("end_time"); endTime != "" {
		t, err := utils.ParseUserTime(endTime, true)
		if err != nil {
			return filter, apperror.Wrap(apperror.KindInvalidInput, err.Error(), err)
		}
		filter.EndTime = t
	}
	if !filter.StartTime.IsZero() && !filter.EndTime.IsZero() && filter.StartTime.After(filter.EndTime) {
		return filter, apperror.New(apperror.KindInvalidInput, "start_time must be before end_time")
	}

	return filter, nil
}
