package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/bailbooks-api/internal/services"
)

type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobSvc *services.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobSvc,
	}
}

// Status returns the current worker status
// @Summary Get background job status
// @Description Get statistics about background jobs (active, completed, failed, queue length, schedules)
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} jobs.WorkerStats
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.jobService.GetStatus())
}

// Run queues a scheduled job immediately
// @Summary Run a background job
// @Tags Jobs
// @Param name path string true "overdue-gauges or aging-digest"
// @Security BearerAuth
// @Success 202 {object} map[string]string
// @Router /jobs/{name}/run [post]
func (h *JobHandler) Run(c *gin.Context) {
	name := c.Param("name")
	if !h.jobService.RunNow(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job " + name})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job": name, "status": "queued"})
}
