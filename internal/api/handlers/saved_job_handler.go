package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/jobbo/internal/models"
	"github.com/yoockh/jobbo/internal/services"
	"github.com/yoockh/jobbo/internal/utils"
)

type SavedJobHandler struct {
	svc services.SavedJobService
}

func NewSavedJobHandler(svc services.SavedJobService) *SavedJobHandler {
	return &SavedJobHandler{svc: svc}
}

type SavedStatusResponse struct {
	Saved   bool   `json:"saved"`
	Message string `json:"message,omitempty"`
}

type SavedJobsResponse struct {
	Jobs []models.SavedJob `json:"jobs"`
}

func (h *SavedJobHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	jobs, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if jobs == nil {
		jobs = []models.SavedJob{}
	}
	c.JSON(http.StatusOK, SavedJobsResponse{Jobs: jobs})
}

func (h *SavedJobHandler) Status(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	saved, err := h.svc.IsSaved(c.Request.Context(), userID, c.Param("job_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SavedStatusResponse{Saved: saved})
}

// Put stores the listing in the body under the job id from the path.
func (h *SavedJobHandler) Put(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var job models.JobListing
	if err := c.ShouldBindJSON(&job); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SavedJobHandler.Put", "invalid request body", err))
		return
	}
	job.ID = c.Param("job_id")

	snap, err := h.svc.Save(c.Request.Context(), userID, job)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *SavedJobHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Remove(c.Request.Context(), userID, c.Param("job_id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SavedStatusResponse{Saved: false, Message: models.MsgJobRemoved})
}

func (h *SavedJobHandler) Toggle(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var job models.JobListing
	if err := c.ShouldBindJSON(&job); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SavedJobHandler.Toggle", "invalid request body", err))
		return
	}

	saved, err := h.svc.Toggle(c.Request.Context(), userID, job)
	if err != nil {
		writeError(c, err)
		return
	}

	msg := models.MsgJobRemoved
	if saved {
		msg = models.MsgJobSaved
	}
	c.JSON(http.StatusOK, SavedStatusResponse{Saved: saved, Message: msg})
}
