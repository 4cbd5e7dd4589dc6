package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateComplaint handles POST /api/complaints. The body is a multipart form
// with title, description, category and up to five evidenceFiles parts.
func (h *Handler) CreateComplaint(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid multipart form"})
		return
	}

	title := c.PostForm("title")
	description := c.PostForm("description")
	category := c.PostForm("category")
	files := form.File["evidenceFiles"]

	id, err := h.Service.Submit(c.Request.Context(), title, description, category, files)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Complaint submitted successfully!",
		"complaintId": id,
	})
}

// GetAllComplaints handles GET /api/complaints (admin only), newest first.
func (h *Handler) GetAllComplaints(c *gin.Context) {
	complaints, err := h.Service.ListComplaints()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, complaints)
}

// GetComplaintByID handles GET /api/complaints/:id.
func (h *Handler) GetComplaintByID(c *gin.Context) {
	complaint, err := h.Service.GetComplaint(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, complaint)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateComplaintStatus handles PUT /api/complaints/:id (admin only).
func (h *Handler) UpdateComplaintStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	complaint, err := h.Service.UpdateStatus(c.Param("id"), req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, complaint)
}

type feedbackRequest struct {
	Feedback string `json:"feedback"`
	Rating   int    `json:"rating"`
}

// SubmitFeedback handles POST /api/complaints/:id/feedback.
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	message, err := h.Service.SubmitFeedback(c.Param("id"), req.Feedback, req.Rating)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}
