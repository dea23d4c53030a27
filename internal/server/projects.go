package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	projectdomain "github.com/sds-studio/sds/internal/project/domain"
)

type createProjectRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Type         string   `json:"type"`
	ContactID    string   `json:"contact_id"`
	Budget       int64    `json:"budget"`
	TimelineDays int      `json:"timeline_days"`
	Technologies []string `json:"technologies"`
	Features     []string `json:"features"`
}

func (s *Server) HandleCreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	contactID, err := parseID(req.ContactID)
	if err != nil {
		AbortWithError(c, projectdomain.ErrInvalidContact)
		return
	}

	user := currentUser(c)
	if user == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	project, err := s.projectSvc.Create(c.Request.Context(), projectdomain.CreateRequest{
		Title:        req.Title,
		Description:  req.Description,
		Type:         req.Type,
		ContactID:    contactID,
		OwnerID:      user.ID,
		Budget:       req.Budget,
		TimelineDays: req.TimelineDays,
		Technologies: req.Technologies,
		Features:     req.Features,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"project": project})
}

func (s *Server) HandleListProjects(c *gin.Context) {
	req := projectdomain.ListRequest{
		Status: strings.TrimSpace(c.Query("status")),
		Type:   strings.TrimSpace(c.Query("type")),
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}

	projects, total, err := s.projectSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"total":    total,
	})
}

// HandleListPublicProjects serves the portfolio page: delivered,
// publicly listable projects only.
func (s *Server) HandleListPublicProjects(c *gin.Context) {
	projects, total, err := s.projectSvc.List(c.Request.Context(), projectdomain.ListRequest{
		PublicOnly: true,
		Limit:      queryInt(c, "limit", 50),
		Offset:     queryInt(c, "offset", 0),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"total":    total,
	})
}

func (s *Server) HandleGetProject(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	project, err := s.projectSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

type updateProjectRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Status        *string `json:"status"`
	Budget        *int64  `json:"budget"`
	TimelineDays  *int    `json:"timeline_days"`
	ProductionURL *string `json:"production_url"`
}

func (s *Server) HandleUpdateProject(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	project, err := s.projectSvc.Update(c.Request.Context(), id, projectdomain.UpdateRequest{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		Budget:        req.Budget,
		TimelineDays:  req.TimelineDays,
		ProductionURL: req.ProductionURL,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

func (s *Server) HandleDeleteProject(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.projectSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) HandleListProjectTasks(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tasks, err := s.projectSvc.ListTasks(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

type updateTaskRequest struct {
	Status         *string `json:"status"`
	EstimatedHours *int    `json:"estimated_hours"`
}

func (s *Server) HandleUpdateTask(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	task, err := s.projectSvc.UpdateTask(c.Request.Context(), id, projectdomain.UpdateTaskRequest{
		Status:         req.Status,
		EstimatedHours: req.EstimatedHours,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}
