package handlers

import (
	"strings"

	"github.com/Smear6uard/CloseOut/internal/dto"
	"github.com/Smear6uard/CloseOut/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	authz          *services.AuthzService
}

func NewProjectHandler(projectService *services.ProjectService, authz *services.AuthzService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, authz: authz}
}

func parseID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(param))
}

func (h *ProjectHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authz)
	if err != nil {
		return serviceError(c, err)
	}

	projects, err := h.projectService.List(user.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(projects)
}

func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authz)
	if err != nil {
		return serviceError(c, err)
	}
	projectID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid project id"})
	}

	project, err := h.projectService.Get(projectID, user.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(project)
}

func (h *ProjectHandler) Stats(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authz)
	if err != nil {
		return serviceError(c, err)
	}
	projectID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid project id"})
	}

	stats, err := h.projectService.Stats(projectID, user.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(stats)
}

func (h *ProjectHandler) Report(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authz)
	if err != nil {
		return serviceError(c, err)
	}
	projectID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid project id"})
	}

	report, err := h.projectService.Report(projectID, user.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(report)
}

func (h *ProjectHandler) Activity(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authz)
	if err != nil {
		return serviceError(c, err)
	}
	projectID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid project id"})
	}

	logs, err := h.projectService.Activity(projectID, user.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(logs)
}

func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authz)
	if err != nil {
		return serviceError(c, err)
	}

	var req dto.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid request body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Project name is required"})
	}

	project, err := h.projectService.Create(user.ID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authz)
	if err != nil {
		return serviceError(c, err)
	}
	projectID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid project id"})
	}

	var req dto.UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid request body"})
	}

	project, err := h.projectService.Update(projectID, user.ID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(project)
}

func (h *ProjectHandler) Remove(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authz)
	if err != nil {
		return serviceError(c, err)
	}
	projectID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid project id"})
	}

	if err := h.projectService.Remove(projectID, user.ID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
