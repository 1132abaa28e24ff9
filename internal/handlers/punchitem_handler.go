package handlers

import (
	"strings"

	"github.com/Smear6uard/CloseOut/internal/dto"
	"github.com/Smear6uard/CloseOut/internal/services"
	"github.com/gofiber/fiber/v2"
)

type PunchItemHandler struct {
	itemService *services.PunchItemService
	authz       *services.AuthzService
}

func NewPunchItemHandler(itemService *services.PunchItemService, authz *services.AuthzService) *PunchItemHandler {
	return &PunchItemHandler{itemService: itemService, authz: authz}
}

// ListByProject handles GET /projects/:id/items with optional
// status/trade/priority/assigned_to query filters.
func (h *PunchItemHandler) ListByProject(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authz)
	if err != nil {
		return serviceError(c, err)
	}
	projectID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid project id"})
	}

	filter := dto.PunchItemFilter{
		Status:     c.Query("status"),
		Trade:      c.Query("trade"),
		Priority:   c.Query("priority"),
		AssignedTo: c.Query("assigned_to"),
	}

	items, err := h.itemService.ListByProject(projectID, user.ID, &filter)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(items)
}

func (h *PunchItemHandler) Get(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authz)
	if err != nil {
		return serviceError(c, err)
	}
	itemID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid punch item id"})
	}

	item, err := h.itemService.Get(itemID, user.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(item)
}

func (h *PunchItemHandler) Recent(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authz)
	if err != nil {
		return serviceError(c, err)
	}

	items, err := h.itemService.Recent(user.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(items)
}

func (h *PunchItemHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authz)
	if err != nil {
		return serviceError(c, err)
	}
	projectID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid project id"})
	}

	var req dto.CreatePunchItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid request body"})
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Title is required"})
	}

	item, err := h.itemService.Create(user, projectID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *PunchItemHandler) Update(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authz)
	if err != nil {
		return serviceError(c, err)
	}
	itemID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid punch item id"})
	}

	var req dto.UpdatePunchItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid request body"})
	}

	item, err := h.itemService.Update(itemID, user.ID, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(item)
}

func (h *PunchItemHandler) UpdateStatus(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authz)
	if err != nil {
		return serviceError(c, err)
	}
	itemID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid punch item id"})
	}

	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid request body"})
	}

	item, err := h.itemService.UpdateStatus(itemID, user.ID, req.Status)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(item)
}

func (h *PunchItemHandler) Assign(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authz)
	if err != nil {
		return serviceError(c, err)
	}
	itemID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid punch item id"})
	}

	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid request body"})
	}

	item, err := h.itemService.Assign(itemID, user.ID, req.AssignedTo)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(item)
}

func (h *PunchItemHandler) AddCompletionPhoto(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authz)
	if err != nil {
		return serviceError(c, err)
	}
	itemID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid punch item id"})
	}

	var req dto.CompletionPhotoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid request body"})
	}
	if req.CompletionPhotoURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "completion_photo_url is required"})
	}

	item, err := h.itemService.AddCompletionPhoto(itemID, user.ID, req.CompletionPhotoURL)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(item)
}

func (h *PunchItemHandler) Remove(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authz)
	if err != nil {
		return serviceError(c, err)
	}
	itemID, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid punch item id"})
	}

	if err := h.itemService.Remove(itemID, user.ID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
