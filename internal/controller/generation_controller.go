package controller

import (
	"storyspark-be/internal/pkg/serverutils"
	"storyspark-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IGenerationController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	GenerateIdeas(ctx *fiber.Ctx) error
	GeneratePlan(ctx *fiber.Ctx) error
}

type generationController struct {
	service service.IGenerationService
}

func NewGenerationController(service service.IGenerationService) IGenerationController {
	return &generationController{service: service}
}

func (c *generationController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/session/ideas")
	h.Post("", auth, c.GenerateIdeas)
	h.Post("/:index/plan", auth, c.GeneratePlan)
}

// GenerateIdeas answers once the request is accepted; progress follows on
// the status stream. ?wait=true blocks until the model answered.
func (c *generationController) GenerateIdeas(ctx *fiber.Ctx) error {
	res, err := c.service.GenerateIdeas(ctx.UserContext(), serverutils.SessionID(ctx), ctx.QueryBool("wait", false))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate ideas", res))
}

func (c *generationController) GeneratePlan(ctx *fiber.Ctx) error {
	index, err := ctx.ParamsInt("index")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid idea index")
	}

	res, err := c.service.GeneratePlan(ctx.UserContext(), serverutils.SessionID(ctx), index, ctx.QueryBool("wait", false))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate plan", res))
}
