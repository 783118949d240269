package controller

import (
	"io"
	"mime/multipart"

	"storyspark-be/internal/dto"
	"storyspark-be/internal/pkg/serverutils"
	"storyspark-be/internal/service"
	"storyspark-be/pkg/inspiration"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	End(ctx *fiber.Ctx) error
	SetModality(ctx *fiber.Ctx) error
	RefreshOptions(ctx *fiber.Ctx) error
	ToggleOption(ctx *fiber.Ctx) error
	SetFreeform(ctx *fiber.Ctx) error
	AddImages(ctx *fiber.Ctx) error
	RemoveImage(ctx *fiber.Ctx) error
	Preview(ctx *fiber.Ctx) error
}

type sessionController struct {
	service service.ISessionService
}

func NewSessionController(service service.ISessionService) ISessionController {
	return &sessionController{service: service}
}

func (c *sessionController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	r.Post("/sessions", c.Create)

	// auth is attached per route: a "/session" group middleware would also
	// match the "/sessions" prefix
	h := r.Group("/session")
	h.Get("", auth, c.Show)
	h.Delete("", auth, c.End)
	h.Put("/modality", auth, c.SetModality)
	h.Post("/options/refresh", auth, c.RefreshOptions)
	h.Post("/options/toggle", auth, c.ToggleOption)
	h.Put("/freeform", auth, c.SetFreeform)
	h.Post("/images", auth, c.AddImages)
	h.Delete("/images/:index", auth, c.RemoveImage)
	h.Get("/previews/:id", auth, c.Preview)
}

func (c *sessionController) Create(ctx *fiber.Ctx) error {
	res, err := c.service.Create(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Get(ctx.UserContext(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *sessionController) End(ctx *fiber.Ctx) error {
	if err := c.service.End(ctx.UserContext(), serverutils.SessionID(ctx)); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success end session", nil))
}

func (c *sessionController) SetModality(ctx *fiber.Ctx) error {
	var req dto.SetModalityRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SetModality(ctx.UserContext(), serverutils.SessionID(ctx), req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success set modality", res))
}

func (c *sessionController) RefreshOptions(ctx *fiber.Ctx) error {
	res, err := c.service.RefreshOptions(ctx.UserContext(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success refresh options", res))
}

func (c *sessionController) ToggleOption(ctx *fiber.Ctx) error {
	var req dto.ToggleOptionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ToggleOption(ctx.UserContext(), serverutils.SessionID(ctx), req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success toggle option", res))
}

func (c *sessionController) SetFreeform(ctx *fiber.Ctx) error {
	var req dto.SetFreeformRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SetFreeform(ctx.UserContext(), serverutils.SessionID(ctx), req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success set freeform", res))
}

func (c *sessionController) AddImages(ctx *fiber.Ctx) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Expected a multipart form")
	}

	headers := form.File["images"]
	if len(headers) == 0 {
		return &serverutils.RequestValidationError{Fields: map[string]string{"images": "is required"}}
	}

	files := make([]inspiration.ImageFile, 0, len(headers))
	for _, fh := range headers {
		files = append(files, multipartImage{fh})
	}

	res, err := c.service.AddImages(ctx.UserContext(), serverutils.SessionID(ctx), files)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success add images", res))
}

func (c *sessionController) RemoveImage(ctx *fiber.Ctx) error {
	index, err := ctx.ParamsInt("index")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid image index")
	}

	res, err := c.service.RemoveImage(ctx.UserContext(), serverutils.SessionID(ctx), index)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success remove image", res))
}

func (c *sessionController) Preview(ctx *fiber.Ctx) error {
	preview, err := c.service.GetPreview(ctx.UserContext(), serverutils.SessionID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, preview.MediaType)
	ctx.Set(fiber.HeaderCacheControl, "private, max-age=3600")
	return ctx.Send(preview.Data)
}

// multipartImage adapts an uploaded form file to inspiration.ImageFile.
type multipartImage struct {
	header *multipart.FileHeader
}

func (m multipartImage) Name() string { return m.header.Filename }

func (m multipartImage) MediaType() string { return m.header.Header.Get(fiber.HeaderContentType) }

func (m multipartImage) Open() (io.ReadCloser, error) { return m.header.Open() }
