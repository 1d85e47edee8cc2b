package emotionHandler

import (
	"EmotionLens/pkg/handlerUtil"
	"bytes"

	"github.com/gofiber/fiber/v2"
)

func (h *EmotionHandler) Index(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)

	var buf bytes.Buffer
	if err := h.renderer.Page(&buf, h.page); err != nil {
		return handlerUtil.New(h.log).Handle(ctx, requestID, err, ctx.Path(), "render_page")
	}

	ctx.Type("html", "utf-8")
	return ctx.Send(buf.Bytes())
}
