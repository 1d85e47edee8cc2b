package emotionHandler

import (
	"EmotionLens/internal/api/emotion"
	"EmotionLens/internal/entity"
	contextPkg "EmotionLens/pkg/context"
	"EmotionLens/pkg/handlerUtil"
	"EmotionLens/pkg/log"
	"EmotionLens/pkg/utils"
	"EmotionLens/pkg/vision"
	"EmotionLens/web"
	"bytes"
	"image"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *EmotionHandler) GetLabels(ctx *fiber.Ctx) error {
	labels := make([]entity.LabelInfo, 0, entity.NumLabels)
	for _, l := range entity.Labels() {
		labels = append(labels, l.Info())
	}
	return handlerUtil.New(h.log).HandleSuccess(ctx, fiber.StatusOK, emotion.LabelsResponse{Labels: labels})
}

// readUpload validates and decodes the multipart "image" field.
func (h *EmotionHandler) readUpload(ctx *fiber.Ctx, requestID string) (image.Image, string, error) {
	contentType := strings.ToLower(string(ctx.Request().Header.ContentType()))
	if !strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		return nil, "content_type", emotion.ErrBadRequest
	}

	file, err := ctx.FormFile("image")
	if err != nil {
		return nil, "form_file", emotion.ErrMissingImage
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"file_name":  file.Filename,
		"file_size":  file.Size,
	}).Debug("Processing image upload")

	if err := h.validateUpload(file); err != nil {
		return nil, "validate_image_file", err
	}

	img, err := h.utils.DecodeImageFile(file)
	if err != nil {
		return nil, "decode_image", emotion.ErrInvalidImage
	}
	return img, "", nil
}

func (h *EmotionHandler) validateUpload(file *multipart.FileHeader) error {
	req := emotion.UploadRequest{
		FileName:  file.Filename,
		Extension: utils.FileExtension(file.Filename),
		Size:      file.Size,
	}
	if err := h.validator.Struct(req); err != nil {
		return emotion.ErrInvalidFileType
	}
	return h.utils.ValidateImageFile(file)
}

func (h *EmotionHandler) DetectFaces(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	img, op, err := h.readUpload(ctx, requestID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), op)
	}

	detected, err := h.emotionService.DetectUpload(c, img)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "detect_upload")
	}

	preview, err := vision.DataURI(detected.Preview)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "encode_preview")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, emotion.DetectResponse{
			Faces:   detected.Faces,
			Preview: preview,
		})
	}
}

func (h *EmotionHandler) AnalyzeEmotion(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	img, op, err := h.readUpload(ctx, requestID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), op)
	}

	analysis, err := h.emotionService.AnalyzeUpload(c, img)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "analyze_upload")
	}

	preview, err := vision.DataURI(analysis.Preview)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "encode_preview")
	}

	prediction := emotion.NewPredictionResponse(analysis.Prediction)
	var result bytes.Buffer
	if err := h.renderer.Result(&result, web.ResultData{Prediction: prediction, Explain: true}); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "render_result")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, emotion.AnalyzeResponse{
			Faces:      analysis.Faces,
			Preview:    preview,
			Prediction: prediction,
			ResultHTML: result.String(),
		})
	}
}
