package emotionHandler

import (
	emotionService "EmotionLens/internal/api/emotion/service"
	"EmotionLens/internal/middleware"
	"EmotionLens/pkg/utils"
	"EmotionLens/web"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type EmotionHandler struct {
	log            *logrus.Logger
	validator      *validator.Validate
	middleware     middleware.Middleware
	emotionService emotionService.IEmotionService
	liveService    emotionService.ILiveService
	utils          utils.IUtils
	renderer       *web.Renderer
	page           web.PageData
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	es emotionService.IEmotionService,
	ls emotionService.ILiveService,
	utils utils.IUtils,
	renderer *web.Renderer,
	apiBase string,
) *EmotionHandler {
	return &EmotionHandler{
		log:            log,
		validator:      validator,
		middleware:     middleware,
		emotionService: es,
		liveService:    ls,
		utils:          utils,
		renderer:       renderer,
		page:           web.DefaultPageData(apiBase),
	}
}

func (h *EmotionHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	emotion := srv.Group("/emotion")
	emotion.Get("/labels", h.GetLabels)
	emotion.Post("/detect", h.middleware.NewRateLimiter, h.DetectFaces)
	emotion.Post("/analyze", h.middleware.NewRateLimiter, h.AnalyzeEmotion)

	live := srv.Group("/live")
	live.Get("/status", h.LiveStatus)
	live.Post("/start", h.StartLive)
	live.Post("/stop", h.StopLive)
	live.Use("/ws", wsMiddleware)
	live.Get("/ws", websocket.New(h.handleLiveWebSocket))
}

// StartPage mounts the interactive page and its assets at the root router.
func (h *EmotionHandler) StartPage(app fiber.Router) {
	app.Get("/", h.Index)
	app.Use("/static", filesystem.New(filesystem.Config{
		Root: http.FS(web.Static()),
	}))
}
