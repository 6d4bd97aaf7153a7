package gateway

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"wagate/internal/fields"
	"wagate/internal/logger"
	"wagate/internal/webhook"
	"wagate/pkg/errors"
)

type BaseHandler struct {
	Logger logger.Logger
}

func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	status := errors.ToHTTPStatus(err)
	response := errors.ToErrorResponse(err)

	c.JSON(status, response)
}

type Handler struct {
	BaseHandler
	service  *Service
	webhooks *webhook.Service
}

func NewHandler(service *Service, webhooks *webhook.Service, log logger.Logger) *Handler {
	return &Handler{
		BaseHandler: BaseHandler{Logger: log},
		service:     service,
		webhooks:    webhooks,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		message := v1.Group("/message")
		{
			message.POST("/text/:instance", h.SendText)
			message.POST("/media/:instance", h.SendMedia)
			message.DELETE("/:instance", h.DeleteMessage)
		}

		v1.POST("/contact/check/:instance", h.CheckContacts)

		instances := v1.Group("/instance/:instance")
		{
			instances.GET("/status", h.InstanceStatus)
			instances.POST("/connect", h.ConnectInstance)
			instances.DELETE("/disconnect", h.DisconnectInstance)
		}

		v1.GET("/chat/messages/:instance", h.ChatMessages)

		hooks := v1.Group("/webhook/:instance")
		{
			hooks.GET("", h.ListWebhooks)
			hooks.POST("", h.CreateWebhook)
			hooks.GET("/:id", h.GetWebhook)
			hooks.PUT("/:id", h.UpdateWebhook)
			hooks.DELETE("/:id", h.DeleteWebhook)
			hooks.GET("/:id/deliveries", h.ListWebhookDeliveries)
		}
	}
}

// SendText godoc
// @Summary      Send a text message
// @Description  Queue a text message for delivery through the instance
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        instance  path      string  true  "Instance name"
// @Param        request   body      map[string]interface{}  true  "number and text; query parameters are merged in"
// @Success      201  {object}   SendResponse
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      409  {object}  errors.ErrorResponse
// @Failure      503  {object}  errors.ErrorResponse
// @Router       /message/text/{instance} [post]
func (h *Handler) SendText(c *gin.Context) {
	// Body wins over query; both win over path parameters.
	rec, err := h.mergeRequest(paramSource(c), querySource(c), bodySource(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp, err := h.service.SendText(c.Request.Context(), c.Param("instance"), rec)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SendMedia godoc
// @Summary      Send a media message
// @Description  Queue an image, video, audio or document message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        instance  path      string  true  "Instance name"
// @Param        request   body      map[string]interface{}  true  "number, mediaUrl, mediaType and optional caption"
// @Success      201  {object}   SendResponse
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      409  {object}  errors.ErrorResponse
// @Failure      503  {object}  errors.ErrorResponse
// @Router       /message/media/{instance} [post]
func (h *Handler) SendMedia(c *gin.Context) {
	rec, err := h.mergeRequest(paramSource(c), querySource(c), bodySource(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp, err := h.service.SendMedia(c.Request.Context(), c.Param("instance"), rec)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// DeleteMessage godoc
// @Summary      Delete a message
// @Description  Queue a message deletion; the id may come from the query string or the body
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        instance  path      string  true   "Instance name"
// @Param        id        query     string  false  "Message ID"
// @Success      200  {object}   DeleteResponse
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      409  {object}  errors.ErrorResponse
// @Router       /message/{instance} [delete]
func (h *Handler) DeleteMessage(c *gin.Context) {
	// Deletion favors the query string: query wins over body.
	rec, err := h.mergeRequest(paramSource(c), bodySource(c), querySource(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp, err := h.service.DeleteMessage(c.Request.Context(), c.Param("instance"), rec)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CheckContacts godoc
// @Summary      Canonicalize contact identifiers
// @Description  Resolve raw phone numbers or group ids to their canonical JID form
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        instance  path      string               true  "Instance name"
// @Param        request   body      ContactCheckRequest  true  "Raw identifiers"
// @Success      200  {array}    ContactCheckResult
// @Failure      400  {object}  errors.ErrorResponse
// @Router       /contact/check/{instance} [post]
func (h *Handler) CheckContacts(c *gin.Context) {
	rec, err := h.mergeRequest(bodySource(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	results, err := h.service.CheckContacts(c.Request.Context(), rec)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// InstanceStatus godoc
// @Summary      Get instance connection state
// @Tags         instances
// @Produce      json
// @Param        instance  path      string  true  "Instance name"
// @Success      200  {object}   session.State
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /instance/{instance}/status [get]
func (h *Handler) InstanceStatus(c *gin.Context) {
	state, err := h.service.Status(c.Request.Context(), c.Param("instance"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// ConnectInstance godoc
// @Summary      Mark an instance as connected
// @Tags         instances
// @Accept       json
// @Produce      json
// @Param        instance  path      string          true   "Instance name"
// @Param        request   body      ConnectRequest  false  "Optional logged-in JID"
// @Success      200  {object}   InstanceActionResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /instance/{instance}/connect [post]
func (h *Handler) ConnectInstance(c *gin.Context) {
	var req ConnectRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.HandleError(c, errors.ErrValidation.WithCause(err))
			return
		}
	}

	resp, err := h.service.Connect(c.Request.Context(), c.Param("instance"), req.JID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DisconnectInstance godoc
// @Summary      Mark an instance as disconnected
// @Tags         instances
// @Produce      json
// @Param        instance  path      string  true  "Instance name"
// @Success      200  {object}   InstanceActionResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /instance/{instance}/disconnect [delete]
func (h *Handler) DisconnectInstance(c *gin.Context) {
	resp, err := h.service.Disconnect(c.Request.Context(), c.Param("instance"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ChatMessages godoc
// @Summary      List classified messages
// @Description  Newest-first message log for an instance, optionally scoped to one chat
// @Tags         messages
// @Produce      json
// @Param        instance  path      string  true   "Instance name"
// @Param        chatJid   query     string  false  "Chat JID"
// @Param        limit     query     int     false  "Maximum entries"
// @Success      200  {array}    messagelog.Entry
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /chat/messages/{instance} [get]
func (h *Handler) ChatMessages(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	entries, err := h.service.History(c.Request.Context(), c.Param("instance"), c.Query("chatJid"), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ListWebhooks godoc
// @Summary      List webhooks for an instance
// @Tags         webhooks
// @Produce      json
// @Param        instance  path      string  true  "Instance name"
// @Success      200  {array}    webhook.Webhook
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /webhook/{instance} [get]
func (h *Handler) ListWebhooks(c *gin.Context) {
	hooks, err := h.webhooks.List(c.Request.Context(), c.Param("instance"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, hooks)
}

// CreateWebhook godoc
// @Summary      Create a webhook
// @Description  Register a delivery endpoint; the CEL filter expression is validated on write
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        instance  path      string           true  "Instance name"
// @Param        webhook   body      webhook.Webhook  true  "Webhook definition"
// @Success      201   {object}   webhook.Webhook
// @Failure      400   {object}  errors.ErrorResponse
// @Failure      409   {object}  errors.ErrorResponse
// @Router       /webhook/{instance} [post]
func (h *Handler) CreateWebhook(c *gin.Context) {
	var hook webhook.Webhook
	if err := c.ShouldBindJSON(&hook); err != nil {
		h.HandleError(c, errors.ErrValidation.WithCause(err))
		return
	}
	hook.Instance = c.Param("instance")

	if err := h.webhooks.Create(c.Request.Context(), &hook); err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, hook)
}

// GetWebhook godoc
// @Summary      Get a webhook by ID
// @Tags         webhooks
// @Produce      json
// @Param        instance  path      string  true  "Instance name"
// @Param        id        path      string  true  "Webhook ID"
// @Success      200  {object}   webhook.Webhook
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /webhook/{instance}/{id} [get]
func (h *Handler) GetWebhook(c *gin.Context) {
	hook, err := h.webhooks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, hook)
}

// UpdateWebhook godoc
// @Summary      Update a webhook
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        instance  path      string           true  "Instance name"
// @Param        id        path      string           true  "Webhook ID"
// @Param        webhook   body      webhook.Webhook  true  "Updated webhook definition"
// @Success      200   {object}   webhook.Webhook
// @Failure      400   {object}  errors.ErrorResponse
// @Failure      404   {object}  errors.ErrorResponse
// @Router       /webhook/{instance}/{id} [put]
func (h *Handler) UpdateWebhook(c *gin.Context) {
	var hook webhook.Webhook
	if err := c.ShouldBindJSON(&hook); err != nil {
		h.HandleError(c, errors.ErrValidation.WithCause(err))
		return
	}
	hook.ID = c.Param("id")
	hook.Instance = c.Param("instance")

	if err := h.webhooks.Update(c.Request.Context(), &hook); err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, hook)
}

// DeleteWebhook godoc
// @Summary      Delete a webhook
// @Tags         webhooks
// @Param        instance  path      string  true  "Instance name"
// @Param        id        path      string  true  "Webhook ID"
// @Success      204  "No Content"
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /webhook/{instance}/{id} [delete]
func (h *Handler) DeleteWebhook(c *gin.Context) {
	if err := h.webhooks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListWebhookDeliveries godoc
// @Summary      List delivery attempts for a webhook
// @Tags         webhooks
// @Produce      json
// @Param        instance  path      string  true   "Instance name"
// @Param        id        path      string  true   "Webhook ID"
// @Param        limit     query     int     false  "Maximum entries"
// @Success      200  {array}    webhook.Delivery
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /webhook/{instance}/{id}/deliveries [get]
func (h *Handler) ListWebhookDeliveries(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	deliveries, err := h.webhooks.ListDeliveries(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, deliveries)
}

// mergeRequest resolves the request record from the given sources in
// ascending precedence: later sources overwrite earlier ones key by key.
func (h *Handler) mergeRequest(sources ...sourceResult) (fields.Record, error) {
	resolved := make([]fields.Source, 0, len(sources))
	for _, sr := range sources {
		if sr.err != nil {
			return nil, errors.ErrValidation.WithCause(sr.err)
		}
		resolved = append(resolved, sr.source)
	}
	return fields.Merge(resolved...), nil
}

type sourceResult struct {
	source fields.Source
	err    error
}

func paramSource(c *gin.Context) sourceResult {
	src := fields.Source{}
	for _, p := range c.Params {
		src[p.Key] = p.Value
	}
	return sourceResult{source: src}
}

func querySource(c *gin.Context) sourceResult {
	src := fields.Source{}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			src[key] = values[0]
		}
	}
	return sourceResult{source: src}
}

func bodySource(c *gin.Context) sourceResult {
	src := fields.Source{}
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return sourceResult{source: src}
	}
	if err := c.ShouldBindJSON(&src); err != nil {
		if stderrors.Is(err, io.EOF) {
			return sourceResult{source: fields.Source{}}
		}
		return sourceResult{err: err}
	}
	return sourceResult{source: src}
}
