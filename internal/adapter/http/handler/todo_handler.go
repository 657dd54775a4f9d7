package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	. "todoapi/internal/adapter/http/helper"
	"todoapi/internal/adapter/http/validation"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/request"
	"todoapi/internal/core/model/response"
	"todoapi/internal/core/port"
	"todoapi/internal/core/telemetry"
	ct "todoapi/pkg/context"
	. "todoapi/pkg/tracing"
)

type TodoHandler struct {
	svc       port.TodoService
	auth      port.AuthService
	telemetry port.Telemetry
	logger    *otelzap.Logger
}

func NewTodoHandler(todoService port.TodoService, authService port.AuthService, probe port.Telemetry, logger *otelzap.Logger) *TodoHandler {
	if probe == nil {
		probe = telemetry.NewNoOpProbe()
	}

	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}

	return &TodoHandler{
		svc:       todoService,
		auth:      authService,
		telemetry: probe,
		logger:    logger,
	}
}

func (t *TodoHandler) CreateTodo(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.CreateTodo", handlerAttributes(c, "CreateTodo"))
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	identity, ok := t.authenticate(c)
	if !ok {
		return
	}

	params, err := bindJSON[request.CreateTodoRequest](c)
	if err != nil {
		SendBadRequestError(c, MessageInvalidBody)
		return
	}

	if err := validation.Validate(params); err != nil {
		t.fail(c, "Invalid todo", identity, err)
		return
	}

	todo, err := t.svc.Create(ctx, identity, params.Input())
	if err != nil {
		t.fail(c, "Failed to create todo", identity, err)
		return
	}

	AddHTTPAttributes(span, c.Request.Method, c.FullPath(), http.StatusCreated)
	span.SetAttributes(attribute.String("todo.id", todo.ID))

	SendSuccess(c, http.StatusCreated, response.NewTodoResponse(todo))
}

func (t *TodoHandler) GetAllTodos(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.GetAllTodos", handlerAttributes(c, "GetAllTodos"))
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	identity, ok := t.authenticate(c)
	if !ok {
		return
	}

	todos, err := t.svc.List(ctx, identity)
	if err != nil {
		t.fail(c, "Failed to get todos", identity, err)
		return
	}

	AddHTTPAttributes(span, c.Request.Method, c.FullPath(), http.StatusOK)
	span.SetAttributes(attribute.Int("todo.count", len(todos)))

	SendSuccess(c, http.StatusOK, response.NewTodoListResponse(todos))
}

func (t *TodoHandler) UpdateTodo(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.UpdateTodo", handlerAttributes(c, "UpdateTodo"))
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	identity, ok := t.authenticate(c)
	if !ok {
		return
	}

	params, err := bindJSON[request.UpdateTodoRequest](c)
	if err != nil {
		SendBadRequestError(c, MessageInvalidBody)
		return
	}

	if err := validation.Validate(params); err != nil {
		t.fail(c, "Invalid todo", identity, err)
		return
	}

	todo, err := t.svc.Update(ctx, identity, c.Param("id"), params.Input())
	if err != nil {
		t.fail(c, "Failed to update todo", identity, err)
		return
	}

	AddHTTPAttributes(span, c.Request.Method, c.FullPath(), http.StatusOK)

	SendSuccess(c, http.StatusOK, response.NewTodoResponse(todo))
}

func (t *TodoHandler) DeleteTodo(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.DeleteTodo", handlerAttributes(c, "DeleteTodo"))
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	identity, ok := t.authenticate(c)
	if !ok {
		return
	}

	if err := t.svc.Delete(ctx, identity, c.Param("id")); err != nil {
		t.fail(c, "Failed to delete todo", identity, err)
		return
	}

	AddHTTPAttributes(span, c.Request.Method, c.FullPath(), http.StatusNoContent)

	SendNoContent(c)
}

// authenticate resolves the caller from the Authorization header and writes
// the 401 itself when that fails.
func (t *TodoHandler) authenticate(c *gin.Context) (domain.Identity, bool) {
	ctx := c.Request.Context()

	identity, err := t.auth.Authenticate(ctx, bearerToken(c.GetHeader("Authorization")))
	if err != nil {
		t.logger.Ctx(ctx).Warn("Authentication failed",
			zap.Error(err),
			zap.String("request_id", ct.RequestID(ctx)),
			zap.String("path", c.FullPath()),
		)

		AddSpanEvent(trace.SpanFromContext(ctx), "auth.rejected", []attribute.KeyValue{
			attribute.String("http.route", c.FullPath()),
		})

		SendUnauthorized(c)
		return domain.Identity{}, false
	}

	ct.GetCurrent(ctx).Set(ct.SubjectKey, identity.Subject)

	return identity, true
}

// fail answers err. Only real faults mark the span as failed.
func (t *TodoHandler) fail(c *gin.Context, message string, identity domain.Identity, err error) {
	status := StatusFor(err)
	fields := []zap.Field{
		zap.Error(err),
		zap.String("owner_id", identity.Subject),
		zap.String("request_id", ct.RequestID(c.Request.Context())),
		zap.Int("status", status),
	}

	// Validation failures answer 500 but are the caller's fault.
	if status >= http.StatusInternalServerError && !domain.IsDomainError(err, domain.ErrCodeValidation) {
		t.telemetry.RecordError(c.Request.Context(), c.Request.Method+" "+c.FullPath(), err)
		t.logger.Ctx(c.Request.Context()).Error(message, fields...)
	} else {
		t.logger.Ctx(c.Request.Context()).Info(message, fields...)
	}

	SendDomainError(c, err)
}

// bearerToken returns the credential of a Bearer authorization header, or ""
// when the header carries none. The scheme is matched case-insensitively.
func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}

// bindJSON decodes the request body into T. An empty body decodes to the
// zero value so that missing fields reach validation.
func bindJSON[T any](c *gin.Context) (T, error) {
	var params T

	if err := c.ShouldBindJSON(&params); err != nil && !errors.Is(err, io.EOF) {
		return params, err
	}

	return params, nil
}

func handlerAttributes(c *gin.Context, operation string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("handler.operation", operation),
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
	}
}
