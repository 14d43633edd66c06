package tracing

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware())
	router.GET("/api/stories/:id", func(c *gin.Context) {
		_, span := Start(c.Request.Context(), "StoryManager.LoadByStory", attribute.Int64("story.id", 3))
		_ = Fail(span, errors.New("boom"))
		span.End()
		c.Status(http.StatusInternalServerError)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stories/3", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	inner, server := spans[0], spans[1]
	assert.Equal(t, "StoryManager.LoadByStory", inner.Name())
	assert.Equal(t, codes.Error, inner.Status().Code)
	assert.Contains(t, inner.Attributes(), attribute.Int64("story.id", 3))
	assert.Equal(t, server.SpanContext().SpanID(), inner.Parent().SpanID())

	assert.Equal(t, "GET /api/stories/:id", server.Name())
	assert.Equal(t, codes.Error, server.Status().Code)
	assert.Contains(t, server.Attributes(), attribute.Int("http.status_code", http.StatusInternalServerError))
}
