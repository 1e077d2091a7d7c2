package requestcontext

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestFromEchoContext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-9")
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set("agent_id", "agent-9")

	reqCtx := FromEchoContext(c)

	assert.Equal(t, "req-9", reqCtx.RequestID)
	assert.Equal(t, "agent-9", reqCtx.AgentID)
	assert.False(t, reqCtx.StartTime.IsZero())
}

func TestFromEchoContext_GeneratesRequestID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.Len(t, FromEchoContext(c).RequestID, 36)
}

func TestWithRequestContext(t *testing.T) {
	ctx := WithRequestContext(context.Background(), &RequestContext{RequestID: "r", AgentID: "a", ServiceName: "s"})

	assert.Equal(t, "r", GetRequestID(ctx))
	assert.Equal(t, "a", GetAgentID(ctx))
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Empty(t, GetAgentID(context.Background()))
}
