package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounters(t *testing.T) {
	p := NewPrometheusRecorder(nil)

	p.ConversationStarted()
	p.ConversationStarted()
	p.LeadCompleted()
	p.ConversationCancelled()
	p.Delivery("store", true)
	p.Delivery("notify", false)
	p.ChatReply("llm")

	assert.Equal(t, 2.0, testutil.ToFloat64(p.conversations.WithLabelValues("started")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.conversations.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.deliveries.WithLabelValues("store", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.deliveries.WithLabelValues("notify", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.chatReplies.WithLabelValues("llm")))
}

func TestRecorderHandler(t *testing.T) {
	p := NewPrometheusRecorder(nil)
	p.LeadCompleted()
	p.ObserveUpdate("message", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `villa_bot_conversations_total{event="completed"} 1`))
	assert.Contains(t, body, "villa_bot_update_duration_seconds")
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewPrometheusRecorder(nil)
		NewPrometheusRecorder(nil)
	})
}
