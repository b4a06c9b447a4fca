package service

// Recorder собирает счётчики работы бота. Реализация на Prometheus
// живёт в internal/metrics.
type Recorder interface {
	ConversationStarted()
	LeadCompleted()
	ConversationCancelled()
	Delivery(sink string, ok bool)
	ChatReply(source string)
}

const (
	SinkNotify = "notify"
	SinkStore  = "store"

	ChatSourceLLM     = "llm"
	ChatSourceCanned  = "canned"
	ChatSourceLimited = "rate_limited"
)

type noopRecorder struct{}

func (noopRecorder) ConversationStarted()   {}
func (noopRecorder) LeadCompleted()         {}
func (noopRecorder) ConversationCancelled() {}
func (noopRecorder) Delivery(string, bool)  {}
func (noopRecorder) ChatReply(string)       {}

func recorderOrNoop(r Recorder) Recorder {
	if r == nil {
		return noopRecorder{}
	}
	return r
}
