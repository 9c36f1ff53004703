package logger

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Stream is one destination of the router: a writer and how to format for it
type Stream struct {
	Formatter logrus.Formatter
	Writer    io.Writer
}

// OutputRouterHook sends entries tagged log_type=user to User and all
// other entries to Op.
type OutputRouterHook struct {
	User Stream
	Op   Stream

	// logrus fires hooks outside its own lock; invocations log concurrently
	mu sync.Mutex
}

// NewOutputRouterHook routes user entries to userOut and the rest to opOut
func NewOutputRouterHook(userOut, opOut io.Writer) *OutputRouterHook {
	return &OutputRouterHook{
		User: Stream{
			Formatter: &CLIFormatter{DisableTimestamp: true, DisableLevel: true},
			Writer:    userOut,
		},
		Op: Stream{
			Formatter: &CLIFormatter{DisableTimestamp: true},
			Writer:    opOut,
		},
	}
}

// Levels returns all log levels
func (h *OutputRouterHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire formats the entry for its stream and writes it
func (h *OutputRouterHook) Fire(entry *logrus.Entry) error {
	stream := h.Op
	if logType, _ := entry.Data["log_type"].(string); logType == string(UserLog) {
		stream = h.User
	}

	out, err := stream.Formatter.Format(entry)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = stream.Writer.Write(out)
	return err
}
