package chunk

import (
	"fmt"
	"time"

	"github.com/tushartg/chunkstream/pkg/codec"
)

// Severity classifies an inspector message.
type Severity string

const (
	SeverityDebug Severity = "debug"
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
	SeverityFatal Severity = "fatal"
)

// MetricKeyPrefix is prepended to metric names in the inspector object to
// keep them out of the message namespace.
const MetricKeyPrefix = "metric."

// Message is one diagnostic entry accumulated between flushes.
type Message struct {
	Severity Severity
	Text     string
}

// Metric aggregates the cost of a named operation between flushes.
type Metric struct {
	Duration    time.Duration
	Invocations int64
	InputCount  int64
	OutputCount int64
}

// Inspector accumulates out-of-band diagnostics until the next flush.
type Inspector struct {
	messages    []Message
	metricNames []string
	metrics     map[string]Metric
}

func newInspector() *Inspector {
	return &Inspector{metrics: make(map[string]Metric)}
}

// AddMessage formats text and appends it to the message list.
func (i *Inspector) AddMessage(severity Severity, format string, args ...any) {
	i.messages = append(i.messages, Message{
		Severity: severity,
		Text:     fmt.Sprintf(format, args...),
	})
}

// SetMetric stores or overwrites the metric under name.
func (i *Inspector) SetMetric(name string, metric Metric) {
	if _, seen := i.metrics[name]; !seen {
		i.metricNames = append(i.metricNames, name)
	}
	i.metrics[name] = metric
}

// Messages returns the accumulated messages in order.
func (i *Inspector) Messages() []Message {
	messages := make([]Message, len(i.messages))
	copy(messages, i.messages)
	return messages
}

// Metric returns the metric stored under name, if any.
func (i *Inspector) Metric(name string) (Metric, bool) {
	m, ok := i.metrics[name]
	return m, ok
}

// Empty reports whether the inspector holds no messages and no metrics.
func (i *Inspector) Empty() bool {
	return len(i.messages) == 0 && len(i.metricNames) == 0
}

func (i *Inspector) reset() {
	i.messages = nil
	i.metricNames = nil
	i.metrics = make(map[string]Metric)
}

// encode renders the inspector as the metadata object carried on the wire:
// a "messages" list of [severity, text] pairs plus one reserved-prefix key
// per metric holding [duration, invocations, input count, output count].
func (i *Inspector) encode() *codec.Object {
	obj := codec.NewObject()
	if len(i.messages) > 0 {
		messages := make([]any, 0, len(i.messages))
		for _, m := range i.messages {
			messages = append(messages, []any{string(m.Severity), m.Text})
		}
		obj.Set("messages", messages)
	}
	for _, name := range i.metricNames {
		m := i.metrics[name]
		obj.Set(MetricKeyPrefix+name, []any{
			m.Duration.Seconds(),
			m.Invocations,
			m.InputCount,
			m.OutputCount,
		})
	}
	return obj
}
