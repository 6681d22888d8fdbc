package logging

import "time"

// Field is one key-value pair of an entry.
type Field struct {
	Key   string
	Value any
}

const (
	runIDKey     = "run_id"
	componentKey = "component"
)

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Error records err under "error"; a nil error is recorded as null.
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Component names the pipeline stage emitting the entry.
func Component(name string) Field {
	return String(componentKey, name)
}

// RunID ties every entry of one pipeline run together.
func RunID(id string) Field {
	return String(runIDKey, id)
}

func NodeID(id string) Field {
	return String("node_id", id)
}

// GraphName identifies which graph ("diffusion" or "friendship") an entry is about.
func GraphName(name string) Field {
	return String("graph", name)
}

func Metric(name string) Field {
	return String("metric", name)
}

func Hashtag(tag string) Field {
	return String("hashtag", tag)
}

func Operation(op string) Field {
	return String("operation", op)
}

// Latency is recorded in milliseconds.
func Latency(d time.Duration) Field {
	return Float64("latency_ms", float64(d.Microseconds())/1000)
}

func Count(n int) Field {
	return Int("count", n)
}

func Path(p string) Field {
	return String("path", p)
}

func URL(u string) Field {
	return String("url", u)
}
