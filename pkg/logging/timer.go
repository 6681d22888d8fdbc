package logging

import "time"

// TimedOperation logs a message with the elapsed time once the operation ends.
type TimedOperation struct {
	logger Logger
	msg    string
	start  time.Time
	fields []Field
}

func StartTimer(logger Logger, msg string, fields ...Field) *TimedOperation {
	return &TimedOperation{logger: logger, msg: msg, start: time.Now(), fields: fields}
}

// Elapsed reports the time since StartTimer.
func (t *TimedOperation) Elapsed() time.Duration {
	return time.Since(t.start)
}

func (t *TimedOperation) End() {
	t.logger.Info(t.msg, t.with(Latency(t.Elapsed()))...)
}

// EndError logs at error level with the error attached.
func (t *TimedOperation) EndError(err error) {
	t.logger.Error(t.msg, t.with(Latency(t.Elapsed()), Error(err))...)
}

func (t *TimedOperation) with(extra ...Field) []Field {
	out := make([]Field, 0, len(t.fields)+len(extra))
	return append(append(out, t.fields...), extra...)
}
