package sqldb

import (
	"time"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

const slowQueryThreshold = 500 * time.Millisecond

// eventReceiver forwards dbr instrumentation to zap.
type eventReceiver struct {
	logger *zap.Logger
}

var _ dbr.EventReceiver = (*eventReceiver)(nil)

func newEventReceiver(logger *zap.Logger) *eventReceiver {
	return &eventReceiver{logger: logger.Named("dbr")}
}

func (r *eventReceiver) Event(eventName string) {}

func (r *eventReceiver) EventKv(eventName string, kvs map[string]string) {}

func (r *eventReceiver) EventErr(eventName string, err error) error {
	return r.EventErrKv(eventName, err, nil)
}

func (r *eventReceiver) EventErrKv(eventName string, err error, kvs map[string]string) error {
	if err == dbr.ErrNotFound {
		return err
	}
	r.logger.Debug("query error",
		zap.String("event", eventName),
		zap.String("sql", kvs["sql"]),
		zap.Error(err),
	)
	return err
}

func (r *eventReceiver) Timing(eventName string, nanoseconds int64) {}

func (r *eventReceiver) TimingKv(eventName string, nanoseconds int64, kvs map[string]string) {
	if d := time.Duration(nanoseconds); d >= slowQueryThreshold {
		r.logger.Warn("slow query",
			zap.String("event", eventName),
			zap.String("sql", kvs["sql"]),
			zap.Duration("duration", d),
		)
	}
}
