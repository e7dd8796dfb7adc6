package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const pingBudget = 5 * time.Second

// Status is what `mediplus db status` prints.
type Status struct {
	Schema        string `json:"schema"`
	Healthy       bool   `json:"healthy"`
	PingLatency   string `json:"ping_latency,omitempty"`
	ServerVersion string `json:"server_version,omitempty"`
	Error         string `json:"error,omitempty"`
	Pool          Pool   `json:"pool"`
}

// Pool is a snapshot of pgxpool counters.
type Pool struct {
	Total    int32  `json:"total"`
	Idle     int32  `json:"idle"`
	Acquired int32  `json:"acquired"`
	Max      int32  `json:"max"`
	Acquires int64  `json:"acquires"`
	WaitTime string `json:"wait_time"`
}

func poolSnapshot(pool *pgxpool.Pool) Pool {
	st := pool.Stat()
	return Pool{
		Total:    st.TotalConns(),
		Idle:     st.IdleConns(),
		Acquired: st.AcquiredConns(),
		Max:      st.MaxConns(),
		Acquires: st.AcquireCount(),
		WaitTime: st.AcquireDuration().String(),
	}
}

// Check pings the server and reads its version. The returned Status is
// always filled; err is the first failure.
func Check(ctx context.Context, pool *pgxpool.Pool, schema string) (*Status, error) {
	ctx, cancel := context.WithTimeout(ctx, pingBudget)
	defer cancel()

	s := &Status{Schema: schema}
	start := time.Now()
	err := pool.Ping(ctx)
	if err == nil {
		s.PingLatency = time.Since(start).Round(time.Microsecond).String()
		err = pool.QueryRow(ctx, `SHOW server_version`).Scan(&s.ServerVersion)
	}
	s.Pool = poolSnapshot(pool)
	if err != nil {
		s.Error = err.Error()
		return s, err
	}
	s.Healthy = true
	return s, nil
}
