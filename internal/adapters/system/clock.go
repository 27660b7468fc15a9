package system

import (
	"time"

	"github.com/evoteadm/evote/internal/core/ports"
)

type realClock struct{}

func NewClock() ports.Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) NowMillis() int64 {
	return time.Now().UnixMilli()
}
