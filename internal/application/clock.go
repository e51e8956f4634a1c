package application

import "time"

// Clock stamps history records. Swappable in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reports wall time in UTC so stored records compare across hosts.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
