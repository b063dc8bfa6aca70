package services

import (
	"time"

	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/google/uuid"
)

// Actor is the verified subject performing an operation
type Actor struct {
	ID   string
	Role models.Role
}

func (a Actor) IsLecturer() bool { return a.Role == models.RoleLecturer }

// nowMillis is replaced in tests to get deterministic ordering.
var nowMillis = func() int64 { return time.Now().UnixMilli() }

func newID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}
