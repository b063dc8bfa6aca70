package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/scholarfolio/backend/internal/metrics"
	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/anonto42/scholarfolio/backend/internal/repositories"
	"github.com/rs/zerolog"
)

// WorkRef names a work and the record whose id list points at it.
// Student projects are listed on their course, every other type on its owner.
type WorkRef struct {
	WorkID   string
	Type     models.WorkType
	OwnerID  string
	CourseID string
}

func refOf(w models.AcademicWork) WorkRef {
	return WorkRef{WorkID: w.ID, Type: w.Type, OwnerID: w.OwnerID, CourseID: w.CourseID}
}

// ReferenceMaintainer keeps the denormalized id lists on profiles and courses
// in step with work creation and deletion. Attach and the work write are two
// separate single-entity writes; readers tolerate the gap.
type ReferenceMaintainer struct {
	users   repositories.Collection[models.UserProfile]
	courses repositories.Collection[models.Course]
	log     zerolog.Logger
}

func NewReferenceMaintainer(stores *repositories.Registry, logger zerolog.Logger) *ReferenceMaintainer {
	return &ReferenceMaintainer{
		users:   stores.Users,
		courses: stores.Courses,
		log:     logger.With().Str("component", "references").Logger(),
	}
}

// ownerList returns the profile list that holds works of type t.
func ownerList(u *models.UserProfile, t models.WorkType) (*[]string, error) {
	switch t {
	case models.WorkTypePublication:
		return &u.PublicationIDs, nil
	case models.WorkTypeResearchProject:
		return &u.ProjectIDs, nil
	case models.WorkTypePortfolioItem:
		return &u.PortfolioItemIDs, nil
	}
	return nil, fmt.Errorf("work type %q is not listed on a profile", t)
}

// Attach appends the work id to its owner's (or course's) list.
func (m *ReferenceMaintainer) Attach(ctx context.Context, ref WorkRef) error {
	if ref.Type == models.WorkTypeStudentProject {
		err := m.courses.Mutate(ctx, ref.CourseID, func(c *models.Course) error {
			c.StudentProjectIDs = append(c.StudentProjectIDs, ref.WorkID)
			return nil
		})
		if errors.Is(err, repositories.ErrNotFound) {
			return NotFound("course %s not found", ref.CourseID)
		}
		return err
	}
	err := m.users.Mutate(ctx, ref.OwnerID, func(u *models.UserProfile) error {
		list, err := ownerList(u, ref.Type)
		if err != nil {
			return err
		}
		*list = append(*list, ref.WorkID)
		return nil
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return NotFound("owner %s not found", ref.OwnerID)
	}
	return err
}

// Detach filters the work id out of its owner's (or course's) list. A missing
// owner or course is logged and skipped so the work itself can still be deleted.
func (m *ReferenceMaintainer) Detach(ctx context.Context, ref WorkRef) error {
	var err error
	if ref.Type == models.WorkTypeStudentProject {
		err = m.courses.Mutate(ctx, ref.CourseID, func(c *models.Course) error {
			c.StudentProjectIDs = without(c.StudentProjectIDs, ref.WorkID)
			return nil
		})
	} else {
		err = m.users.Mutate(ctx, ref.OwnerID, func(u *models.UserProfile) error {
			list, err := ownerList(u, ref.Type)
			if err != nil {
				return err
			}
			*list = without(*list, ref.WorkID)
			return nil
		})
	}
	if errors.Is(err, repositories.ErrNotFound) {
		metrics.DetachSkipped.WithLabelValues(string(ref.Type)).Inc()
		m.log.Warn().
			Str("work_id", ref.WorkID).
			Str("owner_id", ref.OwnerID).
			Str("course_id", ref.CourseID).
			Msg("owner record missing, skipping detach")
		return nil
	}
	return err
}

// AttachCourse appends a course id to its lecturer's courseIds.
func (m *ReferenceMaintainer) AttachCourse(ctx context.Context, lecturerID, courseID string) error {
	err := m.users.Mutate(ctx, lecturerID, func(u *models.UserProfile) error {
		u.CourseIDs = append(u.CourseIDs, courseID)
		return nil
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return NotFound("lecturer %s not found", lecturerID)
	}
	return err
}

// DetachCourse removes a course id from its lecturer, skipping a missing lecturer.
func (m *ReferenceMaintainer) DetachCourse(ctx context.Context, lecturerID, courseID string) error {
	err := m.users.Mutate(ctx, lecturerID, func(u *models.UserProfile) error {
		u.CourseIDs = without(u.CourseIDs, courseID)
		return nil
	})
	if errors.Is(err, repositories.ErrNotFound) {
		m.log.Warn().Str("course_id", courseID).Str("lecturer_id", lecturerID).Msg("lecturer missing, skipping course detach")
		return nil
	}
	return err
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
