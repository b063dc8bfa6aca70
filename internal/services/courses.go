package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/anonto42/scholarfolio/backend/internal/repositories"
	"github.com/rs/zerolog"
)

// CourseService manages courses and their lecturer's courseIds list
type CourseService struct {
	stores     *repositories.Registry
	references *ReferenceMaintainer
	log        zerolog.Logger
}

func NewCourseService(stores *repositories.Registry, references *ReferenceMaintainer, logger zerolog.Logger) *CourseService {
	return &CourseService{
		stores:     stores,
		references: references,
		log:        logger.With().Str("component", "courses").Logger(),
	}
}

func (s *CourseService) CreateCourse(ctx context.Context, actor Actor, req models.CreateCourseRequest) (*models.Course, error) {
	if req.LecturerID == "" {
		return nil, Unprocessable("lecturerId is required")
	}
	if req.LecturerID != actor.ID {
		return nil, Forbidden("cannot create courses for another lecturer")
	}
	lecturer, err := s.stores.Users.Get(ctx, req.LecturerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, NotFound("lecturer %s not found", req.LecturerID)
	}
	if err != nil {
		return nil, err
	}
	if lecturer.Role != models.RoleLecturer {
		return nil, Unprocessable("user %s is not a lecturer", req.LecturerID)
	}

	course := models.Course{
		ID:         newID("course"),
		LecturerID: req.LecturerID,
		Code:       req.Code,
		Title:      strings.TrimSpace(req.Title),
		Term:       req.Term,
		CreatedAt:  nowMillis(),
	}
	if err := s.references.AttachCourse(ctx, course.LecturerID, course.ID); err != nil {
		return nil, err
	}
	if err := s.stores.Courses.Create(ctx, &course); err != nil {
		if detachErr := s.references.DetachCourse(ctx, course.LecturerID, course.ID); detachErr != nil {
			s.log.Error().Err(detachErr).Str("course_id", course.ID).Msg("compensating course detach failed")
		}
		return nil, fmt.Errorf("create course: %w", err)
	}
	return &course, nil
}

func (s *CourseService) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.stores.Courses.Get(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, NotFound("course %s not found", id)
	}
	return course, err
}

// ListCourses returns the courses of one lecturer, or every course when lecturerID is empty.
func (s *CourseService) ListCourses(ctx context.Context, lecturerID string) ([]models.Course, error) {
	all, err := s.stores.Courses.List(ctx)
	if err != nil {
		return nil, err
	}
	if lecturerID == "" {
		return all, nil
	}
	out := []models.Course{}
	for _, c := range all {
		if c.LecturerID == lecturerID {
			out = append(out, c)
		}
	}
	return out, nil
}

// ListProjects returns the course's student projects visible to the viewer,
// in the order they were attached. Dangling ids are skipped.
func (s *CourseService) ListProjects(ctx context.Context, viewerID, courseID string) ([]models.StudentProject, error) {
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	out := []models.StudentProject{}
	for _, id := range course.StudentProjectIDs {
		project, err := s.stores.StudentProjects.Get(ctx, id)
		if errors.Is(err, repositories.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if project.VisibleTo(viewerID) {
			out = append(out, *project)
		}
	}
	return out, nil
}

// DeleteCourse removes the course's student projects, detaches the course from
// its lecturer and deletes it.
func (s *CourseService) DeleteCourse(ctx context.Context, actor Actor, id string) error {
	course, err := s.GetCourse(ctx, id)
	if err != nil {
		return err
	}
	if course.LecturerID != actor.ID {
		return Forbidden("you are not authorized to delete this course")
	}
	if err := s.stores.StudentProjects.DeleteMany(ctx, course.StudentProjectIDs); err != nil {
		return fmt.Errorf("delete student projects of %s: %w", id, err)
	}
	if err := s.references.DetachCourse(ctx, course.LecturerID, id); err != nil {
		return fmt.Errorf("detach course %s: %w", id, err)
	}
	if _, err := s.stores.Courses.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete course %s: %w", id, err)
	}
	return nil
}
