package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/anonto42/scholarfolio/backend/internal/repositories"
	"github.com/rs/zerolog"
)

// WorkService owns the create/read/update/delete flows of the four work types.
type WorkService struct {
	stores     *repositories.Registry
	resolver   *WorkResolver
	references *ReferenceMaintainer
	log        zerolog.Logger
}

func NewWorkService(stores *repositories.Registry, resolver *WorkResolver, references *ReferenceMaintainer, logger zerolog.Logger) *WorkService {
	return &WorkService{
		stores:     stores,
		resolver:   resolver,
		references: references,
		log:        logger.With().Str("component", "works").Logger(),
	}
}

// fields a client may patch, per type, on top of the common ones
var patchableFields = map[models.WorkType][]string{
	models.WorkTypePublication:     {"authors", "venue", "year", "doi", "url"},
	models.WorkTypeResearchProject: {"status", "startDate", "endDate", "collaborators", "funding"},
	models.WorkTypePortfolioItem:   {"category", "mediaUrls", "link"},
	models.WorkTypeStudentProject:  {"studentNames", "repoUrl"},
}

var commonPatchableFields = []string{"title", "description", "visibility", "tags"}

func (s *WorkService) newWork(t models.WorkType, ownerID string, req models.CreateWorkRequest) models.Work {
	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	now := nowMillis()
	return models.Work{
		ID:          newID(t.Prefix()),
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Visibility:  visibility,
		Tags:        req.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// checkOwner validates the lecturer id of a create request against the actor.
func (s *WorkService) checkOwner(ctx context.Context, actor Actor, lecturerID string) error {
	if lecturerID == "" {
		return Unprocessable("lecturerId is required")
	}
	if lecturerID != actor.ID {
		return Forbidden("cannot create works for another lecturer")
	}
	owner, err := s.stores.Users.Get(ctx, lecturerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return NotFound("lecturer %s not found", lecturerID)
	}
	if err != nil {
		return err
	}
	if owner.Role != models.RoleLecturer {
		return Unprocessable("user %s is not a lecturer", lecturerID)
	}
	return nil
}

// persist attaches the reference, then writes the work. If the write fails the
// reference is detached again on a best-effort basis.
func persist[T academicEntity](ctx context.Context, s *WorkService, c repositories.Collection[T], item T, courseID string) error {
	base := item.Base()
	ref := WorkRef{WorkID: base.ID, Type: item.Kind(), OwnerID: base.OwnerID, CourseID: courseID}
	if err := s.references.Attach(ctx, ref); err != nil {
		return err
	}
	if err := c.Create(ctx, &item); err != nil {
		if detachErr := s.references.Detach(ctx, ref); detachErr != nil {
			s.log.Error().Err(detachErr).Str("work_id", base.ID).Msg("compensating detach failed")
		}
		return fmt.Errorf("create %s: %w", item.Kind(), err)
	}
	return nil
}

func (s *WorkService) CreatePublication(ctx context.Context, actor Actor, req models.CreatePublicationRequest) (*models.Publication, error) {
	if err := s.checkOwner(ctx, actor, req.LecturerID); err != nil {
		return nil, err
	}
	pub := models.Publication{
		Work:    s.newWork(models.WorkTypePublication, req.LecturerID, req.CreateWorkRequest),
		Authors: req.Authors,
		Venue:   req.Venue,
		Year:    req.Year,
		DOI:     req.DOI,
		URL:     req.URL,
	}
	if err := persist(ctx, s, s.stores.Publications, pub, ""); err != nil {
		return nil, err
	}
	return &pub, nil
}

func (s *WorkService) CreateResearchProject(ctx context.Context, actor Actor, req models.CreateResearchProjectRequest) (*models.ResearchProject, error) {
	if err := s.checkOwner(ctx, actor, req.LecturerID); err != nil {
		return nil, err
	}
	project := models.ResearchProject{
		Work:          s.newWork(models.WorkTypeResearchProject, req.LecturerID, req.CreateWorkRequest),
		Status:        req.Status,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Collaborators: req.Collaborators,
		Funding:       req.Funding,
	}
	if err := persist(ctx, s, s.stores.ResearchProjects, project, ""); err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *WorkService) CreatePortfolioItem(ctx context.Context, actor Actor, req models.CreatePortfolioItemRequest) (*models.PortfolioItem, error) {
	if err := s.checkOwner(ctx, actor, req.LecturerID); err != nil {
		return nil, err
	}
	item := models.PortfolioItem{
		Work:      s.newWork(models.WorkTypePortfolioItem, req.LecturerID, req.CreateWorkRequest),
		Category:  req.Category,
		MediaURLs: req.MediaURLs,
		Link:      req.Link,
	}
	if err := persist(ctx, s, s.stores.PortfolioItems, item, ""); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateStudentProject files a project under a course; the course's lecturer owns it.
func (s *WorkService) CreateStudentProject(ctx context.Context, actor Actor, req models.CreateStudentProjectRequest) (*models.StudentProject, error) {
	if req.CourseID == "" {
		return nil, Unprocessable("courseId is required")
	}
	course, err := s.stores.Courses.Get(ctx, req.CourseID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, NotFound("course %s not found", req.CourseID)
	}
	if err != nil {
		return nil, err
	}
	if req.LecturerID != "" && req.LecturerID != course.LecturerID {
		return nil, Unprocessable("lecturerId does not match the course lecturer")
	}
	if actor.ID != course.LecturerID {
		return nil, Forbidden("only the course lecturer can add student projects")
	}
	project := models.StudentProject{
		Work:         s.newWork(models.WorkTypeStudentProject, course.LecturerID, req.CreateWorkRequest),
		CourseID:     course.ID,
		StudentNames: req.StudentNames,
		RepoURL:      req.RepoURL,
	}
	if err := persist(ctx, s, s.stores.StudentProjects, project, course.ID); err != nil {
		return nil, err
	}
	return &project, nil
}

// GetWork fetches any work by id. Private works are only visible to their owner.
func (s *WorkService) GetWork(ctx context.Context, viewerID, id string) (*models.AcademicWork, error) {
	resolved, err := s.resolver.ResolveVisible(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	work := resolved.Work
	if work.Type != models.WorkTypePublication {
		if owner, err := s.stores.Users.Get(ctx, resolved.OwnerID); err == nil {
			work.OwnerName = owner.DisplayName()
		}
	}
	return &work, nil
}

// ListWorks returns works of one type visible to the viewer, newest first.
// An empty ownerID lists every owner.
func (s *WorkService) ListWorks(ctx context.Context, viewerID string, t models.WorkType, ownerID string) ([]models.AcademicWork, error) {
	all, err := s.listType(ctx, t)
	if err != nil {
		return nil, err
	}
	out := []models.AcademicWork{}
	for _, w := range all {
		if ownerID != "" && w.OwnerID != ownerID {
			continue
		}
		if w.VisibleTo(viewerID) {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

// Search filters every visible work whose title, description or tags contain query.
func (s *WorkService) Search(ctx context.Context, viewerID, query string) ([]models.AcademicWork, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, BadRequest("search query is required")
	}
	out := []models.AcademicWork{}
	for _, t := range models.WorkTypes {
		works, err := s.listType(ctx, t)
		if err != nil {
			return nil, err
		}
		for _, w := range works {
			if w.VisibleTo(viewerID) && matches(w, needle) {
				out = append(out, w)
			}
		}
	}
	return out, nil
}

func matches(w models.AcademicWork, needle string) bool {
	if strings.Contains(strings.ToLower(w.Title), needle) || strings.Contains(strings.ToLower(w.Description), needle) {
		return true
	}
	for _, tag := range w.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func (s *WorkService) listType(ctx context.Context, t models.WorkType) ([]models.AcademicWork, error) {
	switch t {
	case models.WorkTypePublication:
		return listAcademic(ctx, s.stores.Publications)
	case models.WorkTypeResearchProject:
		return listAcademic(ctx, s.stores.ResearchProjects)
	case models.WorkTypePortfolioItem:
		return listAcademic(ctx, s.stores.PortfolioItems)
	case models.WorkTypeStudentProject:
		return listAcademic(ctx, s.stores.StudentProjects)
	}
	return nil, BadRequest("unknown work type %q", t)
}

func listAcademic[T academicEntity](ctx context.Context, c repositories.Collection[T]) ([]models.AcademicWork, error) {
	items, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.AcademicWork, 0, len(items))
	for _, item := range items {
		out = append(out, models.ToAcademicWork(item))
	}
	return out, nil
}

// UpdateWork patches a work owned by the actor. Identity, ownership and
// createdAt are never patchable. When expectedType is set the id must resolve
// to it.
func (s *WorkService) UpdateWork(ctx context.Context, actor Actor, id string, expectedType models.WorkType, fields map[string]any) (*models.AcademicWork, error) {
	types := models.WorkTypes
	if expectedType != "" {
		types = []models.WorkType{expectedType}
	}
	resolved, err := s.resolver.ResolveAmong(ctx, id, types...)
	if err != nil {
		return nil, err
	}
	if resolved.OwnerID != actor.ID {
		return nil, Forbidden("you are not authorized to update this work")
	}
	patch, err := sanitizePatch(resolved.ResourceType, fields)
	if err != nil {
		return nil, err
	}
	if err := checkPatchType(resolved.ResourceType, patch); err != nil {
		return nil, BadRequest("invalid update: %v", err)
	}
	patch["updatedAt"] = nowMillis()
	if err := s.patchType(ctx, resolved.ResourceType, id, patch); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NotFound("work %s not found", id)
		}
		return nil, err
	}
	return s.GetWork(ctx, actor.ID, id)
}

func sanitizePatch(t models.WorkType, fields map[string]any) (map[string]any, error) {
	allowed := append(append([]string{}, commonPatchableFields...), patchableFields[t]...)
	patch := make(map[string]any, len(fields))
	for key, value := range fields {
		if !contains(allowed, key) {
			return nil, BadRequest("field %q cannot be updated", key)
		}
		patch[key] = value
	}
	if title, ok := patch["title"]; ok {
		str, isString := title.(string)
		if !isString || strings.TrimSpace(str) == "" {
			return nil, BadRequest("title must be a non-empty string")
		}
		patch["title"] = strings.TrimSpace(str)
	}
	if visibility, ok := patch["visibility"]; ok {
		v, _ := visibility.(string)
		if v != string(models.VisibilityPublic) && v != string(models.VisibilityPrivate) {
			return nil, BadRequest("visibility must be public or private")
		}
	}
	if len(patch) == 0 {
		return nil, BadRequest("nothing to update")
	}
	return patch, nil
}

func checkPatchType(t models.WorkType, patch map[string]any) error {
	switch t {
	case models.WorkTypePublication:
		return repositories.CheckPatch[models.Publication](patch)
	case models.WorkTypeResearchProject:
		return repositories.CheckPatch[models.ResearchProject](patch)
	case models.WorkTypePortfolioItem:
		return repositories.CheckPatch[models.PortfolioItem](patch)
	case models.WorkTypeStudentProject:
		return repositories.CheckPatch[models.StudentProject](patch)
	}
	return fmt.Errorf("unknown work type %q", t)
}

func (s *WorkService) patchType(ctx context.Context, t models.WorkType, id string, patch map[string]any) error {
	switch t {
	case models.WorkTypePublication:
		return s.stores.Publications.Patch(ctx, id, patch)
	case models.WorkTypeResearchProject:
		return s.stores.ResearchProjects.Patch(ctx, id, patch)
	case models.WorkTypePortfolioItem:
		return s.stores.PortfolioItems.Patch(ctx, id, patch)
	case models.WorkTypeStudentProject:
		return s.stores.StudentProjects.Patch(ctx, id, patch)
	}
	return fmt.Errorf("unknown work type %q", t)
}

// DeleteWork fetches the work, detaches it from its owner or course, then
// deletes the record. When expectedType is set the id must resolve to it.
func (s *WorkService) DeleteWork(ctx context.Context, actor Actor, id string, expectedType models.WorkType) error {
	types := models.WorkTypes
	if expectedType != "" {
		types = []models.WorkType{expectedType}
	}
	resolved, err := s.resolver.ResolveAmong(ctx, id, types...)
	if err != nil {
		return err
	}
	if resolved.OwnerID != actor.ID {
		return Forbidden("you are not authorized to delete this work")
	}
	if err := s.references.Detach(ctx, refOf(resolved.Work)); err != nil {
		return fmt.Errorf("detach %s: %w", id, err)
	}
	if _, err := s.deleteType(ctx, resolved.ResourceType, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	s.log.Info().Str("work_id", id).Str("type", string(resolved.ResourceType)).Msg("work deleted")
	return nil
}

func (s *WorkService) deleteType(ctx context.Context, t models.WorkType, id string) (bool, error) {
	switch t {
	case models.WorkTypePublication:
		return s.stores.Publications.Delete(ctx, id)
	case models.WorkTypeResearchProject:
		return s.stores.ResearchProjects.Delete(ctx, id)
	case models.WorkTypePortfolioItem:
		return s.stores.PortfolioItems.Delete(ctx, id)
	case models.WorkTypeStudentProject:
		return s.stores.StudentProjects.Delete(ctx, id)
	}
	return false, fmt.Errorf("unknown work type %q", t)
}
