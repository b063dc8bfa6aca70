package services

import (
	"context"
	"errors"
	"sort"

	"github.com/anonto42/scholarfolio/backend/internal/models"
	"github.com/anonto42/scholarfolio/backend/internal/repositories"
)

// WorkEngagement is one row of a lecturer's analytics breakdown
type WorkEngagement struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Type  models.WorkType `json:"type"`
	Likes int             `json:"likes"`
	Saves int             `json:"saves"`
}

// LecturerAnalytics sums engagement over a lecturer's publications, research
// projects and portfolio items.
type LecturerAnalytics struct {
	TotalLikes    int              `json:"totalLikes"`
	TotalSaves    int              `json:"totalSaves"`
	WorkBreakdown []WorkEngagement `json:"workBreakdown"`
}

// AnalyticsAggregator computes analytics with a full scan of students and
// likes on every call. Nothing is cached.
type AnalyticsAggregator struct {
	stores *repositories.Registry
}

func NewAnalyticsAggregator(stores *repositories.Registry) *AnalyticsAggregator {
	return &AnalyticsAggregator{stores: stores}
}

func (a *AnalyticsAggregator) Compute(ctx context.Context, lecturerID string) (*LecturerAnalytics, error) {
	lecturer, err := a.stores.Users.Get(ctx, lecturerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, NotFound("lecturer %s not found", lecturerID)
	}
	if err != nil {
		return nil, err
	}

	owned := make(map[string]struct{})
	for _, list := range [][]string{lecturer.PublicationIDs, lecturer.ProjectIDs, lecturer.PortfolioItemIDs} {
		for _, id := range list {
			owned[id] = struct{}{}
		}
	}
	result := &LecturerAnalytics{WorkBreakdown: []WorkEngagement{}}
	if len(owned) == 0 {
		return result, nil
	}

	saves := make(map[string]int)
	users, err := a.stores.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Role != models.RoleStudent {
			continue
		}
		for _, id := range u.SavedItemIDs {
			if _, ok := owned[id]; ok {
				saves[id]++
				result.TotalSaves++
			}
		}
	}

	likes := make(map[string]int)
	allLikes, err := a.stores.Likes.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, like := range allLikes {
		if like.SubjectType != models.LikeSubjectPost {
			continue
		}
		if _, ok := owned[like.PostID]; ok {
			likes[like.PostID]++
			result.TotalLikes++
		}
	}

	works, err := a.performanceWorks(ctx)
	if err != nil {
		return nil, err
	}
	for _, w := range works {
		if _, ok := owned[w.ID]; !ok {
			continue
		}
		result.WorkBreakdown = append(result.WorkBreakdown, WorkEngagement{
			ID:    w.ID,
			Title: w.Title,
			Type:  w.Type,
			Likes: likes[w.ID],
			Saves: saves[w.ID],
		})
	}
	sort.SliceStable(result.WorkBreakdown, func(i, j int) bool {
		bi, bj := result.WorkBreakdown[i], result.WorkBreakdown[j]
		return bi.Likes+bi.Saves > bj.Likes+bj.Saves
	})
	return result, nil
}

func (a *AnalyticsAggregator) performanceWorks(ctx context.Context) ([]models.AcademicWork, error) {
	var out []models.AcademicWork
	pubs, err := listAcademic(ctx, a.stores.Publications)
	if err != nil {
		return nil, err
	}
	out = append(out, pubs...)
	projects, err := listAcademic(ctx, a.stores.ResearchProjects)
	if err != nil {
		return nil, err
	}
	out = append(out, projects...)
	items, err := listAcademic(ctx, a.stores.PortfolioItems)
	if err != nil {
		return nil, err
	}
	return append(out, items...), nil
}
