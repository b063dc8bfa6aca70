package models

import "strings"

// WorkType identifies which of the four work collections a record lives in
type WorkType string

const (
	WorkTypePublication     WorkType = "publication"
	WorkTypeResearchProject WorkType = "research-project"
	WorkTypePortfolioItem   WorkType = "portfolio-item"
	WorkTypeStudentProject  WorkType = "student-project"
)

// WorkTypes is the fixed order in which collections are probed for an unknown id.
var WorkTypes = []WorkType{
	WorkTypePublication,
	WorkTypeResearchProject,
	WorkTypePortfolioItem,
	WorkTypeStudentProject,
}

// PerformanceWorkTypes are the types counted by lecturer analytics.
var PerformanceWorkTypes = []WorkType{
	WorkTypePublication,
	WorkTypeResearchProject,
	WorkTypePortfolioItem,
}

var workTypePrefixes = map[WorkType]string{
	WorkTypePublication:     "pub",
	WorkTypeResearchProject: "rp",
	WorkTypePortfolioItem:   "pi",
	WorkTypeStudentProject:  "sp",
}

// Prefix returns the id prefix used for works of this type.
func (t WorkType) Prefix() string {
	return workTypePrefixes[t]
}

// Label is the human readable name used in notification messages.
func (t WorkType) Label() string {
	return strings.ReplaceAll(string(t), "-", " ")
}

// Valid reports whether t is one of the four known work types.
func (t WorkType) Valid() bool {
	_, ok := workTypePrefixes[t]
	return ok
}

// WorkTypeFromID returns the type encoded in a work id prefix, if any.
func WorkTypeFromID(id string) (WorkType, bool) {
	prefix, _, found := strings.Cut(id, "_")
	if !found {
		return "", false
	}
	for t, p := range workTypePrefixes {
		if p == prefix {
			return t, true
		}
	}
	return "", false
}

// Visibility controls who can read a work
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Work holds the fields shared by every kind of academic work
type Work struct {
	ID          string     `json:"id" bson:"_id"`
	OwnerID     string     `json:"ownerId" bson:"ownerId"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	Visibility  Visibility `json:"visibility" bson:"visibility"`
	Tags        []string   `json:"tags,omitempty" bson:"tags,omitempty"`
	CreatedAt   int64      `json:"createdAt" bson:"createdAt"` // epoch millis
	UpdatedAt   int64      `json:"updatedAt" bson:"updatedAt"`
}

func (w Work) EntityID() string { return w.ID }

// VisibleTo reports whether the viewer may read the work. An empty viewer is anonymous.
func (w Work) VisibleTo(viewerID string) bool {
	return w.Visibility != VisibilityPrivate || (viewerID != "" && viewerID == w.OwnerID)
}

// Academic is implemented by the four work record types.
type Academic interface {
	Base() Work
	Kind() WorkType
}

// Publication is a paper, article or book authored by a lecturer
type Publication struct {
	Work    `bson:",inline"`
	Authors []string `json:"authors" bson:"authors"`
	Venue   string   `json:"venue,omitempty" bson:"venue,omitempty"`
	Year    int      `json:"year,omitempty" bson:"year,omitempty"`
	DOI     string   `json:"doi,omitempty" bson:"doi,omitempty"`
	URL     string   `json:"url,omitempty" bson:"url,omitempty"`
}

func (p Publication) Base() Work     { return p.Work }
func (p Publication) Kind() WorkType { return WorkTypePublication }

// ResearchProject is a funded or ongoing research effort
type ResearchProject struct {
	Work          `bson:",inline"`
	Status        string   `json:"status,omitempty" bson:"status,omitempty"` // planned, active, completed
	StartDate     string   `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate       string   `json:"endDate,omitempty" bson:"endDate,omitempty"`
	Collaborators []string `json:"collaborators,omitempty" bson:"collaborators,omitempty"`
	Funding       string   `json:"funding,omitempty" bson:"funding,omitempty"`
}

func (p ResearchProject) Base() Work     { return p.Work }
func (p ResearchProject) Kind() WorkType { return WorkTypeResearchProject }

// PortfolioItem is a showcase entry (talk, award, software, media)
type PortfolioItem struct {
	Work      `bson:",inline"`
	Category  string   `json:"category,omitempty" bson:"category,omitempty"`
	MediaURLs []string `json:"mediaUrls,omitempty" bson:"mediaUrls,omitempty"`
	Link      string   `json:"link,omitempty" bson:"link,omitempty"`
}

func (p PortfolioItem) Base() Work     { return p.Work }
func (p PortfolioItem) Kind() WorkType { return WorkTypePortfolioItem }

// StudentProject is a project submitted within a lecturer's course
type StudentProject struct {
	Work         `bson:",inline"`
	CourseID     string   `json:"courseId" bson:"courseId"`
	StudentNames []string `json:"studentNames,omitempty" bson:"studentNames,omitempty"`
	RepoURL      string   `json:"repoUrl,omitempty" bson:"repoUrl,omitempty"`
}

func (p StudentProject) Base() Work     { return p.Work }
func (p StudentProject) Kind() WorkType { return WorkTypeStudentProject }

// AcademicWork is the uniform read shape returned by the work resolver
type AcademicWork struct {
	Work
	Type      WorkType `json:"type"`
	OwnerName string   `json:"ownerName,omitempty"`
	Authors   []string `json:"authors,omitempty"`
	CourseID  string   `json:"courseId,omitempty"`
	Item      Academic `json:"item"`
}

// ToAcademicWork flattens any work record into the uniform shape.
func ToAcademicWork(a Academic) AcademicWork {
	w := AcademicWork{Work: a.Base(), Type: a.Kind(), Item: a}
	switch v := a.(type) {
	case Publication:
		w.Authors = v.Authors
	case StudentProject:
		w.CourseID = v.CourseID
	}
	return w
}

// CreateWorkRequest holds the fields common to every create payload
type CreateWorkRequest struct {
	LecturerID  string     `json:"lecturerId"`
	Title       string     `json:"title" validate:"required,min=1,max=300"`
	Description string     `json:"description,omitempty" validate:"omitempty,max=5000"`
	Visibility  Visibility `json:"visibility,omitempty" validate:"omitempty,oneof=public private"`
	Tags        []string   `json:"tags,omitempty"`
}

type CreatePublicationRequest struct {
	CreateWorkRequest
	Authors []string `json:"authors,omitempty"`
	Venue   string   `json:"venue,omitempty"`
	Year    int      `json:"year,omitempty" validate:"omitempty,min=1900,max=2200"`
	DOI     string   `json:"doi,omitempty"`
	URL     string   `json:"url,omitempty" validate:"omitempty,url"`
}

type CreateResearchProjectRequest struct {
	CreateWorkRequest
	Status        string   `json:"status,omitempty" validate:"omitempty,oneof=planned active completed"`
	StartDate     string   `json:"startDate,omitempty"`
	EndDate       string   `json:"endDate,omitempty"`
	Collaborators []string `json:"collaborators,omitempty"`
	Funding       string   `json:"funding,omitempty"`
}

type CreatePortfolioItemRequest struct {
	CreateWorkRequest
	Category  string   `json:"category,omitempty"`
	MediaURLs []string `json:"mediaUrls,omitempty" validate:"omitempty,dive,url"`
	Link      string   `json:"link,omitempty" validate:"omitempty,url"`
}

type CreateStudentProjectRequest struct {
	CreateWorkRequest
	CourseID     string   `json:"courseId"`
	StudentNames []string `json:"studentNames,omitempty"`
	RepoURL      string   `json:"repoUrl,omitempty" validate:"omitempty,url"`
}
