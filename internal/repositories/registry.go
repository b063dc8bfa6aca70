package repositories

import (
	"github.com/anonto42/scholarfolio/backend/internal/models"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Registry groups the collections for every entity type.
type Registry struct {
	Users            Collection[models.UserProfile]
	Courses          Collection[models.Course]
	Publications     Collection[models.Publication]
	ResearchProjects Collection[models.ResearchProject]
	PortfolioItems   Collection[models.PortfolioItem]
	StudentProjects  Collection[models.StudentProject]
	Comments         Collection[models.Comment]
	Likes            Collection[models.Like]
	Notifications    Collection[models.Notification]
}

// NewRegistry stores profiles, courses and works as MongoDB documents and
// engagement records (comments, likes, notifications) as PostgreSQL rows.
func NewRegistry(mongoDB *mongo.Database, pgdb *gorm.DB) *Registry {
	return &Registry{
		Users:            NewMongoCollection[models.UserProfile](mongoDB, "users"),
		Courses:          NewMongoCollection[models.Course](mongoDB, "courses"),
		Publications:     NewMongoCollection[models.Publication](mongoDB, "publications"),
		ResearchProjects: NewMongoCollection[models.ResearchProject](mongoDB, "research_projects"),
		PortfolioItems:   NewMongoCollection[models.PortfolioItem](mongoDB, "portfolio_items"),
		StudentProjects:  NewMongoCollection[models.StudentProject](mongoDB, "student_projects"),
		Comments:         NewPostgresCollection[models.Comment](pgdb),
		Likes:            NewPostgresCollection[models.Like](pgdb),
		Notifications:    NewPostgresCollection[models.Notification](pgdb),
	}
}

// NewMemoryRegistry keeps everything in process memory
func NewMemoryRegistry() *Registry {
	return &Registry{
		Users:            NewMemoryCollection[models.UserProfile](),
		Courses:          NewMemoryCollection[models.Course](),
		Publications:     NewMemoryCollection[models.Publication](),
		ResearchProjects: NewMemoryCollection[models.ResearchProject](),
		PortfolioItems:   NewMemoryCollection[models.PortfolioItem](),
		StudentProjects:  NewMemoryCollection[models.StudentProject](),
		Comments:         NewMemoryCollection[models.Comment](),
		Likes:            NewMemoryCollection[models.Like](),
		Notifications:    NewMemoryCollection[models.Notification](),
	}
}

// PostgresModels lists the gorm models to auto-migrate
func PostgresModels() []any {
	return []any{&models.Comment{}, &models.Like{}, &models.Notification{}}
}
