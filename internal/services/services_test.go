package services

import (
	"context"
	"time"

	"github.com/isdelr/budget-manager-be/internal/auth"
	"github.com/isdelr/budget-manager-be/internal/database"
	"github.com/isdelr/budget-manager-be/internal/files"
	"github.com/isdelr/budget-manager-be/internal/models"
	"github.com/stretchr/testify/suite"
)

// serviceSuite wires every service over a fresh in-memory database.
type serviceSuite struct {
	suite.Suite
	ctx      context.Context
	db       *database.DB
	tokens   *auth.TokenManager
	store    *files.Store
	activity *ActivityService
	users    *UserService
	data     *DataService
	profiles *ProfileService
}

func (s *serviceSuite) SetupTest() {
	s.ctx = context.Background()

	db, err := database.New(database.DriverSQLite, ":memory:")
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(db))
	s.db = db

	store, err := files.New(s.T().TempDir())
	s.Require().NoError(err)
	s.store = store

	s.tokens = auth.NewTokenManager("test-secret", "budget-test", time.Hour)
	s.activity = NewActivityService(db)
	s.users = NewUserService(db, s.tokens, s.activity)
	s.data = NewDataService(db, s.activity)
	s.profiles = NewProfileService(db, store, s.activity)
}

func (s *serviceSuite) TearDownTest() {
	s.db.Close()
}

func (s *serviceSuite) createUser(username string) models.User {
	user, err := s.users.CreateUser(s.ctx, RegisterInput{
		Username: username,
		Password: username + "-password",
		Email:    username + "@example.com",
	})
	s.Require().NoError(err)
	return user
}

func (s *serviceSuite) activityTypes(user models.User) []string {
	entries, err := s.activity.GetRecentForUser(s.ctx, user.ID, 100)
	s.Require().NoError(err)
	types := make([]string, 0, len(entries))
	for _, e := range entries {
		types = append(types, e.Type)
	}
	return types
}
