// internal/services/services_test.go
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/casaprime/realty-backend/internal/database"
	"github.com/casaprime/realty-backend/internal/models"
	"github.com/casaprime/realty-backend/internal/store"
)

// serviceSuite wires every service over a fresh in-memory database.
type serviceSuite struct {
	suite.Suite
	ctx        context.Context
	db         *gorm.DB
	store      store.Store
	realtors   *RealtorService
	properties *PropertyService
	status     *StatusService
	stats      *StatsService
	ranking    *RankingService
	admin      Actor
}

func (s *serviceSuite) SetupTest() {
	db, err := database.OpenInMemory()
	require.NoError(s.T(), err)

	workflow, err := NewWorkflow(WorkflowFree)
	require.NoError(s.T(), err)

	s.ctx = context.Background()
	s.db = db
	s.store = store.NewGormStore(db)
	s.realtors = NewRealtorService(s.store)
	s.properties = NewPropertyService(s.store)
	s.status = NewStatusService(s.store, workflow)
	s.stats = NewStatsService(s.store, time.UTC)
	s.ranking = NewRankingService(s.store)
	s.admin = Actor{ID: uuid.New(), Name: "Admin"}
}

func (s *serviceSuite) newRealtor(name, email, phone string) RealtorView {
	result, err := s.realtors.CreateRealtor(s.ctx, CreateRealtorRequest{
		Name:  name,
		Email: email,
		Phone: phone,
	}, s.admin)
	require.NoError(s.T(), err)
	return result.Realtor
}

func (s *serviceSuite) newProperty(realtorID uuid.UUID, title string, status models.PropertyStatus) *models.Property {
	property, err := s.properties.CreateProperty(s.ctx, realtorID, CreatePropertyRequest{
		Title:    title,
		Price:    450000,
		Category: models.CategoryApartment,
		Status:   status,
		Location: "Moema, São Paulo",
		State:    "sp",
	}, Actor{Name: "Ana"})
	require.NoError(s.T(), err)
	return property
}

func (s *serviceSuite) setStatus(propertyID uuid.UUID, status models.PropertyStatus) *models.Property {
	property, err := s.status.ChangeStatus(s.ctx, ChangeStatusInput{
		PropertyID: propertyID,
		Status:     status,
		ChangedBy:  "Ana",
	})
	require.NoError(s.T(), err)
	return property
}

func (s *serviceSuite) counters(realtorID uuid.UUID) models.StatusCounts {
	counts, err := s.stats.PerRealtorStats(s.ctx, realtorID)
	require.NoError(s.T(), err)
	return counts
}

// scanCounts derives a realtor's counters from the live properties.
func (s *serviceSuite) scanCounts(realtorID uuid.UUID) models.StatusCounts {
	properties, err := s.store.ListProperties(s.ctx, store.PropertyQuery{RealtorIDs: []uuid.UUID{realtorID}})
	require.NoError(s.T(), err)
	return CountByStatus(properties)
}
