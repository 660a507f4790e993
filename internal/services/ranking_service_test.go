// internal/services/ranking_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/casaprime/realty-backend/internal/models"
)

func performance(name string, sold int64, lifecycle models.Lifecycle) RealtorPerformance {
	return RealtorPerformance{
		RealtorID: uuid.New(),
		Name:      name,
		Lifecycle: lifecycle,
		Stats:     models.NewStatusCounts(0, 0, sold),
	}
}

func TestRankOrdersBySoldThenName(t *testing.T) {
	input := []RealtorPerformance{
		performance("carla", 2, models.LifecycleActive),
		performance("Bruno", 5, models.LifecycleActive),
		performance("Alice", 2, models.LifecycleActive),
	}

	ranked := Rank(input)

	require.Len(t, ranked, 3)
	assert.Equal(t, "Bruno", ranked[0].Name)
	assert.Equal(t, "Alice", ranked[1].Name)
	assert.Equal(t, "carla", ranked[2].Name)
	for i, entry := range ranked {
		assert.Equal(t, i+1, entry.Position)
	}

	// Input order is left alone.
	assert.Equal(t, "carla", input[0].Name)
}

func TestRankBreaksFullTiesByID(t *testing.T) {
	first := performance("Ana", 1, models.LifecycleActive)
	second := performance("ana", 1, models.LifecycleActive)

	forward := Rank([]RealtorPerformance{first, second})
	backward := Rank([]RealtorPerformance{second, first})

	assert.Equal(t, forward[0].RealtorID, backward[0].RealtorID)
	assert.Equal(t, forward[1].RealtorID, backward[1].RealtorID)
}

func TestRankDropsInactiveRealtors(t *testing.T) {
	ranked := Rank([]RealtorPerformance{
		performance("Ana", 9, models.LifecycleBlocked),
		performance("Bia", 1, models.LifecycleActive),
		performance("Caio", 7, models.LifecycleDeleted),
	})

	require.Len(t, ranked, 1)
	assert.Equal(t, "Bia", ranked[0].Name)
	assert.Equal(t, 1, ranked[0].Position)
	assert.Empty(t, Rank(nil))
}

type rankingSuite struct {
	serviceSuite
}

func (suite *rankingSuite) TestRankingHonoursLimit() {
	ana := suite.newRealtor("Ana", "ana@example.com", "11988887777")
	bia := suite.newRealtor("Bia", "bia@example.com", "11977776666")
	suite.newRealtor("Caio", "caio@example.com", "11966665555")
	suite.newProperty(bia.ID, "Um", models.PropertyStatusSold)
	suite.newProperty(bia.ID, "Dois", models.PropertyStatusSold)
	suite.newProperty(ana.ID, "Tres", models.PropertyStatusSold)

	ranked, err := suite.ranking.Ranking(suite.ctx, 2)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), ranked, 2)
	assert.Equal(suite.T(), bia.ID, ranked[0].RealtorID)
	assert.Equal(suite.T(), int64(2), ranked[0].Stats.Sold)
	assert.Equal(suite.T(), ana.ID, ranked[1].RealtorID)
}

func TestRankingSuite(t *testing.T) {
	suite.Run(t, new(rankingSuite))
}
