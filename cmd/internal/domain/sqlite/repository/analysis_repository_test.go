package repository

import (
	"encoding/json"
	"testing"

	"echodft/cmd/internal/domain/entity"
	"echodft/cmd/internal/domain/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

// Whitespace and key order are intentionally unusual: the stored bytes
// must come back untouched.
const roundTripReport = `{
  "company": {"name": "Linear", "industry": "Software"},
  "traffic": {"monthlyVisitors":  2400000, "topCountries": ["US","DE"], "bounceRate": 38.25, "growthRate": 18},
  "revenue": {"growthRate": 40, "estimatedMRR": 3500000, "pricingTiers": ["Free", "Standard $8", "Plus $14"]},
  "seo": {"topKeywords": ["issue tracker"], "domainAuthority": 71, "dataSource": "estimated"},
  "techStack": {"frontend": ["React"], "backend": ["Node.js"]},
  "social": 42,
  "lovablePrompt": "Build a keyboard-first issue tracker"
}`

func newRecord(t *testing.T, id, userID int64, domain string, createdAt int64) (*entity.CompanyAnalysis, entity.Report) {
	t.Helper()
	var report entity.Report
	require.NoError(t, json.Unmarshal([]byte(roundTripReport), &report))

	rec := entity.NewCompanyAnalysis(userID, "https://"+domain, domain, "", entity.PipelineResearch, report)
	rec.ID = id
	rec.CreatedAt = createdAt
	return rec, report
}

func TestAnalysisRepository_RoundTripKeepsSubObjects(t *testing.T) {
	repo := NewAnalysisRepository(setupTestDB(t))

	rec, report := newRecord(t, 1, 10, "linear.app", 1000)
	require.NoError(t, repo.Save(rec))

	loaded, err := repo.FindLatestByUserAndDomain(10, "linear.app", "")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, []byte(report[entity.KeyTraffic]), []byte(loaded.Traffic))
	assert.Equal(t, []byte(report[entity.KeyRevenue]), []byte(loaded.Revenue))
	assert.Equal(t, []byte(report[entity.KeySEO]), []byte(loaded.SEO))
	// Scalar documents survive too (no numeric affinity on the column).
	assert.Equal(t, "42", string(loaded.Social))

	assert.Equal(t, entity.StringList{"React", "Node.js"}, loaded.Technologies)
	assert.Equal(t, "Linear", loaded.Name)
	assert.Equal(t, "Build a keyboard-first issue tracker", loaded.LovablePrompt)
	assert.Nil(t, loaded.Comparison)

	rebuilt, err := json.Marshal(loaded.Report())
	require.NoError(t, err)
	assert.JSONEq(t, roundTripReport, string(rebuilt))
}

func TestAnalysisRepository_LatestWins(t *testing.T) {
	repo := NewAnalysisRepository(setupTestDB(t))

	older, _ := newRecord(t, 1, 10, "linear.app", 1000)
	newer, _ := newRecord(t, 2, 10, "linear.app", 2000)
	newer.Name = "Linear (refreshed)"
	require.NoError(t, repo.Save(older))
	require.NoError(t, repo.Save(newer))

	loaded, err := repo.FindLatestByUserAndDomain(10, "linear.app", "")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, int64(2), loaded.ID)
	assert.Equal(t, "Linear (refreshed)", loaded.Name)
}

func TestAnalysisRepository_ScopedByUserAndComparison(t *testing.T) {
	repo := NewAnalysisRepository(setupTestDB(t))

	rec, _ := newRecord(t, 1, 10, "linear.app", 1000)
	require.NoError(t, repo.Save(rec))

	other, err := repo.FindLatestByUserAndDomain(11, "linear.app", "")
	require.NoError(t, err)
	assert.Nil(t, other)

	compared, err := repo.FindLatestByUserAndDomain(10, "linear.app", "jira.com")
	require.NoError(t, err)
	assert.Nil(t, compared)

	byID, err := repo.FindByID(11, 1)
	require.NoError(t, err)
	assert.Nil(t, byID)

	byID, err = repo.FindByID(10, 1)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "linear.app", byID.Domain)
}

func TestAnalysisRepository_FindRecentByUser(t *testing.T) {
	repo := NewAnalysisRepository(setupTestDB(t))

	for i, domain := range []string{"a.com", "b.com", "c.com"} {
		rec, _ := newRecord(t, int64(i+1), 10, domain, int64(1000*(i+1)))
		require.NoError(t, repo.Save(rec))
	}

	recent, err := repo.FindRecentByUser(10, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c.com", recent[0].Domain)
	assert.Equal(t, "b.com", recent[1].Domain)

	none, err := repo.FindRecentByUser(99, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
