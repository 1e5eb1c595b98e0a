package dashboard

import (
	"testing"

	"echodft/cmd/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id int64, domain, compareDomain, industry string) *entity.CompanyAnalysis {
	return &entity.CompanyAnalysis{ID: id, Domain: domain, CompareDomain: compareDomain, Name: domain, Industry: industry}
}

func loaded(records ...*entity.CompanyAnalysis) State {
	return Reduce(State{}, RecordsLoaded{Records: records})
}

func TestDecide(t *testing.T) {
	newest := record(3, "stripe.com", "", "Fintech")
	s := loaded(newest, record(2, "stripe.com", "adyen.com", "Fintech"), record(1, "stripe.com", "", "Fintech"))

	source, rec := Decide(s, "stripe.com", "", false)
	assert.Equal(t, SourceCache, source)
	assert.Same(t, newest, rec)

	source, rec = Decide(s, "stripe.com", "adyen.com", false)
	assert.Equal(t, SourceCache, source)
	assert.Equal(t, int64(2), rec.ID)

	source, rec = Decide(s, "stripe.com", "", true)
	assert.Equal(t, SourceNetwork, source)
	assert.Nil(t, rec)

	source, rec = Decide(s, "notion.so", "", false)
	assert.Equal(t, SourceNetwork, source)
	assert.Nil(t, rec)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	records := []*entity.CompanyAnalysis{record(1, "a.com", "", "")}
	before := loaded(records...)

	after := Reduce(before, AnalysisSucceeded{Record: record(2, "b.com", "", "")})

	require.Len(t, before.Saved, 1)
	assert.Equal(t, "a.com", before.Saved[0].Domain)
	assert.Nil(t, before.Current)

	require.Len(t, after.Saved, 2)
	assert.Equal(t, "b.com", after.Saved[0].Domain)
	assert.Equal(t, "b.com", after.Current.Domain)
	assert.Equal(t, SourceNetwork, after.Source)

	records[0] = record(9, "changed.com", "", "")
	assert.Equal(t, "a.com", before.Saved[0].Domain)
}

func TestReduce_RequestLifecycle(t *testing.T) {
	s := Reduce(State{}, AnalysisRequested{Domain: "a.com"})
	assert.Equal(t, "a.com", s.Pending)

	failed := Reduce(s, AnalysisFailed{Message: "Rate limit exceeded. Please try again later."})
	assert.Empty(t, failed.Pending)
	assert.Equal(t, "Rate limit exceeded. Please try again later.", failed.Error)

	cached := Reduce(Reduce(failed, AnalysisRequested{Domain: "a.com"}), CachedRecordServed{Record: record(1, "a.com", "", "")})
	assert.Empty(t, cached.Error)
	assert.Empty(t, cached.Pending)
	assert.Equal(t, SourceCache, cached.Source)
	assert.Empty(t, cached.Saved)

	assert.Equal(t, s, Reduce(s, nil))
}

func TestVisible(t *testing.T) {
	s := loaded(
		record(1, "stripe.com", "", "Fintech"),
		record(2, "notion.so", "", "Productivity"),
		record(3, "adyen.com", "", "fintech"),
	)

	assert.Len(t, s.Visible(), 3)

	fintech := Reduce(s, FilterChanged{Filter: Filter{Industry: "Fintech"}}).Visible()
	require.Len(t, fintech, 2)
	assert.Equal(t, "stripe.com", fintech[0].Domain)
	assert.Equal(t, "adyen.com", fintech[1].Domain)

	search := Reduce(s, FilterChanged{Filter: Filter{Industry: "fintech", Query: "ADY"}}).Visible()
	require.Len(t, search, 1)
	assert.Equal(t, "adyen.com", search[0].Domain)

	assert.Equal(t, []string{"Fintech", "Productivity", "fintech"}, s.Industries())
}

func TestSourceString(t *testing.T) {
	assert.Equal(t, "cache", SourceCache.String())
	assert.Equal(t, "network", SourceNetwork.String())
}
