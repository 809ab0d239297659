package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validReport() Report {
	return Report{
		ProblemTitle: "Gropë në rrugë",
		Description:  "Gropë e madhe",
		Latitude:     42.6629,
		Longitude:    21.1655,
		PlaceName:    "Prishtinë",
		UserEmail:    "alice@example.com",
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "in_progress", "completed"} {
		parsed, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, Status(s), parsed)
	}

	_, err := ParseStatus("finished")
	assert.Error(t, err)
	_, err = ParseStatus("")
	assert.Error(t, err)
}

func TestReportValidate(t *testing.T) {
	r := validReport()
	assert.NoError(t, r.Validate())

	noLocation := validReport()
	noLocation.Latitude = 0
	noLocation.Longitude = 0
	assert.Error(t, noLocation.Validate(), "report without a location must not be creatable")

	noDescription := validReport()
	noDescription.Description = "   "
	assert.Error(t, noDescription.Validate())

	// Location and description set but no title: rejected, the one
	// consistent rule across submission flows.
	noTitle := validReport()
	noTitle.ProblemTitle = ""
	assert.Error(t, noTitle.Validate())

	noPhoto := validReport()
	noPhoto.PhotoBase64 = ""
	noPhoto.PhotoURL = ""
	assert.NoError(t, noPhoto.Validate(), "photo stays optional")
}

func TestReportNormalize_LegacyFinished(t *testing.T) {
	finished := true
	legacy := Report{Finished: &finished}
	legacy.Normalize()
	assert.Equal(t, StatusCompleted, legacy.Status)

	notFinished := false
	legacy = Report{Finished: &notFinished}
	legacy.Normalize()
	assert.Equal(t, StatusPending, legacy.Status)

	// No status and no flag at all defaults to pending.
	empty := Report{}
	empty.Normalize()
	assert.Equal(t, StatusPending, empty.Status)
	require.NotNil(t, empty.Finished)
	assert.False(t, *empty.Finished)
}

func TestReportNormalize_KeepsFinishedMirrored(t *testing.T) {
	r := Report{Status: StatusCompleted}
	r.Normalize()
	require.NotNil(t, r.Finished)
	assert.True(t, *r.Finished)

	r = Report{Status: StatusInProgress}
	r.Normalize()
	require.NotNil(t, r.Finished)
	assert.False(t, *r.Finished)
}
