package query

import (
	"testing"

	"rentease/internal/models"

	"github.com/stretchr/testify/assert"
)

var sample = []models.Booking{
	{ID: "B-1001", Guest: "John Doe", PropertyID: "p1", Status: models.StatusConfirmed},
	{ID: "B-1002", Guest: "Sarah Lee", PropertyID: "p2", Status: models.StatusCancelled},
	{ID: "B-1003", Guest: "Mike Tan", PropertyID: "p4", Status: models.StatusConfirmed},
	{ID: "B-1004", Guest: "Liza Gomez", PropertyID: "p3", Status: models.StatusCheckedOut},
}

func guest(b models.Booking) string { return b.Guest }
func bookingID(b models.Booking) string { return b.ID }
func status(b models.Booking) string { return b.Status }
func property(b models.Booking) string { return b.PropertyID }

func idsOf(bs []models.Booking) []string {
	out := make([]string, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.ID)
	}
	return out
}

func TestText(t *testing.T) {
	t.Run("CaseInsensitive", func(t *testing.T) {
		got := Apply(sample, Text("JOHN", guest, bookingID))
		assert.Equal(t, []string{"B-1001"}, idsOf(got))
	})

	t.Run("AnyField", func(t *testing.T) {
		got := Apply(sample, Text("1003", guest, bookingID))
		assert.Equal(t, []string{"B-1003"}, idsOf(got))
	})

	t.Run("BlankMatchesAll", func(t *testing.T) {
		assert.Len(t, Apply(sample, Text("  ", guest)), 4)
	})

	t.Run("NoMatch", func(t *testing.T) {
		assert.Empty(t, Apply(sample, Text("zzz", guest)))
	})
}

func TestEqualsAndAll(t *testing.T) {
	confirmed := Equals(models.StatusConfirmed, status)
	assert.Equal(t, []string{"B-1001", "B-1003"}, idsOf(Apply(sample, confirmed)))

	combined := All(confirmed, Equals("p4", property), nil)
	assert.Equal(t, []string{"B-1003"}, idsOf(Apply(sample, combined)))

	assert.Len(t, Apply(sample, Equals("", status)), 4)
	assert.Len(t, Apply(sample, nil), 4)
}

func TestApplyPreservesOrder(t *testing.T) {
	got := Apply(sample, func(b models.Booking) bool { return b.ID != "B-1002" })
	assert.Equal(t, []string{"B-1001", "B-1003", "B-1004"}, idsOf(got))
}
