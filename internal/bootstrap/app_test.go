package bootstrap

import (
	"context"
	"testing"

	"github.com/Domenick1991/civicbook/config"
	"github.com/Domenick1991/civicbook/internal/domain"
	"github.com/Domenick1991/civicbook/internal/logger"
	"github.com/Domenick1991/civicbook/internal/service/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
store: {driver: memory, key_prefix: test}
categories:
  facility_booking:
    prefix: FAC
    workflow: [Requested, Confirmed]
    cancel: Cancelled
    tariff:
      base: 150
      rules:
        - {type: quantity_scale, unit: duration}
        - {type: weekend_surcharge, amount: 30}
resources:
  - {id: t1, category: facility_booking, capacity: 60, opens: "08:00", closes: "22:00", slots: ["09:00-12:00"]}
`

func TestBuild_Memory(t *testing.T) {
	cfg, err := config.Parse([]byte(testConfig))
	require.NoError(t, err)

	app, err := Build(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.Producer)
	ctx := context.Background()

	record, err := app.Submissions.Submit(ctx, submission.Input{
		Category: domain.CategoryFacilityBooking,
		Contact:  domain.Contact{Name: "Ana Ruiz", Email: "ana@example.org"},
		Details:  &domain.FacilityBooking{ResourceID: "t1", Date: "2025-05-03", Slot: "09:00-12:00", Persons: 10, Duration: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(330), record.Price.Total)

	a, err := app.Catalog.Availability(ctx, "t1", "2025-05-03", "09:00-12:00")
	require.NoError(t, err)
	assert.Equal(t, 50, a.Remaining)
}

func TestBuild_InvalidResource(t *testing.T) {
	cfg, err := config.Parse([]byte(testConfig))
	require.NoError(t, err)
	cfg.Resources[0].Closes = "07:00"

	app, err := Build(context.Background(), cfg, logger.Discard())
	assert.Nil(t, app)
	assert.ErrorContains(t, err, "resources")
}

func TestNewLogger(t *testing.T) {
	cfg, err := config.Parse([]byte(testConfig))
	require.NoError(t, err)
	assert.NotNil(t, NewLogger(cfg))
}
