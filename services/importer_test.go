package services

import (
	"fmt"
	"testing"

	"github.com/SanskarBabel/BuyerBase/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportIsolatesRowFailures(t *testing.T) {
	svc := newTestService(t)
	owner := seedUser(t, svc, "agent@example.com")

	row1 := validInput()
	row1.FullName = "First Buyer"
	row2 := validInput()
	row2.FullName = "Second Buyer"
	row2.Phone = "" // invalid
	row3 := validInput()
	row3.FullName = "Third Buyer"

	result, err := svc.Import([]CreateBuyerInput{row1, row2, row3}, owner.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.NotEmpty(t, result.Errors[0].Errors)

	// Rows 1 and 3 exist, row 2 does not.
	var names []string
	require.NoError(t, svc.db.Model(&models.Buyer{}).Order("full_name ASC").Pluck("full_name", &names).Error)
	assert.Equal(t, []string{"First Buyer", "Third Buyer"}, names)
}

func TestImportWritesImportedHistory(t *testing.T) {
	svc := newTestService(t)
	owner := seedUser(t, svc, "agent@example.com")

	result, err := svc.Import([]CreateBuyerInput{validInput()}, owner.ID)
	require.NoError(t, err)
	require.Equal(t, 1, result.Success)

	var buyer models.Buyer
	require.NoError(t, svc.db.First(&buyer).Error)

	entries := historyFor(t, svc, buyer.ID)
	require.Len(t, entries, 1)
	diff := decodeDiff(t, entries[0])
	require.Contains(t, diff, "imported")
	assert.Nil(t, diff["imported"].Old)
}

func TestImportReportKeepsInputOrder(t *testing.T) {
	svc := newTestService(t)
	owner := seedUser(t, svc, "agent@example.com")

	rows := make([]CreateBuyerInput, 0, 4)
	for i := 0; i < 4; i++ {
		row := validInput()
		if i%2 == 1 {
			row.Phone = "bad"
		} else {
			row.Phone = fmt.Sprintf("90000%05d", i)
		}
		rows = append(rows, row)
	}

	result, err := svc.Import(rows, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Equal(t, 4, result.Errors[1].Row)
}

func TestImportRejectsOversizedBatchWholesale(t *testing.T) {
	svc := newTestService(t)
	owner := seedUser(t, svc, "agent@example.com")

	rows := make([]CreateBuyerInput, 201)
	for i := range rows {
		rows[i] = validInput()
	}

	_, err := svc.Import(rows, owner.ID)
	assert.ErrorIs(t, err, ErrTooManyRows)

	var count int64
	svc.db.Model(&models.Buyer{}).Count(&count)
	assert.Zero(t, count, "no row may be processed when the batch is oversized")
}

func TestImportExactlyAtCap(t *testing.T) {
	svc := newTestService(t)
	owner := seedUser(t, svc, "agent@example.com")

	rows := make([]CreateBuyerInput, 200)
	for i := range rows {
		row := validInput()
		row.Phone = fmt.Sprintf("91%09d", i)
		rows[i] = row
	}

	result, err := svc.Import(rows, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 200, result.Success)
	assert.Zero(t, result.Failed)
}
