package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"fxcache/internal/domain"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFresh_Boundaries(t *testing.T) {
	now := time.Date(2024, 11, 15, 10, 0, 0, 0, time.UTC)

	rowsAt := func(updatedAt time.Time) []domain.ExchangeRate {
		return []domain.ExchangeRate{{Base: "USD", Target: "EUR", Value: 0.92, UpdatedAt: updatedAt}}
	}

	cases := []struct {
		name string
		rows []domain.ExchangeRate
		want bool
	}{
		{name: "updated just now", rows: rowsAt(now), want: true},
		{name: "59 minutes ago", rows: rowsAt(now.Add(-59 * time.Minute)), want: true},
		{name: "exactly one hour is stale", rows: rowsAt(now.Add(-time.Hour)), want: false},
		{name: "61 minutes ago", rows: rowsAt(now.Add(-61 * time.Minute)), want: false},
		{name: "no records", rows: nil, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, fresh(tc.rows, now, time.Hour))
		})
	}
}

func TestFresh_UsesNewestRow(t *testing.T) {
	now := time.Date(2024, 11, 15, 10, 0, 0, 0, time.UTC)
	rows := []domain.ExchangeRate{
		{Base: "USD", Target: "EUR", UpdatedAt: now.Add(-3 * time.Hour)},
		{Base: "USD", Target: "JPY", UpdatedAt: now.Add(-5 * time.Minute)},
		{Base: "USD", Target: "GBP", UpdatedAt: now.Add(-2 * time.Hour)},
	}
	require.True(t, fresh(rows, now, time.Hour))
}

func TestService_IsFresh(t *testing.T) {
	mockRepo := new(MockRateRepository)
	now := time.Date(2024, 11, 15, 10, 0, 0, 0, time.UTC)
	svc := newTestService(mockRepo, new(MockRateClient), new(MockRatesCache), now)

	mockRepo.On("ListByBase", mock.Anything, "USD").Return([]domain.ExchangeRate{
		{Base: "USD", Target: "EUR", UpdatedAt: now.Add(-30 * time.Minute)},
	}, nil).Once()

	ok, err := svc.IsFresh(context.Background(), "USD")
	require.NoError(t, err)
	require.True(t, ok)
	mockRepo.AssertExpectations(t)
}

func TestService_IsFresh_UnknownBase(t *testing.T) {
	mockRepo := new(MockRateRepository)
	svc := newTestService(mockRepo, new(MockRateClient), new(MockRatesCache), time.Now())

	mockRepo.On("ListByBase", mock.Anything, "ZZZ").Return([]domain.ExchangeRate{}, nil).Once()

	ok, err := svc.IsFresh(context.Background(), "ZZZ")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestService_IsFresh_RepoError(t *testing.T) {
	mockRepo := new(MockRateRepository)
	svc := newTestService(mockRepo, new(MockRateClient), new(MockRatesCache), time.Now())

	wantErr := errors.New("db down")
	mockRepo.On("ListByBase", mock.Anything, "USD").Return(nil, wantErr).Once()

	_, err := svc.IsFresh(context.Background(), "USD")
	require.Error(t, err)
	require.Equal(t, wantErr, err)
}
