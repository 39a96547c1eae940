package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/iq-fit/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindSubscriptionsEndingOn(ctx context.Context, day models.Date) ([]models.ExpiringSubscription, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ExpiringSubscription), args.Error(1)
}

func (m *MockRepository) ClaimReminder(ctx context.Context, subscriptionID int64, endDate models.Date) (bool, error) {
	args := m.Called(ctx, subscriptionID, endDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ReleaseReminder(ctx context.Context, subscriptionID int64, endDate models.Date) error {
	return m.Called(ctx, subscriptionID, endDate).Error(0)
}

// memRepository хранит подписки и отметки о напоминаниях в памяти.
type memRepository struct {
	subs    []models.ExpiringSubscription
	claimed map[int64]models.Date
}

func (r *memRepository) FindSubscriptionsEndingOn(_ context.Context, day models.Date) ([]models.ExpiringSubscription, error) {
	var out []models.ExpiringSubscription
	for _, sub := range r.subs {
		if sent, ok := r.claimed[sub.SubscriptionID]; ok && sent == sub.EndDate {
			continue
		}
		if sub.EndDate == day {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *memRepository) ClaimReminder(_ context.Context, subscriptionID int64, endDate models.Date) (bool, error) {
	if sent, ok := r.claimed[subscriptionID]; ok && sent == endDate {
		return false, nil
	}
	r.claimed[subscriptionID] = endDate
	return true, nil
}

func (r *memRepository) ReleaseReminder(_ context.Context, subscriptionID int64, _ models.Date) error {
	delete(r.claimed, subscriptionID)
	return nil
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, message any) error {
	return m.Called(routingKey, message).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func fixedDay() models.Date {
	return models.NewDate(time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC))
}

func TestSchedulerService_RunOnce(t *testing.T) {
	target := fixedDay().AddDays(3)
	first := models.ExpiringSubscription{SubscriptionID: 1, Email: "a@x.io", PlanName: "Monthly", EndDate: target}
	second := models.ExpiringSubscription{SubscriptionID: 2, Email: "b@x.io", PlanName: "Annual", EndDate: target}

	tests := []struct {
		name       string
		setupMocks func(*MockRepository, *MockPublisher)
		want       int
	}{
		{
			name: "publishes one event per subscription",
			setupMocks: func(r *MockRepository, p *MockPublisher) {
				r.On("FindSubscriptionsEndingOn", mock.Anything, target).
					Return([]models.ExpiringSubscription{first, second}, nil).Once()
				r.On("ClaimReminder", mock.Anything, int64(1), target).Return(true, nil).Once()
				r.On("ClaimReminder", mock.Anything, int64(2), target).Return(true, nil).Once()
				p.On("Publish", models.RoutingSubscriptionExpiring, first).Return(nil).Once()
				p.On("Publish", models.RoutingSubscriptionExpiring, second).Return(nil).Once()
			},
			want: 2,
		},
		{
			name: "already reminded subscription is skipped",
			setupMocks: func(r *MockRepository, p *MockPublisher) {
				r.On("FindSubscriptionsEndingOn", mock.Anything, target).
					Return([]models.ExpiringSubscription{first, second}, nil).Once()
				r.On("ClaimReminder", mock.Anything, int64(1), target).Return(false, nil).Once()
				r.On("ClaimReminder", mock.Anything, int64(2), target).Return(true, nil).Once()
				p.On("Publish", models.RoutingSubscriptionExpiring, second).Return(nil).Once()
			},
			want: 1,
		},
		{
			name: "claim error skips the event",
			setupMocks: func(r *MockRepository, p *MockPublisher) {
				r.On("FindSubscriptionsEndingOn", mock.Anything, target).
					Return([]models.ExpiringSubscription{first}, nil).Once()
				r.On("ClaimReminder", mock.Anything, int64(1), target).Return(false, errors.New("db error")).Once()
			},
			want: 0,
		},
		{
			name: "no expiring subscriptions",
			setupMocks: func(r *MockRepository, _ *MockPublisher) {
				r.On("FindSubscriptionsEndingOn", mock.Anything, target).
					Return([]models.ExpiringSubscription{}, nil).Once()
			},
			want: 0,
		},
		{
			name: "repository error is only logged",
			setupMocks: func(r *MockRepository, _ *MockPublisher) {
				r.On("FindSubscriptionsEndingOn", mock.Anything, target).
					Return(nil, errors.New("db error")).Once()
			},
			want: 0,
		},
		{
			name: "publish error releases the reminder",
			setupMocks: func(r *MockRepository, p *MockPublisher) {
				r.On("FindSubscriptionsEndingOn", mock.Anything, target).
					Return([]models.ExpiringSubscription{first, second}, nil).Once()
				r.On("ClaimReminder", mock.Anything, int64(1), target).Return(true, nil).Once()
				r.On("ClaimReminder", mock.Anything, int64(2), target).Return(true, nil).Once()
				r.On("ReleaseReminder", mock.Anything, int64(1), target).Return(nil).Once()
				p.On("Publish", models.RoutingSubscriptionExpiring, first).Return(errors.New("channel closed")).Once()
				p.On("Publish", models.RoutingSubscriptionExpiring, second).Return(nil).Once()
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			pub := new(MockPublisher)
			tt.setupMocks(repo, pub)

			service := NewSchedulerService(repo, pub, newNoopLogger(), time.Hour, 3)
			service.today = fixedDay

			assert.Equal(t, tt.want, service.RunOnce(context.Background()))
			repo.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestSchedulerService_RunOnceSameDayPublishesOnce(t *testing.T) {
	target := fixedDay().AddDays(3)
	sub := models.ExpiringSubscription{SubscriptionID: 7, Email: "c@x.io", PlanName: "Monthly", EndDate: target}
	repo := &memRepository{subs: []models.ExpiringSubscription{sub}, claimed: map[int64]models.Date{}}

	pub := new(MockPublisher)
	pub.On("Publish", models.RoutingSubscriptionExpiring, sub).Return(nil).Once()

	service := NewSchedulerService(repo, pub, newNoopLogger(), time.Hour, 3)
	service.today = fixedDay

	assert.Equal(t, 1, service.RunOnce(context.Background()))
	assert.Equal(t, 0, service.RunOnce(context.Background()))
	pub.AssertExpectations(t)
	pub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestSchedulerService_RetriesAfterPublishFailure(t *testing.T) {
	target := fixedDay().AddDays(3)
	sub := models.ExpiringSubscription{SubscriptionID: 8, Email: "d@x.io", PlanName: "Annual", EndDate: target}
	repo := &memRepository{subs: []models.ExpiringSubscription{sub}, claimed: map[int64]models.Date{}}

	pub := new(MockPublisher)
	pub.On("Publish", models.RoutingSubscriptionExpiring, sub).Return(errors.New("channel closed")).Once()
	pub.On("Publish", models.RoutingSubscriptionExpiring, sub).Return(nil).Once()

	service := NewSchedulerService(repo, pub, newNoopLogger(), time.Hour, 3)
	service.today = fixedDay

	assert.Equal(t, 0, service.RunOnce(context.Background()))
	assert.Equal(t, 1, service.RunOnce(context.Background()))
	assert.Equal(t, 0, service.RunOnce(context.Background()))
	pub.AssertExpectations(t)
}

func TestSchedulerService_RunStopsOnCancel(t *testing.T) {
	repo := new(MockRepository)
	repo.On("FindSubscriptionsEndingOn", mock.Anything, mock.Anything).
		Return([]models.ExpiringSubscription{}, nil)

	service := NewSchedulerService(repo, new(MockPublisher), newNoopLogger(), 10*time.Millisecond, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		service.Run(ctx)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
	assert.GreaterOrEqual(t, len(repo.Calls), 2)
}
