package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/iq-fit/internal/models"
)

func TestIntegration_RegisterUser_Roles(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)

	first := factory.CreateUser(t, "First", "first@example.com")
	second := factory.CreateUser(t, "Second", "second@example.com")

	assert.Equal(t, models.RoleSuperAdmin, first.Role)
	assert.Equal(t, models.RoleUser, second.Role)
	assert.False(t, first.IsPremium)
	assert.False(t, first.JoinDate.IsZero())
}

func TestIntegration_RegisterUser_ConcurrentFirstUsers(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := storage.RegisterUser(ctx, models.User{
				FullName: "u", Email: fmt.Sprintf("u%d@example.com", i), PasswordHash: "h",
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	users, err := storage.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, n)

	superAdmins := 0
	for _, u := range users {
		if u.Role == models.RoleSuperAdmin {
			superAdmins++
		}
	}
	assert.Equal(t, 1, superAdmins)
}

func TestIntegration_RegisterUser_DuplicateEmail(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	original := factory.CreateUser(t, "Original", "dup@example.com")

	_, err := storage.RegisterUser(context.Background(), models.User{
		FullName: "Impostor", Email: "dup@example.com", PasswordHash: "other",
	})
	require.ErrorIs(t, err, models.ErrConflict)

	got, err := storage.GetUserByEmail(context.Background(), "dup@example.com")
	require.NoError(t, err)
	assert.Equal(t, original.ID, got.ID)
	assert.Equal(t, "Original", got.FullName)
	assert.Equal(t, "hashedpassword", got.PasswordHash)
}

func TestIntegration_PurchasePlan(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	user := factory.CreateUser(t, "Buyer", "buyer@example.com")
	plan := factory.CreatePlan(t, "Monthly", 12.99, 30)

	payment, err := storage.PurchasePlan(ctx, models.Purchase{
		UserID: user.ID, PlanID: plan.ID, Amount: 12.99, PaymentMethod: "card",
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPaid, payment.Status)
	assert.InDelta(t, 12.99, payment.Amount, 0.0001)
	assert.Equal(t, "card", payment.PaymentMethod)
	assert.Len(t, payment.Reference, 36)
	assert.Equal(t, models.Today(), payment.Subscription.StartDate)
	assert.Equal(t, models.Today().AddDays(30), payment.Subscription.EndDate)

	got, err := storage.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPremium)

	subs, err := storage.ListUserSubscriptions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, payment.Subscription.ID, subs[0].ID)
	assert.Equal(t, payment.Subscription.EndDate, subs[0].EndDate)

	payments, err := storage.ListPayments(ctx)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, payment.Reference, payments[0].Reference)
	assert.Equal(t, user.ID, payments[0].User.ID)
	assert.Equal(t, "Monthly", payments[0].Subscription.Plan.PlanName)

	history, err := storage.PremiumHistory(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.PremiumCausePurchase, history[0].Cause)
	require.NotNil(t, history[0].SubscriptionID)
	assert.Equal(t, payment.Subscription.ID, *history[0].SubscriptionID)
}

func TestIntegration_PurchasePlan_NoPartialState(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	user := factory.CreateUser(t, "Buyer", "buyer@example.com")
	plan := factory.CreatePlan(t, "Monthly", 12.99, 30)

	tests := []struct {
		name     string
		purchase models.Purchase
		wantErr  error
	}{
		{name: "wrong amount", purchase: models.Purchase{UserID: user.ID, PlanID: plan.ID, Amount: 5}, wantErr: models.ErrAmountMismatch},
		{name: "unknown plan", purchase: models.Purchase{UserID: user.ID, PlanID: plan.ID + 100}, wantErr: models.ErrNotFound},
		{name: "unknown user", purchase: models.Purchase{UserID: user.ID + 100, PlanID: plan.ID}, wantErr: models.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := storage.PurchasePlan(ctx, tt.purchase)
			require.ErrorIs(t, err, tt.wantErr)

			assert.Zero(t, factory.count(t, "subscriptions"))
			assert.Zero(t, factory.count(t, "payments"))
			assert.Zero(t, factory.count(t, "premium_changes"))
			got, err := storage.GetUser(ctx, user.ID)
			require.NoError(t, err)
			assert.False(t, got.IsPremium)
		})
	}
}

func TestIntegration_ToggleSuspend(t *testing.T) {
	storage := setupTestDatabase(t)
	user := NewTestDataFactory(storage).CreateUser(t, "U", "u@example.com")
	ctx := context.Background()

	once, err := storage.ToggleSuspend(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, once.Suspended)

	twice, err := storage.ToggleSuspend(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, twice.Suspended)

	_, err = storage.ToggleSuspend(ctx, user.ID+999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestIntegration_UpdateUser(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	ctx := context.Background()
	user := factory.CreateUser(t, "Old", "old@example.com")
	factory.CreateUser(t, "Other", "other@example.com")

	dob, err := models.ParseDate("1990-04-02")
	require.NoError(t, err)
	weight := 70.5
	updated, err := storage.UpdateUser(ctx, user.ID, models.Profile{
		FullName: "New", Email: "new@example.com", DateOfBirth: &dob, Weight: &weight,
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "New", updated.FullName)
	assert.Equal(t, "hashedpassword", updated.PasswordHash)
	require.NotNil(t, updated.DateOfBirth)
	assert.Equal(t, "1990-04-02", updated.DateOfBirth.String())
	require.NotNil(t, updated.Weight)
	assert.InDelta(t, 70.5, *updated.Weight, 0.001)
	assert.Nil(t, updated.Height)
	assert.Equal(t, user.JoinDate.Unix(), updated.JoinDate.Unix())

	updated, err = storage.UpdateUser(ctx, user.ID, models.Profile{FullName: "New", Email: "new@example.com"}, "newhash")
	require.NoError(t, err)
	assert.Equal(t, "newhash", updated.PasswordHash)
	assert.Nil(t, updated.DateOfBirth)

	_, err = storage.UpdateUser(ctx, user.ID, models.Profile{FullName: "New", Email: "other@example.com"}, "")
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestIntegration_ContentCatalog(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	factory.CreateContent(t, "Squats", models.ContentWorkout, models.AccessFree)
	premium := factory.CreateContent(t, "HIIT", models.ContentWorkout, models.AccessPremium)
	factory.CreateContent(t, "Pomodoro", models.ContentStudyTip, models.AccessFree)

	workouts, err := storage.SearchContent(ctx, models.ContentFilter{ContentType: models.ContentWorkout})
	require.NoError(t, err)
	assert.Len(t, workouts, 2)

	premiumWorkouts, err := storage.SearchContent(ctx, models.ContentFilter{
		ContentType: models.ContentWorkout, AccessLevel: models.AccessPremium,
	})
	require.NoError(t, err)
	require.Len(t, premiumWorkouts, 1)
	assert.Equal(t, premium.ID, premiumWorkouts[0].ID)

	sets := 4
	premium.Sets = &sets
	premium.Reps = "8-10"
	premium.Details = json.RawMessage(`{"benefits":["endurance"]}`)
	updated, err := storage.UpdateContent(ctx, premium.ID, *premium)
	require.NoError(t, err)
	require.NotNil(t, updated.Sets)
	assert.Equal(t, 4, *updated.Sets)
	assert.JSONEq(t, `{"benefits":["endurance"]}`, string(updated.Details))
	assert.Equal(t, premium.UploadDate.Unix(), updated.UploadDate.Unix())

	require.NoError(t, storage.DeleteContent(ctx, premium.ID))
	assert.ErrorIs(t, storage.DeleteContent(ctx, premium.ID), models.ErrNotFound)
	_, err = storage.GetContent(ctx, premium.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestIntegration_ActivityAndStats(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	user := factory.CreateUser(t, "Active", "active@example.com")
	workout := factory.CreateContent(t, "Run", models.ContentWorkout, models.AccessFree)
	recipe := factory.CreateContent(t, "Salad", models.ContentRecipe, models.AccessFree)

	for _, step := range []struct {
		content int64
		status  string
	}{
		{workout.ID, models.ActivityCompleted},
		{workout.ID, models.ActivityCompleted},
		{workout.ID, "STARTED"},
		{recipe.ID, models.ActivityCompleted},
	} {
		_, err := storage.CreateActivity(ctx, user.ID, step.content, step.status)
		require.NoError(t, err)
	}

	_, err := storage.CreateActivity(ctx, user.ID, recipe.ID+100, "STARTED")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = storage.CreateActivity(ctx, user.ID+100, recipe.ID, "STARTED")
	assert.ErrorIs(t, err, models.ErrNotFound)

	history, err := storage.ListActivityByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "Salad", history[0].Content.Title)

	stats, err := storage.UserStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStats{Workouts: 2, StudySessions: 0, RecipesTried: 1}, *stats)
}

func TestIntegration_DeleteAndPurge(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	a := factory.CreateUser(t, "A", "a@example.com")
	b := factory.CreateUser(t, "B", "b@example.com")
	plan := factory.CreatePlan(t, "Weekly", 3, 7)
	_, err := storage.PurchasePlan(ctx, models.Purchase{UserID: a.ID, PlanID: plan.ID})
	require.NoError(t, err)

	n, err := storage.DeleteUser(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Zero(t, factory.count(t, "payments"))
	assert.Zero(t, factory.count(t, "subscriptions"))

	n, err = storage.DeleteUser(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = storage.PurchasePlan(ctx, models.Purchase{UserID: b.ID, PlanID: plan.ID})
	require.NoError(t, err)
	n, err = storage.PurgeUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Zero(t, factory.count(t, "users"))
	assert.Equal(t, 1, factory.count(t, "plans"))
}

func TestIntegration_PurgeRemovesSuperAdmin(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	root := factory.CreateUser(t, "Root", "root@example.com")
	require.Equal(t, models.RoleSuperAdmin, root.Role)
	factory.CreateUser(t, "Member", "member@example.com")

	n, err := storage.PurgeUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Zero(t, factory.count(t, "users"))
}

func TestIntegration_FindSubscriptionsEndingOn(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	user := factory.CreateUser(t, "Soon", "soon@example.com")
	weekly := factory.CreatePlan(t, "Weekly", 3, 7)
	monthly := factory.CreatePlan(t, "Monthly", 10, 30)
	_, err := storage.PurchasePlan(ctx, models.Purchase{UserID: user.ID, PlanID: weekly.ID})
	require.NoError(t, err)
	_, err = storage.PurchasePlan(ctx, models.Purchase{UserID: user.ID, PlanID: monthly.ID})
	require.NoError(t, err)

	got, err := storage.FindSubscriptionsEndingOn(ctx, models.Today().AddDays(7))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Weekly", got[0].PlanName)
	assert.Equal(t, "soon@example.com", got[0].Email)

	claimed, err := storage.ClaimReminder(ctx, got[0].SubscriptionID, got[0].EndDate)
	require.NoError(t, err)
	assert.True(t, claimed)
	claimed, err = storage.ClaimReminder(ctx, got[0].SubscriptionID, got[0].EndDate)
	require.NoError(t, err)
	assert.False(t, claimed, "second claim for the same end date must be refused")

	reminded, err := storage.FindSubscriptionsEndingOn(ctx, models.Today().AddDays(7))
	require.NoError(t, err)
	assert.Empty(t, reminded)

	require.NoError(t, storage.ReleaseReminder(ctx, got[0].SubscriptionID, got[0].EndDate))
	got, err = storage.FindSubscriptionsEndingOn(ctx, models.Today().AddDays(7))
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = storage.ToggleSuspend(ctx, user.ID)
	require.NoError(t, err)
	got, err = storage.FindSubscriptionsEndingOn(ctx, models.Today().AddDays(7))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIntegration_Messages(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()

	first, err := storage.CreateMessage(ctx, models.Message{Name: "A", Email: "a@x.io", Message: "hi"})
	require.NoError(t, err)
	second, err := storage.CreateMessage(ctx, models.Message{Name: "B", Email: "b@x.io", Message: "hello"})
	require.NoError(t, err)

	list, err := storage.ListMessages(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	n, err := storage.DeleteMessage(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = storage.DeleteMessage(ctx, first.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
