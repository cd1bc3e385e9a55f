package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/walletfy/internal/adapter/repository"
	"github.com/iho/walletfy/internal/adapter/repository/memory"
	"github.com/iho/walletfy/internal/domain"
	"github.com/iho/walletfy/internal/usecase"
	"github.com/iho/walletfy/internal/usecase/mocks"
)

func salaryDraft() domain.EventDraft {
	return domain.EventDraft{
		Name:        "Salary",
		Description: "March pay",
		Amount:      decimal.RequireFromString("1250.50"),
		Date:        time.Date(2025, time.March, 5, 9, 30, 0, 0, time.UTC),
		Type:        domain.EventTypeIncome,
		Attachment:  "data:image/png;base64,iVBORw0KGgo=",
	}
}

func openEmptyStore(t *testing.T, repo usecase.LedgerRepository, opts ...usecase.StoreOption) *usecase.EventStore {
	t.Helper()

	opts = append([]usecase.StoreOption{usecase.WithSampleData(false)}, opts...)
	store, err := usecase.OpenEventStore(context.Background(), repo, mocks.NewSequentialIDGenerator(), opts...)
	require.NoError(t, err)

	return store
}

func TestOpenEventStore_SeedsFreshLedger(t *testing.T) {
	repo := mocks.NewFakeLedgerRepository()

	store, err := usecase.OpenEventStore(context.Background(), repo, mocks.NewSequentialIDGenerator())
	require.NoError(t, err)

	assert.Len(t, store.ListEvents(), 6)
	assert.True(t, store.Settings().InitialBalance.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, domain.ThemeLight, store.Settings().Theme)

	persisted, err := repo.LoadEvents(context.Background())
	require.NoError(t, err)
	assert.Len(t, persisted, 6)
}

func TestOpenEventStore_KeepsExistingState(t *testing.T) {
	repo := mocks.NewSeededLedgerRepository(
		domain.Settings{InitialBalance: decimal.NewFromInt(-20), Theme: domain.ThemeDark},
		[]domain.FinancialEvent{},
	)

	store, err := usecase.OpenEventStore(context.Background(), repo, mocks.NewSequentialIDGenerator())
	require.NoError(t, err)

	assert.Empty(t, store.ListEvents())
	assert.True(t, store.Settings().InitialBalance.Equal(decimal.NewFromInt(-20)))
	assert.Equal(t, 0, repo.SavedEvents)
}

func TestOpenEventStore_WithoutSampleData(t *testing.T) {
	store := openEmptyStore(t, mocks.NewFakeLedgerRepository())

	assert.Empty(t, store.ListEvents())
	assert.True(t, store.Settings().InitialBalance.IsZero())
}

func TestOpenEventStore_LoadError(t *testing.T) {
	repo := mocks.NewFakeLedgerRepository()
	repo.LoadEventsFunc = func(context.Context) ([]domain.FinancialEvent, error) {
		return nil, domain.ErrCorruptState
	}

	_, err := usecase.OpenEventStore(context.Background(), repo, mocks.NewSequentialIDGenerator())
	require.ErrorIs(t, err, domain.ErrCorruptState)
}

func TestEventStore_CreateEvent(t *testing.T) {
	tests := []struct {
		name       string
		draft      func() domain.EventDraft
		violations int
	}{
		{
			name:  "valid draft",
			draft: salaryDraft,
		},
		{
			name: "empty name and negative amount",
			draft: func() domain.EventDraft {
				d := salaryDraft()
				d.Name = ""
				d.Amount = decimal.NewFromInt(-5)
				return d
			},
			violations: 2,
		},
		{
			name: "invalid type",
			draft: func() domain.EventDraft {
				d := salaryDraft()
				d.Type = "transfer"
				return d
			},
			violations: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewFakeLedgerRepository()
			notifier := &mocks.RecordingNotifier{}
			store := openEmptyStore(t, repo, usecase.WithNotifier(notifier))

			event, err := store.CreateEvent(context.Background(), tt.draft())

			if tt.violations > 0 {
				var verr *domain.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Len(t, verr.Violations, tt.violations)
				assert.Empty(t, store.ListEvents())
				assert.Empty(t, notifier.Changes())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "evt-1", event.ID)
			assert.Len(t, store.ListEvents(), 1)

			changes := notifier.Changes()
			require.Len(t, changes, 1)
			assert.Equal(t, domain.ChangeEventCreated, changes[0].Kind)
			assert.Equal(t, "evt-1", changes[0].EventID)
		})
	}
}

func TestEventStore_RoundTripPersistence(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewFakeLedgerRepository()
	store := openEmptyStore(t, repo)

	created, err := store.CreateEvent(ctx, salaryDraft())
	require.NoError(t, err)

	reopened, err := usecase.OpenEventStore(ctx, repo, mocks.NewSequentialIDGenerator())
	require.NoError(t, err)

	events := reopened.ListEvents()
	require.Len(t, events, 1)

	got := events[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Description, got.Description)
	assert.True(t, created.Amount.Equal(got.Amount))
	assert.True(t, created.Date.Equal(got.Date))
	assert.Equal(t, created.Type, got.Type)
	assert.Equal(t, created.Attachment, got.Attachment)
}

func TestEventStore_RoundTripThroughJSONStorage(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewLedgerRepository(memory.NewStore())
	store := openEmptyStore(t, repo)

	draft := salaryDraft()
	draft.Name = "Café ñandú"
	created, err := store.CreateEvent(ctx, draft)
	require.NoError(t, err)

	bad := salaryDraft()
	bad.Name = "ab\xffcd"
	_, err = store.CreateEvent(ctx, bad)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{domain.MsgNameEncoding}, verr.Violations)

	reopened, err := usecase.OpenEventStore(ctx, repo, mocks.NewSequentialIDGenerator())
	require.NoError(t, err)

	events := reopened.ListEvents()
	require.Len(t, events, 1)
	got := events[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Description, got.Description)
	assert.Equal(t, created.Attachment, got.Attachment)
	assert.True(t, created.Amount.Equal(got.Amount))
	assert.True(t, created.Date.Equal(got.Date))
}

func TestEventStore_UpdateEvent(t *testing.T) {
	ctx := context.Background()
	store := openEmptyStore(t, mocks.NewFakeLedgerRepository())

	created, err := store.CreateEvent(ctx, salaryDraft())
	require.NoError(t, err)

	t.Run("merges patch", func(t *testing.T) {
		name := "Bonus"
		expense := domain.EventTypeExpense
		updated, err := store.UpdateEvent(ctx, created.ID, domain.EventPatch{Name: &name, Type: &expense})
		require.NoError(t, err)

		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "Bonus", updated.Name)
		assert.Equal(t, domain.EventTypeExpense, updated.Type)
		assert.True(t, created.Amount.Equal(updated.Amount))
	})

	t.Run("invalid merge leaves event untouched", func(t *testing.T) {
		before, err := store.GetEvent(created.ID)
		require.NoError(t, err)

		zero := decimal.Zero
		_, err = store.UpdateEvent(ctx, created.ID, domain.EventPatch{Amount: &zero})
		require.ErrorIs(t, err, domain.ErrValidation)

		after, err := store.GetEvent(created.ID)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("unknown id", func(t *testing.T) {
		name := "x"
		_, err := store.UpdateEvent(ctx, "missing", domain.EventPatch{Name: &name})

		var nf *domain.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "missing", nf.ID)
	})
}

func TestEventStore_DeleteEvent(t *testing.T) {
	ctx := context.Background()
	notifier := &mocks.RecordingNotifier{}
	store := openEmptyStore(t, mocks.NewFakeLedgerRepository(), usecase.WithNotifier(notifier))

	first, err := store.CreateEvent(ctx, salaryDraft())
	require.NoError(t, err)
	second, err := store.CreateEvent(ctx, salaryDraft())
	require.NoError(t, err)

	require.NoError(t, store.DeleteEvent(ctx, first.ID))

	events := store.ListEvents()
	require.Len(t, events, 1)
	assert.Equal(t, second.ID, events[0].ID)

	err = store.DeleteEvent(ctx, first.ID)
	require.ErrorIs(t, err, domain.ErrEventNotFound)

	changes := notifier.Changes()
	require.Len(t, changes, 3)
	assert.Equal(t, domain.ChangeEventDeleted, changes[2].Kind)
}

func TestEventStore_PersistenceFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewFakeLedgerRepository()
	recorder := mocks.NewCountingRecorder()
	notifier := &mocks.RecordingNotifier{}
	store := openEmptyStore(t, repo, usecase.WithRecorder(recorder), usecase.WithNotifier(notifier))

	created, err := store.CreateEvent(ctx, salaryDraft())
	require.NoError(t, err)

	diskFull := errors.New("disk full")
	repo.SaveEventsFunc = func(context.Context, []domain.FinancialEvent) error { return diskFull }
	repo.SaveSettingsFunc = func(context.Context, domain.Settings) error { return diskFull }

	_, err = store.CreateEvent(ctx, salaryDraft())
	require.ErrorIs(t, err, domain.ErrPersistence)
	require.ErrorIs(t, err, diskFull)

	err = store.DeleteEvent(ctx, created.ID)
	require.ErrorIs(t, err, domain.ErrPersistence)

	_, err = store.SetInitialBalance(ctx, decimal.NewFromInt(99))
	require.ErrorIs(t, err, domain.ErrPersistence)

	assert.Len(t, store.ListEvents(), 1)
	assert.True(t, store.Settings().InitialBalance.IsZero())
	assert.Len(t, notifier.Changes(), 1)
	assert.Equal(t, 1, recorder.Mutations[usecase.OpCreateEvent])
	assert.Equal(t, 1, recorder.Failures[usecase.OpCreateEvent])
	assert.Equal(t, 1, recorder.Failures[usecase.OpDeleteEvent])
}

func TestEventStore_Settings(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewFakeLedgerRepository()
	store := openEmptyStore(t, repo)

	settings, err := store.SetInitialBalance(ctx, decimal.RequireFromString("-150.25"))
	require.NoError(t, err)
	assert.Equal(t, "-150.25", settings.InitialBalance.String())

	settings, err = store.AddToInitialBalance(ctx, decimal.NewFromInt(200))
	require.NoError(t, err)
	assert.Equal(t, "49.75", settings.InitialBalance.String())

	_, err = store.AddToInitialBalance(ctx, decimal.NewFromInt(-1))
	require.ErrorIs(t, err, domain.ErrValidation)

	settings, err = store.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeDark, settings.Theme)

	_, err = store.SetTheme(ctx, "neon")
	require.ErrorIs(t, err, domain.ErrValidation)

	persisted, err := repo.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "49.75", persisted.InitialBalance.String())
	assert.Equal(t, domain.ThemeDark, persisted.Theme)
}

func TestEventStore_WithGeneratedMocks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockLedgerRepository(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)
	notifier := mocks.NewMockChangeNotifier(ctrl)

	repo.EXPECT().LoadEvents(gomock.Any()).Return([]domain.FinancialEvent{}, nil)
	repo.EXPECT().LoadSettings(gomock.Any()).Return(domain.DefaultSettings(), nil)

	store, err := usecase.OpenEventStore(context.Background(), repo, idGen, usecase.WithNotifier(notifier))
	require.NoError(t, err)

	idGen.EXPECT().Generate().Return("01JTESTULID")
	repo.EXPECT().SaveEvents(gomock.Any(), gomock.Len(1)).Return(nil)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Cond(func(x any) bool {
		c, ok := x.(domain.LedgerChange)
		return ok && c.Kind == domain.ChangeEventCreated && c.EventID == "01JTESTULID"
	}))

	event, err := store.CreateEvent(context.Background(), salaryDraft())
	require.NoError(t, err)
	assert.Equal(t, "01JTESTULID", event.ID)
}
