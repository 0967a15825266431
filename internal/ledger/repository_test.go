package ledger

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/storage"
)

// flakyStore wraps a MemoryStore and fails writes while failSet is true.
type flakyStore struct {
	*storage.MemoryStore
	failSet bool
	failGet error
	writes  int
}

func (s *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	if s.failSet {
		return errors.New("quota exceeded")
	}
	s.writes++
	return s.MemoryStore.Set(ctx, key, value)
}

func (s *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.failGet != nil {
		return nil, s.failGet
	}
	return s.MemoryStore.Get(ctx, key)
}

func newTestRepo(t *testing.T, st storage.Store) *Repository {
	t.Helper()
	n := 0
	clock := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	repo, err := Open(context.Background(), st,
		WithLogger(log.Discard()),
		WithClock(func() time.Time { return clock }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return repo
}

func rent() Input {
	return Input{Description: "Rent", Amount: "1000", Type: "expense", Category: "moradia", Date: "2024-03-01"}
}

func paycheck() Input {
	return Input{Description: "Paycheck", Amount: "3000", Type: "income", Category: "salario", Date: "2024-03-05"}
}

func TestOpenMissingKeyIsEmpty(t *testing.T) {
	repo := newTestRepo(t, storage.NewMemoryStore())
	if len(repo.All()) != 0 || len(repo.All()) != 0 {
		t.Fatalf("expected empty ledger")
	}
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()

	st := &flakyStore{MemoryStore: storage.NewMemoryStore(), failGet: errors.New("disk gone")}
	_, err := Open(ctx, st, WithLogger(log.Discard()))
	var pe *PersistenceError
	if !errors.As(err, &pe) || pe.Op != log.OpLoad {
		t.Fatalf("expected load PersistenceError, got %v", err)
	}

	bad := storage.NewMemoryStore()
	_ = bad.Set(ctx, storage.KeyTransactions, []byte(`{not json`))
	if _, err := Open(ctx, bad, WithLogger(log.Discard())); !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError for corrupt data, got %v", err)
	}
}

func TestCreateInsertsAtHeadAndPersists(t *testing.T) {
	ctx := context.Background()
	st := &flakyStore{MemoryStore: storage.NewMemoryStore()}
	repo := newTestRepo(t, st)

	first, err := repo.Create(ctx, rent())
	if err != nil {
		t.Fatalf("create rent: %v", err)
	}
	second, err := repo.Create(ctx, paycheck())
	if err != nil {
		t.Fatalf("create paycheck: %v", err)
	}

	all := repo.All()
	if len(all) != 2 || all[0].ID != second.ID || all[1].ID != first.ID {
		t.Fatalf("expected newest at head, got %+v", all)
	}
	if first.Description != "Rent" || first.Amount.String() != "1000" || first.Type != core.Expense ||
		first.Category != "moradia" || first.Date.String() != "2024-03-01" {
		t.Fatalf("record does not match input: %+v", first)
	}
	if first.Timestamp != time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC).UnixMilli() {
		t.Fatalf("unexpected timestamp %d", first.Timestamp)
	}
	if st.writes != 2 {
		t.Fatalf("expected one write per mutation, got %d", st.writes)
	}

	// A fresh repository over the same store sees the same ledger.
	reloaded := newTestRepo(t, st)
	if !reflect.DeepEqual(reloaded.All(), repo.All()) {
		t.Fatalf("reload mismatch:\n%+v\n%+v", reloaded.All(), repo.All())
	}
}

func TestCreateTrimsDescriptionAndAcceptsComma(t *testing.T) {
	repo := newTestRepo(t, storage.NewMemoryStore())
	tx, err := repo.Create(context.Background(), Input{
		Description: "  Mercado  ", Amount: "12,50", Type: "expense", Category: "alimentacao", Date: "2024-03-02",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tx.Description != "Mercado" || tx.Amount.String() != "12.5" {
		t.Fatalf("unexpected record: %+v", tx)
	}
}

func TestCreateValidation(t *testing.T) {
	cases := []struct {
		name  string
		in    Input
		field string
		err   error
	}{
		{"blank description", Input{Description: "   ", Amount: "1", Type: "expense", Category: "lazer", Date: "2024-03-01"}, "description", core.ErrMissingRequired},
		{"missing amount", Input{Description: "x", Type: "expense", Category: "lazer", Date: "2024-03-01"}, "amount", core.ErrMissingRequired},
		{"missing category", Input{Description: "x", Amount: "1", Type: "expense", Date: "2024-03-01"}, "category", core.ErrMissingRequired},
		{"missing date", Input{Description: "x", Amount: "1", Type: "expense", Category: "lazer"}, "date", core.ErrMissingRequired},
		{"missing checked before malformed", Input{Description: "", Amount: "abc", Type: "expense", Category: "lazer", Date: "2024-03-01"}, "description", core.ErrMissingRequired},
		{"zero amount", Input{Description: "x", Amount: "0", Type: "expense", Category: "lazer", Date: "2024-03-01"}, "amount", core.ErrNonPositiveAmount},
		{"negative amount", Input{Description: "x", Amount: "-10", Type: "expense", Category: "lazer", Date: "2024-03-01"}, "amount", core.ErrNonPositiveAmount},
		{"garbage amount", Input{Description: "x", Amount: "ten", Type: "expense", Category: "lazer", Date: "2024-03-01"}, "amount", core.ErrInvalidAmount},
		{"unknown type", Input{Description: "x", Amount: "1", Type: "transfer", Category: "lazer", Date: "2024-03-01"}, "type", core.ErrInvalidType},
		{"other type's category", Input{Description: "x", Amount: "1", Type: "income", Category: "lazer", Date: "2024-03-01"}, "category", core.ErrInvalidCategory},
		{"bad date", Input{Description: "x", Amount: "1", Type: "expense", Category: "lazer", Date: "2024-13-01"}, "date", core.ErrInvalidDate},
	}

	st := &flakyStore{MemoryStore: storage.NewMemoryStore()}
	repo := newTestRepo(t, st)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.Create(context.Background(), tc.in)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field || !errors.Is(err, tc.err) {
				t.Fatalf("expected %s/%v, got %s/%v", tc.field, tc.err, ve.Field, ve.Err)
			}
		})
	}
	if len(repo.All()) != 0 || st.writes != 0 {
		t.Fatalf("failed validation must not mutate or persist")
	}
}

func TestUpdatePreservesIDAndPosition(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, storage.NewMemoryStore())
	a, _ := repo.Create(ctx, rent())
	b, _ := repo.Create(ctx, paycheck())

	in := Input{Description: "Rent (adjusted)", Amount: "1100.50", Type: "expense", Category: "moradia", Date: "2024-03-02"}
	updated, err := repo.Update(ctx, a.ID, in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != a.ID {
		t.Fatalf("update changed id: %s -> %s", a.ID, updated.ID)
	}

	all := repo.All()
	if len(all) != 2 || all[0].ID != b.ID || all[1].ID != a.ID {
		t.Fatalf("update moved records: %+v", all)
	}
	if all[1].Description != "Rent (adjusted)" || all[1].Amount.String() != "1100.5" || all[1].Date.String() != "2024-03-02" {
		t.Fatalf("update not applied: %+v", all[1])
	}
	if !reflect.DeepEqual(all[0], b) {
		t.Fatalf("other record changed: %+v", all[0])
	}
}

func TestUpdateCanSwitchType(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, storage.NewMemoryStore())
	a, _ := repo.Create(ctx, rent())

	got, err := repo.Update(ctx, a.ID, Input{Description: "Refund", Amount: "50", Type: "income", Category: "outros", Date: "2024-03-03"})
	if err != nil || got.Type != core.Income {
		t.Fatalf("expected income after update, got %+v err=%v", got, err)
	}
}

func TestUpdateErrors(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, storage.NewMemoryStore())
	a, _ := repo.Create(ctx, rent())
	before := repo.All()

	var nf *NotFoundError
	if _, err := repo.Update(ctx, "missing", rent()); !errors.As(err, &nf) || nf.ID != "missing" {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	bad := rent()
	bad.Amount = "0"
	var ve *ValidationError
	if _, err := repo.Update(ctx, a.ID, bad); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	if !reflect.DeepEqual(before, repo.All()) {
		t.Fatalf("failed update mutated ledger")
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, storage.NewMemoryStore())
	a, _ := repo.Create(ctx, rent())
	b, _ := repo.Create(ctx, paycheck())

	var nf *NotFoundError
	if err := repo.Delete(ctx, "xyz"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if len(repo.All()) != 2 {
		t.Fatalf("deleting an absent id changed the ledger")
	}

	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	all := repo.All()
	if len(all) != 1 || all[0].ID != b.ID {
		t.Fatalf("unexpected ledger after delete: %+v", all)
	}

	// Second delete of the same id fails the same way.
	if err := repo.Delete(ctx, a.ID); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError on repeat delete, got %v", err)
	}
	if _, err := repo.Get(a.ID); !errors.As(err, &nf) {
		t.Fatalf("deleted record still reachable")
	}
}

func TestPersistenceFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	st := &flakyStore{MemoryStore: storage.NewMemoryStore()}
	repo := newTestRepo(t, st)
	a, _ := repo.Create(ctx, rent())
	before := repo.All()
	stored, _ := st.MemoryStore.Get(ctx, storage.KeyTransactions)

	st.failSet = true
	var pe *PersistenceError

	if _, err := repo.Create(ctx, paycheck()); !errors.As(err, &pe) || pe.Op != log.OpCreate {
		t.Fatalf("expected create PersistenceError, got %v", err)
	}
	upd := rent()
	upd.Description = "changed"
	if _, err := repo.Update(ctx, a.ID, upd); !errors.As(err, &pe) || pe.Op != log.OpUpdate {
		t.Fatalf("expected update PersistenceError, got %v", err)
	}
	if err := repo.Delete(ctx, a.ID); !errors.As(err, &pe) || pe.Op != log.OpDelete {
		t.Fatalf("expected delete PersistenceError, got %v", err)
	}

	if !reflect.DeepEqual(before, repo.All()) {
		t.Fatalf("memory diverged from storage after failed writes: %+v", repo.All())
	}
	after, _ := st.MemoryStore.Get(ctx, storage.KeyTransactions)
	if string(after) != string(stored) {
		t.Fatalf("storage changed despite failures")
	}

	// Recovery: next successful write works normally.
	st.failSet = false
	if _, err := repo.Create(ctx, paycheck()); err != nil {
		t.Fatalf("create after recovery: %v", err)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, storage.NewMemoryStore())
	_, _ = repo.Create(ctx, rent())

	view := repo.All()
	view[0].Description = "tampered"
	if repo.All()[0].Description != "Rent" {
		t.Fatalf("All must not expose internal storage")
	}
}

func TestCreateRegeneratesCollidingID(t *testing.T) {
	ids := []string{"dup", "dup", "fresh"}
	i := 0
	repo, err := Open(context.Background(), storage.NewMemoryStore(),
		WithLogger(log.Discard()),
		WithIDGenerator(func() string { id := ids[i]; i++; return id }),
	)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	a, _ := repo.Create(context.Background(), rent())
	b, err := repo.Create(context.Background(), paycheck())
	if err != nil || a.ID != "dup" || b.ID != "fresh" {
		t.Fatalf("expected regenerated id, got %q/%q err=%v", a.ID, b.ID, err)
	}
}

func TestCreateGivesUpOnCollidingIDs(t *testing.T) {
	ctx := context.Background()
	st := &flakyStore{MemoryStore: storage.NewMemoryStore()}
	repo, err := Open(ctx, st,
		WithLogger(log.Discard()),
		WithIDGenerator(func() string { return "same" }),
	)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := repo.Create(ctx, rent()); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err = repo.Create(ctx, paycheck())
	var pe *PersistenceError
	if !errors.As(err, &pe) || pe.Op != log.OpCreate || !errors.Is(err, errIDExhausted) {
		t.Fatalf("expected create PersistenceError, got %v", err)
	}
	if len(repo.All()) != 1 || st.writes != 1 {
		t.Fatalf("failed create must not change the ledger: len=%d writes=%d", len(repo.All()), st.writes)
	}
}

func TestOpenRejectsNonPositiveStoredAmounts(t *testing.T) {
	ctx := context.Background()
	cases := map[string]string{
		"negative expense": `[{"id":"a","description":"Refund","amount":-50,"type":"expense","category":"outros","date":"2024-03-01","timestamp":1}]`,
		"zero income":      `[{"id":"b","description":"Nothing","amount":0,"type":"income","category":"outros","date":"2024-03-01","timestamp":1}]`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			st := storage.NewMemoryStore()
			_ = st.Set(ctx, storage.KeyTransactions, []byte(data))
			_, err := Open(ctx, st, WithLogger(log.Discard()))
			var pe *PersistenceError
			if !errors.As(err, &pe) || pe.Op != log.OpLoad || !errors.Is(err, core.ErrNonPositiveAmount) {
				t.Fatalf("expected load PersistenceError wrapping ErrNonPositiveAmount, got %v", err)
			}
		})
	}
}

func TestDefaultIDsAreUnique(t *testing.T) {
	repo, _ := Open(context.Background(), storage.NewMemoryStore(), WithLogger(log.Discard()))
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		tx, err := repo.Create(context.Background(), rent())
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if seen[tx.ID] {
			t.Fatalf("duplicate id %s", tx.ID)
		}
		seen[tx.ID] = true
	}
}

func TestToday(t *testing.T) {
	repo := newTestRepo(t, storage.NewMemoryStore())
	if repo.Today().String() != "2024-03-10" {
		t.Fatalf("unexpected today: %s", repo.Today())
	}
}
