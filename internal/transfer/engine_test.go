package transfer

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swiftpay/swiftpay/internal/models"
	"github.com/swiftpay/swiftpay/internal/storage"
	"github.com/swiftpay/swiftpay/internal/storage/sqlite"
)

func newTestEngine(t *testing.T) (*Engine, storage.Store) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewEngine(store, nil, decimal.Zero), store
}

func createUser(t *testing.T, store storage.Store, email, balance string) *models.User {
	t.Helper()

	user := models.NewUser(email, "Test User", "hash")
	user.Balance = decimal.RequireFromString(balance)
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return user
}

func mustBalance(t *testing.T, store storage.Store, userID string) decimal.Decimal {
	t.Helper()

	balance, err := store.GetBalance(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to read balance: %v", err)
	}
	return balance
}

func assertBalance(t *testing.T, store storage.Store, userID, want string) {
	t.Helper()

	got := mustBalance(t, store, userID)
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("balance mismatch: got %s, want %s", got, want)
	}
}

func TestSendTransfersBetweenAccounts(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	alice := createUser(t, store, "alice@example.com", "100.00")
	bob := createUser(t, store, "bob@example.com", "50.00")

	balance, err := engine.ExecuteTransfer(ctx, alice.ID, Send{
		Amount:         decimal.RequireFromString("30.00"),
		RecipientEmail: bob.Email,
		Description:    "lunch",
	}, "")
	if err != nil {
		t.Fatalf("ExecuteTransfer failed: %v", err)
	}

	if !balance.Equal(decimal.RequireFromString("70.00")) {
		t.Errorf("returned balance: got %s, want 70.00", balance)
	}
	assertBalance(t, store, alice.ID, "70.00")
	assertBalance(t, store, bob.ID, "80.00")

	entries, err := engine.History(ctx, alice.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(entries))
	}

	t.Run("pairing invariant", func(t *testing.T) {
		send, receive := entries[0], entries[1]
		if send.Type == models.EntryReceive {
			send, receive = receive, send
		}

		if send.Type != models.EntrySend || receive.Type != models.EntryReceive {
			t.Fatalf("expected one send and one receive entry, got %s and %s", send.Type, receive.Type)
		}
		if send.TransferID != receive.TransferID {
			t.Errorf("pair transfer ids differ: %s vs %s", send.TransferID, receive.TransferID)
		}
		if !send.Amount.Equal(receive.Amount) {
			t.Errorf("pair amounts differ: %s vs %s", send.Amount, receive.Amount)
		}
		if send.CreatedAt != receive.CreatedAt {
			t.Errorf("pair timestamps differ: %d vs %d", send.CreatedAt, receive.CreatedAt)
		}
		if send.SenderEmail != alice.Email || send.RecipientEmail != bob.Email {
			t.Errorf("send entry parties wrong: %s -> %s", send.SenderEmail, send.RecipientEmail)
		}
		if receive.SenderEmail != alice.Email || receive.RecipientEmail != bob.Email {
			t.Errorf("receive entry parties wrong: %s -> %s", receive.SenderEmail, receive.RecipientEmail)
		}
		for _, e := range entries {
			if e.Status != models.StatusCompleted {
				t.Errorf("entry %s status: got %s, want completed", e.ID, e.Status)
			}
			if e.Description != "lunch" {
				t.Errorf("entry %s description: got %q, want %q", e.ID, e.Description, "lunch")
			}
		}
	})
}

func TestSendInsufficientBalance(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	alice := createUser(t, store, "alice@example.com", "10.00")
	bob := createUser(t, store, "bob@example.com", "50.00")

	_, err := engine.ExecuteTransfer(ctx, alice.ID, Send{
		Amount:         decimal.RequireFromString("50.00"),
		RecipientEmail: bob.Email,
	}, "")
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// Atomicity: no partial state after a failed send.
	assertBalance(t, store, alice.ID, "10.00")
	assertBalance(t, store, bob.ID, "50.00")

	entries, err := engine.History(ctx, alice.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no ledger entries after failed send, got %d", len(entries))
	}
}

func TestSendToSelf(t *testing.T) {
	engine, store := newTestEngine(t)
	alice := createUser(t, store, "alice@example.com", "100.00")

	_, err := engine.ExecuteTransfer(context.Background(), alice.ID, Send{
		Amount:         decimal.RequireFromString("20.00"),
		RecipientEmail: alice.Email,
	}, "")
	if !errors.Is(err, ErrSelfTransfer) {
		t.Fatalf("expected ErrSelfTransfer, got %v", err)
	}
	assertBalance(t, store, alice.ID, "100.00")
}

func TestSendRecipientNotFound(t *testing.T) {
	engine, store := newTestEngine(t)
	alice := createUser(t, store, "alice@example.com", "100.00")

	_, err := engine.ExecuteTransfer(context.Background(), alice.ID, Send{
		Amount:         decimal.RequireFromString("20.00"),
		RecipientEmail: "nobody@example.com",
	}, "")
	if !errors.Is(err, ErrRecipientNotFound) {
		t.Fatalf("expected ErrRecipientNotFound, got %v", err)
	}
	assertBalance(t, store, alice.ID, "100.00")
}

func TestInvalidAmounts(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	alice := createUser(t, store, "alice@example.com", "2000.00")
	bob := createUser(t, store, "bob@example.com", "0.00")

	cases := []struct {
		name   string
		amount string
	}{
		{"zero", "0"},
		{"negative", "-5.00"},
		{"sub-cent precision", "10.001"},
		{"above ceiling", "1500.00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.ExecuteTransfer(ctx, alice.ID, Send{
				Amount:         decimal.RequireFromString(tc.amount),
				RecipientEmail: bob.Email,
			}, "")
			if !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("send: expected ErrInvalidAmount, got %v", err)
			}

			_, err = engine.ExecuteTransfer(ctx, alice.ID, Charge{
				Amount: decimal.RequireFromString(tc.amount),
			}, "")
			if !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("charge: expected ErrInvalidAmount, got %v", err)
			}
		})
	}

	assertBalance(t, store, alice.ID, "2000.00")
	assertBalance(t, store, bob.ID, "0.00")
}

func TestChargeIncreasesBalance(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	alice := createUser(t, store, "alice@example.com", "100.00")

	balance, err := engine.ExecuteTransfer(ctx, alice.ID, Charge{
		Amount: decimal.RequireFromString("50.00"),
	}, "")
	if err != nil {
		t.Fatalf("ExecuteTransfer failed: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("150.00")) {
		t.Errorf("returned balance: got %s, want 150.00", balance)
	}
	assertBalance(t, store, alice.ID, "150.00")

	entries, err := engine.History(ctx, alice.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Type != models.EntryCharge {
		t.Errorf("entry type: got %s, want charge", entry.Type)
	}
	if entry.Status != models.StatusCompleted {
		t.Errorf("entry status: got %s, want completed", entry.Status)
	}
	if entry.Description != "Added funds" {
		t.Errorf("entry description: got %q, want %q", entry.Description, "Added funds")
	}
}

func TestUnknownActor(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.ExecuteTransfer(context.Background(), uuid.New().String(), Charge{
		Amount: decimal.RequireFromString("10.00"),
	}, "")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestConservation(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	alice := createUser(t, store, "alice@example.com", "100.00")
	bob := createUser(t, store, "bob@example.com", "50.00")
	carol := createUser(t, store, "carol@example.com", "25.50")

	total := func() decimal.Decimal {
		return mustBalance(t, store, alice.ID).
			Add(mustBalance(t, store, bob.ID)).
			Add(mustBalance(t, store, carol.ID))
	}
	before := total()

	sends := []struct {
		from   string
		to     string
		amount string
	}{
		{alice.ID, bob.Email, "12.34"},
		{bob.ID, carol.Email, "40.00"},
		{carol.ID, alice.Email, "0.01"},
	}
	for _, s := range sends {
		if _, err := engine.ExecuteTransfer(ctx, s.from, Send{
			Amount:         decimal.RequireFromString(s.amount),
			RecipientEmail: s.to,
		}, ""); err != nil {
			t.Fatalf("send %s failed: %v", s.amount, err)
		}
	}

	if after := total(); !after.Equal(before) {
		t.Errorf("total balance changed: before %s, after %s", before, after)
	}
}

func TestConcurrentSendsNeverOverdraw(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	alice := createUser(t, store, "alice@example.com", "100.00")
	bob := createUser(t, store, "bob@example.com", "0.00")
	carol := createUser(t, store, "carol@example.com", "0.00")

	recipients := []string{bob.Email, carol.Email}
	errs := make([]error, len(recipients))

	var wg sync.WaitGroup
	for i, recipient := range recipients {
		wg.Add(1)
		go func(i int, recipient string) {
			defer wg.Done()
			_, errs[i] = engine.ExecuteTransfer(ctx, alice.ID, Send{
				Amount:         decimal.RequireFromString("60.00"),
				RecipientEmail: recipient,
			}, "")
		}(i, recipient)
	}
	wg.Wait()

	var succeeded, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientBalance):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if succeeded != 1 || insufficient != 1 {
		t.Fatalf("expected exactly one success and one insufficient-balance failure, got %d/%d", succeeded, insufficient)
	}
	assertBalance(t, store, alice.ID, "40.00")

	received := mustBalance(t, store, bob.ID).Add(mustBalance(t, store, carol.ID))
	if !received.Equal(decimal.RequireFromString("60.00")) {
		t.Errorf("recipients received %s in total, want 60.00", received)
	}
}

func TestIdempotencyKeyReplay(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	alice := createUser(t, store, "alice@example.com", "100.00")
	bob := createUser(t, store, "bob@example.com", "0.00")

	send := Send{
		Amount:         decimal.RequireFromString("25.00"),
		RecipientEmail: bob.Email,
	}

	first, err := engine.ExecuteTransfer(ctx, alice.ID, send, "key-1")
	if err != nil {
		t.Fatalf("first send failed: %v", err)
	}
	replay, err := engine.ExecuteTransfer(ctx, alice.ID, send, "key-1")
	if err != nil {
		t.Fatalf("replayed send failed: %v", err)
	}

	if !first.Equal(replay) {
		t.Errorf("replay balance: got %s, want %s", replay, first)
	}
	assertBalance(t, store, alice.ID, "75.00")
	assertBalance(t, store, bob.ID, "25.00")

	entries, err := engine.History(ctx, alice.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 ledger entries after replay, got %d", len(entries))
	}

	t.Run("charge replay", func(t *testing.T) {
		charge := Charge{Amount: decimal.RequireFromString("10.00")}
		if _, err := engine.ExecuteTransfer(ctx, alice.ID, charge, "key-2"); err != nil {
			t.Fatalf("first charge failed: %v", err)
		}
		if _, err := engine.ExecuteTransfer(ctx, alice.ID, charge, "key-2"); err != nil {
			t.Fatalf("replayed charge failed: %v", err)
		}
		assertBalance(t, store, alice.ID, "85.00")
	})
}

func TestHistoryIdempotentRead(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	alice := createUser(t, store, "alice@example.com", "100.00")
	bob := createUser(t, store, "bob@example.com", "0.00")

	for _, amount := range []string{"1.00", "2.00", "3.00"} {
		if _, err := engine.ExecuteTransfer(ctx, alice.ID, Send{
			Amount:         decimal.RequireFromString(amount),
			RecipientEmail: bob.Email,
		}, ""); err != nil {
			t.Fatalf("send %s failed: %v", amount, err)
		}
	}

	first, err := engine.History(ctx, alice.ID)
	if err != nil {
		t.Fatalf("first History failed: %v", err)
	}
	second, err := engine.History(ctx, alice.ID)
	if err != nil {
		t.Fatalf("second History failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("history lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("history order differs at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}

	// Newest first.
	for i := 1; i < len(first); i++ {
		if first[i-1].CreatedAt < first[i].CreatedAt {
			t.Errorf("history not ordered newest first at %d", i)
		}
	}
}

func TestNotificationsOnCompletedTransfers(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	alice := createUser(t, store, "alice@example.com", "100.00")
	bob := createUser(t, store, "bob@example.com", "0.00")

	if _, err := engine.ExecuteTransfer(ctx, alice.ID, Send{
		Amount:         decimal.RequireFromString("30.00"),
		RecipientEmail: bob.Email,
	}, ""); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if _, err := engine.ExecuteTransfer(ctx, bob.ID, Charge{
		Amount: decimal.RequireFromString("5.00"),
	}, ""); err != nil {
		t.Fatalf("charge failed: %v", err)
	}

	aliceNotifs, err := store.ListNotifications(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(aliceNotifs) != 1 {
		t.Fatalf("expected 1 notification for sender, got %d", len(aliceNotifs))
	}

	bobNotifs, err := store.ListNotifications(ctx, bob.ID)
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(bobNotifs) != 2 {
		t.Fatalf("expected 2 notifications for recipient, got %d", len(bobNotifs))
	}
}
